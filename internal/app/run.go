package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jobScheduler "github.com/admin/tg-bots/organic-shop/internal/services/jobs"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// loop долгоживущий цикл (polling, consumer); возвращается после отмены ctx
type loop struct {
	name string
	run  func(ctx context.Context) error
}

// closer ресурс, закрываемый при остановке в порядке регистрации
type closer struct {
	name string
	c    io.Closer
}

type services struct {
	HTTPServer   *http.Server
	Loops        []loop
	JobScheduler *jobScheduler.Scheduler
	Closers      []closer
}

func (a *App) runServices(ctx context.Context, svc *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("starting http server", "addr", svc.HTTPServer.Addr)

		err := svc.HTTPServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	for _, l := range svc.Loops {
		g.Go(func() error {
			a.Log.Info("starting loop", "name", l.name)
			if err := l.run(gCtx); err != nil {
				return fmt.Errorf("%s: %w", l.name, err)
			}
			return nil
		})
	}

	// Планировщик запускает горутины внутри, сам не блокирует
	if svc.JobScheduler != nil {
		svc.JobScheduler.Start(gCtx)
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.Log.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := svc.HTTPServer.Shutdown(shutdownCtx); err != nil {
			a.Log.Error("failed to shutdown http server", "error", err)
		}

		if svc.JobScheduler != nil {
			svc.JobScheduler.Wait()
		}

		for _, c := range svc.Closers {
			if err := c.c.Close(); err != nil {
				a.Log.Error("failed to close resource", "error", err, "name", c.name)
			}
		}

		a.Log.Info("application shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("application error", "error", err)
		return err
	}

	return nil
}
