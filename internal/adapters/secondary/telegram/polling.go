package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"golang.org/x/sync/semaphore"
)

const (
	pollErrorBackoff     = 5 * time.Second
	defaultMaxConcurrent = 32
)

// UpdateHandler обработчик одного обновления
type UpdateHandler func(ctx context.Context, update *domain.Update) error

// Poller long polling через getUpdates; разные чаты обрабатываются параллельно,
// апдейты одного чата - строго по очереди в порядке update_id
type Poller struct {
	client       *Client
	handler      UpdateHandler
	timeout      int
	lastUpdateID int64
	log          *slog.Logger
	httpClient   *http.Client // таймаут больше, чем timeout long polling
	workers      *semaphore.Weighted
	inFlight     sync.WaitGroup

	mu    sync.Mutex
	chats map[int64][]*domain.Update // ключ есть, пока у чата работает обработчик
}

func NewPoller(client *Client, cfg *Config, handler UpdateHandler, log *slog.Logger) *Poller {
	timeout := cfg.PollingTimeout
	if timeout <= 0 {
		timeout = 30
	}

	maxConcurrent := cfg.MaxConcurrentUpdates
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	return &Poller{
		client:  client,
		handler: handler,
		timeout: timeout,
		log:     log,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout+10) * time.Second,
		},
		workers: semaphore.NewWeighted(int64(maxConcurrent)),
		chats:   make(map[int64][]*domain.Update),
	}
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

// Start блокируется до отмены ctx и завершения начатых обработчиков;
// ошибки обработчика не останавливают цикл
func (p *Poller) Start(ctx context.Context) error {
	p.log.Info("starting telegram polling", "timeout", p.timeout)
	defer p.inFlight.Wait()

	for {
		if ctx.Err() != nil {
			p.log.Info("polling stopped")
			return nil
		}

		updates, err := p.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			var apiErr *APIError
			// 409: активен webhook или запущен другой экземпляр
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
				p.log.Warn("telegram API conflict, another instance or webhook is active",
					"description", apiErr.Description)
			} else {
				p.log.Error("failed to get updates", "error", err)
			}
			select {
			case <-ctx.Done():
			case <-time.After(pollErrorBackoff):
			}
			continue
		}

		for i := range updates {
			update := &updates[i]
			if update.UpdateID >= p.lastUpdateID {
				p.lastUpdateID = update.UpdateID + 1
			}

			if err := p.dispatch(ctx, update); err != nil {
				break
			}
		}
	}
}

// dispatch апдейт чата, у которого уже работает обработчик, встаёт в его очередь
func (p *Poller) dispatch(ctx context.Context, update *domain.Update) error {
	chatID, keyed := chatOf(update)
	if keyed {
		p.mu.Lock()
		if queue, busy := p.chats[chatID]; busy {
			p.chats[chatID] = append(queue, update)
			p.mu.Unlock()
			return nil
		}
		p.chats[chatID] = nil
		p.mu.Unlock()
	}

	if err := p.workers.Acquire(ctx, 1); err != nil {
		if keyed {
			p.mu.Lock()
			delete(p.chats, chatID)
			p.mu.Unlock()
		}
		return err
	}

	p.inFlight.Add(1)
	go func() {
		defer p.inFlight.Done()
		defer p.workers.Release(1)
		for next := update; next != nil; next = p.next(chatID, keyed) {
			p.handle(ctx, next)
		}
	}()
	return nil
}

// next следующий апдейт из очереди чата; nil освобождает чат
func (p *Poller) next(chatID int64, keyed bool) *domain.Update {
	if !keyed {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	queue := p.chats[chatID]
	if len(queue) == 0 {
		delete(p.chats, chatID)
		return nil
	}
	p.chats[chatID] = queue[1:]
	return queue[0]
}

func chatOf(update *domain.Update) (int64, bool) {
	if update.Message == nil || update.Message.Chat == nil {
		return 0, false
	}
	return update.Message.Chat.ID, true
}

func (p *Poller) handle(ctx context.Context, update *domain.Update) {
	if err := p.handler(ctx, update); err != nil {
		p.log.Error("failed to handle update", "error", err, "update_id", update.UpdateID)
	}
}

func (p *Poller) getUpdates(ctx context.Context) ([]domain.Update, error) {
	req := getUpdatesRequest{
		Offset:         p.lastUpdateID,
		Timeout:        p.timeout,
		AllowedUpdates: []string{"message"},
	}

	var updates []domain.Update
	if err := p.client.callWith(ctx, p.httpClient, "getUpdates", req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
