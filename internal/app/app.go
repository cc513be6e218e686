package app

import (
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
)

type App struct {
	Name string
	Log  *slog.Logger
}

func New(name string, logCfg *logger.Config) (*App, error) {
	log, err := logger.New(name, logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	return &App{
		Name: name,
		Log:  log,
	}, nil
}
