package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/admin/tg-bots/organic-shop/internal/app"
)

const (
	appName   = "shop_bot"
	envPrefix = "SHOP_BOT"
)

func main() {
	cfg, err := app.NewBotConfig(envPrefix)
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(appName, cfg.Log)
	if err != nil {
		panic(err)
	}

	if err := a.RunBot(ctx, cfg); err != nil {
		panic(err)
	}
}
