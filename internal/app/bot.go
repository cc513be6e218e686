package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	server "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http"
	healthcheckController "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http/controllers/healthcheck"
	telegramController "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http/controllers/telegram"
	alerterAdapter "github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/alerter"
	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/catalogapi"
	kafkaAdapter "github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/kafka"
	tgAdapter "github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/retry"
	kafkaPorts "github.com/admin/tg-bots/organic-shop/internal/ports/kafka"
	alerterService "github.com/admin/tg-bots/organic-shop/internal/services/alerter"
	telegramService "github.com/admin/tg-bots/organic-shop/internal/services/telegram"
	"github.com/admin/tg-bots/organic-shop/internal/usecases/shop"
)

const telegramSetupTimeout = 10 * time.Second

// RunBot бот магазина: апдейты через webhook или long polling
func (a *App) RunBot(ctx context.Context, cfg *BotConfig) error {
	a.Log.Info("running shop bot",
		"catalog_base_url", cfg.Catalog.BaseURL,
		"storefront_url", cfg.StorefrontURL,
		"storefront_mode", cfg.StorefrontMode,
	)

	svc := &services{}
	tgClient := tgAdapter.NewClient(cfg.Telegram, a.Log)

	var deadLetters kafkaPorts.IProducer
	if producer := a.initDeadLetterProducer(cfg); producer != nil {
		deadLetters = producer
		svc.Closers = append(svc.Closers, closer{name: "kafka-producer", c: producer})
	}

	shopService, err := shop.New(
		cfg.Config,
		shop.RegistrationPolicy{
			AttemptTimeout: cfg.Catalog.Timeout,
			Retry: retry.Policy{
				Attempts:  cfg.Catalog.RetryAttempts,
				BaseDelay: cfg.Catalog.RetryBaseDelay,
				MaxDelay:  cfg.Catalog.RetryMaxDelay,
			},
		},
		catalogapi.NewClient(cfg.Catalog, a.Log),
		tgClient,
		deadLetters,
		alerterService.New(alerterAdapter.NewClient(cfg.Alerter, a.Log), a.Name),
		a.Log,
	)
	if err != nil {
		return fmt.Errorf("failed to init shop service: %w", err)
	}

	tgService := telegramService.New(shopService, a.Log)
	a.registerBotCommands(ctx, tgClient)

	controllers := []server.Controller{
		healthcheckController.New(a.Name, nil, a.Log),
	}

	// Telegram Updates: либо Webhook (prod), либо Polling (local dev)
	if cfg.Telegram.UseWebhook {
		if err := a.setupWebhook(ctx, cfg.Telegram, tgClient); err != nil {
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
		controllers = append(controllers, telegramController.New(tgService, cfg.Telegram.WebhookSecret, a.Log))
	} else {
		a.Log.Warn("polling mode enabled - this should only be used for local development")
		poller := tgAdapter.NewPoller(tgClient, cfg.Telegram, tgService.HandleUpdate, a.Log)
		svc.Loops = append(svc.Loops, loop{
			name: "telegram-polling",
			run: func(ctx context.Context) error {
				return a.runPolling(ctx, tgClient, poller)
			},
		})
	}

	svc.HTTPServer = server.NewHTTPServer(cfg.Server, a.Log, controllers...)

	return a.runServices(ctx, svc)
}

// initDeadLetterProducer nil - Kafka не настроена, неудачные регистрации остаются только в логе
func (a *App) initDeadLetterProducer(cfg *BotConfig) *kafkaAdapter.Producer {
	if !cfg.Kafka.Enabled() {
		a.Log.Info("kafka is not configured, dead letters go to the log only")
		return nil
	}

	producer, err := kafkaAdapter.NewProducer(cfg.Kafka, a.Log)
	if err != nil {
		a.Log.Warn("failed to create kafka producer, dead letters go to the log only", "error", err)
		return nil
	}
	return producer
}

// registerBotCommands регистрирует команды бота в Telegram; ошибка не фатальна
func (a *App) registerBotCommands(ctx context.Context, client *tgAdapter.Client) {
	ctx, cancel := context.WithTimeout(ctx, telegramSetupTimeout)
	defer cancel()

	if err := client.SetMyCommands(ctx, shop.BotCommands()); err != nil {
		a.Log.Warn("failed to register bot commands", "error", err)
	}
}

// setupWebhook секрет Telegram возвращает в заголовке каждого апдейта
func (a *App) setupWebhook(ctx context.Context, cfg *tgAdapter.Config, client *tgAdapter.Client) error {
	ctx, cancel := context.WithTimeout(ctx, telegramSetupTimeout)
	defer cancel()

	webhookURL := strings.TrimRight(cfg.WebhookURL, "/") + "/webhook/"
	if cfg.WebhookSecret == "" {
		a.Log.Warn("webhook secret is empty, webhook requests are not authenticated")
	}

	if err := client.SetWebhook(ctx, webhookURL, cfg.WebhookSecret); err != nil {
		return err
	}
	a.Log.Info("telegram updates mode: webhook", "webhook_url", webhookURL)
	return nil
}

// runPolling удаляет webhook и запускает long polling
func (a *App) runPolling(ctx context.Context, client *tgAdapter.Client, poller *tgAdapter.Poller) error {
	deleteCtx, cancel := context.WithTimeout(ctx, telegramSetupTimeout)
	defer cancel()

	if err := client.DeleteWebhook(deleteCtx); err != nil {
		a.Log.Warn("failed to delete webhook, continuing anyway", "error", err)
	} else {
		a.Log.Info("webhook deleted successfully, starting polling")
	}

	return poller.Start(ctx)
}
