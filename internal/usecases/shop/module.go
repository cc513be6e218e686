package shop

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	kafkaPorts "github.com/admin/tg-bots/organic-shop/internal/ports/kafka"
	"github.com/admin/tg-bots/organic-shop/internal/ports/service"
	telegramPorts "github.com/admin/tg-bots/organic-shop/internal/ports/telegram"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/retry"
)

const (
	StorefrontModeURL    = "url"
	StorefrontModeWebApp = "webapp"
)

type Config struct {
	StorefrontURL  string `envconfig:"STOREFRONT_URL" default:"https://organikbuyurtma.uz"`
	StorefrontMode string `envconfig:"STOREFRONT_MODE" default:"url"`
}

// RegistrationPolicy попытки регистрации пользователя в каталоге
type RegistrationPolicy struct {
	AttemptTimeout time.Duration
	Retry          retry.Policy
}

// Service логика бота: регистрация отправителя и ответы на команды
type Service struct {
	Catalog     service.ICatalogClient
	Telegram    telegramPorts.IClient
	DeadLetters kafkaPorts.IProducer    // nil - только лог
	Alerter     service.IAlerterService // nil - без алертов
	Log         *slog.Logger

	storefrontURL string
	webApp        bool
	registration  RegistrationPolicy
}

func New(
	cfg Config,
	policy RegistrationPolicy,
	catalog service.ICatalogClient,
	telegram telegramPorts.IClient,
	deadLetters kafkaPorts.IProducer,
	alerter service.IAlerterService,
	log *slog.Logger,
) (*Service, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.StorefrontMode))
	switch mode {
	case "", StorefrontModeURL, StorefrontModeWebApp:
	default:
		return nil, fmt.Errorf("unsupported storefront mode %q", cfg.StorefrontMode)
	}
	if policy.Retry.Attempts < 1 {
		policy.Retry.Attempts = 1
	}

	if cfg.StorefrontURL == "" {
		log.Warn("storefront url is empty, replies go without a button")
	}

	return &Service{
		Catalog:       catalog,
		Telegram:      telegram,
		DeadLetters:   deadLetters,
		Alerter:       alerter,
		Log:           log,
		storefrontURL: strings.TrimSpace(cfg.StorefrontURL),
		webApp:        mode == StorefrontModeWebApp,
		registration:  policy,
	}, nil
}
