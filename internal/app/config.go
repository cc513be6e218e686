package app

import (
	"fmt"
	"strings"

	server "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http"
	alerterAdapter "github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/alerter"
	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/catalogapi"
	kafkaAdapter "github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/orderlink"
	"github.com/admin/tg-bots/organic-shop/internal/usecases/shop"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	envFile = "deployments/local/.env"

	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	defaultCatalogPort = "8000"
	defaultBotPort     = "8081"
)

// CatalogConfig сервис каталога, префикс CATALOG_
type CatalogConfig struct {
	StorageDriver       string                 `envconfig:"STORAGE_DRIVER" default:"postgres"`
	Postgres            *pg.Config             `envconfig:"POSTGRES"`
	Redis               *redisAdapter.Config   `envconfig:"REDIS"`
	S3                  *s3Adapter.Config      `envconfig:"S3"`
	Kafka               *kafkaAdapter.Config   `envconfig:"KAFKA"`
	Alerter             *alerterAdapter.Config `envconfig:"ALERTER"`
	Log                 *logger.Config         `envconfig:"LOG"`
	Server              *server.Config         `envconfig:"APISERVER"`
	Telegram            orderlink.Config       `envconfig:"TELEGRAM"`
	MediaPublicBaseURL  string                 `envconfig:"MEDIA_PUBLIC_BASE_URL"`
	AdminAccounts       map[string]string      `envconfig:"ADMIN_ACCOUNTS"` // "login:password,login2:password2"
	CacheWarmerSchedule string                 `envconfig:"CACHE_WARMER_SCHEDULE" default:"@every 1m"`
}

// BotConfig бот магазина, префикс SHOP_BOT_
type BotConfig struct {
	shop.Config

	Log      *logger.Config         `envconfig:"LOG"`
	Server   *server.Config         `envconfig:"APISERVER"`
	Telegram *telegram.Config       `envconfig:"TELEGRAM"`
	Catalog  *catalogapi.Config     `envconfig:"CATALOG"`
	Kafka    *kafkaAdapter.Config   `envconfig:"KAFKA"`
	Alerter  *alerterAdapter.Config `envconfig:"ALERTER"`
}

func NewCatalogConfig(envPrefix string) (*CatalogConfig, error) {
	cfg := &CatalogConfig{}
	if err := process(envPrefix, cfg); err != nil {
		return nil, err
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultCatalogPort
	}

	return cfg, nil
}

func NewBotConfig(envPrefix string) (*BotConfig, error) {
	cfg := &BotConfig{}
	if err := process(envPrefix, cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultBotPort
	}
	if cfg.Telegram.UseWebhook && cfg.Telegram.WebhookURL == "" {
		return nil, fmt.Errorf("webhook url is required when webhook mode is enabled")
	}

	return cfg, nil
}

func process(envPrefix string, cfg interface{}) error {
	_ = godotenv.Load(envFile)

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return fmt.Errorf("failed to load %s config: %w", envPrefix, err)
	}
	return nil
}
