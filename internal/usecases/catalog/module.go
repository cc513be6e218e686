package catalog

import (
	"log/slog"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/orderlink"
	"github.com/admin/tg-bots/organic-shop/internal/ports/cache"
	ports "github.com/admin/tg-bots/organic-shop/internal/ports/repository"
	"github.com/admin/tg-bots/organic-shop/internal/ports/storage"
)

const defaultCacheTTL = 5 * time.Minute

// Deps зависимости сервиса; Cache и Media необязательны
type Deps struct {
	Users      ports.IUserRepo
	Categories ports.ICategoryRepo
	Products   ports.IProductRepo
	Cache      cache.Cache
	Media      storage.IMediaStorage
	Links      orderlink.Config
	CacheTTL   time.Duration
}

// Service каталог и справочник пользователей бота
type Service struct {
	Users      ports.IUserRepo
	Categories ports.ICategoryRepo
	Products   ports.IProductRepo
	Cache      cache.Cache
	Media      storage.IMediaStorage
	Log        *slog.Logger

	links    *orderlink.Builder
	tgConfig domain.TelegramConfig
	cacheTTL time.Duration
	now      func() time.Time
}

func New(deps Deps, log *slog.Logger) *Service {
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	links := orderlink.New(deps.Links)
	log.Info("order links configured", "mode", links.Mode().String())

	return &Service{
		Users:      deps.Users,
		Categories: deps.Categories,
		Products:   deps.Products,
		Cache:      deps.Cache,
		Media:      deps.Media,
		Log:        log,
		links:      links,
		tgConfig: domain.TelegramConfig{
			BotUsername:   deps.Links.BotUsername,
			AdminUsername: deps.Links.AdminUsername,
		},
		cacheTTL: ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TelegramConfig хэндлы бота и администратора как есть, пустые строки допустимы
func (s *Service) TelegramConfig() domain.TelegramConfig {
	return s.tgConfig
}
