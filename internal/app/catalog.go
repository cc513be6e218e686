package app

import (
	"context"
	"fmt"
	"io"
	"time"

	server "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http"
	adminController "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http/controllers/admin"
	catalogController "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http/controllers/catalog"
	healthcheckController "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http/controllers/healthcheck"
	usersController "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/http/controllers/users"
	kafkaConsumerAdapter "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/kafka"
	kafkaHandlers "github.com/admin/tg-bots/organic-shop/internal/adapters/primary/kafka/handlers"
	alerterAdapter "github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/alerter"
	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/organic-shop/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/organic-shop/internal/ports/cache"
	"github.com/admin/tg-bots/organic-shop/internal/ports/repository"
	"github.com/admin/tg-bots/organic-shop/internal/ports/service"
	"github.com/admin/tg-bots/organic-shop/internal/ports/storage"
	categoryRepo "github.com/admin/tg-bots/organic-shop/internal/repository/category"
	productRepo "github.com/admin/tg-bots/organic-shop/internal/repository/product"
	userRepo "github.com/admin/tg-bots/organic-shop/internal/repository/user"
	alerterService "github.com/admin/tg-bots/organic-shop/internal/services/alerter"
	jobScheduler "github.com/admin/tg-bots/organic-shop/internal/services/jobs"
	catalogUsecase "github.com/admin/tg-bots/organic-shop/internal/usecases/catalog"
	"github.com/gin-gonic/gin"
)

// catalogStorage репозитории выбранного драйвера
type catalogStorage struct {
	Users      repository.IUserRepo
	Categories repository.ICategoryRepo
	Products   repository.IProductRepo
	Pinger     healthcheckController.Pinger
	Closer     io.Closer // nil для memory
}

// RunCatalog сервис каталога: HTTP API, dead-letter consumer, прогрев кэша
func (a *App) RunCatalog(ctx context.Context, cfg *CatalogConfig) error {
	a.Log.Info("running catalog service", "storage_driver", cfg.StorageDriver)

	store, err := a.initStorage(ctx, cfg, true)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	svc := &services{}
	if store.Closer != nil {
		svc.Closers = append(svc.Closers, closer{name: "storage", c: store.Closer})
	}

	cacheClient := a.initCache(ctx, cfg)
	if cacheClient != nil {
		svc.Closers = append(svc.Closers, closer{name: "redis", c: cacheClient})
	}

	media, err := a.initMedia(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init media storage: %w", err)
	}

	catalogService := catalogUsecase.New(catalogUsecase.Deps{
		Users:      store.Users,
		Categories: store.Categories,
		Products:   store.Products,
		Cache:      cacheClient,
		Media:      media,
		Links:      cfg.Telegram,
		CacheTTL:   cacheTTL(cfg),
	}, a.Log)

	if cfg.Kafka.Enabled() && cfg.Kafka.ConsumerGroup != "" {
		handler := kafkaHandlers.NewRegistrationHandler(catalogService, a.Log)
		consumer, err := kafkaConsumerAdapter.NewConsumer(cfg.Kafka, handler, a.Log)
		if err != nil {
			a.Log.Warn("failed to create kafka consumer, dead letters will not be replayed", "error", err)
		} else {
			svc.Loops = append(svc.Loops, loop{name: "registration-consumer", run: consumer.Start})
			svc.Closers = append(svc.Closers, closer{name: "kafka-consumer", c: consumer})
		}
	} else {
		a.Log.Info("kafka consumer disabled, dead letters will not be replayed")
	}

	alerter := alerterService.New(alerterAdapter.NewClient(cfg.Alerter, a.Log), a.Name)

	svc.JobScheduler, err = a.initJobScheduler(cfg, catalogService, cacheClient, alerter)
	if err != nil {
		return fmt.Errorf("failed to init job scheduler: %w", err)
	}

	svc.HTTPServer = server.NewHTTPServer(cfg.Server, a.Log, a.catalogControllers(cfg, catalogService, store.Pinger)...)

	return a.runServices(ctx, svc)
}

// MigrateCatalog применяет встроенные миграции и выходит
func (a *App) MigrateCatalog(ctx context.Context, cfg *CatalogConfig) error {
	if cfg.StorageDriver != StorageDriverPostgres {
		return fmt.Errorf("migrations require the %s storage driver", StorageDriverPostgres)
	}

	db, err := cfg.Postgres.NewConnection()
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	applied, err := pg.Migrate(ctx, db, a.Log)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.Log.Info("migrations completed", "applied", applied)
	return nil
}

// SeedCatalog демо-данные; повторный запуск ничего не дублирует
func (a *App) SeedCatalog(ctx context.Context, cfg *CatalogConfig) (catalogUsecase.SeedResult, error) {
	store, err := a.initStorage(ctx, cfg, true)
	if err != nil {
		return catalogUsecase.SeedResult{}, fmt.Errorf("failed to init storage: %w", err)
	}
	if store.Closer != nil {
		defer store.Closer.Close()
	}

	catalogService := catalogUsecase.New(catalogUsecase.Deps{
		Users:      store.Users,
		Categories: store.Categories,
		Products:   store.Products,
		Links:      cfg.Telegram,
	}, a.Log)

	return catalogService.SeedDemo(ctx)
}

func (a *App) initStorage(ctx context.Context, cfg *CatalogConfig, migrate bool) (*catalogStorage, error) {
	if cfg.StorageDriver == StorageDriverMemory {
		a.Log.Warn("in-memory storage enabled - data is lost on restart")
		store := inmemory.NewStore()
		return &catalogStorage{
			Users:      store.Users(),
			Categories: store.Categories(),
			Products:   store.Products(),
			Pinger:     store,
		}, nil
	}

	db, err := cfg.Postgres.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	a.Log.Info("postgres connected successfully")

	if migrate {
		if _, err := pg.Migrate(ctx, db, a.Log); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	persistenceLayer := pg.NewDB(db)
	return &catalogStorage{
		Users:      userRepo.New(persistenceLayer, a.Log),
		Categories: categoryRepo.New(persistenceLayer, a.Log),
		Products:   productRepo.New(persistenceLayer, a.Log),
		Pinger:     persistenceLayer,
		Closer:     persistenceLayer,
	}, nil
}

// initCache Redis опционален: без него каталог читается напрямую из хранилища
func (a *App) initCache(ctx context.Context, cfg *CatalogConfig) cache.Cache {
	if !cfg.Redis.Enabled() {
		a.Log.Info("redis is not configured, catalog cache disabled")
		return nil
	}

	redisClient, err := cfg.Redis.NewConnection(ctx)
	if err != nil {
		a.Log.Warn("failed to init redis cache, continuing without cache", "error", err)
		return nil
	}

	a.Log.Info("redis cache connected successfully")
	return redisAdapter.NewClient(redisClient, cfg.Redis.KeyPrefix)
}

// initMedia S3 опционален: без него загрузка картинок отключена
func (a *App) initMedia(ctx context.Context, cfg *CatalogConfig) (storage.IMediaStorage, error) {
	if !cfg.S3.Enabled() {
		a.Log.Warn("s3 is not configured, product image uploads are disabled")
		return nil, nil
	}

	minioClient, err := cfg.S3.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	a.Log.Info("s3 media storage connected", "bucket", cfg.S3.Bucket)
	return s3Adapter.NewClient(minioClient, cfg.S3.Bucket, a.Log), nil
}

func cacheTTL(cfg *CatalogConfig) time.Duration {
	if cfg.Redis == nil {
		return 0
	}
	return cfg.Redis.TTL
}

// initJobScheduler прогрев кэша имеет смысл только с Redis
func (a *App) initJobScheduler(
	cfg *CatalogConfig,
	catalogService *catalogUsecase.Service,
	cacheClient cache.Cache,
	alerter service.IAlerterService,
) (*jobScheduler.Scheduler, error) {
	scheduler := jobScheduler.NewScheduler(a.Log, alerter, nil)

	if cacheClient != nil {
		warmer, err := jobScheduler.NewCacheWarmer(catalogService, cfg.CacheWarmerSchedule, a.Log)
		if err != nil {
			return nil, err
		}
		scheduler.Register(warmer)
		a.Log.Info("cache warmer job registered", "schedule", cfg.CacheWarmerSchedule)
	}

	return scheduler, nil
}

// catalogControllers админка регистрируется только при заданных учётных записях
func (a *App) catalogControllers(
	cfg *CatalogConfig,
	catalogService *catalogUsecase.Service,
	pinger healthcheckController.Pinger,
) []server.Controller {
	controllers := []server.Controller{
		healthcheckController.New(a.Name, pinger, a.Log),
		catalogController.New(catalogService, cfg.MediaPublicBaseURL, a.Log),
		usersController.New(catalogService, a.Log),
	}

	if len(cfg.AdminAccounts) > 0 {
		controllers = append(controllers, adminController.New(
			catalogService,
			gin.Accounts(cfg.AdminAccounts),
			cfg.MediaPublicBaseURL,
			a.Log,
		))
		a.Log.Info("admin api enabled", "accounts", len(cfg.AdminAccounts))
	} else {
		a.Log.Warn("admin accounts are not configured, admin api disabled")
	}

	return controllers
}
