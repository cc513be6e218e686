package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const cacheWarmerName = "category-cache-warmer"

// CategoryWarmer пересчитывает закэшированный список категорий
type CategoryWarmer interface {
	WarmCategoryCache(ctx context.Context) error
}

// CacheWarmer джоба прогрева кэша категорий по cron-расписанию
type CacheWarmer struct {
	warmer   CategoryWarmer
	schedule cron.Schedule
	log      *slog.Logger
}

// NewCacheWarmer expr - стандартное cron-выражение или дескриптор (@every 1m, @hourly)
func NewCacheWarmer(warmer CategoryWarmer, expr string, log *slog.Logger) (*CacheWarmer, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cache warmer schedule %q: %w", expr, err)
	}

	return &CacheWarmer{
		warmer:   warmer,
		schedule: schedule,
		log:      log,
	}, nil
}

func (j *CacheWarmer) Name() string {
	return cacheWarmerName
}

func (j *CacheWarmer) NextRun(now time.Time) time.Time {
	return j.schedule.Next(now)
}

func (j *CacheWarmer) Run(ctx context.Context) error {
	start := time.Now()
	if err := j.warmer.WarmCategoryCache(ctx); err != nil {
		return fmt.Errorf("failed to warm category cache: %w", err)
	}
	j.log.Debug("category cache warmed", "duration", time.Since(start))
	return nil
}
