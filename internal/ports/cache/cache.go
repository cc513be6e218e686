package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss ключа нет в кэше
var ErrMiss = errors.New("cache miss")

// Cache key/value кэш ответов каталога
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
