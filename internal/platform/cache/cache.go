// Package cache provides the read-through cache used for cycle
// configuration and summaries. Redis is used when configured, otherwise an
// in-process LRU.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrMiss = errors.New("cache miss")

type Cacher interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

type FetchFunc[T any] func(ctx context.Context) (T, error)

// Loader coalesces concurrent misses for the same key.
type Loader struct {
	cache Cacher
	group singleflight.Group
	ttl   time.Duration
	log   *zap.Logger
}

func NewLoader(c Cacher, ttl time.Duration, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{cache: c, ttl: ttl, log: log}
}

// Invalidate drops keys; failures are logged because a stale entry expires
// on its own.
func (l *Loader) Invalidate(ctx context.Context, keys ...string) {
	if l == nil || l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, keys...); err != nil {
		l.log.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// FindAndCache returns the cached value for key or loads it with fn. Cache
// errors other than a miss are treated as a miss.
func FindAndCache[T any](ctx context.Context, l *Loader, key string, fn FetchFunc[T]) (T, error) {
	var zero T
	if l == nil || l.cache == nil {
		return fn(ctx)
	}

	var cached T
	err := l.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		l.log.Debug("cache hit", zap.String("key", key))
		return cached, nil
	case errors.Is(err, ErrMiss):
		l.log.Debug("cache miss", zap.String("key", key))
	default:
		l.log.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := l.group.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if setErr := l.cache.Set(ctx, key, value, l.ttl); setErr != nil {
			l.log.Warn("cache set failed", zap.String("key", key), zap.Error(setErr))
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	value, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: type mismatch for key %q", key)
	}
	if shared {
		l.log.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}
