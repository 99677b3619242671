package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/cesargomez89/streamhub/internal/domain"
)

// Cache is a byte cache with TTL. Implemented by SQLiteCache and the Redis cache.
type Cache interface {
	GetCache(ctx context.Context, key string) ([]byte, error)
	SetCache(ctx context.Context, key string, data []byte, ttl time.Duration) error
	ClearCache(ctx context.Context) error
}

// Browser is the read side of the store used by the API.
type Browser interface {
	ListCategories(ctx context.Context, kind domain.Kind) ([]domain.Category, error)
	ListChannels(ctx context.Context, categoryID string) ([]domain.Channel, error)
	ListMovies(ctx context.Context, categoryID string) ([]domain.Movie, error)
	ListSeries(ctx context.Context, categoryID string) ([]domain.Series, error)
}

// CachedBrowser serves list queries from a cache, falling back to the store.
// Cache failures are logged and never fail a read.
type CachedBrowser struct {
	inner    Browser
	cache    Cache
	logger   *slog.Logger
	cacheTTL time.Duration
}

func NewCachedBrowser(inner Browser, cache Cache, cacheTTL time.Duration, logger *slog.Logger) *CachedBrowser {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedBrowser{
		inner:    inner,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (c *CachedBrowser) ListCategories(ctx context.Context, kind domain.Kind) ([]domain.Category, error) {
	return cached(ctx, c, fmt.Sprintf("categories:%s", kind), func() ([]domain.Category, error) {
		return c.inner.ListCategories(ctx, kind)
	})
}

func (c *CachedBrowser) ListChannels(ctx context.Context, categoryID string) ([]domain.Channel, error) {
	return cached(ctx, c, fmt.Sprintf("channels:%s", categoryID), func() ([]domain.Channel, error) {
		return c.inner.ListChannels(ctx, categoryID)
	})
}

func (c *CachedBrowser) ListMovies(ctx context.Context, categoryID string) ([]domain.Movie, error) {
	return cached(ctx, c, fmt.Sprintf("movies:%s", categoryID), func() ([]domain.Movie, error) {
		return c.inner.ListMovies(ctx, categoryID)
	})
}

func (c *CachedBrowser) ListSeries(ctx context.Context, categoryID string) ([]domain.Series, error) {
	return cached(ctx, c, fmt.Sprintf("series:%s", categoryID), func() ([]domain.Series, error) {
		return c.inner.ListSeries(ctx, categoryID)
	})
}

// Invalidate drops every cached listing. Called after each successful sync.
func (c *CachedBrowser) Invalidate(ctx context.Context) error {
	return c.cache.ClearCache(ctx)
}

func cached[T any](ctx context.Context, c *CachedBrowser, key string, load func() (T, error)) (T, error) {
	data, err := c.cache.GetCache(ctx, key)
	if err != nil {
		c.logger.Warn("Cache read failed", "key", key, "error", err)
	}
	if data != nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := c.cache.SetCache(ctx, key, data, c.cacheTTL); err != nil {
			c.logger.Warn("Cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}
