// Package cache implements the cache-aside layer shared by the domain use cases.
//
// The cache is never a source of truth. Every read that cannot be served from it
// (miss, expired entry, undecodable value, unreachable redis) falls back to the
// caller's loader, and every write or invalidation is best-effort: failures are
// logged and counted but never returned to the caller.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/allisson/storefront/internal/metrics"
)

// Cache is a JSON-encoding cache-aside layer over a Store.
type Cache struct {
	store   Store
	logger  *slog.Logger
	metrics metrics.CacheMetrics
}

// New creates a Cache. cacheMetrics may be nil when metrics are disabled.
func New(store Store, logger *slog.Logger, cacheMetrics metrics.CacheMetrics) *Cache {
	if cacheMetrics == nil {
		cacheMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &Cache{store: store, logger: logger, metrics: cacheMetrics}
}

// keyspace is the part of key before the first colon: "user", "cart", "product" or "products".
func keyspace(key string) string {
	space, _, _ := strings.Cut(key, ":")
	return space
}

// Get decodes the entry at key into dest and reports whether it was a usable hit.
// Store errors and decode failures are logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed, bypassing cache",
			slog.String("key", key),
			slog.Any("error", err),
		)
		c.metrics.RecordCache(ctx, keyspace(key), "get", metrics.StatusError)
		return false
	}
	if !found {
		c.metrics.RecordCache(ctx, keyspace(key), "get", "miss")
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("cache entry could not be decoded, treating as miss",
			slog.String("key", key),
			slog.Any("error", err),
		)
		c.metrics.RecordCache(ctx, keyspace(key), "get", "decode_error")
		return false
	}
	c.metrics.RecordCache(ctx, keyspace(key), "get", "hit")
	return true
}

// Set encodes value and stores it under key with ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache entry could not be encoded", slog.String("key", key), slog.Any("error", err))
		c.metrics.RecordCache(ctx, keyspace(key), "set", metrics.StatusError)
		return
	}
	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		c.logger.Warn("cache write failed", slog.String("key", key), slog.Any("error", err))
		c.metrics.RecordCache(ctx, keyspace(key), "set", metrics.StatusError)
		return
	}
	c.metrics.RecordCache(ctx, keyspace(key), "set", metrics.StatusSuccess)
}

// Invalidate evicts the given keys. Absent keys are not an error.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Warn("cache invalidation failed", slog.Any("keys", keys), slog.Any("error", err))
		c.recordInvalidation(ctx, keys, metrics.StatusError)
		return
	}
	c.recordInvalidation(ctx, keys, metrics.StatusSuccess)
}

func (c *Cache) recordInvalidation(ctx context.Context, keys []string, result string) {
	for _, key := range keys {
		c.metrics.RecordCache(ctx, keyspace(key), "invalidate", result)
	}
}

// InvalidateByPrefix evicts every key under prefix.
func (c *Cache) InvalidateByPrefix(ctx context.Context, prefix string) {
	removed, err := c.store.DeleteByPrefix(ctx, prefix)
	if err != nil {
		c.logger.Warn("cache prefix invalidation failed",
			slog.String("prefix", prefix),
			slog.Int64("removed", removed),
			slog.Any("error", err),
		)
		c.metrics.RecordCache(ctx, keyspace(prefix), "invalidate_prefix", metrics.StatusError)
		return
	}
	c.logger.Debug("cache prefix invalidated", slog.String("prefix", prefix), slog.Int64("removed", removed))
	c.metrics.RecordCache(ctx, keyspace(prefix), "invalidate_prefix", metrics.StatusSuccess)
}

// Ping checks the backing store, used by readiness probes.
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the backing store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// GetOrLoad returns the cached value at key or, when it cannot be served from the cache,
// calls loader and stores its result with ttl. Loader errors are returned unchanged and
// nothing is cached for them.
func GetOrLoad[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	value, err := loader(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(ctx, key, value, ttl)
	return value, nil
}
