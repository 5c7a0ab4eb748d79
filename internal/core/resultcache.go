package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// DefaultCacheTTL bounds staleness of cached prediction and task results.
const DefaultCacheTTL = time.Hour

// ResultCache is a best-effort boundary around the cache backing store.
// The cache is an optional, independently-failing collaborator: every
// operation degrades to a miss or no-op when the repo is absent or errors, and
// never alters control flow beyond that. The relational store stays the source
// of truth.
type ResultCache struct {
	repo   CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// ResultCacheOptions groups dependencies for NewResultCache.
type ResultCacheOptions struct {
	Repo   CacheRepository // Optional: nil disables caching entirely
	TTL    time.Duration   // Optional: defaults to DefaultCacheTTL
	Logger *slog.Logger    // Optional: structured logger
}

// NewResultCache constructs a ResultCache. A nil repo yields a cache that
// always misses, which callers treat the same as an unreachable backend.
func NewResultCache(opts ResultCacheOptions) *ResultCache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultCache{
		repo:   opts.Repo,
		ttl:    ttl,
		logger: logger.With("component", "result_cache"),
	}
}

// Enabled reports whether a backing store is wired.
func (c *ResultCache) Enabled() bool {
	return c != nil && c.repo != nil
}

// TTL returns the effective entry TTL.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// GetJSON loads and unmarshals the value under key into dst.
// Returns false on miss, backend failure, or undecodable payload.
func (c *ResultCache) GetJSON(ctx context.Context, key string, dst any) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.repo.Get(ctx, key)
	if err != nil {
		c.logger.DebugContext(ctx, "cache get failed", "key", key, "error", err)
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.DebugContext(ctx, "cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON marshals value and stores it under key with the configured TTL.
func (c *ResultCache) SetJSON(ctx context.Context, key string, value any) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.DebugContext(ctx, "cache value unmarshalable", "key", key, "error", err)
		return
	}
	if err := c.repo.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.DebugContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// Delete evicts a single key.
func (c *ResultCache) Delete(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	if _, err := c.repo.Delete(ctx, key); err != nil {
		c.logger.DebugContext(ctx, "cache delete failed", "key", key, "error", err)
	}
}

// DeleteMany evicts a batch of keys.
func (c *ResultCache) DeleteMany(ctx context.Context, keys []string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.repo.DeleteMany(ctx, keys); err != nil {
		c.logger.DebugContext(ctx, "cache bulk delete failed", "keys", len(keys), "error", err)
	}
}

// Health reports backend reachability, for the health endpoint only.
func (c *ResultCache) Health(ctx context.Context) error {
	if !c.Enabled() {
		return ErrUnavailable
	}
	return c.repo.Health(ctx)
}
