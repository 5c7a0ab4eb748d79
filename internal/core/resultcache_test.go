package core

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCacheRepo is an in-memory CacheRepository that can be forced to fail.
type fakeCacheRepo struct {
	entries map[string][]byte
	lastTTL time.Duration
	err     error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string][]byte{}}
}

func (f *fakeCacheRepo) Get(_ context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[key], nil
}

func (f *fakeCacheRepo) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.entries[key] = value
	f.lastTTL = ttl
	return nil
}

func (f *fakeCacheRepo) Delete(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.entries[key]
	delete(f.entries, key)
	return ok, nil
}

func (f *fakeCacheRepo) DeleteMany(_ context.Context, keys []string) error {
	if f.err != nil {
		return f.err
	}
	for _, k := range keys {
		delete(f.entries, k)
	}
	return nil
}

func (f *fakeCacheRepo) Health(context.Context) error {
	return f.err
}

func newTestCache(repo CacheRepository) *ResultCache {
	return NewResultCache(ResultCacheOptions{
		Repo:   repo,
		Logger: slog.New(slog.DiscardHandler),
	})
}

type payload struct {
	Value string `json:"value"`
}

func TestResultCache_RoundTrip(t *testing.T) {
	repo := newFakeCacheRepo()
	c := newTestCache(repo)
	ctx := context.Background()

	c.SetJSON(ctx, "k", payload{Value: "v"})

	var got payload
	require.True(t, c.GetJSON(ctx, "k", &got))
	assert.Equal(t, "v", got.Value)
	assert.Equal(t, DefaultCacheTTL, repo.lastTTL)
}

func TestResultCache_MissReturnsFalse(t *testing.T) {
	c := newTestCache(newFakeCacheRepo())

	var got payload
	assert.False(t, c.GetJSON(context.Background(), "absent", &got))
}

func TestResultCache_BackendFailureIsAMiss(t *testing.T) {
	repo := newFakeCacheRepo()
	repo.err = errors.New("connection refused")
	c := newTestCache(repo)
	ctx := context.Background()

	var got payload
	assert.False(t, c.GetJSON(ctx, "k", &got))

	// Writes and deletes swallow the failure too.
	c.SetJSON(ctx, "k", payload{Value: "v"})
	c.Delete(ctx, "k")
	c.DeleteMany(ctx, []string{"k"})
}

func TestResultCache_UndecodableEntryIsAMiss(t *testing.T) {
	repo := newFakeCacheRepo()
	repo.entries["k"] = []byte("{not json")
	c := newTestCache(repo)

	var got payload
	assert.False(t, c.GetJSON(context.Background(), "k", &got))
}

func TestResultCache_NilRepoDisablesEverything(t *testing.T) {
	c := NewResultCache(ResultCacheOptions{Logger: slog.New(slog.DiscardHandler)})
	ctx := context.Background()

	assert.False(t, c.Enabled())

	var got payload
	assert.False(t, c.GetJSON(ctx, "k", &got))
	c.SetJSON(ctx, "k", payload{Value: "v"})
	c.Delete(ctx, "k")
	require.ErrorIs(t, c.Health(ctx), ErrUnavailable)
}

func TestResultCache_NilPointerSafe(t *testing.T) {
	var c *ResultCache
	assert.False(t, c.Enabled())
}

func TestResultCache_CustomTTL(t *testing.T) {
	repo := newFakeCacheRepo()
	c := NewResultCache(ResultCacheOptions{
		Repo:   repo,
		TTL:    10 * time.Minute,
		Logger: slog.New(slog.DiscardHandler),
	})

	c.SetJSON(context.Background(), "k", payload{Value: "v"})
	assert.Equal(t, 10*time.Minute, repo.lastTTL)
	assert.Equal(t, 10*time.Minute, c.TTL())
}

func TestResultCache_DeleteManyNoKeysIsANoOp(t *testing.T) {
	repo := newFakeCacheRepo()
	repo.err = errors.New("must not be called")
	c := newTestCache(repo)

	c.DeleteMany(context.Background(), nil)
}
