package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/admarket/moderation/internal/core"
)

// ClosureServiceOptions groups dependencies for ClosureService.
type ClosureServiceOptions struct {
	Listings core.ListingRepository // Required
	Tasks    core.TaskRepository    // Required
	Cache    *core.ResultCache      // Optional: nil disables eviction
	Logger   *slog.Logger           // Optional
}

// ClosureService handles the listing-closure hook: cascade-delete the
// listing's tasks, flip the closed flag, then evict the related cache entries.
type ClosureService struct {
	listings core.ListingRepository
	tasks    core.TaskRepository
	cache    *core.ResultCache
	logger   *slog.Logger
}

// NewClosureService constructs a new ClosureService.
func NewClosureService(opts ClosureServiceOptions) (*ClosureService, error) {
	if opts.Listings == nil {
		return nil, errors.New("ListingRepository is required")
	}
	if opts.Tasks == nil {
		return nil, errors.New("TaskRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache := opts.Cache
	if cache == nil {
		cache = core.NewResultCache(core.ResultCacheOptions{Logger: logger})
	}
	return &ClosureService{
		listings: opts.Listings,
		tasks:    opts.Tasks,
		cache:    cache,
		logger:   logger.With("component", "closure_service"),
	}, nil
}

// Close deletes the listing's task rows, flips the listing to closed, and
// best-effort evicts the listing's simple-predict key plus one result key per
// deleted task. Database work strictly precedes eviction; an eviction failure
// never rolls the closure back.
func (s *ClosureService) Close(ctx context.Context, listingID int64) error {
	taskIDs, err := s.tasks.DeleteByListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("delete tasks for listing: %w", err)
	}

	if err := s.listings.Close(ctx, listingID); err != nil {
		return err
	}

	keys := make([]string, 0, len(taskIDs)+1)
	keys = append(keys, core.SimplePredictKey(listingID))
	for _, id := range taskIDs {
		keys = append(keys, core.TaskResultKey(id))
	}
	s.cache.DeleteMany(ctx, keys)

	s.logger.InfoContext(ctx, "listing closed",
		"item_id", listingID, "deleted_tasks", len(taskIDs), "evicted_keys", len(keys))
	return nil
}
