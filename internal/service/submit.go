// Package service implements the business operations of the moderation
// pipeline: task submission, result reads, predictions, and listing closure.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/admarket/moderation/internal/core"
	"github.com/admarket/moderation/internal/domain/model"
)

// SubmitServiceOptions groups dependencies for SubmitService.
type SubmitServiceOptions struct {
	Listings core.ListingRepository // Required
	Tasks    core.TaskRepository    // Required
	Producer core.WorkPublisher     // Required
	Logger   *slog.Logger           // Optional
}

// SubmitService creates moderation tasks and enqueues them for asynchronous
// processing.
type SubmitService struct {
	listings core.ListingRepository
	tasks    core.TaskRepository
	producer core.WorkPublisher
	logger   *slog.Logger
}

// NewSubmitService constructs a new SubmitService.
func NewSubmitService(opts SubmitServiceOptions) (*SubmitService, error) {
	if opts.Listings == nil {
		return nil, errors.New("ListingRepository is required")
	}
	if opts.Tasks == nil {
		return nil, errors.New("TaskRepository is required")
	}
	if opts.Producer == nil {
		return nil, errors.New("WorkPublisher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitService{
		listings: opts.Listings,
		tasks:    opts.Tasks,
		producer: opts.Producer,
		logger:   logger.With("component", "submit_service"),
	}, nil
}

// Submit validates the listing, creates a pending task, and publishes a work
// message referencing it.
//
// The three steps are deliberately not transactional: a publish failure after
// the task insert leaves an orphaned pending task that never advances. That is
// an accepted at-least-once-leaning gap, surfaced to the caller as an error
// without rollback.
func (s *SubmitService) Submit(ctx context.Context, listingID int64) (*model.Task, error) {
	listing, err := s.listings.GetOpenByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if err := s.producer.SendModerationRequest(ctx, listing.ID, task.ID); err != nil {
		s.logger.ErrorContext(ctx, "work message publish failed, pending task left behind",
			"task_id", task.ID, "item_id", listing.ID, "error", err)
		return nil, fmt.Errorf("publish work message: %w", err)
	}

	s.logger.InfoContext(ctx, "moderation task submitted", "task_id", task.ID, "item_id", listing.ID)
	return task, nil
}
