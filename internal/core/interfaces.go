// Package core defines the ports and shared business logic of the moderation
// pipeline. Services depend on these interfaces, not on concrete
// implementations; the data and adapter layers provide them.
package core

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/admarket/moderation/internal/domain/model"
)

// TaskRepository defines the interface for moderation task persistence.
type TaskRepository interface {
	// Create inserts a new task in pending status for the listing and
	// returns it. The caller is expected to have validated listing
	// existence; a dangling listing reference surfaces as
	// data.ErrListingNotFound via the foreign key.
	Create(ctx context.Context, listingID int64) (*model.Task, error)

	// GetByID returns the task or data.ErrTaskNotFound.
	GetByID(ctx context.Context, taskID int64) (*model.Task, error)

	// ResolvePending returns the task only while it is still pending.
	// Outcomes are tagged with sentinels: data.ErrTaskNotFound when no such
	// task exists, data.ErrTaskNotPending when it already reached a
	// terminal state.
	ResolvePending(ctx context.Context, taskID int64) (*model.Task, error)

	// Complete transitions the task to completed with the decision.
	// Overwrites silently if called twice; single-writer semantics are the
	// worker's responsibility.
	Complete(ctx context.Context, taskID int64, decision model.Decision) error

	// Fail transitions the task to failed with an error message.
	Fail(ctx context.Context, taskID int64, errMsg string) error

	// TaskIDsByListing returns the ids of every task ever created for the
	// listing, oldest first.
	TaskIDsByListing(ctx context.Context, listingID int64) ([]int64, error)

	// DeleteByListing removes all tasks for the listing and returns the
	// deleted ids, used for cache invalidation on listing closure.
	DeleteByListing(ctx context.Context, listingID int64) ([]int64, error)
}

// ListingRepository defines the interface for listing reads and the one-way
// closure transition.
type ListingRepository interface {
	// GetOpenByID returns an open listing with the seller's verified flag
	// joined in, or data.ErrListingNotFound when absent or closed.
	GetOpenByID(ctx context.Context, id int64) (*model.Listing, error)

	// Close flips the listing's closed flag. Returns
	// data.ErrListingNotFound when the listing is absent or already closed.
	Close(ctx context.Context, id int64) error

	// Create inserts a new open listing.
	Create(ctx context.Context, req *model.CreateListingRequest) (*model.Listing, error)
}

// CacheRepository defines the interface for the cache backing store.
// Implementations must treat a missing key as a nil value, not an error.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	DeleteMany(ctx context.Context, keys []string) error
	Health(ctx context.Context) error
}

// WorkPublisher defines the interface for the work-topic side of the queue
// transport. Publishing is durable but not atomic with any store write.
type WorkPublisher interface {
	SendModerationRequest(ctx context.Context, itemID, taskID int64) error
}

// DeadLetterPublisher defines the interface for the DLQ side of the queue
// transport.
type DeadLetterPublisher interface {
	SendToDLQ(ctx context.Context, msg model.WorkMessage, errMsg string, retryCount int) error
}

// Publisher combines both transport directions, as implemented by the Kafka
// producer adapter.
type Publisher interface {
	WorkPublisher
	DeadLetterPublisher
}

// WorkConsumer defines the interface for the worker's at-least-once message
// stream. Fetch blocks until a message arrives or the context is cancelled.
type WorkConsumer interface {
	Fetch(ctx context.Context) (model.WorkMessage, error)
}

// Scorer is the moderation scoring collaborator: a pure function from listing
// features to a decision.
type Scorer interface {
	Score(features Features) (model.Decision, error)
}

// Features is the input to the scoring collaborator. Description is carried
// as its length in code points only; the model never sees content.
type Features struct {
	IsVerifiedSeller  bool
	ImagesQty         int
	DescriptionLength int
	Category          int
}

// FeaturesFromListing projects a listing into scorer input.
func FeaturesFromListing(l *model.Listing) Features {
	return Features{
		IsVerifiedSeller:  l.SellerIsVerified,
		ImagesQty:         l.ImagesQty,
		DescriptionLength: utf8.RuneCountInString(l.Description),
		Category:          l.Category,
	}
}
