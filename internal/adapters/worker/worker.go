// Package worker implements the moderation worker: it consumes work messages,
// scores the referenced listing, persists the outcome, and owns the
// retry/dead-letter state machine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/admarket/moderation/internal/core"
	"github.com/admarket/moderation/internal/data"
	"github.com/admarket/moderation/internal/domain/model"
)

const (
	// DefaultMaxRetries bounds re-attempts per message before dead-lettering.
	DefaultMaxRetries = 3
)

// DefaultRetryDelays is the fixed backoff schedule, indexed by attempt.
// Attempts past the end of the schedule reuse the last delay.
var DefaultRetryDelays = []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}

// SleepFunc suspends for d or returns early with the context's error.
// Injectable so tests can observe the backoff schedule without waiting.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RunnerOptions configures the moderation worker runner.
type RunnerOptions struct {
	Consumer core.WorkConsumer        // Required
	Tasks    core.TaskRepository      // Required
	Listings core.ListingRepository   // Required
	Scorer   core.Scorer              // Required
	DLQ      core.DeadLetterPublisher // Required
	Cache    *core.ResultCache        // Optional: terminal results are cached best-effort
	Logger   *slog.Logger             // Optional

	MaxRetries  int             // defaults to DefaultMaxRetries
	RetryDelays []time.Duration // defaults to DefaultRetryDelays
	Sleep       SleepFunc       // defaults to a context-aware timer sleep
}

// Runner processes the work topic strictly sequentially: one message at a
// time, with retry backoff blocking the stream. Parallelism comes from
// running multiple worker processes in the same consumer group, not from
// interleaving messages within one process.
type Runner struct {
	consumer    core.WorkConsumer
	tasks       core.TaskRepository
	listings    core.ListingRepository
	scorer      core.Scorer
	dlq         core.DeadLetterPublisher
	cache       *core.ResultCache
	logger      *slog.Logger
	maxRetries  int
	retryDelays []time.Duration
	sleep       SleepFunc
}

// NewRunner validates options and constructs a worker runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Consumer == nil {
		return nil, errors.New("WorkConsumer is required")
	}
	if opts.Tasks == nil {
		return nil, errors.New("TaskRepository is required")
	}
	if opts.Listings == nil {
		return nil, errors.New("ListingRepository is required")
	}
	if opts.Scorer == nil {
		return nil, errors.New("Scorer is required")
	}
	if opts.DLQ == nil {
		return nil, errors.New("DeadLetterPublisher is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	delays := opts.RetryDelays
	if len(delays) == 0 {
		delays = DefaultRetryDelays
	}
	sleepFn := opts.Sleep
	if sleepFn == nil {
		sleepFn = sleep
	}
	cache := opts.Cache
	if cache == nil {
		cache = core.NewResultCache(core.ResultCacheOptions{Logger: logger})
	}

	return &Runner{
		consumer:    opts.Consumer,
		tasks:       opts.Tasks,
		listings:    opts.Listings,
		scorer:      opts.Scorer,
		dlq:         opts.DLQ,
		cache:       cache,
		logger:      logger.With("component", "moderation_worker"),
		maxRetries:  maxRetries,
		retryDelays: delays,
		sleep:       sleepFn,
	}, nil
}

// Run consumes and processes messages until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting moderation worker",
		"max_retries", r.maxRetries, "retry_delays", r.retryDelays)

	for {
		msg, err := r.consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				r.logger.InfoContext(ctx, "moderation worker stopped")
				return nil
			}
			return fmt.Errorf("fetch work message: %w", err)
		}
		r.processMessage(ctx, msg)
	}
}

// processMessage drives the per-message state machine:
//
//	Received -> {Resolved, NotFound}
//	Resolved -> {Completed, TransientError}
//	TransientError -> Retry(n) -> {Completed, DeadLettered}
//
// Transient failures re-attempt the same message with a blocking backoff
// drawn from the schedule; exhaustion marks the task failed and dead-letters
// the original message. The task store mutation always happens before the
// corresponding dead-letter publish.
func (r *Runner) processMessage(ctx context.Context, msg model.WorkMessage) {
	r.logger.InfoContext(ctx, "received work message",
		"item_id", msg.ItemID, "task_id", msg.TaskID)

	for retryCount := 0; ; retryCount++ {
		err := r.attempt(ctx, msg, retryCount)
		if err == nil {
			return
		}
		if errors.Is(err, errDropMessage) {
			return
		}
		if ctx.Err() != nil {
			// Shutdown mid-processing: the message will be redelivered.
			return
		}

		if retryCount < r.maxRetries {
			delay := r.retryDelays[min(retryCount, len(r.retryDelays)-1)]
			r.logger.InfoContext(ctx, "retrying message",
				"task_id", msg.TaskID,
				"delay", delay,
				"attempt", retryCount+1,
				"max_retries", r.maxRetries,
				"error", err)
			if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
				return
			}
			continue
		}

		r.logger.ErrorContext(ctx, "max retries reached, dead-lettering",
			"task_id", msg.TaskID, "error", err)
		r.deadLetter(ctx, msg, err.Error(), retryCount)
		return
	}
}

// errDropMessage tags outcomes where the message is stale and must be dropped
// without retry or dead-lettering.
var errDropMessage = errors.New("drop message")

// attempt runs a single processing attempt. A nil return means the message is
// fully handled (including the permanent missing-listing path); errDropMessage
// means drop silently; anything else is transient and retried by the caller.
func (r *Runner) attempt(ctx context.Context, msg model.WorkMessage, retryCount int) error {
	task, err := r.tasks.ResolvePending(ctx, msg.TaskID)
	if err != nil {
		if errors.Is(err, data.ErrTaskNotFound) || errors.Is(err, data.ErrTaskNotPending) {
			// Stale redelivery or unknown task: not an error, no DLQ.
			r.logger.WarnContext(ctx, "no pending task for message, dropping",
				"item_id", msg.ItemID, "task_id", msg.TaskID, "reason", err)
			return errDropMessage
		}
		return fmt.Errorf("resolve task: %w", err)
	}

	listing, err := r.listings.GetOpenByID(ctx, msg.ItemID)
	if err != nil {
		if errors.Is(err, data.ErrListingNotFound) {
			// Missing listing is permanent: fail and dead-letter without retry.
			errMsg := fmt.Sprintf("listing with item_id=%d not found", msg.ItemID)
			r.logger.ErrorContext(ctx, "listing not found for task",
				"item_id", msg.ItemID, "task_id", task.ID)
			r.deadLetter(ctx, msg, errMsg, retryCount)
			return nil
		}
		return fmt.Errorf("resolve listing: %w", err)
	}

	decision, err := r.scorer.Score(core.FeaturesFromListing(listing))
	if err != nil {
		return fmt.Errorf("score listing: %w", err)
	}

	if err := r.tasks.Complete(ctx, task.ID, decision); err != nil {
		return fmt.Errorf("persist decision: %w", err)
	}

	r.cacheResult(ctx, task, decision)

	r.logger.InfoContext(ctx, "processed moderation task",
		"item_id", msg.ItemID,
		"task_id", task.ID,
		"is_violation", decision.IsViolation,
		"probability", decision.Probability)
	return nil
}

// deadLetter marks the task failed and publishes the dead-letter message, in
// that order. Both steps are terminal best-effort: a failure in either is
// logged but not retried, the offset is already committed.
func (r *Runner) deadLetter(ctx context.Context, msg model.WorkMessage, errMsg string, retryCount int) {
	if err := r.tasks.Fail(ctx, msg.TaskID, errMsg); err != nil {
		r.logger.ErrorContext(ctx, "mark task failed error",
			"task_id", msg.TaskID, "error", err)
	} else {
		failed := model.TaskStatusFailed
		r.cache.SetJSON(ctx, core.TaskResultKey(msg.TaskID), &model.TaskResult{
			TaskID:       msg.TaskID,
			Status:       failed,
			ErrorMessage: &errMsg,
		})
	}

	if err := r.dlq.SendToDLQ(ctx, msg, errMsg, retryCount); err != nil {
		r.logger.ErrorContext(ctx, "dead-letter publish error",
			"task_id", msg.TaskID, "error", err)
	}
}

func (r *Runner) cacheResult(ctx context.Context, task *model.Task, decision model.Decision) {
	completed := *task
	completed.Status = model.TaskStatusCompleted
	completed.IsViolation = &decision.IsViolation
	completed.Probability = &decision.Probability
	r.cache.SetJSON(ctx, core.TaskResultKey(task.ID), completed.Result())
}
