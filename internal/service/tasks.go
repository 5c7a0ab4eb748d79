package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/admarket/moderation/internal/core"
	"github.com/admarket/moderation/internal/domain/model"
)

// TaskQueryServiceOptions groups dependencies for TaskQueryService.
type TaskQueryServiceOptions struct {
	Tasks  core.TaskRepository // Required
	Cache  *core.ResultCache   // Optional: nil disables caching
	Logger *slog.Logger        // Optional
}

// TaskQueryService serves moderation task results cache-aside: cache hit,
// else store read with a terminal-only write-back.
type TaskQueryService struct {
	tasks  core.TaskRepository
	cache  *core.ResultCache
	logger *slog.Logger
}

// NewTaskQueryService constructs a new TaskQueryService.
func NewTaskQueryService(opts TaskQueryServiceOptions) (*TaskQueryService, error) {
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
	return &TaskQueryService{
		tasks:  opts.Tasks,
		cache:  cache,
		logger: logger.With("component", "task_query_service"),
	}, nil
}

// Get returns the task result, serving from cache when possible.
//
// Only terminal results are ever written to the cache: caching a pending
// result would risk serving stale "pending" to a client polling past
// completion, since nothing invalidates the entry on the pending -> terminal
// transition.
func (s *TaskQueryService) Get(ctx context.Context, taskID int64) (*model.TaskResult, error) {
	key := core.TaskResultKey(taskID)

	var cached model.TaskResult
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	result := task.Result()
	if task.Status.Terminal() {
		s.cache.SetJSON(ctx, key, result)
	}
	return result, nil
}
