// Package data provides Postgres and Redis backed repositories for the
// moderation service. Repositories use database/sql over the pgx stdlib
// driver.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/admarket/moderation/internal/domain/model"
)

const taskColumns = `
  id,
  listing_id,
  status,
  is_violation,
  probability,
  error_message,
  created_at,
  processed_at
`

// TaskRepo provides database operations for moderation tasks.
type TaskRepo struct {
	DB *sql.DB
}

// NewTaskRepo creates a new TaskRepo with the given database handle.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{DB: db}
}

// Create inserts a new pending task for the listing. The repo does not
// validate listing existence itself; a dangling reference surfaces through the
// foreign key as ErrListingNotFound.
func (r *TaskRepo) Create(ctx context.Context, listingID int64) (*model.Task, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO moderation_tasks (listing_id, status)
		VALUES ($1, 'pending')
		RETURNING `+taskColumns,
		listingID,
	)
	task, err := scanTask(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// GetByID returns the task or ErrTaskNotFound.
func (r *TaskRepo) GetByID(ctx context.Context, taskID int64) (*model.Task, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM moderation_tasks
		WHERE id = $1`,
		taskID,
	)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ResolvePending returns the task only while it is still pending, tagging the
// two miss cases so the worker can tell a stale message from an unknown one.
func (r *TaskRepo) ResolvePending(ctx context.Context, taskID int64) (*model.Task, error) {
	task, err := r.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != model.TaskStatusPending {
		return nil, ErrTaskNotPending
	}
	return task, nil
}

// Complete transitions the task to completed with the scoring decision.
// Intentionally not guarded against double writes: single-writer semantics per
// task are owned by the worker.
func (r *TaskRepo) Complete(ctx context.Context, taskID int64, decision model.Decision) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE moderation_tasks
		SET status = 'completed',
		    is_violation = $1,
		    probability = $2,
		    error_message = NULL,
		    processed_at = now()
		WHERE id = $3`,
		decision.IsViolation, decision.Probability, taskID,
	)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return requireRow(res, ErrTaskNotFound)
}

// Fail transitions the task to failed with an error message.
func (r *TaskRepo) Fail(ctx context.Context, taskID int64, errMsg string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE moderation_tasks
		SET status = 'failed',
		    error_message = $1,
		    processed_at = now()
		WHERE id = $2`,
		errMsg, taskID,
	)
	if err != nil {
		return fmt.Errorf("fail task: %w", err)
	}
	return requireRow(res, ErrTaskNotFound)
}

// TaskIDsByListing returns the ids of every task for the listing, oldest
// first.
func (r *TaskRepo) TaskIDsByListing(ctx context.Context, listingID int64) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id FROM moderation_tasks
		WHERE listing_id = $1
		ORDER BY created_at ASC, id ASC`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task ids: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// DeleteByListing removes all tasks for the listing and returns the deleted
// ids so callers can evict the matching cache entries.
func (r *TaskRepo) DeleteByListing(ctx context.Context, listingID int64) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `
		DELETE FROM moderation_tasks
		WHERE listing_id = $1
		RETURNING id`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("delete tasks by listing: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

func collectIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task ids: %w", err)
	}
	return ids, nil
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan helper.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		t            model.Task
		isViolation  sql.NullBool
		probability  sql.NullFloat64
		errorMessage sql.NullString
		processedAt  sql.NullTime
	)
	if err := row.Scan(
		&t.ID,
		&t.ListingID,
		&t.Status,
		&isViolation,
		&probability,
		&errorMessage,
		&t.CreatedAt,
		&processedAt,
	); err != nil {
		return nil, err
	}
	if isViolation.Valid {
		t.IsViolation = &isViolation.Bool
	}
	if probability.Valid {
		t.Probability = &probability.Float64
	}
	if errorMessage.Valid {
		t.ErrorMessage = &errorMessage.String
	}
	if processedAt.Valid {
		t.ProcessedAt = &processedAt.Time
	}
	return &t, nil
}
