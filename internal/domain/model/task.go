// Package model defines the core data types for the listing moderation system.
package model

import (
	"errors"
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a moderation task.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type TaskStatus string

const (
	// TaskStatusPending indicates a task is waiting for a worker.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusCompleted indicates moderation finished with a decision.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates moderation failed permanently.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the TaskStatus is valid.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted || s == TaskStatusFailed
}

// Terminal returns true once the status can no longer change.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// UnmarshalText implements encoding.TextUnmarshaler so statuses can be parsed
// from env/config values.
func (s *TaskStatus) UnmarshalText(text []byte) error {
	v := TaskStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return errors.New("invalid task status: " + string(text))
	}
	*s = v
	return nil
}

// Decision is the outcome of scoring a listing.
type Decision struct {
	IsViolation bool    `json:"is_violation"`
	Probability float64 `json:"probability"`
}

// Task is a unit of asynchronous moderation work tied to one listing.
// Status transitions are one-way: pending -> completed or pending -> failed.
// Only the worker performs the pending -> terminal transition.
type Task struct {
	ID           int64      `json:"task_id"                 db:"id"`
	ListingID    int64      `json:"item_id"                 db:"listing_id"`
	Status       TaskStatus `json:"status"                  db:"status"`
	IsViolation  *bool      `json:"is_violation"            db:"is_violation"`
	Probability  *float64   `json:"probability"             db:"probability"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at"              db:"created_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"  db:"processed_at"`
}

// TaskResult is the read-side projection served to clients and cached once the
// task reaches a terminal state.
type TaskResult struct {
	TaskID       int64      `json:"task_id"`
	Status       TaskStatus `json:"status"`
	IsViolation  *bool      `json:"is_violation"`
	Probability  *float64   `json:"probability"`
	ErrorMessage *string    `json:"error_message"`
}

// Result projects the task into its client-facing shape.
func (t *Task) Result() *TaskResult {
	return &TaskResult{
		TaskID:       t.ID,
		Status:       t.Status,
		IsViolation:  t.IsViolation,
		Probability:  t.Probability,
		ErrorMessage: t.ErrorMessage,
	}
}

// WorkMessage is the payload published to the moderation work topic, once per
// task creation. It is a transient fact on the transport: redelivery and
// duplicates must be tolerated by consumers.
type WorkMessage struct {
	ItemID    int64     `json:"item_id"`
	TaskID    int64     `json:"task_id"`
	Timestamp time.Time `json:"timestamp"`
}

// DeadLetterMessage is published to the DLQ topic when a task exhausts its
// retries or hits a permanent failure such as a missing listing.
type DeadLetterMessage struct {
	OriginalMessage WorkMessage `json:"original_message"`
	Error           string      `json:"error"`
	Timestamp       time.Time   `json:"timestamp"`
	RetryCount      int         `json:"retry_count"`
}
