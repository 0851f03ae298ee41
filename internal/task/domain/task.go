// Package domain defines the task entity and its lifecycle rules.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tasks/internal/errors"
)

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus converts a client value into a Status. An empty value means StatusPending.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case "", StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", errors.Wrapf(ErrInvalidStatus, "%q", s)
	}
}

// Task is a unit of work owned by a single user.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Status      Status
	UserID      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCompleted reports whether the task has been marked completed.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// MarkCompleted sets the task status to completed.
func (t *Task) MarkCompleted(now time.Time) {
	t.Status = StatusCompleted
	t.UpdatedAt = now
}

// MarkPending sets the task status back to pending.
func (t *Task) MarkPending(now time.Time) {
	t.Status = StatusPending
	t.UpdatedAt = now
}

// Apply replaces the mutable fields of the task. Status changes go through
// MarkCompleted and MarkPending; an empty status keeps the current one.
func (t *Task) Apply(title string, description *string, status Status, now time.Time) {
	t.Title = title
	t.Description = description
	t.UpdatedAt = now

	switch {
	case status == StatusCompleted && !t.IsCompleted():
		t.MarkCompleted(now)
	case status == StatusPending && t.IsCompleted():
		t.MarkPending(now)
	}
}

// CreateTaskInput contains the fields accepted when creating a task.
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      string
}

// UpdateTaskInput contains the fields accepted when replacing a task.
// An empty Status keeps the current one.
type UpdateTaskInput struct {
	Title       string
	Description *string
	Status      string
}

// Domain-specific errors for task operations.
var (
	// ErrTaskNotFound indicates the task does not exist or belongs to another user.
	ErrTaskNotFound = errors.Wrap(errors.ErrNotFound, "task not found")

	// ErrOwnerRequired indicates a task operation without an owner.
	ErrOwnerRequired = errors.Wrap(errors.ErrInvalidInput, "user id is required")

	// ErrInvalidStatus indicates a status other than PENDING or COMPLETED.
	ErrInvalidStatus = errors.Wrap(errors.ErrInvalidInput, "invalid task status")
)
