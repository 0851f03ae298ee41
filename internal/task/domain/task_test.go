package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tasks/internal/errors"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{name: "empty defaults to pending", input: "", want: StatusPending},
		{name: "pending", input: "PENDING", want: StatusPending},
		{name: "completed", input: "COMPLETED", want: StatusCompleted},
		{name: "lower case", input: "completed", want: StatusCompleted},
		{name: "surrounding spaces", input: " pending ", want: StatusPending},
		{name: "unknown", input: "DONE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidStatus)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTask_StatusTransitions(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	task := &Task{Title: "write report", Status: StatusPending, CreatedAt: created, UpdatedAt: created}

	completedAt := created.Add(time.Hour)
	task.MarkCompleted(completedAt)
	assert.True(t, task.IsCompleted())
	assert.Equal(t, completedAt, task.UpdatedAt)

	reopenedAt := completedAt.Add(time.Hour)
	task.MarkPending(reopenedAt)
	assert.False(t, task.IsCompleted())
	assert.Equal(t, reopenedAt, task.UpdatedAt)
	assert.Equal(t, created, task.CreatedAt)
}

func TestTask_Apply(t *testing.T) {
	now := time.Now().UTC()
	desc := "quarterly numbers"
	task := &Task{Title: "old", Status: StatusPending}

	task.Apply("new", &desc, StatusCompleted, now)

	assert.Equal(t, "new", task.Title)
	require.NotNil(t, task.Description)
	assert.Equal(t, desc, *task.Description)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, now, task.UpdatedAt)
}

func TestTask_ApplyStatus(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		input   Status
		want    Status
	}{
		{name: "complete pending task", current: StatusPending, input: StatusCompleted, want: StatusCompleted},
		{name: "reopen completed task", current: StatusCompleted, input: StatusPending, want: StatusPending},
		{name: "complete completed task", current: StatusCompleted, input: StatusCompleted, want: StatusCompleted},
		{name: "empty keeps pending", current: StatusPending, input: "", want: StatusPending},
		{name: "empty keeps completed", current: StatusCompleted, input: "", want: StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Now().UTC()
			task := &Task{Title: "report", Status: tt.current}

			task.Apply("report", nil, tt.input, now)

			assert.Equal(t, tt.want, task.Status)
			assert.Equal(t, tt.want == StatusCompleted, task.IsCompleted())
			assert.Equal(t, now, task.UpdatedAt)
		})
	}
}

func TestErrors(t *testing.T) {
	assert.ErrorIs(t, ErrTaskNotFound, apperrors.ErrNotFound)
	assert.ErrorIs(t, ErrOwnerRequired, apperrors.ErrInvalidInput)
}
