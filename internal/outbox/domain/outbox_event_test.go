package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxEvent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		taskID := uuid.Must(uuid.NewV7())

		event, err := NewOutboxEvent(EventTypeTaskCreated, map[string]any{"task_id": taskID})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, EventTypeTaskCreated, event.EventType)
		assert.Equal(t, OutboxEventStatusPending, event.Status)
		assert.Equal(t, 0, event.Retries)
		assert.Nil(t, event.LastError)
		assert.Nil(t, event.ProcessedAt)
		assert.False(t, event.CreatedAt.IsZero())

		var payload map[string]string
		require.NoError(t, json.Unmarshal([]byte(event.Payload), &payload))
		assert.Equal(t, taskID.String(), payload["task_id"])
	})

	t.Run("UnmarshalablePayload", func(t *testing.T) {
		_, err := NewOutboxEvent(EventTypeTaskCreated, map[string]any{"ch": make(chan int)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to marshal event payload")
	})
}
