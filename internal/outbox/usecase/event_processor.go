package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/allisson/tasks/internal/outbox/domain"

	apperrors "github.com/allisson/tasks/internal/errors"
)

// LoggingEventProcessor publishes events to the structured log. It is the
// default sink until a message broker is configured.
type LoggingEventProcessor struct {
	logger *slog.Logger
}

// NewLoggingEventProcessor creates a new LoggingEventProcessor
func NewLoggingEventProcessor(logger *slog.Logger) *LoggingEventProcessor {
	return &LoggingEventProcessor{
		logger: logger,
	}
}

// Process decodes the payload and logs it under the event type.
func (p *LoggingEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	var payload map[string]any
	if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
		return apperrors.Wrap(err, "failed to decode event payload")
	}

	switch event.EventType {
	case domain.EventTypeUserCreated,
		domain.EventTypeTaskCreated,
		domain.EventTypeTaskUpdated,
		domain.EventTypeTaskDeleted:
		p.logger.InfoContext(ctx, "event published",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
			slog.Any("payload", payload),
		)
	default:
		p.logger.WarnContext(ctx, "unknown event type",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
		)
	}

	return nil
}
