// Package usecase implements the outbox processor that delivers events written
// alongside user and task changes.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/tasks/internal/database"
	"github.com/allisson/tasks/internal/metrics"
	"github.com/allisson/tasks/internal/outbox/domain"
)

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines the operations the processor needs.
type OutboxEventRepository interface {
	ClaimPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor delivers a single event.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase polls the outbox table and hands claimed events to an EventProcessor.
type OutboxUseCase struct {
	config          Config
	txManager       database.TxManager
	outboxRepo      OutboxEventRepository
	eventProcessor  EventProcessor
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *OutboxUseCase {
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OutboxUseCase{
		config:          config,
		txManager:       txManager,
		outboxRepo:      outboxRepo,
		eventProcessor:  eventProcessor,
		businessMetrics: businessMetrics,
		logger:          logger,
	}
}

// Start runs ProcessEvents every Interval until ctx is canceled.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox event processor",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
		slog.Int("max_retries", uc.config.MaxRetries),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox event processor")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("failed to process events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents claims one batch of pending events and records the outcome of
// each delivery in the same transaction.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.ClaimPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		uc.logger.Debug("processing events", slog.Int("count", len(events)))

		for _, event := range events {
			if err := uc.deliver(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

func (uc *OutboxUseCase) deliver(ctx context.Context, event *domain.OutboxEvent) error {
	start := time.Now()
	now := start.UTC()
	status := metrics.StatusSuccess

	if err := uc.eventProcessor.Process(ctx, event); err != nil {
		status = metrics.StatusError
		errorMsg := err.Error()
		event.Retries++
		event.LastError = &errorMsg

		if event.Retries >= uc.config.MaxRetries {
			event.Status = domain.OutboxEventStatusFailed
		}

		uc.logger.Error("failed to process event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
			slog.Int("retries", event.Retries),
			slog.Any("error", err),
		)
	} else {
		event.Status = domain.OutboxEventStatusProcessed
		event.ProcessedAt = &now
	}

	event.UpdatedAt = now

	uc.businessMetrics.RecordOperation(ctx, "outbox", event.EventType, status)
	uc.businessMetrics.RecordDuration(ctx, "outbox", event.EventType, time.Since(start), status)

	return uc.outboxRepo.Update(ctx, event)
}
