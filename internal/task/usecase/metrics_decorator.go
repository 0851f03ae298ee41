package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tasks/internal/metrics"
	"github.com/allisson/tasks/internal/pagination"
	"github.com/allisson/tasks/internal/task/domain"
)

const metricsDomain = "tasks"

type taskUseCaseWithMetrics struct {
	next    TaskUseCase
	metrics metrics.BusinessMetrics
}

// NewTaskUseCaseWithMetrics wraps a TaskUseCase with metrics recording.
func NewTaskUseCaseWithMetrics(useCase TaskUseCase, m metrics.BusinessMetrics) TaskUseCase {
	return &taskUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *taskUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusFor(err)
	t.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	t.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (t *taskUseCaseWithMetrics) Create(
	ctx context.Context,
	owner uuid.UUID,
	input domain.CreateTaskInput,
) (*domain.Task, error) {
	start := time.Now()
	task, err := t.next.Create(ctx, owner, input)
	t.record(ctx, "task_create", start, err)
	return task, err
}

func (t *taskUseCaseWithMetrics) Get(ctx context.Context, id, owner uuid.UUID) (*domain.Task, error) {
	start := time.Now()
	task, err := t.next.Get(ctx, id, owner)
	t.record(ctx, "task_get", start, err)
	return task, err
}

func (t *taskUseCaseWithMetrics) Update(
	ctx context.Context,
	id, owner uuid.UUID,
	input domain.UpdateTaskInput,
) (*domain.Task, error) {
	start := time.Now()
	task, err := t.next.Update(ctx, id, owner, input)
	t.record(ctx, "task_update", start, err)
	return task, err
}

func (t *taskUseCaseWithMetrics) Delete(ctx context.Context, id, owner uuid.UUID) error {
	start := time.Now()
	err := t.next.Delete(ctx, id, owner)
	t.record(ctx, "task_delete", start, err)
	return err
}

func (t *taskUseCaseWithMetrics) List(
	ctx context.Context,
	owner uuid.UUID,
	req pagination.Request,
) (*pagination.Page[*domain.Task], error) {
	start := time.Now()
	page, err := t.next.List(ctx, owner, req)
	t.record(ctx, "task_list", start, err)
	return page, err
}
