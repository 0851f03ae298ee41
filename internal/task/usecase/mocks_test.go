package usecase

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	outboxDomain "github.com/allisson/tasks/internal/outbox/domain"
	"github.com/allisson/tasks/internal/pagination"
	"github.com/allisson/tasks/internal/task/domain"
)

type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockTaskRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	q pagination.Query,
) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockBusinessMetrics struct {
	mock.Mock
}

func (m *MockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *MockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

// memoryTaskRepository is an in-memory keyset store ordered by task id.
type memoryTaskRepository struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]domain.Task
}

func newMemoryTaskRepository() *memoryTaskRepository {
	return &memoryTaskRepository{tasks: make(map[uuid.UUID]domain.Task)}
}

func (r *memoryTaskRepository) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = *task
	return nil
}

func (r *memoryTaskRepository) GetByIDAndUser(_ context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *memoryTaskRepository) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.tasks[task.ID]
	if !ok || current.UserID != task.UserID {
		return domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *memoryTaskRepository) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.tasks[id]
	if !ok || current.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *memoryTaskRepository) ListByUser(
	_ context.Context,
	userID uuid.UUID,
	q pagination.Query,
) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if task.UserID == userID {
			owned = append(owned, task)
		}
	}
	slices.SortFunc(owned, func(a, b domain.Task) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	if q.Direction == pagination.Backward {
		slices.Reverse(owned)
	}

	out := make([]*domain.Task, 0, q.Limit)
	for i := range owned {
		task := owned[i]
		if q.Cursor != nil {
			cmp := bytes.Compare(task.ID[:], q.Cursor.UUID[:])
			if q.Direction == pagination.Backward && cmp >= 0 {
				continue
			}
			if q.Direction != pagination.Backward && cmp <= 0 {
				continue
			}
		}
		out = append(out, &task)
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

type memoryOutbox struct {
	mu     sync.Mutex
	events []*outboxDomain.OutboxEvent
}

func (o *memoryOutbox) Create(_ context.Context, event *outboxDomain.OutboxEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return nil
}

func (o *memoryOutbox) types() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.events))
	for _, event := range o.events {
		out = append(out, event.EventType)
	}
	return out
}

// passthroughTxManager runs fn directly.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
