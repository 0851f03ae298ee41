// Package usecase implements owner-scoped task management.
package usecase

import (
	"context"

	"github.com/google/uuid"

	outboxDomain "github.com/allisson/tasks/internal/outbox/domain"
	"github.com/allisson/tasks/internal/pagination"
	"github.com/allisson/tasks/internal/task/domain"
)

// TaskRepository persists tasks. Every lookup is scoped to an owner.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, q pagination.Query) ([]*domain.Task, error)
}

// OutboxEventRepository records events in the caller's transaction.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// TaskUseCase defines the task operations available to a signed-in user.
type TaskUseCase interface {
	Create(ctx context.Context, owner uuid.UUID, input domain.CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, id, owner uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, id, owner uuid.UUID, input domain.UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, id, owner uuid.UUID) error
	List(ctx context.Context, owner uuid.UUID, req pagination.Request) (*pagination.Page[*domain.Task], error)
}
