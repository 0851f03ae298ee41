// Package mocks provides testify mocks for the task HTTP layer.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/tasks/internal/pagination"
	"github.com/allisson/tasks/internal/task/domain"
)

// MockTaskUseCase is a mock implementation of usecase.TaskUseCase.
type MockTaskUseCase struct {
	mock.Mock
}

func (m *MockTaskUseCase) Create(
	ctx context.Context,
	owner uuid.UUID,
	input domain.CreateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, owner, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskUseCase) Get(ctx context.Context, id, owner uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskUseCase) Update(
	ctx context.Context,
	id, owner uuid.UUID,
	input domain.UpdateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, id, owner, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskUseCase) Delete(ctx context.Context, id, owner uuid.UUID) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}

func (m *MockTaskUseCase) List(
	ctx context.Context,
	owner uuid.UUID,
	req pagination.Request,
) (*pagination.Page[*domain.Task], error) {
	args := m.Called(ctx, owner, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.Page[*domain.Task]), args.Error(1)
}
