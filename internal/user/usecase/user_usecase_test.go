package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tasks/internal/errors"
	outboxDomain "github.com/allisson/tasks/internal/outbox/domain"
	"github.com/allisson/tasks/internal/user/domain"
)

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository
type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type userUseCaseMocks struct {
	txManager  *MockTxManager
	userRepo   *MockUserRepository
	outboxRepo *MockOutboxEventRepository
}

func setupUserUseCase(t *testing.T, strongPasswords bool) (*UserUseCase, userUseCaseMocks) {
	t.Helper()

	mocks := userUseCaseMocks{
		txManager:  &MockTxManager{},
		userRepo:   &MockUserRepository{},
		outboxRepo: &MockOutboxEventRepository{},
	}

	uc, err := NewUserUseCase(mocks.txManager, mocks.userRepo, mocks.outboxRepo, strongPasswords)
	require.NoError(t, err)

	return uc, mocks
}

func TestUserUseCase_RegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		uc, m := setupUserUseCase(t, false)
		input := RegisterUserInput{Name: "  John Doe ", Email: " John@Example.COM", Password: "secret"}

		var capturedEvent *outboxDomain.OutboxEvent
		m.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		m.userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)
		m.outboxRepo.On("Create", ctx, mock.AnythingOfType("*domain.OutboxEvent")).
			Run(func(args mock.Arguments) {
				capturedEvent = args.Get(1).(*outboxDomain.OutboxEvent)
			}).
			Return(nil)

		user, err := uc.RegisterUser(ctx, input)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "John Doe", user.Name)
		assert.Equal(t, "john@example.com", user.Email)
		assert.True(t, strings.HasPrefix(user.Password, "$argon2id$"))
		assert.False(t, user.CreatedAt.IsZero())

		require.NotNil(t, capturedEvent)
		assert.Equal(t, outboxDomain.EventTypeUserCreated, capturedEvent.EventType)
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(capturedEvent.Payload), &payload))
		assert.Equal(t, "john@example.com", payload["email"])
		assert.NotContains(t, capturedEvent.Payload, "password")

		m.txManager.AssertExpectations(t)
		m.userRepo.AssertExpectations(t)
		m.outboxRepo.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		uc, m := setupUserUseCase(t, false)

		m.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		m.userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(domain.ErrUserAlreadyExists)

		user, err := uc.RegisterUser(ctx, RegisterUserInput{Name: "John", Email: "john@example.com", Password: "x"})

		assert.Nil(t, user)
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		m.outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("OutboxError", func(t *testing.T) {
		uc, m := setupUserUseCase(t, false)

		m.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		m.userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)
		m.outboxRepo.On("Create", ctx, mock.AnythingOfType("*domain.OutboxEvent")).Return(errors.New("boom"))

		user, err := uc.RegisterUser(ctx, RegisterUserInput{Name: "John", Email: "john@example.com", Password: "x"})

		assert.Nil(t, user)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create outbox event")
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		tests := []struct {
			name  string
			input RegisterUserInput
		}{
			{name: "missing name", input: RegisterUserInput{Email: "a@example.com", Password: "x"}},
			{name: "blank name", input: RegisterUserInput{Name: "   ", Email: "a@example.com", Password: "x"}},
			{
				name:  "name too long",
				input: RegisterUserInput{Name: strings.Repeat("a", 101), Email: "a@example.com", Password: "x"},
			},
			{name: "invalid email", input: RegisterUserInput{Name: "A", Email: "not-an-email", Password: "x"}},
			{name: "missing password", input: RegisterUserInput{Name: "A", Email: "a@example.com"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				uc, m := setupUserUseCase(t, false)

				_, err := uc.RegisterUser(ctx, tt.input)

				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				m.txManager.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("StrongPasswordPolicy", func(t *testing.T) {
		uc, _ := setupUserUseCase(t, true)

		_, err := uc.RegisterUser(ctx, RegisterUserInput{Name: "A", Email: "a@example.com", Password: "weakpass"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "uppercase")
	})
}

func TestUserUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()

	uc, _ := setupUserUseCase(t, false)
	hash, err := uc.passwordHasher.Hash([]byte("correct horse"))
	require.NoError(t, err)
	stored := &domain.User{ID: uuid.Must(uuid.NewV7()), Email: "john@example.com", Password: hash}

	t.Run("Success", func(t *testing.T) {
		uc, m := setupUserUseCase(t, false)
		m.userRepo.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)

		user, err := uc.Authenticate(ctx, " JOHN@example.com ", "correct horse")

		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		uc, m := setupUserUseCase(t, false)
		m.userRepo.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)

		user, err := uc.Authenticate(ctx, "john@example.com", "wrong")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		uc, m := setupUserUseCase(t, false)
		m.userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrUserNotFound)

		_, err := uc.Authenticate(ctx, "ghost@example.com", "whatever")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		uc, m := setupUserUseCase(t, false)
		dbErr := errors.New("connection refused")
		m.userRepo.On("GetByEmail", ctx, "john@example.com").Return(nil, dbErr)

		_, err := uc.Authenticate(ctx, "john@example.com", "whatever")

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestUserUseCase_GetUserByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		uc, m := setupUserUseCase(t, false)
		expected := &domain.User{ID: id, Name: "John Doe", Email: "john@example.com"}
		m.userRepo.On("GetByID", ctx, id).Return(expected, nil)

		user, err := uc.GetUserByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, expected, user)
	})

	t.Run("NotFound", func(t *testing.T) {
		uc, m := setupUserUseCase(t, false)
		m.userRepo.On("GetByID", ctx, id).Return(nil, domain.ErrUserNotFound)

		user, err := uc.GetUserByID(ctx, id)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
