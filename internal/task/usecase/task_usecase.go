package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/tasks/internal/database"
	apperrors "github.com/allisson/tasks/internal/errors"
	outboxDomain "github.com/allisson/tasks/internal/outbox/domain"
	"github.com/allisson/tasks/internal/pagination"
	"github.com/allisson/tasks/internal/task/domain"
	appValidation "github.com/allisson/tasks/internal/validation"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

type taskUseCase struct {
	txManager  database.TxManager
	taskRepo   TaskRepository
	outboxRepo OutboxEventRepository
	now        func() time.Time
}

// NewTaskUseCase creates a TaskUseCase backed by taskRepo.
func NewTaskUseCase(
	txManager database.TxManager,
	taskRepo TaskRepository,
	outboxRepo OutboxEventRepository,
) TaskUseCase {
	return &taskUseCase{
		txManager:  txManager,
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type taskFields struct {
	Title       string
	Description string
}

func validateFields(title string, description *string) error {
	fields := taskFields{Title: title}
	if description != nil {
		fields.Description = *description
	}

	err := validation.ValidateStruct(&fields,
		validation.Field(&fields.Title,
			validation.Required.Error("title is required"),
			appValidation.NotBlank,
			validation.RuneLength(1, maxTitleLength).Error("title must be between 1 and 200 characters"),
		),
		validation.Field(&fields.Description,
			validation.RuneLength(0, maxDescriptionLength).Error("description must be at most 1000 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// normalizeDescription trims the description and drops it when nothing is left.
func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (uc *taskUseCase) Create(
	ctx context.Context,
	owner uuid.UUID,
	input domain.CreateTaskInput,
) (*domain.Task, error) {
	if owner == uuid.Nil {
		return nil, domain.ErrOwnerRequired
	}

	title := strings.TrimSpace(input.Title)
	description := normalizeDescription(input.Description)
	if err := validateFields(title, description); err != nil {
		return nil, err
	}

	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	task := &domain.Task{
		ID:          uuid.Must(uuid.NewV7()),
		Title:       title,
		Description: description,
		Status:      status,
		UserID:      owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.taskRepo.Create(ctx, task); err != nil {
			return err
		}
		return uc.recordEvent(ctx, outboxDomain.EventTypeTaskCreated, task)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

func (uc *taskUseCase) Get(ctx context.Context, id, owner uuid.UUID) (*domain.Task, error) {
	if owner == uuid.Nil {
		return nil, domain.ErrOwnerRequired
	}
	return uc.taskRepo.GetByIDAndUser(ctx, id, owner)
}

// Update replaces title, description and status of an owned task. An empty
// status keeps the current value.
func (uc *taskUseCase) Update(
	ctx context.Context,
	id, owner uuid.UUID,
	input domain.UpdateTaskInput,
) (*domain.Task, error) {
	if owner == uuid.Nil {
		return nil, domain.ErrOwnerRequired
	}

	title := strings.TrimSpace(input.Title)
	description := normalizeDescription(input.Description)
	if err := validateFields(title, description); err != nil {
		return nil, err
	}

	var status domain.Status
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := domain.ParseStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	var task *domain.Task
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := uc.taskRepo.GetByIDAndUser(ctx, id, owner)
		if err != nil {
			return err
		}

		current.Apply(title, description, status, uc.now())

		if err := uc.taskRepo.Update(ctx, current); err != nil {
			return err
		}
		if err := uc.recordEvent(ctx, outboxDomain.EventTypeTaskUpdated, current); err != nil {
			return err
		}

		task = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

func (uc *taskUseCase) Delete(ctx context.Context, id, owner uuid.UUID) error {
	if owner == uuid.Nil {
		return domain.ErrOwnerRequired
	}

	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		task, err := uc.taskRepo.GetByIDAndUser(ctx, id, owner)
		if err != nil {
			return err
		}
		if err := uc.taskRepo.Delete(ctx, task.ID, owner); err != nil {
			return err
		}
		return uc.recordEvent(ctx, outboxDomain.EventTypeTaskDeleted, task)
	})
}

// List returns one page of the owner's tasks ordered by id. Cursors that do
// not carry a task id are ignored like malformed ones.
func (uc *taskUseCase) List(
	ctx context.Context,
	owner uuid.UUID,
	req pagination.Request,
) (*pagination.Page[*domain.Task], error) {
	if owner == uuid.Nil {
		return nil, domain.ErrOwnerRequired
	}

	if req.Cursor != "" {
		if v, err := pagination.Decode(req.Cursor); err == nil && v.Kind != pagination.KindUUID {
			req.Cursor = ""
		}
	}

	fetch := func(ctx context.Context, q pagination.Query) ([]*domain.Task, error) {
		return uc.taskRepo.ListByUser(ctx, owner, q)
	}
	return pagination.Paginate(ctx, req, taskKey, fetch)
}

var taskKey pagination.KeyFunc[*domain.Task] = func(task *domain.Task) pagination.Value {
	return pagination.UUIDValue(task.ID)
}

func (uc *taskUseCase) recordEvent(ctx context.Context, eventType string, task *domain.Task) error {
	payload := map[string]any{
		"task_id": task.ID,
		"user_id": task.UserID,
	}
	if eventType != outboxDomain.EventTypeTaskDeleted {
		payload["title"] = task.Title
		payload["status"] = task.Status
	}

	event, err := outboxDomain.NewOutboxEvent(eventType, payload)
	if err != nil {
		return err
	}
	if err := uc.outboxRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}
