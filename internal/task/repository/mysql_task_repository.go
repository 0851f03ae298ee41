package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/tasks/internal/database"
	"github.com/allisson/tasks/internal/pagination"
	"github.com/allisson/tasks/internal/task/domain"

	apperrors "github.com/allisson/tasks/internal/errors"
)

// MySQLTaskRepository handles task persistence for MySQL. UUIDs are stored as BINARY(16).
type MySQLTaskRepository struct {
	db *sql.DB
}

// NewMySQLTaskRepository creates a new MySQLTaskRepository.
func NewMySQLTaskRepository(db *sql.DB) *MySQLTaskRepository {
	return &MySQLTaskRepository{db: db}
}

// Create inserts a new task.
func (r *MySQLTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	id, userID, err := marshalIDs(task.ID, task.UserID)
	if err != nil {
		return err
	}

	query := `INSERT INTO tasks (id, title, description, status, user_id, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		task.Title,
		task.Description,
		string(task.Status),
		userID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create task")
	}
	return nil
}

// GetByIDAndUser retrieves a task owned by userID.
func (r *MySQLTaskRepository) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, userIDBytes, err := marshalIDs(id, userID)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`

	task, err := scanMySQLTask(querier.QueryRowContext(ctx, query, idBytes, userIDBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get task")
	}
	return task, nil
}

// Update writes the mutable fields of a task owned by task.UserID.
func (r *MySQLTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	id, userID, err := marshalIDs(task.ID, task.UserID)
	if err != nil {
		return err
	}

	query := `UPDATE tasks SET title = ?, description = ?, status = ?, updated_at = ?
			  WHERE id = ? AND user_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		string(task.Status),
		task.UpdatedAt,
		id,
		userID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update task")
	}
	return requireAffected(result)
}

// Delete removes a task owned by userID.
func (r *MySQLTaskRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, userIDBytes, err := marshalIDs(id, userID)
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, idBytes, userIDBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete task")
	}
	return requireAffected(result)
}

// ListByUser returns up to q.Limit tasks owned by userID, keyed on id.
// UUIDv7 bytes sort in creation order, so BINARY(16) comparison preserves it.
func (r *MySQLTaskRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	q pagination.Query,
) ([]*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	op, order := keysetBounds(q.Direction)
	args := []any{userIDBytes}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	if q.Cursor != nil {
		cursorBytes, err := q.Cursor.UUID.MarshalBinary()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal UUID")
		}
		args = append(args, cursorBytes)
		query += " AND id " + op + " ?"
	}
	args = append(args, q.Limit)
	query += " ORDER BY id " + order + " LIMIT ?"

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tasks")
	}
	defer func() {
		_ = rows.Close()
	}()

	tasks := make([]*domain.Task, 0, q.Limit)
	for rows.Next() {
		task, err := scanMySQLTask(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan task")
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tasks")
	}
	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMySQLTask(s scanner) (*domain.Task, error) {
	var task domain.Task
	var idBytes, userIDBytes []byte

	if err := s.Scan(
		&idBytes,
		&task.Title,
		&task.Description,
		&task.Status,
		&userIDBytes,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := task.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := task.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return &task, nil
}

func marshalIDs(id, userID uuid.UUID) ([]byte, []byte, error) {
	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal UUID")
	}
	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal UUID")
	}
	return idBytes, userIDBytes, nil
}
