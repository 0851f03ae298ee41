// Package repository provides task persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/allisson/tasks/internal/database"
	"github.com/allisson/tasks/internal/pagination"
	"github.com/allisson/tasks/internal/task/domain"

	apperrors "github.com/allisson/tasks/internal/errors"
)

const taskColumns = "id, title, description, status, user_id, created_at, updated_at"

// PostgreSQLTaskRepository handles task persistence for PostgreSQL.
type PostgreSQLTaskRepository struct {
	db *sql.DB
}

// NewPostgreSQLTaskRepository creates a new PostgreSQLTaskRepository.
func NewPostgreSQLTaskRepository(db *sql.DB) *PostgreSQLTaskRepository {
	return &PostgreSQLTaskRepository{db: db}
}

// Create inserts a new task.
func (r *PostgreSQLTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tasks (id, title, description, status, user_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create task")
	}
	return nil
}

// GetByIDAndUser retrieves a task owned by userID.
func (r *PostgreSQLTaskRepository) GetByIDAndUser(
	ctx context.Context,
	id, userID uuid.UUID,
) (*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	var task domain.Task
	err := querier.QueryRowContext(ctx, query, id, userID).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get task")
	}
	return &task, nil
}

// Update writes the mutable fields of a task owned by task.UserID.
func (r *PostgreSQLTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE tasks SET title = $1, description = $2, status = $3, updated_at = $4
			  WHERE id = $5 AND user_id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		string(task.Status),
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update task")
	}
	return requireAffected(result)
}

// Delete removes a task owned by userID.
func (r *PostgreSQLTaskRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete task")
	}
	return requireAffected(result)
}

// ListByUser returns up to q.Limit tasks owned by userID, keyed on id.
func (r *PostgreSQLTaskRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	q pagination.Query,
) ([]*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	op, order := keysetBounds(q.Direction)
	args := []any{userID}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	if q.Cursor != nil {
		args = append(args, q.Cursor.UUID)
		query += fmt.Sprintf(" AND id %s $%d", op, len(args))
	}
	args = append(args, q.Limit)
	query += fmt.Sprintf(" ORDER BY id %s LIMIT $%d", order, len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tasks")
	}
	defer func() {
		_ = rows.Close()
	}()

	tasks := make([]*domain.Task, 0, q.Limit)
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.UserID,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan task")
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tasks")
	}
	return tasks, nil
}

// keysetBounds returns the comparison operator and sort order for a direction.
func keysetBounds(direction pagination.Direction) (string, string) {
	if direction == pagination.Backward {
		return "<", "DESC"
	}
	return ">", "ASC"
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
