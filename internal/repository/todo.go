package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/todoapi/todoapi/internal/model"
)

const todoColumns = `id, owner_id, text, completed, completed_at, created_at`

// CreateTodo inserts a new todo into the database.
func (r *Repository) CreateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		INSERT INTO todos (id, owner_id, text, completed, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		todo.ID,
		todo.OwnerID,
		todo.Text,
		todo.Completed,
		todo.CompletedAt,
		todo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// ListTodosByOwner returns every todo of ownerID in creation order.
func (r *Repository) ListTodosByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE owner_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// GetTodoForOwner retrieves a todo by id, scoped to its owner.
func (r *Repository) GetTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE id = $1 AND owner_id = $2
	`

	todo, err := scanTodo(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todo, nil
}

// UpdateTodoForOwner applies patch in a single statement. SET expressions
// see the old row, so "completed" on the right-hand side is the previous value.
func (r *Repository) UpdateTodoForOwner(ctx context.Context, id, ownerID string, patch model.TodoPatch, nowMillis int64) (*model.Todo, error) {
	query := `
		UPDATE todos SET
			text = COALESCE($3::text, text),
			completed = COALESCE($4::boolean, completed),
			completed_at = CASE
				WHEN $4::boolean IS NULL THEN completed_at
				WHEN NOT $4::boolean THEN NULL
				WHEN completed AND completed_at IS NOT NULL THEN completed_at
				ELSE $5::bigint
			END
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + todoColumns

	todo, err := scanTodo(r.pool.QueryRow(ctx, query, id, ownerID, patch.Text, patch.Completed, nowMillis))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return todo, nil
}

// DeleteTodoForOwner removes a todo and returns the removed record.
func (r *Repository) DeleteTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	query := `
		DELETE FROM todos
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + todoColumns

	todo, err := scanTodo(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to delete todo: %w", err)
	}

	return todo, nil
}

// scanTodo scans a row selected with todoColumns.
func scanTodo(row pgx.Row) (*model.Todo, error) {
	var todo model.Todo

	err := row.Scan(
		&todo.ID,
		&todo.OwnerID,
		&todo.Text,
		&todo.Completed,
		&todo.CompletedAt,
		&todo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &todo, nil
}
