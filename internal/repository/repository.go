// Package repository provides the document store used by the services:
// the Store interfaces, their shared errors and the PostgreSQL backend.
package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/todoapi/todoapi/internal/model"
)

// Common errors returned by every backend.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrTodoNotFound = errors.New("todo not found")
)

// UserStore persists users and their session tokens.
// Token mutations must be atomic per entry so concurrent sessions for the
// same user never overwrite each other.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUserByToken returns the user only if it still holds the token.
	GetUserByToken(ctx context.Context, userID string, token model.Token) (*model.User, error)
	AddUserToken(ctx context.Context, userID string, token model.Token) error
	// RemoveUserToken is idempotent.
	RemoveUserToken(ctx context.Context, userID string, token model.Token) error
}

// TodoStore persists todos. Every lookup is filtered by owner; a todo owned
// by someone else is reported as ErrTodoNotFound.
type TodoStore interface {
	CreateTodo(ctx context.Context, todo *model.Todo) error
	ListTodosByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error)
	GetTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error)
	// UpdateTodoForOwner applies patch atomically, see model.TodoPatch.Apply.
	UpdateTodoForOwner(ctx context.Context, id, ownerID string, patch model.TodoPatch, nowMillis int64) (*model.Todo, error)
	DeleteTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error)
}

// Store is a full backend with lifecycle.
type Store interface {
	UserStore
	TodoStore
	Ping(ctx context.Context) error
	Close()
}

//go:embed schema.sql
var schemaSQL string

// Repository is the PostgreSQL-backed Store.
type Repository struct {
	pool *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

// New creates a new Repository with a connection pool and ensures the schema exists.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &Repository{pool: pool}
	if err := r.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

// EnsureSchema creates missing tables and indexes. It is safe to run on
// every start.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	// PostgreSQL error code 23505 is unique_violation
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
