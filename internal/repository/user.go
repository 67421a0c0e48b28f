package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/todoapi/todoapi/internal/model"
)

// userColumns selects a user with its token list folded into two parallel arrays.
const userColumns = `
	u.id, u.email, u.password_digest, u.created_at,
	ARRAY(SELECT t.purpose FROM user_tokens t WHERE t.user_id = u.id ORDER BY t.created_at, t.token),
	ARRAY(SELECT t.token FROM user_tokens t WHERE t.user_id = u.id ORDER BY t.created_at, t.token)
`

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, password_digest, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordDigest,
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetUserByToken retrieves a user that still holds the given token.
func (r *Repository) GetUserByToken(ctx context.Context, userID string, token model.Token) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE u.id = $1
		  AND EXISTS (
			SELECT 1 FROM user_tokens t
			WHERE t.user_id = u.id AND t.purpose = $2 AND t.token = $3
		  )
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID, token.Purpose, token.Token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by token: %w", err)
	}

	return user, nil
}

// AddUserToken appends a token to the user's list. Adding a token the user
// already holds is a no-op.
func (r *Repository) AddUserToken(ctx context.Context, userID string, token model.Token) error {
	query := `
		INSERT INTO user_tokens (user_id, purpose, token)
		SELECT id, $2, $3 FROM users WHERE id = $1
		ON CONFLICT (user_id, purpose, token) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, userID, token.Purpose, token.Token)
	if err != nil {
		return fmt.Errorf("failed to add user token: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either a duplicate (fine) or an unknown user.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if !exists {
			return ErrUserNotFound
		}
	}

	return nil
}

// RemoveUserToken deletes one token from the user's list.
func (r *Repository) RemoveUserToken(ctx context.Context, userID string, token model.Token) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1 AND purpose = $2 AND token = $3
	`

	if _, err := r.pool.Exec(ctx, query, userID, token.Purpose, token.Token); err != nil {
		return fmt.Errorf("failed to remove user token: %w", err)
	}

	return nil
}

// scanUser scans a single row selected with userColumns.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	var purposes, tokens []string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordDigest,
		&user.CreatedAt,
		&purposes,
		&tokens,
	)
	if err != nil {
		return nil, err
	}

	if len(purposes) != len(tokens) {
		return nil, fmt.Errorf("token arrays out of step: %d purposes, %d tokens", len(purposes), len(tokens))
	}

	user.Tokens = make([]model.Token, len(tokens))
	for i := range tokens {
		user.Tokens[i] = model.Token{Purpose: purposes[i], Token: tokens[i]}
	}

	return &user, nil
}
