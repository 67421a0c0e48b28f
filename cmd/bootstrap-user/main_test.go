package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/repository/memory"
	"github.com/todoapi/todoapi/internal/service"
)

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()
	directory := service.NewUserDirectory(service.UserDirectoryConfig{
		Users:  memory.New(),
		Hashes: auth.NewHashPool(auth.NewBcryptHasher(bcrypt.MinCost), 1),
		Tokens: auth.NewTokenCodec([]byte("bootstrap-test-secret"), 0),
	})

	created, err := ensureUser(ctx, directory, "ops@example.com", "pass123")
	require.NoError(t, err)

	again, err := ensureUser(ctx, directory, "ops@example.com", "pass123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	_, err = ensureUser(ctx, directory, "ops@example.com", "different")
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)

	_, err = ensureUser(ctx, directory, "not-an-email", "pass123")
	assert.ErrorIs(t, err, service.ErrValidation)
}
