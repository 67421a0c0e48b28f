package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository"
	"github.com/todoapi/todoapi/internal/repository/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return New()
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := storetest.NewUser("copy@example.com")
	require.NoError(t, s.CreateUser(ctx, u))
	u.Email = "mutated@example.com"

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "copy@example.com", got.Email)

	todo := storetest.NewTodo(u.ID, "original")
	require.NoError(t, s.CreateTodo(ctx, todo))

	fetched, err := s.GetTodoForOwner(ctx, todo.ID, u.ID)
	require.NoError(t, err)
	fetched.Text = "mutated"

	again, err := s.GetTodoForOwner(ctx, todo.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Text)
}

func TestStore_RemoveTokenUnknownUser(t *testing.T) {
	s := New()
	token := model.Token{Purpose: model.PurposeAuth, Token: "orphan"}
	assert.NoError(t, s.RemoveUserToken(context.Background(), "missing", token))
}
