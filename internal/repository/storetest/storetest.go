// Package storetest holds behaviour tests every repository.Store backend must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository"
)

// Factory returns an empty store for one test.
type Factory func(t *testing.T) repository.Store

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateUserDuplicateEmail", func(t *testing.T) { testCreateUserDuplicateEmail(t, newStore(t)) })
	t.Run("GetUser", func(t *testing.T) { testGetUser(t, newStore(t)) })
	t.Run("Tokens", func(t *testing.T) { testTokens(t, newStore(t)) })
	t.Run("ConcurrentTokenAdds", func(t *testing.T) { testConcurrentTokenAdds(t, newStore(t)) })
	t.Run("TodoOwnership", func(t *testing.T) { testTodoOwnership(t, newStore(t)) })
	t.Run("TodoUpdateTransitions", func(t *testing.T) { testTodoUpdateTransitions(t, newStore(t)) })
	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, newStore(t)) })
}

// NewUser builds a user with a unique id and email.
func NewUser(email string) *model.User {
	return &model.User{
		ID:             ulid.Make().String(),
		Email:          email,
		PasswordDigest: "$2a$10$abcdefghijklmnopqrstuuAbCdEfGhIjKlMnOpQrStUvWxYz01234",
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}
}

// NewTodo builds an incomplete todo for ownerID.
func NewTodo(ownerID, text string) *model.Todo {
	return &model.Todo{
		ID:        ulid.Make().String(),
		OwnerID:   ownerID,
		Text:      text,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func mustCreateUser(t *testing.T, s repository.Store, email string) *model.User {
	t.Helper()
	u := NewUser(email)
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func testCreateUserDuplicateEmail(t *testing.T, s repository.Store) {
	ctx := context.Background()
	mustCreateUser(t, s, "dup@example.com")

	err := s.CreateUser(ctx, NewUser("dup@example.com"))
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func testGetUser(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustCreateUser(t, s, "get@example.com")

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
	assert.Equal(t, u.PasswordDigest, byID.PasswordDigest)
	assert.Empty(t, byID.Tokens)

	byEmail, err := s.GetUserByEmail(ctx, "get@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.GetUserByID(ctx, ulid.Make().String())
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func testTokens(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustCreateUser(t, s, "tokens@example.com")
	t1 := model.Token{Purpose: model.PurposeAuth, Token: "token-one"}
	t2 := model.Token{Purpose: model.PurposeAuth, Token: "token-two"}

	require.NoError(t, s.AddUserToken(ctx, u.ID, t1))
	require.NoError(t, s.AddUserToken(ctx, u.ID, t2))
	require.NoError(t, s.AddUserToken(ctx, u.ID, t1), "re-adding a held token is a no-op")

	got, err := s.GetUserByToken(ctx, u.ID, t1)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Len(t, got.Tokens, 2)
	assert.True(t, got.HasToken(model.PurposeAuth, "token-two"))

	_, err = s.GetUserByToken(ctx, u.ID, model.Token{Purpose: "reset", Token: "token-one"})
	assert.ErrorIs(t, err, repository.ErrUserNotFound, "purpose must match")

	require.NoError(t, s.RemoveUserToken(ctx, u.ID, t1))
	require.NoError(t, s.RemoveUserToken(ctx, u.ID, t1), "removal is idempotent")

	_, err = s.GetUserByToken(ctx, u.ID, t1)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	still, err := s.GetUserByToken(ctx, u.ID, t2)
	require.NoError(t, err)
	assert.Len(t, still.Tokens, 1)

	err = s.AddUserToken(ctx, ulid.Make().String(), t1)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func testConcurrentTokenAdds(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustCreateUser(t, s, "concurrent@example.com")

	const sessions = 20
	var wg sync.WaitGroup
	errs := make(chan error, sessions)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.AddUserToken(ctx, u.ID, model.Token{Purpose: model.PurposeAuth, Token: fmt.Sprintf("session-%d", i)})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tokens, sessions, "no concurrent add may be lost")
}

func testTodoOwnership(t *testing.T, s repository.Store) {
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	todo := NewTodo(alice.ID, "alice's todo")
	require.NoError(t, s.CreateTodo(ctx, todo))
	require.NoError(t, s.CreateTodo(ctx, NewTodo(bob.ID, "bob's todo")))

	list, err := s.ListTodosByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, todo.ID, list[0].ID)

	got, err := s.GetTodoForOwner(ctx, todo.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice's todo", got.Text)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)

	_, err = s.GetTodoForOwner(ctx, todo.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrTodoNotFound)

	done := true
	_, err = s.UpdateTodoForOwner(ctx, todo.ID, bob.ID, model.TodoPatch{Completed: &done}, 1)
	assert.ErrorIs(t, err, repository.ErrTodoNotFound)

	_, err = s.DeleteTodoForOwner(ctx, todo.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrTodoNotFound)

	deleted, err := s.DeleteTodoForOwner(ctx, todo.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, todo.ID, deleted.ID)

	_, err = s.GetTodoForOwner(ctx, todo.ID, alice.ID)
	assert.ErrorIs(t, err, repository.ErrTodoNotFound)

	_, err = s.DeleteTodoForOwner(ctx, todo.ID, alice.ID)
	assert.ErrorIs(t, err, repository.ErrTodoNotFound)
}

func testTodoUpdateTransitions(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := mustCreateUser(t, s, "updates@example.com")
	todo := NewTodo(owner.ID, "buy milk")
	require.NoError(t, s.CreateTodo(ctx, todo))

	yes, no := true, false
	text := "buy oat milk"

	got, err := s.UpdateTodoForOwner(ctx, todo.ID, owner.ID, model.TodoPatch{Completed: &yes}, 1000)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, int64(1000), *got.CompletedAt)

	got, err = s.UpdateTodoForOwner(ctx, todo.ID, owner.ID, model.TodoPatch{Completed: &yes}, 2000)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, int64(1000), *got.CompletedAt, "re-completing keeps the first timestamp")

	got, err = s.UpdateTodoForOwner(ctx, todo.ID, owner.ID, model.TodoPatch{Text: &text}, 3000)
	require.NoError(t, err)
	assert.Equal(t, text, got.Text)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, int64(1000), *got.CompletedAt)

	got, err = s.UpdateTodoForOwner(ctx, todo.ID, owner.ID, model.TodoPatch{Completed: &no}, 4000)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)

	stored, err := s.GetTodoForOwner(ctx, todo.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, text, stored.Text)
	assert.False(t, stored.Completed)
	assert.Nil(t, stored.CompletedAt)
}

func testListEmpty(t *testing.T, s repository.Store) {
	owner := mustCreateUser(t, s, "empty@example.com")

	list, err := s.ListTodosByOwner(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
