// Package memory provides an in-process repository.Store for development
// and tests. State is lost when the process exits.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository"
)

// Store keeps users and todos in maps guarded by a single mutex.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*model.User
	byEmail map[string]string
	todos   map[string]*model.Todo
	order   []string // todo ids in insertion order
}

var _ repository.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
		todos:   make(map[string]*model.Todo),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

func copyUser(u *model.User) *model.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	if c.Tokens == nil {
		c.Tokens = []model.Token{}
	}
	return &c
}

func copyTodo(t *model.Todo) *model.Todo {
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// CreateUser stores user, failing if the email is taken.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return repository.ErrEmailExists
	}
	s.users[user.ID] = copyUser(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

// GetUserByID returns a copy of the user.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetUserByEmail returns a copy of the user with that email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(s.users[id]), nil
}

// GetUserByToken returns the user if it still holds token.
func (s *Store) GetUserByToken(ctx context.Context, userID string, token model.Token) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok || !u.HasToken(token.Purpose, token.Token) {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(u), nil
}

// AddUserToken adds token unless the user already holds it.
func (s *Store) AddUserToken(ctx context.Context, userID string, token model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if !u.HasToken(token.Purpose, token.Token) {
		u.Tokens = append(u.Tokens, token)
	}
	return nil
}

// RemoveUserToken drops token from the user's list.
func (s *Store) RemoveUserToken(ctx context.Context, userID string, token model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	u.Tokens = slices.DeleteFunc(u.Tokens, func(t model.Token) bool {
		return t == token
	})
	return nil
}

// CreateTodo stores todo.
func (s *Store) CreateTodo(ctx context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.todos[todo.ID] = copyTodo(todo)
	s.order = append(s.order, todo.ID)
	return nil
}

// ListTodosByOwner returns the owner's todos in creation order.
func (s *Store) ListTodosByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := make([]*model.Todo, 0)
	for _, id := range s.order {
		if t := s.todos[id]; t != nil && t.OwnerID == ownerID {
			todos = append(todos, copyTodo(t))
		}
	}
	return todos, nil
}

// lookup must be called with mu held.
func (s *Store) lookup(id, ownerID string) (*model.Todo, error) {
	t, ok := s.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrTodoNotFound
	}
	return t, nil
}

// GetTodoForOwner returns the todo if ownerID owns it.
func (s *Store) GetTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}
	return copyTodo(t), nil
}

// UpdateTodoForOwner applies patch under the write lock.
func (s *Store) UpdateTodoForOwner(ctx context.Context, id, ownerID string, patch model.TodoPatch, nowMillis int64) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}
	patch.Apply(t, nowMillis)
	return copyTodo(t), nil
}

// DeleteTodoForOwner removes and returns the todo.
func (s *Store) DeleteTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}
	delete(s.todos, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return t, nil
}
