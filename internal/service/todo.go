package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository"
)

// TodoService handles todo business logic. Every operation is scoped to
// the owner passed in; another owner's todo is reported as not found.
type TodoService struct {
	todos   repository.TodoStore
	metrics metrics.Recorder
	now     func() int64
}

// NewTodoService creates a new TodoService.
func NewTodoService(todos repository.TodoStore, recorder metrics.Recorder) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TodoService{
		todos:   todos,
		metrics: recorder,
		now:     model.NowMillis,
	}
}

// Create stores a new incomplete todo for ownerID.
func (s *TodoService) Create(ctx context.Context, ownerID, text string) (*model.Todo, error) {
	text = strings.TrimSpace(text)
	if err := validate.Struct(todoText{Text: text}); err != nil {
		return nil, validationError(err)
	}

	todo := &model.Todo{
		ID:        ulid.Make().String(),
		Text:      text,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.todos.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.metrics.IncTodoCreated()
	return todo, nil
}

// ListByOwner returns all of ownerID's todos in creation order.
func (s *TodoService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	todos, err := s.todos.ListTodosByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	if todos == nil {
		todos = []*model.Todo{}
	}
	return todos, nil
}

// GetByIDForOwner returns one todo.
func (s *TodoService) GetByIDForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	todo, err := s.todos.GetTodoForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, mapTodoError(err, "get")
	}
	return todo, nil
}

// UpdateByIDForOwner applies patch. Text, when present, is trimmed and
// must stay non-empty.
func (s *TodoService) UpdateByIDForOwner(ctx context.Context, id, ownerID string, patch model.TodoPatch) (*model.Todo, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if err := validate.Struct(todoText{Text: text}); err != nil {
			return nil, validationError(err)
		}
		patch.Text = &text
	}

	todo, err := s.todos.UpdateTodoForOwner(ctx, id, ownerID, patch, s.now())
	if err != nil {
		return nil, mapTodoError(err, "update")
	}

	s.metrics.IncTodoUpdated()
	return todo, nil
}

// DeleteByIDForOwner removes a todo and returns it.
func (s *TodoService) DeleteByIDForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	todo, err := s.todos.DeleteTodoForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, mapTodoError(err, "delete")
	}

	s.metrics.IncTodoDeleted()
	return todo, nil
}

// ValidID reports whether id is a well-formed record id.
func ValidID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

func mapTodoError(err error, op string) error {
	if errors.Is(err, repository.ErrTodoNotFound) {
		return ErrTodoNotFound
	}
	return fmt.Errorf("failed to %s todo: %w", op, err)
}
