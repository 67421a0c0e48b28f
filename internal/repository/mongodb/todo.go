package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository"
)

func ownedBy(id, ownerID string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "_creator", Value: ownerID}}
}

// CreateTodo inserts todo.
func (s *Store) CreateTodo(ctx context.Context, todo *model.Todo) error {
	doc := todoDocument{
		ID:          todo.ID,
		Text:        todo.Text,
		Completed:   todo.Completed,
		CompletedAt: todo.CompletedAt,
		OwnerID:     todo.OwnerID,
		CreatedAt:   todo.CreatedAt,
	}

	if _, err := s.todos.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// ListTodosByOwner returns the owner's todos in creation order.
func (s *Store) ListTodosByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.todos.Find(ctx, bson.D{{Key: "_creator", Value: ownerID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer cursor.Close(ctx)

	todos := make([]*model.Todo, 0)
	for cursor.Next(ctx) {
		var doc todoDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode todo: %w", err)
		}
		todos = append(todos, doc.toModel())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// GetTodoForOwner retrieves a todo scoped to its owner.
func (s *Store) GetTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	var doc todoDocument
	if err := s.todos.FindOne(ctx, ownedBy(id, ownerID)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return doc.toModel(), nil
}

// UpdateTodoForOwner runs an aggregation-pipeline update so the completion
// stamp is decided against the stored value in one round trip.
func (s *Store) UpdateTodoForOwner(ctx context.Context, id, ownerID string, patch model.TodoPatch, nowMillis int64) (*model.Todo, error) {
	set := bson.D{}
	if patch.Text != nil {
		// $literal keeps user text starting with "$" from being read as a field path.
		set = append(set, bson.E{Key: "text", Value: bson.D{{Key: "$literal", Value: *patch.Text}}})
	}
	if patch.Completed != nil {
		if *patch.Completed {
			set = append(set,
				bson.E{Key: "completedAt", Value: bson.D{{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$and", Value: bson.A{
						"$completed",
						bson.D{{Key: "$ne", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$completedAt", nil}}}, nil}}},
					}}},
					"$completedAt",
					nowMillis,
				}}}},
				bson.E{Key: "completed", Value: true},
			)
		} else {
			set = append(set,
				bson.E{Key: "completed", Value: false},
				bson.E{Key: "completedAt", Value: nil},
			)
		}
	}

	if len(set) == 0 {
		return s.GetTodoForOwner(ctx, id, ownerID)
	}

	// Expressions in one $set stage all read the document as it was before the stage.
	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc todoDocument
	if err := s.todos.FindOneAndUpdate(ctx, ownedBy(id, ownerID), pipeline, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return doc.toModel(), nil
}

// DeleteTodoForOwner removes a todo and returns the removed record.
func (s *Store) DeleteTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	var doc todoDocument
	if err := s.todos.FindOneAndDelete(ctx, ownedBy(id, ownerID)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to delete todo: %w", err)
	}
	return doc.toModel(), nil
}
