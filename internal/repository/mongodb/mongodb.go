// Package mongodb implements repository.Store on a MongoDB database using
// one collection for users and one for todos.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository"
)

const (
	usersCollection = "users"
	todosCollection = "todos"
)

// Store is a MongoDB-backed repository.Store.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	todos  *mongo.Collection
}

var _ repository.Store = (*Store)(nil)

// New connects to uri, selects dbName and creates the indexes the store relies on.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client: client,
		users:  db.Collection(usersCollection),
		todos:  db.Collection(todosCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = s.todos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "_creator", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("todos_creator_created"),
	})
	if err != nil {
		return fmt.Errorf("failed to create todos owner index: %w", err)
	}

	return nil
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// Drop removes both collections. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.todos.Drop(ctx); err != nil {
		return err
	}
	if err := s.users.Drop(ctx); err != nil {
		return err
	}
	return s.ensureIndexes(ctx)
}

type userDocument struct {
	ID             string        `bson:"_id"`
	Email          string        `bson:"email"`
	PasswordDigest string        `bson:"passwordDigest"`
	Tokens         []model.Token `bson:"tokens"`
	CreatedAt      time.Time     `bson:"createdAt"`
}

func (d *userDocument) toModel() *model.User {
	tokens := d.Tokens
	if tokens == nil {
		tokens = []model.Token{}
	}
	return &model.User{
		ID:             d.ID,
		Email:          d.Email,
		PasswordDigest: d.PasswordDigest,
		Tokens:         tokens,
		CreatedAt:      d.CreatedAt,
	}
}

type todoDocument struct {
	ID          string    `bson:"_id"`
	Text        string    `bson:"text"`
	Completed   bool      `bson:"completed"`
	CompletedAt *int64    `bson:"completedAt"`
	OwnerID     string    `bson:"_creator"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func (d *todoDocument) toModel() *model.Todo {
	return &model.Todo{
		ID:          d.ID,
		Text:        d.Text,
		Completed:   d.Completed,
		CompletedAt: d.CompletedAt,
		OwnerID:     d.OwnerID,
		CreatedAt:   d.CreatedAt,
	}
}
