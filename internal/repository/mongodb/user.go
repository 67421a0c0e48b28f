package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository"
)

// CreateUser inserts user. The unique email index reports duplicates.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	tokens := user.Tokens
	if tokens == nil {
		tokens = []model.Token{}
	}

	doc := userDocument{
		ID:             user.ID,
		Email:          user.Email,
		PasswordDigest: user.PasswordDigest,
		Tokens:         tokens,
		CreatedAt:      user.CreatedAt,
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *Store) findUser(ctx context.Context, filter bson.D, op string) (*model.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", op, err)
	}
	return doc.toModel(), nil
}

// GetUserByID retrieves a user by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, bson.D{{Key: "_id", Value: id}}, "ID")
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}}, "email")
}

// GetUserByToken matches id and a token entry with both fields equal.
func (s *Store) GetUserByToken(ctx context.Context, userID string, token model.Token) (*model.User, error) {
	filter := bson.D{
		{Key: "_id", Value: userID},
		{Key: "tokens", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "access", Value: token.Purpose},
			{Key: "token", Value: token.Token},
		}}}},
	}
	return s.findUser(ctx, filter, "token")
}

// AddUserToken uses $addToSet so concurrent logins never drop an entry.
func (s *Store) AddUserToken(ctx context.Context, userID string, token model.Token) error {
	update := bson.D{{Key: "$addToSet", Value: bson.D{{Key: "tokens", Value: token}}}}

	result, err := s.users.UpdateByID(ctx, userID, update)
	if err != nil {
		return fmt.Errorf("failed to add user token: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// RemoveUserToken pulls every entry equal to token.
func (s *Store) RemoveUserToken(ctx context.Context, userID string, token model.Token) error {
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "tokens", Value: bson.D{
		{Key: "access", Value: token.Purpose},
		{Key: "token", Value: token.Token},
	}}}}}

	if _, err := s.users.UpdateByID(ctx, userID, update); err != nil {
		return fmt.Errorf("failed to remove user token: %w", err)
	}

	return nil
}
