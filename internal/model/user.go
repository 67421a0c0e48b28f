// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// PurposeAuth is the token purpose used for login sessions.
const PurposeAuth = "auth"

// Token is one issued session token held by a user.
type Token struct {
	Purpose string `json:"access" bson:"access"`
	Token   string `json:"token" bson:"token"`
}

// User represents an account that owns todos.
type User struct {
	ID             string    `json:"_id"`
	Email          string    `json:"email"`
	PasswordDigest string    `json:"-"` // Never serialize
	Tokens         []Token   `json:"-"` // Never serialize
	CreatedAt      time.Time `json:"-"`
}

// HasToken reports whether the user currently holds the given token.
func (u *User) HasToken(purpose, token string) bool {
	return slices.ContainsFunc(u.Tokens, func(t Token) bool {
		return t.Purpose == purpose && t.Token == token
	})
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// ToResponse strips everything but the id and email.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
	}
}

// Principal is the authenticated caller bound to a request.
// This is injected into the request context by the auth middleware.
type Principal struct {
	UserID string
	Email  string
	Token  string
}
