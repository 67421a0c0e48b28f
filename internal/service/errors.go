// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors. Handlers map these to status codes with errors.Is;
// anything else is an internal failure.
var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrTodoNotFound         = errors.New("todo not found")
)

// Specific causes, each matching one of the errors above.
var (
	ErrInvalidEmail     = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password too short", ErrValidation)
	ErrPasswordTooLong  = fmt.Errorf("%w: password too long", ErrValidation)
	ErrTextRequired     = fmt.Errorf("%w: text is required", ErrValidation)

	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrAuthenticationFailed)
	ErrTokenRevoked = fmt.Errorf("%w: token is not active", ErrAuthenticationFailed)

	ErrInvalidID = fmt.Errorf("%w: invalid id", ErrTodoNotFound)
)
