package service

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// registration holds the checked fields of a new user. Passwords are
// limited to 72 bytes, bcrypt's input limit.
type registration struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,maxbytes=72"`
}

// todoText is the checked text of a todo.
type todoText struct {
	Text string `validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// min and max count runes; maxbytes bounds the encoded length.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= limit
	})
	return v
}

// validationError maps the first failed rule onto a service error.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ErrValidation
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Email":
		return ErrInvalidEmail
	case "Password":
		if fe.Tag() == "maxbytes" {
			return ErrPasswordTooLong
		}
		return ErrPasswordTooShort
	case "Text":
		return ErrTextRequired
	default:
		return ErrValidation
	}
}
