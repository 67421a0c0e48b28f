package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Registration(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "a@example.com", "pass123", nil},
		{"subdomain", "a.b@mail.example.co.uk", "pass123", nil},
		{"email checked first", "nope", "1", ErrInvalidEmail},
		{"empty password", "a@example.com", "", ErrPasswordTooShort},
		{"six bytes", "a@example.com", "123456", nil},
		{"72 bytes", "a@example.com", strings.Repeat("x", 72), nil},
		{"73 bytes", "a@example.com", strings.Repeat("x", 73), ErrPasswordTooLong},
		// 25 runes, 75 bytes.
		{"multibyte over limit", "a@example.com", strings.Repeat("€", 25), ErrPasswordTooLong},
		// 3 runes, 9 bytes.
		{"multibyte under minimum", "a@example.com", "€€€", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(registration{Email: tt.email, Password: tt.password})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, validationError(err), tt.wantErr)
		})
	}
}

func TestValidationError_TodoText(t *testing.T) {
	assert.NoError(t, validate.Struct(todoText{Text: "buy milk"}))

	err := validate.Struct(todoText{Text: ""})
	assert.ErrorIs(t, validationError(err), ErrTextRequired)
	assert.ErrorIs(t, validationError(err), ErrValidation)
}

func TestValidationError_Unmapped(t *testing.T) {
	assert.ErrorIs(t, validationError(assert.AnError), ErrValidation)
}
