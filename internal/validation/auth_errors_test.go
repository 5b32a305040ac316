package validation

import (
	"errors"
	"fmt"
	"testing"

	"foundr-auth/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSignInFieldErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FieldErrors
	}{
		{
			name: "nil error yields nil",
			err:  nil,
			want: nil,
		},
		{
			name: "invalid credentials attach to email field",
			err:  domain.ErrInvalidCredentials,
			want: FieldErrors{"email": "Invalid email or password"},
		},
		{
			name: "wrapped invalid credentials still match",
			err:  fmt.Errorf("sign in: %w", domain.ErrInvalidCredentials),
			want: FieldErrors{"email": "Invalid email or password"},
		},
		{
			name: "other failures land in the root slot",
			err:  errors.New("provider timeout"),
			want: FieldErrors{RootField: "provider timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignInFieldErrors(tt.err))
		})
	}
}

func TestSignUpFieldErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FieldErrors
	}{
		{
			name: "nil error yields nil",
			err:  nil,
			want: nil,
		},
		{
			name: "existing account attaches to email field",
			err:  fmt.Errorf("sign up: %w", domain.ErrUserExists),
			want: FieldErrors{"email": "An account with this email already exists"},
		},
		{
			name: "weak password attaches to password field",
			err:  domain.ErrWeakPassword,
			want: FieldErrors{"password": "Password does not meet the security requirements"},
		},
		{
			name: "other failures land in the root slot",
			err:  errors.New("provider unavailable"),
			want: FieldErrors{RootField: "provider unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignUpFieldErrors(tt.err))
		})
	}
}
