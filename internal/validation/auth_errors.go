package validation

import (
	"errors"

	"foundr-auth/internal/domain"
)

// SignInFieldErrors maps a failed sign-in to form field errors. Credential
// failures attach to the email field; anything else lands in the root slot
// with the underlying message.
func SignInFieldErrors(err error) FieldErrors {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return FieldErrors{"email": "Invalid email or password"}
	}
	return FieldErrors{RootField: err.Error()}
}

// SignUpFieldErrors maps a failed sign-up to form field errors.
func SignUpFieldErrors(err error) FieldErrors {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return FieldErrors{"email": "An account with this email already exists"}
	case errors.Is(err, domain.ErrWeakPassword):
		return FieldErrors{"password": "Password does not meet the security requirements"}
	default:
		return FieldErrors{RootField: err.Error()}
	}
}
