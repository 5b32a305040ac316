package token

import (
	"errors"
	"fmt"

	"foundr-auth/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// accessClaims represents the provider's access-token claims.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates provider-issued HS256 access tokens and extracts the
// identity they carry.
type Verifier struct {
	secret   []byte
	audience string
}

// NewVerifier creates a verifier for the provider's signing secret.
func NewVerifier(secret, audience string) (*Verifier, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("token secret too weak: need at least 32 bytes, got %d", len(secret))
	}
	return &Verifier{secret: []byte(secret), audience: audience}, nil
}

// Verify parses and validates an access token, returning the embedded user.
func (v *Verifier) Verify(tokenString string) (*domain.User, error) {
	claims := &accessClaims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", domain.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.User{
		ID:    claims.Subject,
		Email: claims.Email,
	}, nil
}
