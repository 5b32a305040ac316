package domain

import "errors"

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUserExists         = errors.New("user already registered")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrNoActiveSession    = errors.New("no active session")
	ErrWeakPassword       = errors.New("password does not meet requirements")
)

// External service errors.
var (
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrStoreUnavailable    = errors.New("profile store unavailable")
)

// Lookup-miss: the query ran fine but no row matched. Callers must treat
// this as absent data, not as a failure.
var ErrProfileNotFound = errors.New("profile not found")

// Token errors.
var (
	ErrTokenInvalid = errors.New("access token invalid")
	ErrTokenExpired = errors.New("access token expired")
)

// Rate limiting errors.
var ErrRateLimited = errors.New("rate limit exceeded")
