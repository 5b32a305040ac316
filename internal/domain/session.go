package domain

import "time"

// User is the identity record owned by the hosted identity provider.
type User struct {
	ID        string
	Email     string
	Metadata  map[string]any
	CreatedAt time.Time
}

// Session is the provider-issued session for the active client instance.
// It is replaced wholesale on every auth-state change, never mutated in place.
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the session's access token is past its expiry.
func (s *Session) Expired() bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// AuthEvent identifies a change announced on the provider's
// change-notification stream.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// SignUpParams carries the inputs for account creation. FullName and
// AvatarURL are stored both as provider metadata and in the profile row.
type SignUpParams struct {
	Email     string
	Password  string
	FullName  string
	AvatarURL string
}
