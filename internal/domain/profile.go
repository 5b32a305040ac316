package domain

import "time"

// Profile is the application-owned user record in the users table, keyed
// 1:1 with the provider identity. A missing profile is a valid state for an
// authenticated user, not a failure.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate holds the mutable profile fields. Nil pointers mean
// "leave unchanged"; updated_at is always stamped by the store.
type ProfileUpdate struct {
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}
