package domain

import "context"

// AuthChangeHandler receives events from the provider's change-notification
// stream. Handlers are invoked serially in delivery order.
type AuthChangeHandler func(event AuthEvent, session *Session)

// Subscription is a handle on a registered auth-state listener. Unsubscribe
// is safe to call more than once; only the first call releases the handler.
type Subscription interface {
	Unsubscribe()
}

// IdentityProvider is the boundary with the hosted identity service.
type IdentityProvider interface {
	GetSession(ctx context.Context) (*Session, error)
	SignUp(ctx context.Context, params SignUpParams) (*User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*User, error)
	RefreshSession(ctx context.Context) (*Session, error)
	AuthorizeURL(provider, redirectTo string) (string, error)
	SignOut(ctx context.Context) error
	ResetPasswordForEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, newPassword string) (*User, error)
	OnAuthStateChange(handler AuthChangeHandler) Subscription
}

// ProfileRepository provides point lookups and writes against the users table.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	Create(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, id string, updates ProfileUpdate) (*Profile, error)
	GetIDByEmail(ctx context.Context, email string) (string, error)
}

// LocalStore is the client-local key/value store. It holds the stashed
// post-auth redirect target, cached business data, and the persisted session.
type LocalStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Navigator performs client navigation and exposes the current page's query
// parameters. The session store dispatches all redirects through it.
type Navigator interface {
	Navigate(path string)
	QueryParam(name string) string
}

// Keys used in the LocalStore.
const (
	// KeyRedirectAfterAuth stashes a pre-auth redirect target, consumed once
	// on the next SIGNED_IN event.
	KeyRedirectAfterAuth = "redirectAfterAuth"
	// KeyBusinessData caches business-context data; cleared on sign-out.
	KeyBusinessData = "business-data"
	// KeyPersistedSession holds the serialized provider session so a new
	// client instance can restore it at startup.
	KeyPersistedSession = "foundr-session"
)

// ProfileCache fronts the profile store with a TTL cache.
type ProfileCache interface {
	Get(id string) (*Profile, bool)
	Set(id string, profile Profile)
	Invalidate(id string)
}
