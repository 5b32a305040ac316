// Package session holds the per-client authentication state machine. The
// Store owns the current user, the derived profile, the loading flag, and
// the last error; it subscribes to the provider's change-notification
// stream and re-derives state and navigation on every event.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"foundr-auth/internal/adapter/gateway"
	"foundr-auth/internal/domain"
)

// State is the session-resolution state.
type State int

const (
	// StateInitializing holds from construction until the first session
	// resolution completes.
	StateInitializing State = iota
	// StateAuthenticated means the provider reported a present user.
	StateAuthenticated
	// StateAnonymous means the provider reported no user.
	StateAnonymous
)

// Navigation targets.
const (
	routeDashboard     = "/dashboard"
	routePublicLanding = "/"
)

// redirectParam is the query parameter that overrides the post-auth target.
const redirectParam = "redirectTo"

// Snapshot is a point-in-time copy of the store's observable state.
type Snapshot struct {
	State   State
	User    *domain.User
	Profile *domain.Profile
	Loading bool
	Err     string
}

// Store is the session/auth state container shared across the client.
// All mutation goes through its own methods and its stream handler; the
// stream is the single source of truth for the authenticated state.
type Store struct {
	gateway *gateway.AuthGateway
	local   domain.LocalStore
	nav     domain.Navigator
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	user    *domain.User
	profile *domain.Profile
	loading bool
	lastErr string

	sub       domain.Subscription
	closeOnce sync.Once
}

// New creates a Store in the INITIALIZING state. Call Start to resolve the
// initial session and begin receiving stream events.
func New(gw *gateway.AuthGateway, local domain.LocalStore, nav domain.Navigator, logger *slog.Logger) *Store {
	return &Store{
		gateway: gw,
		local:   local,
		nav:     nav,
		logger:  logger,
		state:   StateInitializing,
		loading: true,
	}
}

// Start registers the stream subscription and then resolves the initial
// session. The subscription is established first so an event arriving
// during initial resolution is still applied (last write wins). An
// unresolvable initial session degrades to anonymous rather than blocking.
func (s *Store) Start(ctx context.Context, provider domain.IdentityProvider) {
	sub := provider.OnAuthStateChange(func(event domain.AuthEvent, session *domain.Session) {
		s.handleAuthChange(ctx, event, session)
	})
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	session, err := s.gateway.CurrentSession(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "initial session resolution failed", "error", err)
		session = nil
	}
	s.applySession(ctx, session)
}

// Close releases the stream subscription. Safe to call more than once;
// only the first call unsubscribes.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		sub := s.sub
		s.mu.Unlock()
		if sub != nil {
			sub.Unsubscribe()
		}
	})
}

// Snapshot returns a copy of the current observable state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:   s.state,
		User:    s.user,
		Profile: s.profile,
		Loading: s.loading,
		Err:     s.lastErr,
	}
}

// IsAuthenticated reports whether a user is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// ClearError resets the shared error slot.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// handleAuthChange applies a stream event and dispatches the navigation
// side effects. Navigation happens here and only here, so the direct call
// results and the stream can never issue duplicate redirects.
func (s *Store) handleAuthChange(ctx context.Context, event domain.AuthEvent, session *domain.Session) {
	s.applySession(ctx, session)

	switch event {
	case domain.EventSignedIn:
		s.nav.Navigate(s.resolveRedirect(ctx))
	case domain.EventSignedOut:
		s.nav.Navigate(routePublicLanding)
	}
}

// applySession replaces the session-derived state wholesale. A present user
// triggers a profile fetch; a lookup-miss leaves the profile absent, and
// any other fetch failure is logged without blocking the transition.
func (s *Store) applySession(ctx context.Context, session *domain.Session) {
	var user *domain.User
	if session != nil {
		user = session.User
	}

	var profile *domain.Profile
	if user != nil {
		p, err := s.gateway.GetProfile(ctx, user.ID)
		switch {
		case err == nil:
			profile = p
		case errors.Is(err, domain.ErrProfileNotFound):
			// No profile row yet; valid state.
		default:
			s.logger.ErrorContext(ctx, "profile fetch failed", "user_id", user.ID, "error", err)
		}
	}

	s.mu.Lock()
	s.user = user
	s.profile = profile
	if user != nil {
		s.state = StateAuthenticated
	} else {
		s.state = StateAnonymous
	}
	s.loading = false
	s.mu.Unlock()
}

// resolveRedirect computes the post-sign-in target: the redirectTo query
// parameter on the current page wins, then the stashed redirectAfterAuth
// value (consumed once), then the dashboard.
func (s *Store) resolveRedirect(ctx context.Context) string {
	if target := s.nav.QueryParam(redirectParam); target != "" {
		return target
	}

	target, found, err := s.local.Get(ctx, domain.KeyRedirectAfterAuth)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read redirect stash", "error", err)
		return routeDashboard
	}
	if found && target != "" {
		if err := s.local.Delete(ctx, domain.KeyRedirectAfterAuth); err != nil {
			s.logger.WarnContext(ctx, "failed to clear redirect stash", "error", err)
		}
		return target
	}
	return routeDashboard
}

// StashRedirect records where the user should land after the next sign-in.
func (s *Store) StashRedirect(ctx context.Context, target string) error {
	return s.local.Set(ctx, domain.KeyRedirectAfterAuth, target)
}

// beginCall marks an explicit auth call: loading on, prior error cleared.
func (s *Store) beginCall() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

// endCall records the call outcome. Explicit calls never set the
// authenticated state themselves; that arrives via the stream.
func (s *Store) endCall(err error) {
	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()
}

// SignUp creates an account. The resulting session, if any, arrives via the
// stream; this method only reports the outcome.
func (s *Store) SignUp(ctx context.Context, params domain.SignUpParams) (*domain.User, error) {
	s.beginCall()
	user, err := s.gateway.SignUp(ctx, params)
	s.endCall(err)
	return user, err
}

// SignIn performs password authentication. Navigation is driven exclusively
// by the SIGNED_IN stream event, never by this call's success.
func (s *Store) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	s.beginCall()
	user, err := s.gateway.SignIn(ctx, email, password)
	s.endCall(err)
	return user, err
}

// SignInWithGoogle initiates the OAuth redirect flow and returns the
// authorize URL. Success means "redirect initiated", not "authenticated".
func (s *Store) SignInWithGoogle(redirectTo string) (string, error) {
	s.beginCall()
	authorizeURL, err := s.gateway.SignInWithGoogle(redirectTo)
	s.endCall(err)
	return authorizeURL, err
}

// RefreshSession explicitly rotates the provider session. The refreshed
// state arrives via the TOKEN_REFRESHED stream event.
func (s *Store) RefreshSession(ctx context.Context) (*domain.Session, error) {
	s.beginCall()
	session, err := s.gateway.RefreshSession(ctx)
	s.endCall(err)
	return session, err
}

// SignOut terminates the session and eagerly clears the local user and
// profile so the UI reflects the logged-out state immediately; navigation
// still occurs via the SIGNED_OUT stream event.
func (s *Store) SignOut(ctx context.Context) error {
	s.ClearError()
	err := s.gateway.SignOut(ctx)

	s.mu.Lock()
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.user = nil
		s.profile = nil
		s.state = StateAnonymous
	}
	s.mu.Unlock()
	return err
}

// ResetPassword requests a password-recovery email.
func (s *Store) ResetPassword(ctx context.Context, email string) error {
	s.beginCall()
	err := s.gateway.ResetPassword(ctx, email)
	s.endCall(err)
	return err
}

// UpdatePassword sets a new password for the authenticated user.
func (s *Store) UpdatePassword(ctx context.Context, newPassword string) (*domain.User, error) {
	s.beginCall()
	user, err := s.gateway.UpdatePassword(ctx, newPassword)
	s.endCall(err)
	return user, err
}

// UpdateProfile writes profile fields for the signed-in user and updates
// the held profile in place on success. Fails loudly with no session.
func (s *Store) UpdateProfile(ctx context.Context, updates domain.ProfileUpdate) (*domain.Profile, error) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return nil, domain.ErrNoActiveSession
	}

	profile, err := s.gateway.UpdateProfile(ctx, user.ID, updates)

	s.mu.Lock()
	if err != nil {
		s.lastErr = err.Error()
	} else if s.user != nil && s.user.ID == profile.ID {
		// Keep the user/profile id-agreement invariant across races.
		s.profile = profile
	}
	s.mu.Unlock()
	return profile, err
}
