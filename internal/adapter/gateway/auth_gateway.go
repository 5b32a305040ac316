// Package gateway translates high-level auth intents into provider and
// store calls. Every operation returns a normalized (value, error) pair;
// provider-level failures are converted to domain errors and nothing panics
// past this boundary.
package gateway

import (
	"context"
	"errors"
	"log/slog"

	"foundr-auth/internal/domain"
)

// AuthGateway composes the identity provider, the profile store, the TTL
// cache, and the client-local store.
type AuthGateway struct {
	provider domain.IdentityProvider
	profiles domain.ProfileRepository
	cache    domain.ProfileCache
	local    domain.LocalStore
	logger   *slog.Logger
}

// New creates an AuthGateway.
func New(provider domain.IdentityProvider, profiles domain.ProfileRepository, cache domain.ProfileCache, local domain.LocalStore, logger *slog.Logger) *AuthGateway {
	return &AuthGateway{
		provider: provider,
		profiles: profiles,
		cache:    cache,
		local:    local,
		logger:   logger,
	}
}

// CurrentSession returns the provider's view of the active session, or nil
// when anonymous.
func (g *AuthGateway) CurrentSession(ctx context.Context) (*domain.Session, error) {
	return g.provider.GetSession(ctx)
}

// SignUp creates the identity record and then, best-effort, the matching
// profile row. A profile failure is logged but never fails the signup: the
// identity already exists and the profile can be backfilled on first fetch.
func (g *AuthGateway) SignUp(ctx context.Context, params domain.SignUpParams) (*domain.User, error) {
	user, err := g.provider.SignUp(ctx, params)
	if err != nil {
		return nil, err
	}

	if user != nil {
		profile := &domain.Profile{
			ID:        user.ID,
			Email:     user.Email,
			FullName:  params.FullName,
			AvatarURL: params.AvatarURL,
			CreatedAt: user.CreatedAt,
		}
		if err := g.profiles.Create(ctx, profile); err != nil {
			g.logger.WarnContext(ctx, "profile creation failed after signup",
				"user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

// SignIn performs password-based authentication.
func (g *AuthGateway) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	return g.provider.SignInWithPassword(ctx, email, password)
}

// SignInWithGoogle returns the provider's OAuth redirect URL. Success means
// the redirect was initiated; the session arrives later on the stream.
func (g *AuthGateway) SignInWithGoogle(redirectTo string) (string, error) {
	return g.provider.AuthorizeURL("google", redirectTo)
}

// SignOut terminates the session and clears the locally cached business
// data. Sign-out with no active session is not an error.
func (g *AuthGateway) SignOut(ctx context.Context) error {
	if err := g.provider.SignOut(ctx); err != nil {
		return err
	}
	if err := g.local.Delete(ctx, domain.KeyBusinessData); err != nil {
		g.logger.WarnContext(ctx, "failed to clear cached business data", "error", err)
	}
	return nil
}

// RefreshSession exchanges the refresh token for a new session. Refresh is
// explicit; no background timer runs anywhere in the module.
func (g *AuthGateway) RefreshSession(ctx context.Context) (*domain.Session, error) {
	return g.provider.RefreshSession(ctx)
}

// ResetPassword delegates to the provider's password-recovery primitive.
func (g *AuthGateway) ResetPassword(ctx context.Context, email string) error {
	return g.provider.ResetPasswordForEmail(ctx, email)
}

// UpdatePassword sets a new password for the authenticated user.
func (g *AuthGateway) UpdatePassword(ctx context.Context, newPassword string) (*domain.User, error) {
	return g.provider.UpdatePassword(ctx, newPassword)
}

// GetProfile reads a profile through the TTL cache. A lookup-miss surfaces
// as domain.ErrProfileNotFound; callers treat it as absent data.
func (g *AuthGateway) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if cached, found := g.cache.Get(userID); found {
		return cached, nil
	}

	profile, err := g.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	g.cache.Set(userID, *profile)
	return profile, nil
}

// UpdateProfile writes profile fields and returns the stored row. The store
// stamps updated_at on every write; the cache entry is invalidated.
func (g *AuthGateway) UpdateProfile(ctx context.Context, userID string, updates domain.ProfileUpdate) (*domain.Profile, error) {
	profile, err := g.profiles.Update(ctx, userID, updates)
	if err != nil {
		return nil, err
	}

	g.cache.Invalidate(userID)
	g.cache.Set(userID, *profile)
	return profile, nil
}

// CheckUserExists probes the users table by email. A lookup-miss means the
// user does not exist and is NOT an error; any other store failure is.
func (g *AuthGateway) CheckUserExists(ctx context.Context, email string) (bool, error) {
	_, err := g.profiles.GetIDByEmail(ctx, email)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
