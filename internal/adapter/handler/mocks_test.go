package handler

import (
	"context"
	"io"
	"log/slog"

	"foundr-auth/internal/adapter/gateway"
	"foundr-auth/internal/domain"
	"foundr-auth/internal/infrastructure/localstore"
)

// stubProvider implements domain.IdentityProvider with overridable funcs.
type stubProvider struct {
	getSessionFunc func(ctx context.Context) (*domain.Session, error)
	signUpFunc     func(ctx context.Context, params domain.SignUpParams) (*domain.User, error)
	signInFunc     func(ctx context.Context, email, password string) (*domain.User, error)
	refreshFunc    func(ctx context.Context) (*domain.Session, error)
	authorizeFunc  func(provider, redirectTo string) (string, error)
	signOutFunc    func(ctx context.Context) error
	resetFunc      func(ctx context.Context, email string) error
	updatePwdFunc  func(ctx context.Context, newPassword string) (*domain.User, error)
}

func (s *stubProvider) GetSession(ctx context.Context) (*domain.Session, error) {
	if s.getSessionFunc != nil {
		return s.getSessionFunc(ctx)
	}
	return nil, nil
}

func (s *stubProvider) SignUp(ctx context.Context, params domain.SignUpParams) (*domain.User, error) {
	return s.signUpFunc(ctx, params)
}

func (s *stubProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.User, error) {
	return s.signInFunc(ctx, email, password)
}

func (s *stubProvider) RefreshSession(ctx context.Context) (*domain.Session, error) {
	return s.refreshFunc(ctx)
}

func (s *stubProvider) AuthorizeURL(provider, redirectTo string) (string, error) {
	return s.authorizeFunc(provider, redirectTo)
}

func (s *stubProvider) SignOut(ctx context.Context) error {
	if s.signOutFunc != nil {
		return s.signOutFunc(ctx)
	}
	return nil
}

func (s *stubProvider) ResetPasswordForEmail(ctx context.Context, email string) error {
	if s.resetFunc != nil {
		return s.resetFunc(ctx, email)
	}
	return nil
}

func (s *stubProvider) UpdatePassword(ctx context.Context, newPassword string) (*domain.User, error) {
	return s.updatePwdFunc(ctx, newPassword)
}

func (s *stubProvider) OnAuthStateChange(handler domain.AuthChangeHandler) domain.Subscription {
	return stubSubscription{}
}

type stubSubscription struct{}

func (stubSubscription) Unsubscribe() {}

// stubProfiles implements domain.ProfileRepository with overridable funcs.
type stubProfiles struct {
	getByIDFunc      func(ctx context.Context, id string) (*domain.Profile, error)
	createFunc       func(ctx context.Context, profile *domain.Profile) error
	updateFunc       func(ctx context.Context, id string, updates domain.ProfileUpdate) (*domain.Profile, error)
	getIDByEmailFunc func(ctx context.Context, email string) (string, error)
}

func (s *stubProfiles) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return s.getByIDFunc(ctx, id)
}

func (s *stubProfiles) Create(ctx context.Context, profile *domain.Profile) error {
	if s.createFunc != nil {
		return s.createFunc(ctx, profile)
	}
	return nil
}

func (s *stubProfiles) Update(ctx context.Context, id string, updates domain.ProfileUpdate) (*domain.Profile, error) {
	return s.updateFunc(ctx, id, updates)
}

func (s *stubProfiles) GetIDByEmail(ctx context.Context, email string) (string, error) {
	return s.getIDByEmailFunc(ctx, email)
}

// stubCache is a no-op ProfileCache so handler tests always hit the stubbed
// repository.
type stubCache struct{}

func (stubCache) Get(id string) (*domain.Profile, bool) { return nil, false }
func (stubCache) Set(id string, profile domain.Profile) {}
func (stubCache) Invalidate(id string)                  {}

func newStubGateway(provider *stubProvider, profiles *stubProfiles) *gateway.AuthGateway {
	return gateway.New(provider, profiles, stubCache{}, localstore.NewMemory(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}
