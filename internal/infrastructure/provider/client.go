// Package provider implements the boundary with the hosted identity service
// (a GoTrue-compatible auth API). The client normalizes provider failures
// into domain errors, keeps the current session, persists it to the local
// store, and announces lifecycle changes on the change-notification stream.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"foundr-auth/internal/domain"
)

const requestTimeout = 3 * time.Second

// Client talks to the identity provider's REST API.
// Implements domain.IdentityProvider.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	storage    domain.LocalStore
	logger     *slog.Logger

	mu       sync.RWMutex
	session  *domain.Session
	handlers map[int]domain.AuthChangeHandler
	nextID   int
}

// NewClient creates a provider client with tuned HTTP transport.
func NewClient(baseURL, anonKey string, storage domain.LocalStore, logger *slog.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
		storage:  storage,
		logger:   logger,
		handlers: make(map[int]domain.AuthChangeHandler),
	}
}

// userPayload mirrors the provider's user object on the wire.
type userPayload struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (u *userPayload) toDomain() *domain.User {
	if u == nil || u.ID == "" {
		return nil
	}
	return &domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Metadata:  u.UserMetadata,
		CreatedAt: u.CreatedAt,
	}
}

// tokenPayload mirrors the provider's token grant response.
type tokenPayload struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         *userPayload `json:"user"`
}

func (t *tokenPayload) toSession() *domain.Session {
	return &domain.Session{
		User:         t.User.toDomain(),
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(t.ExpiresIn) * time.Second),
	}
}

// errorPayload mirrors the provider's error body. Older and newer API
// versions disagree on the field name, so all three are tried.
type errorPayload struct {
	Message          string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *errorPayload) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	default:
		return e.Error
	}
}

// GetSession returns the current session, restoring a persisted one from
// the local store on first use. A missing or expired persisted session
// resolves to (nil, nil): anonymous, not an error.
func (c *Client) GetSession(ctx context.Context) (*domain.Session, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session != nil {
		return session, nil
	}

	raw, found, err := c.storage.Get(ctx, domain.KeyPersistedSession)
	if err != nil {
		return nil, fmt.Errorf("%w: restoring session: %w", domain.ErrProviderUnavailable, err)
	}
	if !found {
		return nil, nil
	}

	var restored domain.Session
	if err := json.Unmarshal([]byte(raw), &restored); err != nil {
		c.logger.Warn("discarding unreadable persisted session", "error", err)
		_ = c.storage.Delete(ctx, domain.KeyPersistedSession)
		return nil, nil
	}
	if restored.Expired() {
		_ = c.storage.Delete(ctx, domain.KeyPersistedSession)
		return nil, nil
	}

	c.mu.Lock()
	c.session = &restored
	c.mu.Unlock()
	return &restored, nil
}

// SignUp requests account creation. When the provider is configured to
// auto-confirm, the response carries a full token grant and the session is
// established immediately; otherwise only the pending user is returned and
// the caller should send the user to email verification.
func (c *Client) SignUp(ctx context.Context, params domain.SignUpParams) (*domain.User, error) {
	body := map[string]any{
		"email":    params.Email,
		"password": params.Password,
		"data": map[string]any{
			"full_name":  params.FullName,
			"avatar_url": params.AvatarURL,
		},
	}

	var resp tokenPayload
	// The signup response is a bare user object unless auto-confirm issued
	// tokens; tokenPayload covers both shapes.
	var user userPayload
	raw, err := c.do(ctx, http.MethodPost, "/signup", "", body)
	if err != nil {
		return nil, err
	}
	if jsonErr := json.Unmarshal(raw, &resp); jsonErr == nil && resp.AccessToken != "" {
		session := resp.toSession()
		c.setSession(ctx, session)
		c.emit(domain.EventSignedIn, session)
		return session.User, nil
	}
	if jsonErr := json.Unmarshal(raw, &user); jsonErr != nil {
		return nil, fmt.Errorf("%w: decoding signup response: %w", domain.ErrProviderUnavailable, jsonErr)
	}
	return user.toDomain(), nil
}

// SignInWithPassword performs the password grant. On success the session is
// established, persisted, and SIGNED_IN is emitted on the stream; the
// returned user is informational only.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.User, error) {
	body := map[string]any{"email": email, "password": password}

	raw, err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body)
	if err != nil {
		return nil, err
	}

	var resp tokenPayload
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding token response: %w", domain.ErrProviderUnavailable, err)
	}

	session := resp.toSession()
	c.setSession(ctx, session)
	c.emit(domain.EventSignedIn, session)
	return session.User, nil
}

// RefreshSession exchanges the refresh token for a new session and emits
// TOKEN_REFRESHED. Refresh is explicit; no background timer runs.
func (c *Client) RefreshSession(ctx context.Context) (*domain.Session, error) {
	c.mu.RLock()
	current := c.session
	c.mu.RUnlock()
	if current == nil {
		return nil, domain.ErrNoActiveSession
	}

	body := map[string]any{"refresh_token": current.RefreshToken}
	raw, err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body)
	if err != nil {
		return nil, err
	}

	var resp tokenPayload
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding refresh response: %w", domain.ErrProviderUnavailable, err)
	}

	session := resp.toSession()
	c.setSession(ctx, session)
	c.emit(domain.EventTokenRefreshed, session)
	return session, nil
}

// AuthorizeURL builds the provider's OAuth redirect URL. Returning the URL
// means "redirect initiated" — the session itself materializes later via
// the change-notification stream, never via this call.
func (c *Client) AuthorizeURL(oauthProvider, redirectTo string) (string, error) {
	if oauthProvider == "" {
		return "", fmt.Errorf("%w: oauth provider is required", domain.ErrProviderUnavailable)
	}
	q := url.Values{}
	q.Set("provider", oauthProvider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/authorize?" + q.Encode(), nil
}

// SignOut terminates the session. With no active session it clears local
// state and returns nil, so repeated sign-outs are deterministic. A
// provider-side logout failure still clears the local session.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.RLock()
	current := c.session
	c.mu.RUnlock()

	if current != nil {
		if _, err := c.do(ctx, http.MethodPost, "/logout", current.AccessToken, nil); err != nil {
			c.logger.Warn("provider logout failed, clearing local session anyway", "error", err)
		}
	}

	c.clearSession(ctx)
	c.emit(domain.EventSignedOut, nil)
	return nil
}

// ResetPasswordForEmail asks the provider to send a recovery email.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/recover", "", map[string]any{"email": email})
	return err
}

// UpdatePassword sets a new password for the authenticated user.
func (c *Client) UpdatePassword(ctx context.Context, newPassword string) (*domain.User, error) {
	c.mu.RLock()
	current := c.session
	c.mu.RUnlock()
	if current == nil {
		return nil, domain.ErrNoActiveSession
	}

	raw, err := c.do(ctx, http.MethodPut, "/user", current.AccessToken, map[string]any{"password": newPassword})
	if err != nil {
		return nil, err
	}

	var user userPayload
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("%w: decoding user response: %w", domain.ErrProviderUnavailable, err)
	}
	return user.toDomain(), nil
}

// do issues one API request and normalizes failures into domain errors.
func (c *Client) do(ctx context.Context, method, path, bearer string, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding request: %w", domain.ErrProviderUnavailable, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", domain.ErrProviderUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, c.mapError(resp.StatusCode, raw)
}

// mapError translates a provider error response into a domain sentinel.
func (c *Client) mapError(status int, raw []byte) error {
	var payload errorPayload
	_ = json.Unmarshal(raw, &payload)
	text := payload.text()

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "invalid login credentials"):
		return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, text)
	case strings.Contains(lower, "already registered"), status == http.StatusUnprocessableEntity && strings.Contains(lower, "exists"):
		return fmt.Errorf("%w: %s", domain.ErrUserExists, text)
	case strings.Contains(lower, "email not confirmed"):
		return fmt.Errorf("%w: %s", domain.ErrEmailNotConfirmed, text)
	case strings.Contains(lower, "password"), status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrWeakPassword, text)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, text)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, text)
	default:
		if text == "" {
			text = fmt.Sprintf("provider returned status %d", status)
		}
		return fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, text)
	}
}

// setSession replaces the in-memory session and persists it.
func (c *Client) setSession(ctx context.Context, session *domain.Session) {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	encoded, err := json.Marshal(session)
	if err != nil {
		c.logger.Warn("failed to serialize session for persistence", "error", err)
		return
	}
	if err := c.storage.Set(ctx, domain.KeyPersistedSession, string(encoded)); err != nil {
		c.logger.Warn("failed to persist session", "error", err)
	}
}

// clearSession drops the in-memory session and its persisted copy.
func (c *Client) clearSession(ctx context.Context) {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	if err := c.storage.Delete(ctx, domain.KeyPersistedSession); err != nil {
		c.logger.Warn("failed to clear persisted session", "error", err)
	}
}

// CurrentAccessToken returns the access token of the active session, if any.
func (c *Client) CurrentAccessToken() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return "", false
	}
	return c.session.AccessToken, true
}
