// Package handler exposes the auth flows over HTTP for the marketing site.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"foundr-auth/internal/adapter/gateway"
	"foundr-auth/internal/domain"
	"foundr-auth/internal/validation"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles the /v1/auth endpoints.
type AuthHandler struct {
	gateway   *gateway.AuthGateway
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(gw *gateway.AuthGateway, v *validation.Validator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{gateway: gw, validator: v, logger: logger}
}

// userResponse is the user object returned to the frontend.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// sessionResponse carries the provider tokens for the frontend.
type sessionResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// errorsResponse is the field→message validation failure body.
type errorsResponse struct {
	Errors validation.FieldErrors `json:"errors"`
}

func toUserResponse(user *domain.User) *userResponse {
	if user == nil {
		return nil
	}
	return &userResponse{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt}
}

// Register processes POST /v1/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req validation.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if fields := h.validator.Validate(req); fields != nil {
		return c.JSON(http.StatusBadRequest, errorsResponse{Errors: fields})
	}

	ctx := c.Request().Context()
	user, err := h.gateway.SignUp(ctx, domain.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		if fields := validation.SignUpFieldErrors(err); fields[validation.RootField] == "" {
			return c.JSON(mapDomainError(err).Code, errorsResponse{Errors: fields})
		}
		return mapDomainError(err)
	}

	// Without an established session the account still needs email
	// verification; the frontend routes to /auth/verify-email on this hint.
	session, sessionErr := h.gateway.CurrentSession(ctx)
	verifyEmail := sessionErr != nil || session == nil || session.User == nil || session.User.ID != user.ID

	return c.JSON(http.StatusCreated, map[string]any{
		"user":         toUserResponse(user),
		"verify_email": verifyEmail,
	})
}

// Login processes POST /v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req validation.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if fields := h.validator.Validate(req); fields != nil {
		return c.JSON(http.StatusBadRequest, errorsResponse{Errors: fields})
	}

	ctx := c.Request().Context()
	user, err := h.gateway.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, errorsResponse{Errors: validation.SignInFieldErrors(err)})
		}
		return mapDomainError(err)
	}

	resp := map[string]any{"user": toUserResponse(user)}
	if session, err := h.gateway.CurrentSession(ctx); err == nil && session != nil {
		resp["session"] = sessionResponse{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
			ExpiresAt:    session.ExpiresAt,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Google processes GET /v1/auth/google: 302 to the provider authorize URL.
// The session itself arrives on the change-notification stream after the
// provider redirects back; this endpoint only initiates the flow.
func (h *AuthHandler) Google(c echo.Context) error {
	authorizeURL, err := h.gateway.SignInWithGoogle(c.QueryParam("redirect_to"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.Redirect(http.StatusFound, authorizeURL)
}

// Logout processes POST /v1/auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.gateway.SignOut(c.Request().Context()); err != nil {
		return mapDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Refresh processes POST /v1/auth/refresh: rotates the provider session and
// returns the new tokens.
func (h *AuthHandler) Refresh(c echo.Context) error {
	session, err := h.gateway.RefreshSession(c.Request().Context())
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user": toUserResponse(session.User),
		"session": sessionResponse{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
			ExpiresAt:    session.ExpiresAt,
		},
	})
}

// ResetPassword processes POST /v1/auth/password/reset.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req validation.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if fields := h.validator.Validate(req); fields != nil {
		return c.JSON(http.StatusBadRequest, errorsResponse{Errors: fields})
	}

	if err := h.gateway.ResetPassword(c.Request().Context(), req.Email); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "recovery email sent"})
}

// UpdatePassword processes PUT /v1/auth/password.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req validation.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if fields := h.validator.Validate(req); fields != nil {
		return c.JSON(http.StatusBadRequest, errorsResponse{Errors: fields})
	}

	user, err := h.gateway.UpdatePassword(c.Request().Context(), req.Password)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

// Exists processes GET /v1/auth/exists?email=. A lookup-miss is a normal
// negative answer, not a failure.
func (h *AuthHandler) Exists(c echo.Context) error {
	email := c.QueryParam("email")
	if !h.validator.IsValidEmail(email) {
		return echo.NewHTTPError(http.StatusBadRequest, "valid email query parameter required")
	}

	exists, err := h.gateway.CheckUserExists(c.Request().Context(), email)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"exists": exists})
}

// PasswordStrength processes POST /v1/auth/password/strength, returning the
// score, label, color, and per-check booleans for live form hints.
func (h *AuthHandler) PasswordStrength(c echo.Context) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, validation.PasswordStrength(req.Password))
}
