package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"foundr-auth/internal/adapter/gateway"
	"foundr-auth/internal/domain"
	"foundr-auth/internal/validation"
	"foundr-auth/middleware"

	"github.com/labstack/echo/v4"
)

// ProfileHandler handles the /v1/profile endpoints. Requests reach it
// through the bearer-auth middleware, which resolves the caller's identity.
type ProfileHandler struct {
	gateway   *gateway.AuthGateway
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(gw *gateway.AuthGateway, v *validation.Validator, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{gateway: gw, validator: v, logger: logger}
}

// Get processes GET /v1/profile. A missing profile row returns an empty
// 200 body with exists=false rather than an error: an authenticated user
// without a profile is a valid state.
func (h *ProfileHandler) Get(c echo.Context) error {
	user := middleware.UserFrom(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	profile, err := h.gateway.GetProfile(c.Request().Context(), user.ID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return c.JSON(http.StatusOK, map[string]any{"exists": false, "profile": nil})
	}
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"exists": true, "profile": profile})
}

// Update processes PUT /v1/profile.
func (h *ProfileHandler) Update(c echo.Context) error {
	user := middleware.UserFrom(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req validation.ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if fields := h.validator.Validate(req); fields != nil {
		return c.JSON(http.StatusBadRequest, errorsResponse{Errors: fields})
	}

	updates := domain.ProfileUpdate{}
	if req.FullName != "" {
		updates.FullName = &req.FullName
	}
	if req.AvatarURL != "" {
		updates.AvatarURL = &req.AvatarURL
	}

	profile, err := h.gateway.UpdateProfile(c.Request().Context(), user.ID, updates)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"profile": profile})
}
