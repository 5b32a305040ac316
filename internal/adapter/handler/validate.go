package handler

import (
	"net/http"
	"strings"

	"foundr-auth/internal/infrastructure/token"

	"github.com/labstack/echo/v4"
)

// ValidateHandler handles /validate for auth_request-style gating: the edge
// proxy forwards the bearer token and acts on the response status.
type ValidateHandler struct {
	verifier *token.Verifier
}

// NewValidateHandler creates a ValidateHandler.
func NewValidateHandler(verifier *token.Verifier) *ValidateHandler {
	return &ValidateHandler{verifier: verifier}
}

// Handle processes the /validate endpoint.
func (h *ValidateHandler) Handle(c echo.Context) error {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	tokenString, ok := strings.CutPrefix(authz, "Bearer ")
	if !ok || tokenString == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "bearer token required")
	}

	user, err := h.verifier.Verify(tokenString)
	if err != nil {
		return mapDomainError(err)
	}

	c.Response().Header().Set("X-Foundr-User-Id", user.ID)
	c.Response().Header().Set("X-Foundr-User-Email", user.Email)
	return c.NoContent(http.StatusOK)
}
