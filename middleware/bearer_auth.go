package middleware

import (
	"net/http"
	"strings"

	"foundr-auth/internal/domain"
	"foundr-auth/internal/infrastructure/token"

	"github.com/labstack/echo/v4"
)

// userContextKey is the echo context key holding the verified caller.
const userContextKey = "foundr.user"

// BearerAuth verifies the provider access token on incoming requests and
// attaches the resolved user to the request context.
func BearerAuth(verifier *token.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(authz, "Bearer ")
			if !ok || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "bearer token required")
			}

			user, err := verifier.Verify(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// UserFrom returns the verified user attached by BearerAuth, or nil.
func UserFrom(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}
