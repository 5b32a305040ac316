package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foundr-auth/internal/infrastructure/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningSecret = "test-signing-secret-with-at-least-32-bytes"

func futureExpiry() time.Time {
	return time.Now().Add(time.Hour)
}

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningSecret))
	require.NoError(t, err)
	return signed
}

func TestValidateHandler_Handle(t *testing.T) {
	e := echo.New()
	verifier, err := token.NewVerifier(testSigningSecret, "")
	require.NoError(t, err)
	h := NewValidateHandler(verifier)

	t.Run("missing bearer token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/validate", nil)
		rec := httptest.NewRecorder()

		handleErr := h.Handle(e.NewContext(req, rec))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, handleErr, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("valid token passes identity headers to the proxy", func(t *testing.T) {
		userID := uuid.NewString()
		signed := signTestToken(t, jwt.MapClaims{
			"sub":   userID,
			"email": "jane@example.com",
			"exp":   futureExpiry().Unix(),
		})

		req := httptest.NewRequest(http.MethodGet, "/validate", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
		rec := httptest.NewRecorder()

		require.NoError(t, h.Handle(e.NewContext(req, rec)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, rec.Header().Get("X-Foundr-User-Id"))
		assert.Equal(t, "jane@example.com", rec.Header().Get("X-Foundr-User-Email"))
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		signed := signTestToken(t, jwt.MapClaims{
			"sub": uuid.NewString(),
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		req := httptest.NewRequest(http.MethodGet, "/validate", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
		rec := httptest.NewRecorder()

		handleErr := h.Handle(e.NewContext(req, rec))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, handleErr, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}
