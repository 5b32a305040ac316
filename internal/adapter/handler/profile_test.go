package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"foundr-auth/internal/domain"
	"foundr-auth/internal/infrastructure/token"
	"foundr-auth/internal/validation"
	"foundr-auth/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileHandler(profiles *stubProfiles) *ProfileHandler {
	return NewProfileHandler(newStubGateway(&stubProvider{}, profiles), validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// authenticatedContext builds an echo context carrying a verified user, the
// way the bearer-auth middleware leaves it.
func authenticatedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID string) echo.Context {
	verifier, err := token.NewVerifier(testSigningSecret, "")
	if err != nil {
		panic(err)
	}

	claims := jwt.MapClaims{"sub": userID, "email": "jane@example.com", "exp": futureExpiry().Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningSecret))
	if err != nil {
		panic(err)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)

	c := e.NewContext(req, rec)
	mw := middleware.BearerAuth(verifier)
	// Run the middleware with a no-op next so c carries the verified user.
	if err := mw(func(echo.Context) error { return nil })(c); err != nil {
		panic(err)
	}
	return c
}

func TestProfileHandler_Get(t *testing.T) {
	e := echo.New()
	userID := uuid.NewString()

	t.Run("requires an authenticated caller", func(t *testing.T) {
		h := newProfileHandler(&stubProfiles{})
		req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
		rec := httptest.NewRecorder()

		err := h.Get(e.NewContext(req, rec))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("missing profile row is a valid empty answer", func(t *testing.T) {
		profiles := &stubProfiles{
			getByIDFunc: func(ctx context.Context, id string) (*domain.Profile, error) {
				return nil, domain.ErrProfileNotFound
			},
		}
		h := newProfileHandler(profiles)
		req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
		rec := httptest.NewRecorder()
		c := authenticatedContext(e, req, rec, userID)

		require.NoError(t, h.Get(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"exists":false,"profile":null}`, rec.Body.String())
	})

	t.Run("returns the stored profile", func(t *testing.T) {
		profiles := &stubProfiles{
			getByIDFunc: func(ctx context.Context, id string) (*domain.Profile, error) {
				assert.Equal(t, userID, id)
				return &domain.Profile{ID: id, Email: "jane@example.com", FullName: "Jane Founder"}, nil
			},
		}
		h := newProfileHandler(profiles)
		req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
		rec := httptest.NewRecorder()
		c := authenticatedContext(e, req, rec, userID)

		require.NoError(t, h.Get(c))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Exists  bool           `json:"exists"`
			Profile domain.Profile `json:"profile"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Exists)
		assert.Equal(t, "Jane Founder", resp.Profile.FullName)
	})
}

func TestProfileHandler_Update(t *testing.T) {
	e := echo.New()
	userID := uuid.NewString()

	t.Run("requires an authenticated caller", func(t *testing.T) {
		h := newProfileHandler(&stubProfiles{})
		req := jsonRequest(http.MethodPut, "/v1/profile", `{"full_name":"Jane Builder"}`)
		rec := httptest.NewRecorder()

		err := h.Update(e.NewContext(req, rec))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("validation failures return field errors", func(t *testing.T) {
		h := newProfileHandler(&stubProfiles{})
		req := jsonRequest(http.MethodPut, "/v1/profile", `{"avatar_url":"not a url"}`)
		rec := httptest.NewRecorder()
		c := authenticatedContext(e, req, rec, userID)

		require.NoError(t, h.Update(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		fields := decodeErrors(t, rec.Body.String())["errors"]
		assert.Equal(t, "Please enter a valid URL", fields["avatar_url"])
	})

	t.Run("writes only the provided fields", func(t *testing.T) {
		var gotUpdates domain.ProfileUpdate
		profiles := &stubProfiles{
			updateFunc: func(ctx context.Context, id string, updates domain.ProfileUpdate) (*domain.Profile, error) {
				gotUpdates = updates
				return &domain.Profile{ID: id, FullName: *updates.FullName}, nil
			},
		}
		h := newProfileHandler(profiles)
		req := jsonRequest(http.MethodPut, "/v1/profile", `{"full_name":"Jane Builder"}`)
		rec := httptest.NewRecorder()
		c := authenticatedContext(e, req, rec, userID)

		require.NoError(t, h.Update(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotUpdates.FullName)
		assert.Equal(t, "Jane Builder", *gotUpdates.FullName)
		assert.Nil(t, gotUpdates.AvatarURL)
	})
}
