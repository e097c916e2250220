package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docvault/internal/auth"
	"docvault/internal/domain/models"
	vaultModels "docvault/internal/domain/models/vault"
	"docvault/internal/httputil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("middleware-secret")

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func token(t *testing.T) string {
	t.Helper()
	claims := &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:        "authenticated",
		SessionID:   "s1",
		AppMetadata: map[string]any{"organization_id": "org-a"},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestAuth(t *testing.T) {
	verifier, err := auth.NewHMACVerifier(secret, discard())
	require.NoError(t, err)

	var got vaultModels.Principal
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got, _ = httputil.GetPrincipal(r)
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Auth(verifier, discard())(next)

	t.Run("valid token yields principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/root", nil)
		req.RemoteAddr = "198.51.100.4:55120"
		req.Header.Set("Authorization", "Bearer "+token(t))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, vaultModels.Principal{
			UserID:         "u1",
			OrganizationID: "org-a",
			SessionID:      "s1",
			IPAddress:      "198.51.100.4",
		}, got)
	})

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		t.Run("rejects "+header, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(http.MethodGet, "/api/root", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
		})
	}

	t.Run("health is public", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.True(t, called)
	})
}

func TestRecovery(t *testing.T) {
	handler := Recovery(discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}
