package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"docvault/internal/auth"
	models "docvault/internal/domain/models/vault"
	"docvault/internal/httputil"
)

// publicPaths skip authentication
var publicPaths = map[string]bool{
	"/health": true,
}

// Auth verifies the bearer token and attaches the caller's Principal to the
// request context. The organization and session come from the token; the
// address is the TCP peer.
func Auth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, err.Error())
				return
			}

			p := models.Principal{
				UserID:         claims.GetUserID(),
				OrganizationID: claims.GetOrganizationID(),
				SessionID:      claims.SessionID,
				IPAddress:      clientIP(r),
			}
			next.ServeHTTP(w, httputil.WithPrincipal(r, p))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
