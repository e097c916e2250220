package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docvault/internal/domain"
	"docvault/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// tokenVerifier checks signature, algorithm and the claims every request needs
type tokenVerifier struct {
	keyfunc jwt.Keyfunc
	methods []string
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from a JWKS endpoint.
// keyfunc caches the key set and refreshes it in the background until Close.
func NewJWTVerifier(jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &tokenVerifier{
		keyfunc: jwks.Keyfunc,
		methods: []string{"RS256", "ES256"},
		cancel:  cancel,
		logger:  logger,
	}, nil
}

// NewHMACVerifier verifies HS256 tokens signed with a shared secret. Used in
// dev and tests where no JWKS endpoint exists.
func NewHMACVerifier(secret []byte, logger *slog.Logger) (JWTVerifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("JWT secret cannot be empty")
	}

	logger.Warn("JWT verifier using shared secret")

	return &tokenVerifier{
		keyfunc: func(*jwt.Token) (any, error) { return secret, nil },
		methods: []string{"HS256"},
		cancel:  func() {},
		logger:  logger,
	}, nil
}

// VerifyToken validates a token and extracts its claims
func (v *tokenVerifier) VerifyToken(tokenString string) (*models.TokenClaims, error) {
	// WithValidMethods blocks algorithm confusion attacks
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, v.keyfunc,
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token rejected", "error", err)
		return nil, &domain.UnauthorizedError{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	if claims.Subject == "" {
		return nil, &domain.UnauthorizedError{Message: "token missing subject"}
	}

	// Anonymous tokens carry no user
	if claims.Role != "" && claims.Role != "authenticated" {
		v.logger.Warn("token has invalid role", "role", claims.Role, "user_id", claims.Subject)
		return nil, &domain.UnauthorizedError{Message: "token is not for an authenticated user"}
	}

	if claims.GetOrganizationID() == "" {
		return nil, &domain.UnauthorizedError{Message: "token is not bound to an organization"}
	}

	if claims.SessionID == "" {
		return nil, &domain.UnauthorizedError{Message: "token missing session"}
	}

	return claims, nil
}

// Close stops the background key refresh
func (v *tokenVerifier) Close() error {
	v.cancel()
	v.logger.Info("JWT verifier closed")
	return nil
}
