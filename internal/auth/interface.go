package auth

import "docvault/internal/domain/models"

// JWTVerifier verifies bearer tokens. The middleware only depends on this
// interface so tests and dev setups can swap the key source.
type JWTVerifier interface {
	// VerifyToken validates a token string and returns its claims.
	// Invalid, expired or incomplete tokens yield domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.TokenClaims, error)

	// Close releases resources held by the verifier
	Close() error
}
