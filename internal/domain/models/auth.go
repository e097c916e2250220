package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the JWT claim set issued by the identity provider.
// The organization is carried in app_metadata so users cannot edit it.
type TokenClaims struct {
	jwt.RegisteredClaims                // sub, iss, aud, exp, iat
	Email                string         `json:"email"`
	Role                 string         `json:"role"` // "authenticated" or "anon"
	SessionID            string         `json:"session_id"`
	AppMetadata          map[string]any `json:"app_metadata"`
}

// GetUserID returns the user ID from the JWT subject claim
func (c *TokenClaims) GetUserID() string {
	return c.Subject
}

// GetOrganizationID returns app_metadata.organization_id, or "" when absent
func (c *TokenClaims) GetOrganizationID() string {
	orgID, _ := c.AppMetadata["organization_id"].(string)
	return orgID
}
