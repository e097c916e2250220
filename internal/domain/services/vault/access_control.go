package vault

import (
	"context"

	"docvault/internal/domain/models/vault"
)

// AccessControl stores and evaluates direct permission grants. Only the grant on
// the exact folder id counts; ancestors are never consulted.
type AccessControl interface {
	Grant(ctx context.Context, userID, folderID string, level vault.Level, grantedBy string) error
	Revoke(ctx context.Context, userID, folderID string) error
	RevokeAllForFolder(ctx context.Context, folderID string) error

	HasPermission(ctx context.Context, userID, folderID string, required vault.Level) (bool, error)

	// Level returns the granted level and whether a grant exists
	Level(ctx context.Context, userID, folderID string) (vault.Level, bool, error)

	// Require returns an authorization error unless the grant satisfies required
	Require(ctx context.Context, userID, folderID string, required vault.Level) error

	ListForFolder(ctx context.Context, folderID string) ([]vault.PermissionGrant, error)
	ListGrantedBy(ctx context.Context, userID string) ([]vault.PermissionGrant, error)
}
