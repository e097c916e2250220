package vault

import (
	"context"

	"docvault/internal/domain/models/vault"
)

// PermissionRepository stores direct (user, folder) grants
type PermissionRepository interface {
	// Upsert creates the grant or overwrites the level of an existing one atomically
	Upsert(ctx context.Context, grant *vault.PermissionGrant) error

	// Delete removes a grant; a missing grant is not an error
	Delete(ctx context.Context, userID, folderID string) error

	// DeleteByFolder removes every grant on a folder
	DeleteByFolder(ctx context.Context, folderID string) error

	// Get returns the grant or a not found error
	Get(ctx context.Context, userID, folderID string) (*vault.PermissionGrant, error)

	ListByFolder(ctx context.Context, folderID string) ([]vault.PermissionGrant, error)
	ListGrantedBy(ctx context.Context, userID string) ([]vault.PermissionGrant, error)
}
