package vault

import (
	"context"

	"docvault/internal/domain/models/vault"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create inserts a folder and fills in its ID and timestamps
	Create(ctx context.Context, folder *vault.Folder) error

	// GetByID retrieves a folder scoped to an organization
	GetByID(ctx context.Context, id, orgID string) (*vault.Folder, error)

	// GetByIDOnly retrieves a folder without organization scoping.
	// Callers must already have established the tenant.
	GetByIDOnly(ctx context.Context, id string) (*vault.Folder, error)

	// Update persists name, description and password hash
	Update(ctx context.Context, folder *vault.Folder) error

	// Delete removes only the folder row
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders (parentID nil = organization roots)
	ListChildren(ctx context.Context, parentID *string, orgID string) ([]vault.Folder, error)
}
