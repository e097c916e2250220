package vault

import (
	"context"

	"docvault/internal/domain/models/vault"
)

// FileRepository defines data access operations for file metadata rows
type FileRepository interface {
	Create(ctx context.Context, file *vault.File) error
	GetByID(ctx context.Context, id, orgID string) (*vault.File, error)
	UpdateName(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error

	// ListByFolder lists files in a folder (folderID nil = organization root)
	ListByFolder(ctx context.Context, folderID *string, orgID string) ([]vault.File, error)

	// ListByOrganization lists every file row of an organization
	ListByOrganization(ctx context.Context, orgID string) ([]vault.File, error)
}
