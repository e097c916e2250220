package vault

import (
	"context"

	"docvault/internal/domain/models/vault"
)

// CreateFolderRequest is the input of FolderTree.Create
type CreateFolderRequest struct {
	OrganizationID string  `json:"-"`
	ParentID       *string `json:"parent_folder_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	CreatedBy      string  `json:"-"`
	Password       string  `json:"password,omitempty"`
}

// RenameFolderRequest renames a folder and optionally replaces its description
type RenameFolderRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// FolderTree manages the per-organization folder forest. Apart from Create and
// Get, it trusts the caller to have scoped folder ids to the right organization.
type FolderTree interface {
	Create(ctx context.Context, req *CreateFolderRequest) (*vault.Folder, error)

	// Get retrieves a folder of the organization; other tenants' folders are not found
	Get(ctx context.Context, id, orgID string) (*vault.Folder, error)

	Rename(ctx context.Context, id string, req *RenameFolderRequest) (*vault.Folder, error)

	// SetPasswordHash replaces (or clears, when nil) the folder's password hash
	SetPasswordHash(ctx context.Context, id string, hash *string) error

	// Delete removes the folder and its whole subtree (files, sub-folders, grants)
	Delete(ctx context.Context, folder *vault.Folder) error

	// Subfolders lists immediate children; parentID nil lists the organization roots
	Subfolders(ctx context.Context, parentID *string, orgID string) ([]vault.Folder, error)

	// Path returns the breadcrumb from the organization root down to id
	Path(ctx context.Context, id string) ([]vault.PathSegment, error)
}
