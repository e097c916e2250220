package vault

import (
	"context"
	"io"

	"docvault/internal/domain/models/vault"
)

// UploadRequest is a decoded upload stream with its declared attributes
type UploadRequest struct {
	FolderID       *string
	OrganizationID string
	Name           string
	Body           io.Reader
	Size           int64
	MimeType       string
	UploadedBy     string
}

// FileStore keeps blobs and their metadata rows in agreement
type FileStore interface {
	// ValidateUpload checks a declared name and size against the upload policy
	ValidateUpload(name string, size int64) error

	Upload(ctx context.Context, req *UploadRequest) (*vault.File, error)

	// Get retrieves a file row of the organization
	Get(ctx context.Context, id, orgID string) (*vault.File, error)

	// Download opens the blob of a file the caller is already authorized for
	Download(ctx context.Context, file *vault.File) (io.ReadCloser, error)

	Rename(ctx context.Context, file *vault.File, newName string) (*vault.File, error)
	Delete(ctx context.Context, file *vault.File) error

	ListByFolder(ctx context.Context, folderID *string, orgID string) ([]vault.File, error)
}
