package vault

import (
	"context"
	"io"

	"docvault/internal/domain/models/vault"
)

// FolderContents is what a principal sees after opening a folder
type FolderContents struct {
	Folder     *vault.Folder       `json:"folder"`
	Path       []vault.PathSegment `json:"path"`
	Subfolders []vault.Folder      `json:"subfolders"`
	Files      []vault.File        `json:"files"`
	Level      vault.Level         `json:"level"`
}

// RootContents lists the organization root
type RootContents struct {
	Folders []vault.Folder `json:"folders"`
	Files   []vault.File   `json:"files"`
}

// UploadFileRequest is an upload as received from the transport layer
type UploadFileRequest struct {
	FolderID *string
	Name     string
	Body     io.Reader
	Size     int64
	MimeType string
}

// Download is an open file stream plus its metadata. Body must be closed.
type Download struct {
	File *vault.File
	Body io.ReadCloser
}

// Vault is the operation surface used by transports. Every call carries the
// principal explicitly and runs validation, then tenant scoping, then the
// lock and permission gates, then the side effect.
type Vault interface {
	CreateFolder(ctx context.Context, p vault.Principal, req *CreateFolderRequest) (*vault.Folder, error)
	RenameFolder(ctx context.Context, p vault.Principal, folderID string, req *RenameFolderRequest) (*vault.Folder, error)
	DeleteFolder(ctx context.Context, p vault.Principal, folderID string) error
	VerifyFolderPassword(ctx context.Context, p vault.Principal, folderID, password string) error
	SetFolderPassword(ctx context.Context, p vault.Principal, folderID, password string) error
	OpenFolder(ctx context.Context, p vault.Principal, folderID string) (*FolderContents, error)
	ListRoot(ctx context.Context, p vault.Principal) (*RootContents, error)
	FolderPath(ctx context.Context, p vault.Principal, folderID string) ([]vault.PathSegment, error)

	UploadFile(ctx context.Context, p vault.Principal, req *UploadFileRequest) (*vault.File, error)
	DownloadFile(ctx context.Context, p vault.Principal, fileID string) (*Download, error)
	RenameFile(ctx context.Context, p vault.Principal, fileID, newName string) (*vault.File, error)
	DeleteFile(ctx context.Context, p vault.Principal, fileID string) error

	GrantPermission(ctx context.Context, p vault.Principal, folderID, userID string, level vault.Level) error
	RevokePermission(ctx context.Context, p vault.Principal, folderID, userID string) error
	ListPermissions(ctx context.Context, p vault.Principal, folderID string) ([]vault.PermissionGrant, error)

	// ListIssuedGrants lists the grants the principal handed out
	ListIssuedGrants(ctx context.Context, p vault.Principal) ([]vault.PermissionGrant, error)

	// Logout forgets every folder the session unlocked
	Logout(ctx context.Context, p vault.Principal) error
}
