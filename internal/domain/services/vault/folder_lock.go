package vault

import (
	"context"

	"docvault/internal/domain/models/vault"
)

// FolderLock manages per-folder passwords and the session unlock state. It is
// independent of AccessControl: a folder must pass both gates to be opened.
type FolderLock interface {
	IsLocked(folder *vault.Folder) bool

	// HashPassword returns nil for an empty password (no lock)
	HashPassword(password string) (*string, error)

	// Verify compares password against the folder hash in constant time
	Verify(folder *vault.Folder, password string) bool

	// Unlock records that the principal's session passed Verify for folderID
	Unlock(ctx context.Context, p vault.Principal, folderID string) error

	IsUnlockedForSession(ctx context.Context, p vault.Principal, folder *vault.Folder) (bool, error)

	// RequireUnlocked returns an authorization error for a locked folder the
	// session has not unlocked
	RequireUnlocked(ctx context.Context, p vault.Principal, folder *vault.Folder) error

	ForgetSession(ctx context.Context, p vault.Principal) error
}
