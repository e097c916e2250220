package vault

import (
	"context"
)

// UnlockKey identifies one folder unlocked in one session. The organization and
// user are part of the key so an entry can never leak to another session or tenant.
type UnlockKey struct {
	OrganizationID string
	UserID         string
	SessionID      string
	FolderID       string
}

// UnlockStore keeps session-scoped folder unlock state
type UnlockStore interface {
	MarkUnlocked(ctx context.Context, key UnlockKey) error
	IsUnlocked(ctx context.Context, key UnlockKey) (bool, error)

	// ForgetSession drops every unlock entry of a session
	ForgetSession(ctx context.Context, orgID, userID, sessionID string) error
}
