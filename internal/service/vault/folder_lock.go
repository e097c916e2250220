package vault

import (
	"context"
	"errors"
	"log/slog"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/vault"
	vaultRepo "docvault/internal/domain/repositories/vault"
	vaultSvc "docvault/internal/domain/services/vault"

	"golang.org/x/crypto/bcrypt"
)

type folderLock struct {
	unlocks vaultRepo.UnlockStore
	cost    int
	logger  *slog.Logger
}

// NewFolderLock creates the password gate. cost is the bcrypt cost; zero
// means bcrypt.DefaultCost.
func NewFolderLock(unlocks vaultRepo.UnlockStore, cost int, logger *slog.Logger) vaultSvc.FolderLock {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &folderLock{unlocks: unlocks, cost: cost, logger: logger}
}

func (s *folderLock) IsLocked(folder *models.Folder) bool {
	return folder.Locked()
}

func (s *folderLock) HashPassword(password string) (*string, error) {
	if password == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.NewValidationError("folder password must be at most 72 bytes")
		}
		return nil, err
	}
	h := string(hash)
	return &h, nil
}

// Verify is false for a folder without a password; there is nothing to compare
func (s *folderLock) Verify(folder *models.Folder, password string) bool {
	if !folder.Locked() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*folder.PasswordHash), []byte(password)) == nil
}

func (s *folderLock) Unlock(ctx context.Context, p models.Principal, folderID string) error {
	return s.unlocks.MarkUnlocked(ctx, unlockKey(p, folderID))
}

func (s *folderLock) IsUnlockedForSession(ctx context.Context, p models.Principal, folder *models.Folder) (bool, error) {
	if !folder.Locked() {
		return true, nil
	}
	return s.unlocks.IsUnlocked(ctx, unlockKey(p, folder.ID))
}

func (s *folderLock) RequireUnlocked(ctx context.Context, p models.Principal, folder *models.Folder) error {
	ok, err := s.IsUnlockedForSession(ctx, p, folder)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewAuthorizationError("folder %q is locked; enter its password first", folder.Name)
	}
	return nil
}

func (s *folderLock) ForgetSession(ctx context.Context, p models.Principal) error {
	if err := s.unlocks.ForgetSession(ctx, p.OrganizationID, p.UserID, p.SessionID); err != nil {
		return err
	}
	s.logger.Debug("session unlocks forgotten", "user_id", p.UserID, "session_id", p.SessionID)
	return nil
}

func unlockKey(p models.Principal, folderID string) vaultRepo.UnlockKey {
	return vaultRepo.UnlockKey{
		OrganizationID: p.OrganizationID,
		UserID:         p.UserID,
		SessionID:      p.SessionID,
		FolderID:       folderID,
	}
}
