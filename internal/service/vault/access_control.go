package vault

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/vault"
	vaultRepo "docvault/internal/domain/repositories/vault"
	vaultSvc "docvault/internal/domain/services/vault"
)

type accessControl struct {
	permRepo vaultRepo.PermissionRepository
	logger   *slog.Logger
}

// NewAccessControl creates the permission evaluator. Lookups are direct; a
// grant on a parent folder says nothing about its children.
func NewAccessControl(permRepo vaultRepo.PermissionRepository, logger *slog.Logger) vaultSvc.AccessControl {
	return &accessControl{permRepo: permRepo, logger: logger}
}

// Grant creates or overwrites the (user, folder) grant
func (s *accessControl) Grant(ctx context.Context, userID, folderID string, level models.Level, grantedBy string) error {
	if !level.Valid() {
		return domain.NewValidationError("invalid permission level %q", level.String())
	}
	if userID == "" {
		return domain.NewValidationError("user id is required")
	}

	grant := &models.PermissionGrant{
		UserID:    userID,
		FolderID:  folderID,
		Level:     level,
		GrantedBy: grantedBy,
		GrantedAt: time.Now(),
	}
	if err := s.permRepo.Upsert(ctx, grant); err != nil {
		return err
	}

	s.logger.Info("permission granted",
		"user_id", userID,
		"folder_id", folderID,
		"level", level.String(),
		"granted_by", grantedBy,
	)
	return nil
}

func (s *accessControl) Revoke(ctx context.Context, userID, folderID string) error {
	if err := s.permRepo.Delete(ctx, userID, folderID); err != nil {
		return err
	}
	s.logger.Info("permission revoked", "user_id", userID, "folder_id", folderID)
	return nil
}

func (s *accessControl) RevokeAllForFolder(ctx context.Context, folderID string) error {
	return s.permRepo.DeleteByFolder(ctx, folderID)
}

func (s *accessControl) Level(ctx context.Context, userID, folderID string) (models.Level, bool, error) {
	grant, err := s.permRepo.Get(ctx, userID, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return models.LevelNone, false, nil
		}
		return models.LevelNone, false, err
	}
	return grant.Level, true, nil
}

func (s *accessControl) HasPermission(ctx context.Context, userID, folderID string, required models.Level) (bool, error) {
	level, ok, err := s.Level(ctx, userID, folderID)
	if err != nil || !ok {
		return false, err
	}
	return level.Satisfies(required), nil
}

func (s *accessControl) Require(ctx context.Context, userID, folderID string, required models.Level) error {
	ok, err := s.HasPermission(ctx, userID, folderID, required)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewAuthorizationError("%s permission required on this folder", required.String())
	}
	return nil
}

func (s *accessControl) ListForFolder(ctx context.Context, folderID string) ([]models.PermissionGrant, error) {
	return s.permRepo.ListByFolder(ctx, folderID)
}

func (s *accessControl) ListGrantedBy(ctx context.Context, userID string) ([]models.PermissionGrant, error) {
	return s.permRepo.ListGrantedBy(ctx, userID)
}
