package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docvault/internal/config"
	"docvault/internal/domain"
	models "docvault/internal/domain/models/vault"
	"docvault/internal/domain/repositories"
	vaultRepo "docvault/internal/domain/repositories/vault"
	vaultSvc "docvault/internal/domain/services/vault"
)

// passwordHasher is the part of FolderLock the tree needs on create
type passwordHasher interface {
	HashPassword(password string) (*string, error)
}

type folderTree struct {
	folderRepo vaultRepo.FolderRepository
	files      vaultSvc.FileStore
	access     vaultSvc.AccessControl
	hasher     passwordHasher
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewFolderTree creates the folder forest service
func NewFolderTree(
	folderRepo vaultRepo.FolderRepository,
	files vaultSvc.FileStore,
	access vaultSvc.AccessControl,
	hasher passwordHasher,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) vaultSvc.FolderTree {
	return &folderTree{
		folderRepo: folderRepo,
		files:      files,
		access:     access,
		hasher:     hasher,
		txManager:  txManager,
		logger:     logger,
	}
}

// Create creates a folder under parent (nil = organization root)
func (s *folderTree) Create(ctx context.Context, req *vaultSvc.CreateFolderRequest) (*models.Folder, error) {
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := validateFolderName(req.Name); err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.ParentID, req.OrganizationID); err != nil {
			return nil, err
		}
	}

	if err := s.checkSiblingName(ctx, req.ParentID, req.OrganizationID, req.Name, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	folder := &models.Folder{
		OrganizationID: req.OrganizationID,
		ParentID:       req.ParentID,
		Name:           req.Name,
		Description:    req.Description,
		PasswordHash:   hash,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"organization_id", folder.OrganizationID,
		"parent_folder_id", folder.ParentID,
		"locked", folder.Locked(),
	)
	return folder, nil
}

func (s *folderTree) Get(ctx context.Context, id, orgID string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id, orgID)
}

// Rename renames the folder and replaces its description when one is given
func (s *folderTree) Rename(ctx context.Context, id string, req *vaultSvc.RenameFolderRequest) (*models.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateFolderName(name); err != nil {
		return nil, err
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return nil, err
		}
	}

	folder, err := s.folderRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != folder.Name {
		if err := s.checkSiblingName(ctx, folder.ParentID, folder.OrganizationID, name, folder.ID); err != nil {
			return nil, err
		}
	}

	oldName := folder.Name
	folder.Name = name
	if req.Description != nil {
		folder.Description = *req.Description
	}
	folder.UpdatedAt = time.Now()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "old_name", oldName, "new_name", folder.Name)
	return folder, nil
}

func (s *folderTree) SetPasswordHash(ctx context.Context, id string, hash *string) error {
	folder, err := s.folderRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return err
	}
	folder.PasswordHash = hash
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return err
	}
	s.logger.Info("folder password changed", "id", folder.ID, "locked", folder.Locked())
	return nil
}

// Delete removes the folder with its whole subtree, deepest folders first. For
// each folder its files go first (blob, then row), then its grants, then the
// row itself. The walk stops at the first failure: every folder already
// visited is fully gone and every other one is untouched, so no remaining
// folder ever loses its parent.
func (s *folderTree) Delete(ctx context.Context, folder *models.Folder) error {
	if err := s.deleteSubtree(ctx, folder, 0); err != nil {
		return err
	}
	s.logger.Info("folder deleted",
		"id", folder.ID,
		"name", folder.Name,
		"organization_id", folder.OrganizationID,
	)
	return nil
}

func (s *folderTree) deleteSubtree(ctx context.Context, folder *models.Folder, depth int) error {
	if depth > config.MaxFolderDepth {
		return &domain.ConsistencyError{
			Resource: "folder",
			ID:       folder.ID,
			Message:  "folder tree deeper than the supported maximum",
		}
	}

	children, err := s.folderRepo.ListChildren(ctx, &folder.ID, folder.OrganizationID)
	if err != nil {
		return fmt.Errorf("list child folders: %w", err)
	}
	for i := range children {
		if err := s.deleteSubtree(ctx, &children[i], depth+1); err != nil {
			return err
		}
	}

	files, err := s.files.ListByFolder(ctx, &folder.ID, folder.OrganizationID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	for i := range files {
		if err := s.files.Delete(ctx, &files[i]); err != nil {
			return err
		}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.access.RevokeAllForFolder(txCtx, folder.ID); err != nil {
			return err
		}
		return s.folderRepo.Delete(txCtx, folder.ID)
	})
	if err != nil {
		return fmt.Errorf("delete folder %q: %w", folder.Name, err)
	}

	if depth > 0 {
		s.logger.Debug("deleted child folder", "id", folder.ID, "name", folder.Name)
	}
	return nil
}

func (s *folderTree) Subfolders(ctx context.Context, parentID *string, orgID string) ([]models.Folder, error) {
	return s.folderRepo.ListChildren(ctx, parentID, orgID)
}

// Path walks parent links up to the root. A revisited id, a missing parent or
// a parent in another organization means corrupted data and is reported as a
// consistency error instead of looping or leaking across tenants.
func (s *folderTree) Path(ctx context.Context, id string) ([]models.PathSegment, error) {
	var (
		segments []models.PathSegment
		seen     = make(map[string]bool)
		orgID    string
		current  = id
	)

	for {
		if seen[current] || len(segments) > config.MaxFolderDepth {
			s.logger.Error("folder parent chain is cyclic", "folder_id", id, "revisited", current)
			return nil, &domain.ConsistencyError{
				Resource: "folder",
				ID:       id,
				Message:  "parent chain does not reach a root folder",
			}
		}
		seen[current] = true

		folder, err := s.folderRepo.GetByIDOnly(ctx, current)
		if err != nil {
			if current != id && errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.ConsistencyError{
					Resource: "folder",
					ID:       id,
					Message:  fmt.Sprintf("ancestor %s is missing", current),
					Err:      err,
				}
			}
			return nil, err
		}

		if orgID == "" {
			orgID = folder.OrganizationID
		} else if folder.OrganizationID != orgID {
			return nil, &domain.ConsistencyError{
				Resource: "folder",
				ID:       id,
				Message:  fmt.Sprintf("ancestor %s belongs to another organization", folder.ID),
			}
		}

		segments = append(segments, models.PathSegment{ID: folder.ID, Name: folder.Name})
		if folder.ParentID == nil {
			break
		}
		current = *folder.ParentID
	}

	// Collected leaf first
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return segments, nil
}

// checkSiblingName rejects a name already used by another folder under parent
func (s *folderTree) checkSiblingName(ctx context.Context, parentID *string, orgID, name, selfID string) error {
	siblings, err := s.folderRepo.ListChildren(ctx, parentID, orgID)
	if err != nil {
		return fmt.Errorf("check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != selfID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
				ResourceType: "folder",
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}
