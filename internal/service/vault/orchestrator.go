package vault

import (
	"context"
	"errors"
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

// Deps collects the collaborators of the orchestration service
type Deps struct {
	Tenants    vaultSvc.TenantDirectory
	Tree       vaultSvc.FolderTree
	Lock       vaultSvc.FolderLock
	Access     vaultSvc.AccessControl
	Files      vaultSvc.FileStore
	AccessLogs vaultRepo.AccessLogRepository
	TxManager  repositories.TransactionManager
	Logger     *slog.Logger
}

type vaultService struct {
	tenants    vaultSvc.TenantDirectory
	tree       vaultSvc.FolderTree
	lock       vaultSvc.FolderLock
	access     vaultSvc.AccessControl
	files      vaultSvc.FileStore
	accessLogs vaultRepo.AccessLogRepository
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewVault creates the request-level orchestration service
func NewVault(deps Deps) vaultSvc.Vault {
	return &vaultService{
		tenants:    deps.Tenants,
		tree:       deps.Tree,
		lock:       deps.Lock,
		access:     deps.Access,
		files:      deps.Files,
		accessLogs: deps.AccessLogs,
		txManager:  deps.TxManager,
		logger:     deps.Logger,
	}
}

// scope checks the principal and its organization
func (s *vaultService) scope(ctx context.Context, p models.Principal) error {
	if p.UserID == "" || p.OrganizationID == "" {
		return &domain.UnauthorizedError{Message: "authenticated user with an organization required"}
	}
	return s.tenants.Require(ctx, p.OrganizationID)
}

// folder loads a folder of the principal's organization after scoping
func (s *vaultService) folder(ctx context.Context, p models.Principal, folderID string) (*models.Folder, error) {
	if err := s.scope(ctx, p); err != nil {
		return nil, err
	}
	return s.tree.Get(ctx, folderID, p.OrganizationID)
}

// authorize applies the policy table: lock gate first, then the grant
func (s *vaultService) authorize(ctx context.Context, p models.Principal, folder *models.Folder, action Action) error {
	req := RequirementFor(action)
	if req.Unlocked {
		if err := s.lock.RequireUnlocked(ctx, p, folder); err != nil {
			s.logger.Debug("folder locked", "action", action.String(), "folder_id", folder.ID, "user_id", p.UserID)
			return err
		}
	}
	if req.Level != models.LevelNone {
		if err := s.access.Require(ctx, p.UserID, folder.ID, req.Level); err != nil {
			s.logger.Debug("permission denied", "action", action.String(), "folder_id", folder.ID, "user_id", p.UserID)
			return err
		}
	}
	return nil
}

// authorizeFile gates a file action on its folder. Root files have no folder
// grants: any member may download them, only the uploader may change them.
func (s *vaultService) authorizeFile(ctx context.Context, p models.Principal, file *models.File, action Action) error {
	if file.InRoot() {
		if action == ActionDownloadFile || file.UploadedBy == p.UserID {
			return nil
		}
		return domain.NewAuthorizationError("only the uploader can %s at the organization root", action.String())
	}
	folder, err := s.tree.Get(ctx, *file.FolderID, p.OrganizationID)
	if err != nil {
		return err
	}
	return s.authorize(ctx, p, folder, action)
}

// CreateFolder creates a folder and gives its creator admin on it in the
// same transaction
func (s *vaultService) CreateFolder(ctx context.Context, p models.Principal, req *vaultSvc.CreateFolderRequest) (*models.Folder, error) {
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	if err := validateFolderName(strings.TrimSpace(req.Name)); err != nil {
		return nil, err
	}
	if err := s.scope(ctx, p); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.tree.Get(ctx, *req.ParentID, p.OrganizationID)
		if err != nil {
			return nil, err
		}
		if err := s.authorize(ctx, p, parent, ActionCreateSubfolder); err != nil {
			return nil, err
		}
	}

	req.OrganizationID = p.OrganizationID
	req.CreatedBy = p.UserID

	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		folder, err = s.tree.Create(txCtx, req)
		if err != nil {
			return err
		}
		return s.access.Grant(txCtx, p.UserID, folder.ID, models.LevelAdmin, p.UserID)
	})
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *vaultService) RenameFolder(ctx context.Context, p models.Principal, folderID string, req *vaultSvc.RenameFolderRequest) (*models.Folder, error) {
	if err := validateFolderName(strings.TrimSpace(req.Name)); err != nil {
		return nil, err
	}
	folder, err := s.folder(ctx, p, folderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, folder, ActionRenameFolder); err != nil {
		return nil, err
	}
	return s.tree.Rename(ctx, folder.ID, req)
}

func (s *vaultService) DeleteFolder(ctx context.Context, p models.Principal, folderID string) error {
	folder, err := s.folder(ctx, p, folderID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, folder, ActionDeleteFolder); err != nil {
		return err
	}
	if err := s.authorizeSubtree(ctx, p, folder, 0); err != nil {
		return err
	}
	return s.tree.Delete(ctx, folder)
}

// authorizeSubtree checks every descendant before anything is deleted. Grants
// do not flow down the tree, so the caller needs admin on each subfolder too.
func (s *vaultService) authorizeSubtree(ctx context.Context, p models.Principal, folder *models.Folder, depth int) error {
	if depth > config.MaxFolderDepth {
		return &domain.ConsistencyError{
			Resource: "folder",
			ID:       folder.ID,
			Message:  "folder tree deeper than the supported maximum",
		}
	}
	children, err := s.tree.Subfolders(ctx, &folder.ID, folder.OrganizationID)
	if err != nil {
		return err
	}
	for i := range children {
		child := &children[i]
		if err := s.authorize(ctx, p, child, ActionDeleteFolder); err != nil {
			if errors.Is(err, domain.ErrForbidden) {
				return domain.NewAuthorizationError("folder %q contains %q, which you cannot delete", folder.Name, child.Name)
			}
			return err
		}
		if err := s.authorizeSubtree(ctx, p, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// VerifyFolderPassword unlocks the folder for the principal's session only
func (s *vaultService) VerifyFolderPassword(ctx context.Context, p models.Principal, folderID, password string) error {
	if password == "" {
		return domain.NewValidationError("password is required")
	}
	folder, err := s.folder(ctx, p, folderID)
	if err != nil {
		return err
	}
	if !s.lock.IsLocked(folder) {
		return nil
	}
	if !s.lock.Verify(folder, password) {
		s.logger.Info("folder password rejected", "folder_id", folder.ID, "user_id", p.UserID)
		return domain.NewAuthorizationError("incorrect folder password")
	}
	if err := s.lock.Unlock(ctx, p, folder.ID); err != nil {
		return err
	}
	s.logger.Info("folder unlocked", "folder_id", folder.ID, "user_id", p.UserID, "session_id", p.SessionID)
	return nil
}

// SetFolderPassword replaces the password; an empty password removes the lock
func (s *vaultService) SetFolderPassword(ctx context.Context, p models.Principal, folderID, password string) error {
	folder, err := s.folder(ctx, p, folderID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, folder, ActionSetPassword); err != nil {
		return err
	}
	hash, err := s.lock.HashPassword(password)
	if err != nil {
		return err
	}
	return s.tree.SetPasswordHash(ctx, folder.ID, hash)
}

func (s *vaultService) OpenFolder(ctx context.Context, p models.Principal, folderID string) (*vaultSvc.FolderContents, error) {
	folder, err := s.folder(ctx, p, folderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, folder, ActionOpenFolder); err != nil {
		return nil, err
	}

	path, err := s.tree.Path(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	subfolders, err := s.tree.Subfolders(ctx, &folder.ID, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByFolder(ctx, &folder.ID, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	level, _, err := s.access.Level(ctx, p.UserID, folder.ID)
	if err != nil {
		return nil, err
	}

	s.logAccess(ctx, "folder", func(ctx context.Context, entry *models.AccessLogEntry) error {
		return s.accessLogs.LogFolderAccess(ctx, entry)
	}, folder.ID, p)

	return &vaultSvc.FolderContents{
		Folder:     folder,
		Path:       path,
		Subfolders: subfolders,
		Files:      files,
		Level:      level,
	}, nil
}

// ListRoot lists the organization's root folders and root files
func (s *vaultService) ListRoot(ctx context.Context, p models.Principal) (*vaultSvc.RootContents, error) {
	if err := s.scope(ctx, p); err != nil {
		return nil, err
	}
	folders, err := s.tree.Subfolders(ctx, nil, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByFolder(ctx, nil, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &vaultSvc.RootContents{Folders: folders, Files: files}, nil
}

func (s *vaultService) FolderPath(ctx context.Context, p models.Principal, folderID string) ([]models.PathSegment, error) {
	folder, err := s.folder(ctx, p, folderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, folder, ActionOpenFolder); err != nil {
		return nil, err
	}
	return s.tree.Path(ctx, folder.ID)
}

// UploadFile stores an upload in a folder, or the organization root when
// FolderID is nil
func (s *vaultService) UploadFile(ctx context.Context, p models.Principal, req *vaultSvc.UploadFileRequest) (*models.File, error) {
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	if err := s.files.ValidateUpload(req.Name, req.Size); err != nil {
		return nil, err
	}
	if err := s.scope(ctx, p); err != nil {
		return nil, err
	}

	if req.FolderID != nil {
		folder, err := s.tree.Get(ctx, *req.FolderID, p.OrganizationID)
		if err != nil {
			return nil, err
		}
		if err := s.authorize(ctx, p, folder, ActionUploadFile); err != nil {
			return nil, err
		}
	}

	return s.files.Upload(ctx, &vaultSvc.UploadRequest{
		FolderID:       req.FolderID,
		OrganizationID: p.OrganizationID,
		Name:           req.Name,
		Body:           req.Body,
		Size:           req.Size,
		MimeType:       req.MimeType,
		UploadedBy:     p.UserID,
	})
}

// DownloadFile opens the file for streaming; the caller closes Body
func (s *vaultService) DownloadFile(ctx context.Context, p models.Principal, fileID string) (*vaultSvc.Download, error) {
	if err := s.scope(ctx, p); err != nil {
		return nil, err
	}
	file, err := s.files.Get(ctx, fileID, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeFile(ctx, p, file, ActionDownloadFile); err != nil {
		return nil, err
	}

	body, err := s.files.Download(ctx, file)
	if err != nil {
		return nil, err
	}

	s.logAccess(ctx, "file", func(ctx context.Context, entry *models.AccessLogEntry) error {
		return s.accessLogs.LogFileDownload(ctx, entry)
	}, file.ID, p)

	return &vaultSvc.Download{File: file, Body: body}, nil
}

func (s *vaultService) RenameFile(ctx context.Context, p models.Principal, fileID, newName string) (*models.File, error) {
	if err := validateFileName(strings.TrimSpace(newName)); err != nil {
		return nil, err
	}
	if err := s.scope(ctx, p); err != nil {
		return nil, err
	}
	file, err := s.files.Get(ctx, fileID, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeFile(ctx, p, file, ActionRenameFile); err != nil {
		return nil, err
	}
	return s.files.Rename(ctx, file, newName)
}

func (s *vaultService) DeleteFile(ctx context.Context, p models.Principal, fileID string) error {
	if err := s.scope(ctx, p); err != nil {
		return err
	}
	file, err := s.files.Get(ctx, fileID, p.OrganizationID)
	if err != nil {
		return err
	}
	if err := s.authorizeFile(ctx, p, file, ActionDeleteFile); err != nil {
		return err
	}
	return s.files.Delete(ctx, file)
}

func (s *vaultService) GrantPermission(ctx context.Context, p models.Principal, folderID, userID string, level models.Level) error {
	if !level.Valid() {
		return domain.NewValidationError("level must be one of read, write, admin")
	}
	if strings.TrimSpace(userID) == "" {
		return domain.NewValidationError("user id is required")
	}
	folder, err := s.folder(ctx, p, folderID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, folder, ActionManagePermissions); err != nil {
		return err
	}
	return s.access.Grant(ctx, strings.TrimSpace(userID), folder.ID, level, p.UserID)
}

func (s *vaultService) RevokePermission(ctx context.Context, p models.Principal, folderID, userID string) error {
	folder, err := s.folder(ctx, p, folderID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, folder, ActionManagePermissions); err != nil {
		return err
	}
	return s.access.Revoke(ctx, userID, folder.ID)
}

func (s *vaultService) ListPermissions(ctx context.Context, p models.Principal, folderID string) ([]models.PermissionGrant, error) {
	folder, err := s.folder(ctx, p, folderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, folder, ActionManagePermissions); err != nil {
		return nil, err
	}
	return s.access.ListForFolder(ctx, folder.ID)
}

func (s *vaultService) ListIssuedGrants(ctx context.Context, p models.Principal) ([]models.PermissionGrant, error) {
	if err := s.scope(ctx, p); err != nil {
		return nil, err
	}
	return s.access.ListGrantedBy(ctx, p.UserID)
}

func (s *vaultService) Logout(ctx context.Context, p models.Principal) error {
	return s.lock.ForgetSession(ctx, p)
}

// logAccess appends an access log entry. A failed write is logged and never
// fails the request.
func (s *vaultService) logAccess(ctx context.Context, kind string, write func(context.Context, *models.AccessLogEntry) error, subjectID string, p models.Principal) {
	entry := &models.AccessLogEntry{
		SubjectID:  subjectID,
		ActorID:    p.UserID,
		IPAddress:  p.IPAddress,
		AccessedAt: time.Now(),
	}
	if err := write(ctx, entry); err != nil {
		s.logger.Warn("access log write failed", "kind", kind, "subject_id", subjectID, "error", err)
	}
}
