package vault

import (
	"log/slog"

	"docvault/internal/config"
	"docvault/internal/domain/repositories"
	vaultRepo "docvault/internal/domain/repositories/vault"
	vaultSvc "docvault/internal/domain/services/vault"
)

// Repositories are the storage dependencies of the vault services
type Repositories struct {
	Organizations vaultRepo.OrganizationRepository
	Folders       vaultRepo.FolderRepository
	Files         vaultRepo.FileRepository
	Permissions   vaultRepo.PermissionRepository
	AccessLogs    vaultRepo.AccessLogRepository
	Blobs         vaultRepo.BlobStore
	Unlocks       vaultRepo.UnlockStore
	TxManager     repositories.TransactionManager
}

// Services holds everything the transports and the admin CLI use
type Services struct {
	Vault      vaultSvc.Vault
	Tenants    vaultSvc.TenantDirectory
	Reconciler vaultSvc.Reconciler
}

// SetupServices wires the modules together. bcryptCost 0 selects bcrypt.DefaultCost.
func SetupServices(repos Repositories, policy *config.UploadPolicy, bcryptCost int, logger *slog.Logger) *Services {
	tenants := NewTenantDirectory(repos.Organizations, logger)
	access := NewAccessControl(repos.Permissions, logger)
	lock := NewFolderLock(repos.Unlocks, bcryptCost, logger)
	files := NewFileStore(repos.Files, repos.Blobs, policy, logger)
	tree := NewFolderTree(repos.Folders, files, access, lock, repos.TxManager, logger)

	v := NewVault(Deps{
		Tenants:    tenants,
		Tree:       tree,
		Lock:       lock,
		Access:     access,
		Files:      files,
		AccessLogs: repos.AccessLogs,
		TxManager:  repos.TxManager,
		Logger:     logger,
	})

	logger.Info("vault services initialized",
		"max_upload_bytes", policy.MaxUploadBytes,
		"allowed_extensions", len(policy.AllowedExtensions),
	)

	return &Services{
		Vault:      v,
		Tenants:    tenants,
		Reconciler: NewReconciler(repos.Files, repos.Blobs, logger),
	}
}
