package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"docvault/internal/config"
	"docvault/internal/domain"
	models "docvault/internal/domain/models/vault"
	"docvault/internal/domain/repositories"
	vaultRepo "docvault/internal/domain/repositories/vault"
	vaultSvc "docvault/internal/domain/services/vault"
	"docvault/internal/repository/blobstore"
	"docvault/internal/repository/unlock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- organizations ---

type fakeOrgRepo struct {
	mu   sync.Mutex
	orgs map[string]models.Organization
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: make(map[string]models.Organization)}
}

func (r *fakeOrgRepo) Create(_ context.Context, org *models.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orgs {
		if o.Name == org.Name {
			return &domain.ConflictError{Message: "organization exists", ResourceType: "organization", ResourceID: o.ID}
		}
	}
	org.ID = uuid.NewString()
	r.orgs[org.ID] = *org
	return nil
}

func (r *fakeOrgRepo) GetByID(_ context.Context, id string) (*models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[id]
	if !ok {
		return nil, domain.NewNotFoundError("organization %s not found", id)
	}
	return &org, nil
}

func (r *fakeOrgRepo) List(_ context.Context) ([]models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Organization, 0, len(r.orgs))
	for _, o := range r.orgs {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- folders ---

type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]models.Folder
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]models.Folder)}
}

func (r *fakeFolderRepo) Create(_ context.Context, f *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ParentID != nil {
		parent, ok := r.folders[*f.ParentID]
		if !ok || parent.OrganizationID != f.OrganizationID {
			return domain.NewNotFoundError("parent folder not found")
		}
	}
	f.ID = uuid.NewString()
	r.folders[f.ID] = *f
	return nil
}

func (r *fakeFolderRepo) GetByID(_ context.Context, id, orgID string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok || f.OrganizationID != orgID {
		return nil, domain.NewNotFoundError("folder %s not found", id)
	}
	return &f, nil
}

func (r *fakeFolderRepo) GetByIDOnly(_ context.Context, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, domain.NewNotFoundError("folder %s not found", id)
	}
	return &f, nil
}

func (r *fakeFolderRepo) Update(_ context.Context, f *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[f.ID]; !ok {
		return domain.NewNotFoundError("folder %s not found", f.ID)
	}
	r.folders[f.ID] = *f
	return nil
}

func (r *fakeFolderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[id]; !ok {
		return domain.NewNotFoundError("folder %s not found", id)
	}
	for _, f := range r.folders {
		if f.ParentID != nil && *f.ParentID == id {
			return fmt.Errorf("folder %s still has children", id)
		}
	}
	delete(r.folders, id)
	return nil
}

func (r *fakeFolderRepo) ListChildren(_ context.Context, parentID *string, orgID string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Folder{}
	for _, f := range r.folders {
		if f.OrganizationID != orgID {
			continue
		}
		if (parentID == nil && f.ParentID == nil) || (parentID != nil && f.ParentID != nil && *f.ParentID == *parentID) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// setParent rewires a parent link directly, bypassing every check
func (r *fakeFolderRepo) setParent(id string, parentID *string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.folders[id]
	f.ParentID = parentID
	r.folders[id] = f
}

func (r *fakeFolderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.folders)
}

// --- files ---

type fakeFileRepo struct {
	mu        sync.Mutex
	files     map[string]models.File
	createErr error
	deleteErr error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]models.File)}
}

func (r *fakeFileRepo) Create(_ context.Context, f *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.files {
		if existing.StoragePath == f.StoragePath {
			return domain.ErrConflict
		}
	}
	f.ID = uuid.NewString()
	r.files[f.ID] = *f
	return nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id, orgID string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok || f.OrganizationID != orgID {
		return nil, domain.NewNotFoundError("file %s not found", id)
	}
	return &f, nil
}

func (r *fakeFileRepo) UpdateName(_ context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return domain.NewNotFoundError("file %s not found", id)
	}
	f.Name = name
	r.files[id] = f
	return nil
}

func (r *fakeFileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.files[id]; !ok {
		return domain.NewNotFoundError("file %s not found", id)
	}
	delete(r.files, id)
	return nil
}

func (r *fakeFileRepo) ListByFolder(_ context.Context, folderID *string, orgID string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.File{}
	for _, f := range r.files {
		if f.OrganizationID != orgID {
			continue
		}
		if (folderID == nil && f.FolderID == nil) || (folderID != nil && f.FolderID != nil && *f.FolderID == *folderID) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFileRepo) ListByOrganization(_ context.Context, orgID string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.File{}
	for _, f := range r.files {
		if f.OrganizationID == orgID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

// --- permissions ---

type grantKey struct{ userID, folderID string }

type fakePermissionRepo struct {
	mu     sync.Mutex
	grants map[grantKey]models.PermissionGrant
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{grants: make(map[grantKey]models.PermissionGrant)}
}

func (r *fakePermissionRepo) Upsert(_ context.Context, g *models.PermissionGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants[grantKey{g.UserID, g.FolderID}] = *g
	return nil
}

func (r *fakePermissionRepo) Delete(_ context.Context, userID, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants, grantKey{userID, folderID})
	return nil
}

func (r *fakePermissionRepo) DeleteByFolder(_ context.Context, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.grants {
		if k.folderID == folderID {
			delete(r.grants, k)
		}
	}
	return nil
}

func (r *fakePermissionRepo) Get(_ context.Context, userID, folderID string) (*models.PermissionGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[grantKey{userID, folderID}]
	if !ok {
		return nil, domain.NewNotFoundError("no permission")
	}
	return &g, nil
}

func (r *fakePermissionRepo) ListByFolder(_ context.Context, folderID string) ([]models.PermissionGrant, error) {
	return r.filter(func(g models.PermissionGrant) bool { return g.FolderID == folderID }), nil
}

func (r *fakePermissionRepo) ListGrantedBy(_ context.Context, userID string) ([]models.PermissionGrant, error) {
	return r.filter(func(g models.PermissionGrant) bool { return g.GrantedBy == userID }), nil
}

func (r *fakePermissionRepo) filter(keep func(models.PermissionGrant) bool) []models.PermissionGrant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.PermissionGrant{}
	for _, g := range r.grants {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (r *fakePermissionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.grants)
}

// --- access logs ---

type fakeAccessLogRepo struct {
	mu        sync.Mutex
	folders   []models.AccessLogEntry
	downloads []models.AccessLogEntry
	err       error
}

func (r *fakeAccessLogRepo) LogFolderAccess(_ context.Context, e *models.AccessLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.folders = append(r.folders, *e)
	return nil
}

func (r *fakeAccessLogRepo) LogFileDownload(_ context.Context, e *models.AccessLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.downloads = append(r.downloads, *e)
	return nil
}

// --- transactions ---

type fakeTxManager struct{ calls int }

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.calls++
	return fn(ctx)
}

// --- blobs with failure injection ---

type flakyBlobStore struct {
	vaultRepo.BlobStore
	putErr    error
	deleteErr error
}

func (s *flakyBlobStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if s.putErr != nil {
		return 0, s.putErr
	}
	return s.BlobStore.Put(ctx, key, r)
}

func (s *flakyBlobStore) Delete(ctx context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.BlobStore.Delete(ctx, key)
}

var errInjected = errors.New("injected failure")

// --- environment ---

type testEnv struct {
	orgs       *fakeOrgRepo
	folders    *fakeFolderRepo
	files      *fakeFileRepo
	perms      *fakePermissionRepo
	logs       *fakeAccessLogRepo
	tx         *fakeTxManager
	mem        *blobstore.MemoryStore
	blobs      *flakyBlobStore
	unlocks    *unlock.MemoryStore
	policy     *config.UploadPolicy
	tenants    vaultSvc.TenantDirectory
	access     vaultSvc.AccessControl
	lock       vaultSvc.FolderLock
	store      vaultSvc.FileStore
	tree       vaultSvc.FolderTree
	vault      vaultSvc.Vault
	reconciler vaultSvc.Reconciler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	policy, err := config.DefaultUploadPolicy()
	require.NoError(t, err)

	logger := discardLogger()
	env := &testEnv{
		orgs:    newFakeOrgRepo(),
		folders: newFakeFolderRepo(),
		files:   newFakeFileRepo(),
		perms:   newFakePermissionRepo(),
		logs:    &fakeAccessLogRepo{},
		tx:      &fakeTxManager{},
		mem:     blobstore.NewMemoryStore(),
		unlocks: unlock.NewMemoryStore(0),
		policy:  policy,
	}
	env.blobs = &flakyBlobStore{BlobStore: env.mem}

	env.tenants = NewTenantDirectory(env.orgs, logger)
	env.access = NewAccessControl(env.perms, logger)
	env.lock = NewFolderLock(env.unlocks, bcrypt.MinCost, logger)
	env.store = NewFileStore(env.files, env.blobs, env.policy, logger)
	env.tree = NewFolderTree(env.folders, env.store, env.access, env.lock, env.tx, logger)
	env.vault = NewVault(Deps{
		Tenants:    env.tenants,
		Tree:       env.tree,
		Lock:       env.lock,
		Access:     env.access,
		Files:      env.store,
		AccessLogs: env.logs,
		TxManager:  env.tx,
		Logger:     logger,
	})
	env.reconciler = NewReconciler(env.files, env.blobs, logger)
	return env
}

func (e *testEnv) newOrg(t *testing.T, name string) string {
	t.Helper()
	org, err := e.tenants.Create(context.Background(), name)
	require.NoError(t, err)
	return org.ID
}

func principal(orgID, userID, sessionID string) models.Principal {
	return models.Principal{UserID: userID, OrganizationID: orgID, SessionID: sessionID, IPAddress: "203.0.113.7"}
}

func strPtr(s string) *string { return &s }
