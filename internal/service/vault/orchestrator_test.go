package vault

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/vault"
	vaultSvc "docvault/internal/domain/services/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVault_LockAndGrantAreIndependentGates(t *testing.T) {
	tests := []struct {
		name     string
		locked   bool
		unlocked bool
		grant    bool
		wantErr  error
	}{
		{name: "open folder with grant", grant: true},
		{name: "open folder without grant", wantErr: domain.ErrForbidden},
		{name: "locked folder with grant, not unlocked", locked: true, grant: true, wantErr: domain.ErrForbidden},
		{name: "locked folder with grant, unlocked", locked: true, unlocked: true, grant: true},
		{name: "locked folder without grant, unlocked", locked: true, unlocked: true, wantErr: domain.ErrForbidden},
		{name: "locked folder without grant, not unlocked", locked: true, wantErr: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			orgID := env.newOrg(t, "Acme")
			owner := principal(orgID, "owner", "s-owner")
			viewer := principal(orgID, "viewer", "s-viewer")

			req := &vaultSvc.CreateFolderRequest{Name: "Board"}
			if tt.locked {
				req.Password = "hunter2"
			}
			folder, err := env.vault.CreateFolder(ctx, owner, req)
			require.NoError(t, err)

			if tt.grant {
				require.NoError(t, env.vault.GrantPermission(ctx, owner, folder.ID, viewer.UserID, models.LevelRead))
			}
			if tt.unlocked {
				require.NoError(t, env.vault.VerifyFolderPassword(ctx, viewer, folder.ID, "hunter2"))
			}

			_, err = env.vault.OpenFolder(ctx, viewer, folder.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVault_AdminStillNeedsPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "Acme")
	owner := principal(orgID, "owner", "s1")

	folder, err := env.vault.CreateFolder(ctx, owner, &vaultSvc.CreateFolderRequest{Name: "Secret", Password: "pw"})
	require.NoError(t, err)

	_, err = env.vault.OpenFolder(ctx, owner, folder.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.ErrorIs(t, env.vault.VerifyFolderPassword(ctx, owner, folder.ID, "nope"), domain.ErrForbidden)
	require.NoError(t, env.vault.VerifyFolderPassword(ctx, owner, folder.ID, "pw"))

	contents, err := env.vault.OpenFolder(ctx, owner, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LevelAdmin, contents.Level)

	// A new session of the same user starts locked again
	_, err = env.vault.OpenFolder(ctx, principal(orgID, "owner", "s2"), folder.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, env.vault.Logout(ctx, owner))
	_, err = env.vault.OpenFolder(ctx, owner, folder.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVault_CreatorGetsAdminInOneTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "Acme")

	folder, err := env.vault.CreateFolder(ctx, principal(orgID, "u1", "s1"), &vaultSvc.CreateFolderRequest{Name: "Reports"})
	require.NoError(t, err)
	assert.Equal(t, 1, env.tx.calls)

	level, ok, err := env.access.Level(ctx, "u1", folder.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.LevelAdmin, level)
	assert.Equal(t, "u1", folder.CreatedBy)
	assert.Equal(t, orgID, folder.OrganizationID)
}

func TestVault_SubfolderNeedsWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "Acme")
	owner := principal(orgID, "u1", "s1")
	reader := principal(orgID, "u2", "s2")

	parent, err := env.vault.CreateFolder(ctx, owner, &vaultSvc.CreateFolderRequest{Name: "Parent"})
	require.NoError(t, err)
	require.NoError(t, env.vault.GrantPermission(ctx, owner, parent.ID, reader.UserID, models.LevelRead))

	_, err = env.vault.CreateFolder(ctx, reader, &vaultSvc.CreateFolderRequest{ParentID: &parent.ID, Name: "Child"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, env.vault.GrantPermission(ctx, owner, parent.ID, reader.UserID, models.LevelWrite))
	child, err := env.vault.CreateFolder(ctx, reader, &vaultSvc.CreateFolderRequest{ParentID: &parent.ID, Name: "Child"})
	require.NoError(t, err)

	path, err := env.vault.FolderPath(ctx, reader, child.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.PathSegment{{ID: parent.ID, Name: "Parent"}, {ID: child.ID, Name: "Child"}}, path)
}

func TestVault_CrossTenantIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgA := env.newOrg(t, "A")
	orgB := env.newOrg(t, "B")
	alice := principal(orgA, "alice", "s1")
	mallory := principal(orgB, "mallory", "s2")

	folder, err := env.vault.CreateFolder(ctx, alice, &vaultSvc.CreateFolderRequest{Name: "Private"})
	require.NoError(t, err)
	file, err := env.vault.UploadFile(ctx, alice, &vaultSvc.UploadFileRequest{
		FolderID: &folder.ID, Name: "plan.txt", Body: strings.NewReader("x"), Size: 1,
	})
	require.NoError(t, err)

	// Even a grant does not cross the tenant boundary
	require.NoError(t, env.access.Grant(ctx, mallory.UserID, folder.ID, models.LevelAdmin, "alice"))

	_, err = env.vault.OpenFolder(ctx, mallory, folder.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.vault.DownloadFile(ctx, mallory, file.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.vault.RenameFile(ctx, mallory, file.ID, "mine.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.vault.DeleteFile(ctx, mallory, file.ID), domain.ErrNotFound)
	assert.ErrorIs(t, env.vault.DeleteFolder(ctx, mallory, folder.ID), domain.ErrNotFound)
	_, err = env.vault.RenameFolder(ctx, mallory, folder.ID, &vaultSvc.RenameFolderRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.vault.VerifyFolderPassword(ctx, mallory, folder.ID, "pw"), domain.ErrNotFound)
}

func TestVault_UnknownOrganizationOrAnonymous(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.vault.ListRoot(ctx, principal("no-such-org", "u1", "s1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.vault.ListRoot(ctx, models.Principal{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVault_RootFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "Acme")
	u1 := principal(orgID, "u1", "s1")
	u2 := principal(orgID, "u2", "s2")

	file, err := env.vault.UploadFile(ctx, u1, &vaultSvc.UploadFileRequest{Name: "memo.txt", Body: strings.NewReader("hi"), Size: 2})
	require.NoError(t, err)
	assert.True(t, file.InRoot())

	root, err := env.vault.ListRoot(ctx, u2)
	require.NoError(t, err)
	require.Len(t, root.Files, 1)

	dl, err := env.vault.DownloadFile(ctx, u2, file.ID)
	require.NoError(t, err)
	dl.Body.Close()

	_, err = env.vault.RenameFile(ctx, u2, file.ID, "x.txt")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, env.vault.DeleteFile(ctx, u2, file.ID), domain.ErrForbidden)

	_, err = env.vault.RenameFile(ctx, u1, file.ID, "memo-final.txt")
	require.NoError(t, err)
	require.NoError(t, env.vault.DeleteFile(ctx, u1, file.ID))
}

func TestVault_ValidationComesFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "Acme")
	owner := principal(orgID, "u1", "s1")
	stranger := principal(orgID, "u2", "s2")

	folder, err := env.vault.CreateFolder(ctx, owner, &vaultSvc.CreateFolderRequest{Name: "F"})
	require.NoError(t, err)

	_, err = env.vault.UploadFile(ctx, stranger, &vaultSvc.UploadFileRequest{
		FolderID: &folder.ID, Name: "virus.exe", Body: strings.NewReader("x"), Size: 1,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.vault.CreateFolder(ctx, stranger, &vaultSvc.CreateFolderRequest{ParentID: &folder.ID, Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = env.vault.GrantPermission(ctx, stranger, folder.ID, "u3", models.LevelNone)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVault_PermissionManagementNeedsAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "Acme")
	owner := principal(orgID, "u1", "s1")
	writer := principal(orgID, "u2", "s2")

	folder, err := env.vault.CreateFolder(ctx, owner, &vaultSvc.CreateFolderRequest{Name: "F"})
	require.NoError(t, err)
	require.NoError(t, env.vault.GrantPermission(ctx, owner, folder.ID, writer.UserID, models.LevelWrite))

	assert.ErrorIs(t, env.vault.GrantPermission(ctx, writer, folder.ID, "u3", models.LevelRead), domain.ErrForbidden)
	assert.ErrorIs(t, env.vault.RevokePermission(ctx, writer, folder.ID, owner.UserID), domain.ErrForbidden)
	_, err = env.vault.ListPermissions(ctx, writer, folder.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, env.vault.SetFolderPassword(ctx, writer, folder.ID, "pw"), domain.ErrForbidden)
	assert.ErrorIs(t, env.vault.DeleteFolder(ctx, writer, folder.ID), domain.ErrForbidden)

	grants, err := env.vault.ListPermissions(ctx, owner, folder.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 2)

	issued, err := env.vault.ListIssuedGrants(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, issued, 2, "self grant on create plus the writer grant")

	require.NoError(t, env.vault.RevokePermission(ctx, owner, folder.ID, writer.UserID))
	_, err = env.vault.OpenFolder(ctx, writer, folder.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVault_SetFolderPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "Acme")
	owner := principal(orgID, "u1", "s1")

	folder, err := env.vault.CreateFolder(ctx, owner, &vaultSvc.CreateFolderRequest{Name: "F"})
	require.NoError(t, err)

	require.NoError(t, env.vault.SetFolderPassword(ctx, owner, folder.ID, "pw"))
	_, err = env.vault.OpenFolder(ctx, owner, folder.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, env.vault.SetFolderPassword(ctx, owner, folder.ID, ""))
	_, err = env.vault.OpenFolder(ctx, owner, folder.ID)
	assert.NoError(t, err)
}

func TestVault_AccessLogs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "Acme")
	owner := principal(orgID, "u1", "s1")

	folder, err := env.vault.CreateFolder(ctx, owner, &vaultSvc.CreateFolderRequest{Name: "F"})
	require.NoError(t, err)
	file, err := env.vault.UploadFile(ctx, owner, &vaultSvc.UploadFileRequest{
		FolderID: &folder.ID, Name: "a.txt", Body: strings.NewReader("abc"), Size: 3,
	})
	require.NoError(t, err)

	_, err = env.vault.OpenFolder(ctx, owner, folder.ID)
	require.NoError(t, err)
	dl, err := env.vault.DownloadFile(ctx, owner, file.ID)
	require.NoError(t, err)
	dl.Body.Close()

	require.Len(t, env.logs.folders, 1)
	assert.Equal(t, folder.ID, env.logs.folders[0].SubjectID)
	assert.Equal(t, "203.0.113.7", env.logs.folders[0].IPAddress)
	require.Len(t, env.logs.downloads, 1)
	assert.Equal(t, file.ID, env.logs.downloads[0].SubjectID)

	// A broken log table never fails the request
	env.logs.err = errInjected
	_, err = env.vault.OpenFolder(ctx, owner, folder.ID)
	assert.NoError(t, err)
	dl, err = env.vault.DownloadFile(ctx, owner, file.ID)
	require.NoError(t, err)
	dl.Body.Close()
}

func TestVault_DeleteFolderCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "Acme")
	owner := principal(orgID, "u1", "s1")

	parent, err := env.vault.CreateFolder(ctx, owner, &vaultSvc.CreateFolderRequest{Name: "P"})
	require.NoError(t, err)
	child, err := env.vault.CreateFolder(ctx, owner, &vaultSvc.CreateFolderRequest{ParentID: &parent.ID, Name: "C"})
	require.NoError(t, err)
	_, err = env.vault.UploadFile(ctx, owner, &vaultSvc.UploadFileRequest{
		FolderID: &child.ID, Name: "deep.txt", Body: strings.NewReader("x"), Size: 1,
	})
	require.NoError(t, err)

	require.NoError(t, env.vault.DeleteFolder(ctx, owner, parent.ID))
	assert.Equal(t, 0, env.folders.count())
	assert.Equal(t, 0, env.files.count())
	assert.Equal(t, 0, env.mem.Len())
	assert.Equal(t, 0, env.perms.count())
}

func TestVault_DeleteFolderNeedsAdminOnEverySubfolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "Acme")
	u1 := principal(orgID, "u1", "s1")
	u2 := principal(orgID, "u2", "s2")

	parent, err := env.vault.CreateFolder(ctx, u1, &vaultSvc.CreateFolderRequest{Name: "P"})
	require.NoError(t, err)
	require.NoError(t, env.vault.GrantPermission(ctx, u1, parent.ID, u2.UserID, models.LevelWrite))

	private, err := env.vault.CreateFolder(ctx, u2, &vaultSvc.CreateFolderRequest{
		ParentID: &parent.ID, Name: "Private", Password: "pw",
	})
	require.NoError(t, err)
	require.NoError(t, env.vault.VerifyFolderPassword(ctx, u2, private.ID, "pw"))
	_, err = env.vault.UploadFile(ctx, u2, &vaultSvc.UploadFileRequest{
		FolderID: &private.ID, Name: "secret.txt", Body: strings.NewReader("s"), Size: 1,
	})
	require.NoError(t, err)

	_, err = env.vault.OpenFolder(ctx, u1, private.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	err = env.vault.DeleteFolder(ctx, u1, parent.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, err.Error(), "Private")
	assert.Equal(t, 2, env.folders.count())
	assert.Equal(t, 1, env.files.count())
	assert.Equal(t, 1, env.mem.Len())

	// admin on the child as well makes the cascade allowed
	require.NoError(t, env.vault.GrantPermission(ctx, u2, private.ID, u1.UserID, models.LevelAdmin))
	require.NoError(t, env.vault.DeleteFolder(ctx, u1, parent.ID))
	assert.Equal(t, 0, env.folders.count())
	assert.Equal(t, 0, env.files.count())
	assert.Equal(t, 0, env.mem.Len())
}

// Organization A: u1 creates "Reports", grants read to u2; u2 uploads q3.pdf;
// u1 sees it; u2 cannot delete it.
func TestVault_EndToEndScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.Equal(t, int64(100*1024*1024), env.policy.MaxUploadBytes)

	orgID := env.newOrg(t, "A")
	u1 := principal(orgID, "u1", "s1")
	u2 := principal(orgID, "u2", "s2")

	reports, err := env.vault.CreateFolder(ctx, u1, &vaultSvc.CreateFolderRequest{Name: "Reports"})
	require.NoError(t, err)
	require.NoError(t, env.vault.GrantPermission(ctx, u1, reports.ID, u2.UserID, models.LevelRead))

	payload := bytes.Repeat([]byte("q3"), 5*1024*1024/2)
	q3, err := env.vault.UploadFile(ctx, u2, &vaultSvc.UploadFileRequest{
		FolderID: &reports.ID,
		Name:     "q3.pdf",
		Body:     bytes.NewReader(payload),
		Size:     int64(len(payload)),
		MimeType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5*1024*1024), q3.SizeBytes)

	contents, err := env.vault.OpenFolder(ctx, u1, reports.ID)
	require.NoError(t, err)
	require.Len(t, contents.Files, 1)
	assert.Equal(t, "q3.pdf", contents.Files[0].Name)

	err = env.vault.DeleteFile(ctx, u2, q3.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	dl, err := env.vault.DownloadFile(ctx, u1, q3.ID)
	require.NoError(t, err)
	defer dl.Body.Close()
	got, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, env.vault.DeleteFile(ctx, u1, q3.ID))
}
