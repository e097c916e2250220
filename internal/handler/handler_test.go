package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/vault"
	vaultSvc "docvault/internal/domain/services/vault"
	"docvault/internal/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVault overrides the calls a test needs; anything else panics on the nil embed
type stubVault struct {
	vaultSvc.Vault

	upload       func(p models.Principal, req *vaultSvc.UploadFileRequest) (*models.File, error)
	download     func(fileID string) (*vaultSvc.Download, error)
	open         func(folderID string) (*vaultSvc.FolderContents, error)
	renameFolder func(folderID string, req *vaultSvc.RenameFolderRequest) (*models.Folder, error)
	grant        func(folderID, userID string, level models.Level) error
}

func (s *stubVault) UploadFile(_ context.Context, p models.Principal, req *vaultSvc.UploadFileRequest) (*models.File, error) {
	return s.upload(p, req)
}

func (s *stubVault) DownloadFile(_ context.Context, _ models.Principal, fileID string) (*vaultSvc.Download, error) {
	return s.download(fileID)
}

func (s *stubVault) OpenFolder(_ context.Context, _ models.Principal, folderID string) (*vaultSvc.FolderContents, error) {
	return s.open(folderID)
}

func (s *stubVault) RenameFolder(_ context.Context, _ models.Principal, folderID string, req *vaultSvc.RenameFolderRequest) (*models.Folder, error) {
	return s.renameFolder(folderID, req)
}

func (s *stubVault) GrantPermission(_ context.Context, _ models.Principal, folderID, userID string, level models.Level) error {
	return s.grant(folderID, userID, level)
}

var caller = models.Principal{UserID: "u1", OrganizationID: "org-a", SessionID: "s1", IPAddress: "192.0.2.1"}

func serve(t *testing.T, v vaultSvc.Vault, req *http.Request, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	if authenticated {
		req = httputil.WithPrincipal(req, caller)
	}
	rec := httptest.NewRecorder()
	NewRouter(v, 1024, slog.New(slog.NewTextHandler(io.Discard, nil))).ServeHTTP(rec, req)
	return rec
}

type formPart struct {
	name, filename, value string
}

func multipartRequest(t *testing.T, parts ...formPart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename != "" {
			fw, err := mw.CreateFormFile(p.name, p.filename)
			require.NoError(t, err)
			_, err = fw.Write([]byte(p.value))
			require.NoError(t, err)
			continue
		}
		require.NoError(t, mw.WriteField(p.name, p.value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload_StreamsFilePart(t *testing.T) {
	var got *vaultSvc.UploadFileRequest
	var body []byte
	v := &stubVault{upload: func(p models.Principal, req *vaultSvc.UploadFileRequest) (*models.File, error) {
		assert.Equal(t, caller, p)
		got = req
		var err error
		body, err = io.ReadAll(req.Body)
		require.NoError(t, err)
		return &models.File{ID: "f1", Name: req.Name, SizeBytes: int64(len(body))}, nil
	}}

	rec := serve(t, v, multipartRequest(t,
		formPart{name: "folder_id", value: "folder-1"},
		formPart{name: "size", value: "5"},
		formPart{name: "file", filename: "q3.pdf", value: "hello"},
	), true)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, got)
	require.NotNil(t, got.FolderID)
	assert.Equal(t, "folder-1", *got.FolderID)
	assert.Equal(t, int64(5), got.Size)
	assert.Equal(t, "q3.pdf", got.Name)
	assert.Equal(t, "hello", string(body))

	var file models.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &file))
	assert.Equal(t, "f1", file.ID)
}

func TestUpload_RootWhenFolderOmitted(t *testing.T) {
	var got *vaultSvc.UploadFileRequest
	v := &stubVault{upload: func(_ models.Principal, req *vaultSvc.UploadFileRequest) (*models.File, error) {
		got = req
		return &models.File{ID: "f1"}, nil
	}}

	rec := serve(t, v, multipartRequest(t,
		formPart{name: "size", value: "2"},
		formPart{name: "file", filename: "a.txt", value: "hi"},
	), true)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, got.FolderID)
}

func TestUpload_RejectsMalformedForms(t *testing.T) {
	v := &stubVault{upload: func(models.Principal, *vaultSvc.UploadFileRequest) (*models.File, error) {
		t.Fatal("vault must not be called")
		return nil, nil
	}}

	tests := []struct {
		name  string
		parts []formPart
	}{
		{name: "file before size", parts: []formPart{{name: "file", filename: "a.txt", value: "x"}, {name: "size", value: "1"}}},
		{name: "no file part", parts: []formPart{{name: "size", value: "1"}}},
		{name: "size not a number", parts: []formPart{{name: "size", value: "big"}, {name: "file", filename: "a.txt", value: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, v, multipartRequest(t, tt.parts...), true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/files", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		assert.Equal(t, http.StatusBadRequest, serve(t, v, req, true).Code)
	})
}

func TestUpload_RequiresPrincipal(t *testing.T) {
	rec := serve(t, &stubVault{}, multipartRequest(t, formPart{name: "size", value: "1"}), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDownload_StreamsWithHeaders(t *testing.T) {
	v := &stubVault{download: func(fileID string) (*vaultSvc.Download, error) {
		assert.Equal(t, "f1", fileID)
		return &vaultSvc.Download{
			File: &models.File{ID: "f1", Name: "q3 report.pdf", SizeBytes: 4, MimeType: "application/pdf"},
			Body: io.NopCloser(strings.NewReader("%PDF")),
		}, nil
	}}

	rec := serve(t, v, httptest.NewRequest(http.MethodGet, "/api/files/f1/content", nil), true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Equal(t, `attachment; filename="q3 report.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", rec.Body.String())
}

func TestOpenFolder_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: domain.NewAuthorizationError("folder is locked"), want: http.StatusForbidden},
		{err: domain.NewNotFoundError("folder x not found"), want: http.StatusNotFound},
		{err: &domain.StorageError{Op: "open", Key: "k", Err: io.ErrUnexpectedEOF}, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		v := &stubVault{open: func(string) (*vaultSvc.FolderContents, error) { return nil, tt.err }}
		rec := serve(t, v, httptest.NewRequest(http.MethodGet, "/api/folders/x", nil), true)
		assert.Equal(t, tt.want, rec.Code)
	}
}

func TestUpdateFolder_DescriptionTriState(t *testing.T) {
	var got *vaultSvc.RenameFolderRequest
	v := &stubVault{renameFolder: func(id string, req *vaultSvc.RenameFolderRequest) (*models.Folder, error) {
		got = req
		return &models.Folder{ID: id, Name: req.Name}, nil
	}}

	rec := serve(t, v, httptest.NewRequest(http.MethodPatch, "/api/folders/f1", strings.NewReader(`{"name":"Reports"}`)), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got.Description)

	rec = serve(t, v, httptest.NewRequest(http.MethodPatch, "/api/folders/f1", strings.NewReader(`{"name":"Reports","description":null}`)), true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Description)
	assert.Equal(t, "", *got.Description)
}

func TestGrant_ParsesLevel(t *testing.T) {
	var gotLevel models.Level
	v := &stubVault{grant: func(folderID, userID string, level models.Level) error {
		assert.Equal(t, "f1", folderID)
		assert.Equal(t, "u2", userID)
		gotLevel = level
		return nil
	}}

	rec := serve(t, v, httptest.NewRequest(http.MethodPut, "/api/folders/f1/permissions/u2", strings.NewReader(`{"level":"write"}`)), true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.LevelWrite, gotLevel)

	rec = serve(t, v, httptest.NewRequest(http.MethodPut, "/api/folders/f1/permissions/u2", strings.NewReader(`{"level":"owner"}`)), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	rec := serve(t, &stubVault{}, httptest.NewRequest(http.MethodGet, "/health", nil), false)
	assert.Equal(t, http.StatusOK, rec.Code)
}
