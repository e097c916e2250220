package handler

import (
	"log/slog"
	"net/http"

	vaultSvc "docvault/internal/domain/services/vault"
)

// NewRouter registers every route on a ServeMux (Go 1.22+ patterns)
func NewRouter(vault vaultSvc.Vault, maxUploadBytes int64, logger *slog.Logger) *http.ServeMux {
	folders := NewFolderHandler(vault, logger)
	files := NewFileHandler(vault, maxUploadBytes, logger)
	permissions := NewPermissionHandler(vault, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HealthCheck)

	// Folder routes
	mux.HandleFunc("GET /api/folders", folders.ListRoot)
	mux.HandleFunc("POST /api/folders", folders.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folders.OpenFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folders.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/path", folders.GetPath)
	mux.HandleFunc("POST /api/folders/{id}/unlock", folders.Unlock)
	mux.HandleFunc("PUT /api/folders/{id}/password", folders.SetPassword)

	// Permission routes
	mux.HandleFunc("GET /api/folders/{id}/permissions", permissions.List)
	mux.HandleFunc("PUT /api/folders/{id}/permissions/{userID}", permissions.Grant)
	mux.HandleFunc("DELETE /api/folders/{id}/permissions/{userID}", permissions.Revoke)
	mux.HandleFunc("GET /api/permissions/issued", permissions.ListIssued)

	// File routes
	mux.HandleFunc("POST /api/files", files.Upload)
	mux.HandleFunc("GET /api/files/{id}/content", files.Download)
	mux.HandleFunc("PATCH /api/files/{id}", files.Rename)
	mux.HandleFunc("DELETE /api/files/{id}", files.Delete)

	// Session
	mux.HandleFunc("POST /api/session/logout", folders.Logout)

	return mux
}
