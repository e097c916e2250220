package handler

import (
	"log/slog"
	"net/http"

	vaultSvc "docvault/internal/domain/services/vault"
	"docvault/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	vault  vaultSvc.Vault
	logger *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(vault vaultSvc.Vault, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		vault:  vault,
		logger: logger,
	}
}

// updateFolderRequest distinguishes an absent description from a cleared one
type updateFolderRequest struct {
	Name        string                  `json:"name"`
	Description httputil.OptionalString `json:"description"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// ListRoot lists root folders and root files of the caller's organization
// GET /api/folders
func (h *FolderHandler) ListRoot(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	contents, err := h.vault.ListRoot(r.Context(), p)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// CreateFolder creates a folder; the caller becomes its admin
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req vaultSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.vault.CreateFolder(r.Context(), p, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// OpenFolder returns the folder, its breadcrumb, sub-folders and files
// GET /api/folders/{id}
func (h *FolderHandler) OpenFolder(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	contents, err := h.vault.OpenFolder(r.Context(), p, id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// UpdateFolder renames a folder and optionally changes its description
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body updateFolderRequest
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.vault.RenameFolder(r.Context(), p, id, &vaultSvc.RenameFolderRequest{
		Name:        body.Name,
		Description: body.Description.Patch(),
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with everything below it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.vault.DeleteFolder(r.Context(), p, id); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPath returns the breadcrumb from the organization root
// GET /api/folders/{id}/path
func (h *FolderHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	path, err := h.vault.FolderPath(r.Context(), p, id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, path)
}

// Unlock verifies a folder password for the caller's session
// POST /api/folders/{id}/unlock
func (h *FolderHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body passwordRequest
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.vault.VerifyFolderPassword(r.Context(), p, id, body.Password); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetPassword sets or (with an empty password) removes a folder password
// PUT /api/folders/{id}/password
func (h *FolderHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body passwordRequest
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.vault.SetFolderPassword(r.Context(), p, id, body.Password); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Logout forgets every folder the session unlocked
// POST /api/session/logout
func (h *FolderHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.vault.Logout(r.Context(), p); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
