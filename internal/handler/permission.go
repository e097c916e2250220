package handler

import (
	"log/slog"
	"net/http"

	models "docvault/internal/domain/models/vault"
	vaultSvc "docvault/internal/domain/services/vault"
	"docvault/internal/httputil"
)

// PermissionHandler handles folder grant HTTP requests
type PermissionHandler struct {
	vault  vaultSvc.Vault
	logger *slog.Logger
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(vault vaultSvc.Vault, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{
		vault:  vault,
		logger: logger,
	}
}

type grantRequest struct {
	Level models.Level `json:"level"`
}

// List returns the grants on a folder
// GET /api/folders/{id}/permissions
func (h *PermissionHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	grants, err := h.vault.ListPermissions(r.Context(), p, folderID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grants)
}

// Grant creates or replaces a user's grant on a folder
// PUT /api/folders/{id}/permissions/{userID}
func (h *PermissionHandler) Grant(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	var body grantRequest
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "level must be one of read, write, admin")
		return
	}

	if err := h.vault.GrantPermission(r.Context(), p, folderID, userID, body.Level); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Revoke removes a user's grant; revoking a missing grant succeeds
// DELETE /api/folders/{id}/permissions/{userID}
func (h *PermissionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.vault.RevokePermission(r.Context(), p, folderID, userID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListIssued lists the grants the caller handed out
// GET /api/permissions/issued
func (h *PermissionHandler) ListIssued(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	grants, err := h.vault.ListIssuedGrants(r.Context(), p)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grants)
}
