package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"docvault/internal/domain"
	vaultSvc "docvault/internal/domain/services/vault"
	"docvault/internal/httputil"
)

// multipartOverhead covers boundaries and the small form fields around the file part
const multipartOverhead = 1 << 20

// FileHandler handles file HTTP requests
type FileHandler struct {
	vault          vaultSvc.Vault
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(vault vaultSvc.Vault, maxUploadBytes int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		vault:          vault,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type renameFileRequest struct {
	Name string `json:"name"`
}

// Upload streams a multipart upload straight into the vault without buffering
// it on disk. The "folder_id" (optional, absent = root) and "size" fields
// must precede the "file" part.
// POST /api/files
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "expected a multipart/form-data body")
		return
	}

	req := &vaultSvc.UploadFileRequest{Size: -1}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			httputil.RespondError(w, http.StatusBadRequest, "missing file part")
			return
		}
		if err != nil {
			handleError(w, r, h.logger, domain.NewValidationError("malformed multipart body: %v", err))
			return
		}

		switch part.FormName() {
		case "folder_id":
			value, err := readField(part)
			if err != nil {
				handleError(w, r, h.logger, err)
				return
			}
			if value != "" {
				req.FolderID = &value
			}
		case "size":
			value, err := readField(part)
			if err != nil {
				handleError(w, r, h.logger, err)
				return
			}
			size, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				httputil.RespondError(w, http.StatusBadRequest, "size must be an integer")
				return
			}
			req.Size = size
		case "file":
			if req.Size < 0 {
				httputil.RespondError(w, http.StatusBadRequest, "size field must precede the file part")
				return
			}
			req.Name = part.FileName()
			req.MimeType = part.Header.Get("Content-Type")
			req.Body = part

			file, err := h.vault.UploadFile(r.Context(), p, req)
			part.Close()
			if err != nil {
				handleError(w, r, h.logger, err)
				return
			}
			httputil.RespondJSON(w, http.StatusCreated, file)
			return
		default:
			part.Close()
		}
	}
}

// readField reads a small form value
func readField(part io.Reader) (string, error) {
	value, err := io.ReadAll(io.LimitReader(part, 257))
	if err != nil {
		return "", domain.NewValidationError("malformed multipart body: %v", err)
	}
	if len(value) > 256 {
		return "", domain.NewValidationError("form field too long")
	}
	return strings.TrimSpace(string(value)), nil
}

// Download streams the file body
// GET /api/files/{id}/content
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	dl, err := h.vault.DownloadFile(r.Context(), p, id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.File.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(dl.File.SizeBytes, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.File.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, dl.Body); err != nil {
		// Headers are gone; all that is left is to log
		h.logger.Warn("download interrupted",
			"file_id", id,
			"user_id", p.UserID,
			"error", fmt.Errorf("copy body: %w", err),
		)
	}
}

// Rename renames a file
// PATCH /api/files/{id}
func (h *FileHandler) Rename(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body renameFileRequest
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	file, err := h.vault.RenameFile(r.Context(), p, id, body.Name)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// Delete removes the blob and then the file row
// DELETE /api/files/{id}
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.vault.DeleteFile(r.Context(), p, id); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
