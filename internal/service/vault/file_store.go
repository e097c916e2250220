package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"docvault/internal/config"
	"docvault/internal/domain"
	models "docvault/internal/domain/models/vault"
	vaultRepo "docvault/internal/domain/repositories/vault"
	vaultSvc "docvault/internal/domain/services/vault"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen is how much of an upload is inspected when no usable MIME type was declared
const sniffLen = 3072

type fileStore struct {
	fileRepo vaultRepo.FileRepository
	blobs    vaultRepo.BlobStore
	policy   *config.UploadPolicy
	logger   *slog.Logger
}

// NewFileStore creates the service that keeps blobs and file rows in agreement
func NewFileStore(
	fileRepo vaultRepo.FileRepository,
	blobs vaultRepo.BlobStore,
	policy *config.UploadPolicy,
	logger *slog.Logger,
) vaultSvc.FileStore {
	return &fileStore{
		fileRepo: fileRepo,
		blobs:    blobs,
		policy:   policy,
		logger:   logger,
	}
}

// ValidateUpload checks size first, then the extension
func (s *fileStore) ValidateUpload(name string, size int64) error {
	if err := validateFileName(strings.TrimSpace(name)); err != nil {
		return err
	}
	if size < 0 {
		return domain.NewValidationError("file size must not be negative")
	}
	if size > s.policy.MaxUploadBytes {
		return domain.NewValidationError("file exceeds the maximum upload size of %d bytes", s.policy.MaxUploadBytes)
	}
	if ext := extensionOf(name); !s.policy.Allows(ext) {
		if ext == "" {
			return domain.NewValidationError("file type not allowed: missing extension")
		}
		return domain.NewValidationError("file type not allowed: .%s", ext)
	}
	return nil
}

// Upload runs Validating -> Allocating -> Storing -> Recording -> Done.
// The blob is written before the row; if recording fails the blob is deleted
// again, so a failed upload leaves nothing and a successful one never leaves a
// row without its blob.
func (s *fileStore) Upload(ctx context.Context, req *vaultSvc.UploadRequest) (*models.File, error) {
	run := &saga{phase: PhaseValidating}
	name := strings.TrimSpace(req.Name)

	if err := s.ValidateUpload(name, req.Size); err != nil {
		return nil, run.fail(err)
	}

	run.advance(PhaseAllocating)
	ext := extensionOf(name)
	key := fmt.Sprintf("%s/%s.%s", req.OrganizationID, uuid.NewString(), ext)

	run.advance(PhaseStoring)
	src := &clientBody{r: req.Body}
	body, mimeType, err := s.prepareBody(src, req.MimeType)
	if err != nil {
		return nil, run.fail(bodyError(err))
	}

	written, err := s.blobs.Put(ctx, key, body)
	if err != nil {
		if src.err != nil {
			s.logger.Debug("upload body read failed", "key", key, "error", src.err)
			return nil, run.fail(bodyError(src.err))
		}
		s.logger.Warn("blob write failed", "key", key, "error", err)
		return nil, run.fail(&domain.StorageError{Op: "put", Key: key, Err: err})
	}
	run.onRollback(func(ctx context.Context) error {
		return s.blobs.Delete(ctx, key)
	})

	if written > s.policy.MaxUploadBytes || written != req.Size {
		var verr error
		if written > s.policy.MaxUploadBytes {
			verr = domain.NewValidationError("file exceeds the maximum upload size of %d bytes", s.policy.MaxUploadBytes)
		} else {
			verr = domain.NewValidationError("received %d bytes but %d were declared", written, req.Size)
		}
		if rbErr := run.rollback(ctx); rbErr != nil {
			return nil, run.fail(s.orphaned(key, verr, rbErr))
		}
		return nil, run.fail(verr)
	}

	run.advance(PhaseRecording)
	file := &models.File{
		FolderID:       req.FolderID,
		OrganizationID: req.OrganizationID,
		Name:           name,
		StoragePath:    key,
		SizeBytes:      written,
		MimeType:       mimeType,
		UploadedBy:     req.UploadedBy,
		UploadedAt:     time.Now(),
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		if rbErr := run.rollback(ctx); rbErr != nil {
			return nil, run.fail(s.orphaned(key, err, rbErr))
		}
		s.logger.Warn("file record failed, blob removed", "key", key, "error", err)
		return nil, run.fail(err)
	}

	run.advance(PhaseDone)
	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"organization_id", file.OrganizationID,
		"folder_id", file.FolderID,
		"size_bytes", file.SizeBytes,
		"mime_type", file.MimeType,
	)
	return file, nil
}

// prepareBody bounds the stream at max+1 bytes, enough to detect an oversized
// body, and sniffs the MIME type when none was declared
func (s *fileStore) prepareBody(src io.Reader, declared string) (io.Reader, string, error) {
	body := io.LimitReader(src, s.policy.MaxUploadBytes+1)

	mimeType := strings.TrimSpace(declared)
	if mimeType != "" && mimeType != "application/octet-stream" {
		return body, mimeType, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", err
	}
	head = head[:n]
	return io.MultiReader(bytes.NewReader(head), body), mimetype.Detect(head).String(), nil
}

// clientBody keeps the first read error of the request body, so a failed
// write can be told apart from a failing store
type clientBody struct {
	r   io.Reader
	err error
}

func (b *clientBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF && b.err == nil {
		b.err = err
	}
	return n, err
}

// bodyError maps an unreadable upload body to a client error. An oversized
// request keeps its MaxBytesError so it is answered with 413.
func bodyError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}
	return domain.NewValidationError("upload body could not be read: %v", err)
}

// orphaned reports a blob the compensating delete could not remove
func (s *fileStore) orphaned(key string, cause, rbErr error) error {
	s.logger.Error("orphan blob left after failed upload",
		"key", key,
		"cause", cause,
		"rollback_error", rbErr,
	)
	return &domain.ConsistencyError{
		Resource: "blob",
		ID:       key,
		Message:  "upload failed and its blob could not be removed",
		Err:      errors.Join(cause, rbErr),
	}
}

func (s *fileStore) Get(ctx context.Context, id, orgID string) (*models.File, error) {
	return s.fileRepo.GetByID(ctx, id, orgID)
}

func (s *fileStore) ListByFolder(ctx context.Context, folderID *string, orgID string) ([]models.File, error) {
	return s.fileRepo.ListByFolder(ctx, folderID, orgID)
}

// Download opens the blob for streaming. A row whose blob is gone is reported
// as missing on disk.
func (s *fileStore) Download(ctx context.Context, file *models.File) (io.ReadCloser, error) {
	rc, err := s.blobs.Open(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, vaultRepo.ErrBlobNotFound) {
			s.logger.Warn("file missing on disk", "id", file.ID, "key", file.StoragePath)
			return nil, domain.NewNotFoundError("file %q is missing on disk", file.Name)
		}
		s.logger.Warn("blob open failed", "id", file.ID, "key", file.StoragePath, "error", err)
		return nil, &domain.StorageError{Op: "open", Key: file.StoragePath, Err: err}
	}
	return rc, nil
}

// Rename only touches metadata; the blob key never changes
func (s *fileStore) Rename(ctx context.Context, file *models.File, newName string) (*models.File, error) {
	newName = strings.TrimSpace(newName)
	if err := validateFileName(newName); err != nil {
		return nil, err
	}
	if err := s.fileRepo.UpdateName(ctx, file.ID, newName); err != nil {
		return nil, err
	}

	renamed := *file
	renamed.Name = newName
	s.logger.Info("file renamed", "id", file.ID, "old_name", file.Name, "new_name", newName)
	return &renamed, nil
}

// Delete removes the blob, then the row. A blob failure leaves the row alone;
// a row failure after the blob is gone is a consistency error.
func (s *fileStore) Delete(ctx context.Context, file *models.File) error {
	if err := s.blobs.Delete(ctx, file.StoragePath); err != nil {
		s.logger.Warn("blob delete failed", "id", file.ID, "key", file.StoragePath, "error", err)
		return &domain.StorageError{Op: "delete", Key: file.StoragePath, Err: err}
	}

	if err := s.fileRepo.Delete(context.WithoutCancel(ctx), file.ID); err != nil {
		s.logger.Error("file row left without blob",
			"id", file.ID,
			"key", file.StoragePath,
			"error", err,
		)
		return &domain.ConsistencyError{
			Resource: "file",
			ID:       file.ID,
			Message:  "blob deleted but metadata row remains",
			Err:      err,
		}
	}

	s.logger.Info("file deleted", "id", file.ID, "name", file.Name, "organization_id", file.OrganizationID)
	return nil
}
