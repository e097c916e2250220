package vault

import (
	"context"
	"fmt"
	"log/slog"

	vaultRepo "docvault/internal/domain/repositories/vault"
	vaultSvc "docvault/internal/domain/services/vault"
)

type reconciler struct {
	fileRepo vaultRepo.FileRepository
	blobs    vaultRepo.BlobStore
	logger   *slog.Logger
}

// NewReconciler creates the blob/catalog consistency checker
func NewReconciler(fileRepo vaultRepo.FileRepository, blobs vaultRepo.BlobStore, logger *slog.Logger) vaultSvc.Reconciler {
	return &reconciler{fileRepo: fileRepo, blobs: blobs, logger: logger}
}

// Scan compares the organization's file rows with the blobs under its prefix.
// With fix, dangling rows and orphan blobs are deleted. Run it while no
// uploads are in flight: a blob written moments before its row looks orphaned.
func (r *reconciler) Scan(ctx context.Context, orgID string, fix bool) (*vaultSvc.ReconcileReport, error) {
	report := &vaultSvc.ReconcileReport{
		OrganizationID: orgID,
		DanglingRows:   []string{},
		OrphanBlobs:    []string{},
	}

	files, err := r.fileRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f.StoragePath] = true
		exists, err := r.blobs.Exists(ctx, f.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("check blob %s: %w", f.StoragePath, err)
		}
		if !exists {
			report.DanglingRows = append(report.DanglingRows, f.ID)
		}
	}

	err = r.blobs.Walk(ctx, orgID+"/", func(key string) error {
		if !known[key] {
			report.OrphanBlobs = append(report.OrphanBlobs, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk blobs: %w", err)
	}

	r.logger.Info("reconcile scan finished",
		"organization_id", orgID,
		"files", len(files),
		"dangling_rows", len(report.DanglingRows),
		"orphan_blobs", len(report.OrphanBlobs),
	)

	if !fix {
		return report, nil
	}

	for _, id := range report.DanglingRows {
		if err := r.fileRepo.Delete(ctx, id); err != nil {
			return report, fmt.Errorf("delete dangling row %s: %w", id, err)
		}
		r.logger.Info("dangling file row deleted", "id", id)
	}
	for _, key := range report.OrphanBlobs {
		if err := r.blobs.Delete(ctx, key); err != nil {
			return report, fmt.Errorf("delete orphan blob %s: %w", key, err)
		}
		r.logger.Info("orphan blob deleted", "key", key)
	}
	report.Fixed = true
	return report, nil
}
