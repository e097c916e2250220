package blobstore

import (
	"context"
	"fmt"
	"log/slog"

	"docvault/internal/config"
	vaultRepo "docvault/internal/domain/repositories/vault"
)

// Open builds the blob store selected by BLOB_BACKEND
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (vaultRepo.BlobStore, error) {
	switch cfg.BlobBackend {
	case "filesystem":
		store, err := NewFilesystemStore(cfg.StorageRoot)
		if err != nil {
			return nil, err
		}
		logger.Info("blob store ready", "backend", "filesystem", "root", store.root)
		return store, nil
	case "s3":
		client, err := NewS3Client(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			KeyPrefix:       cfg.S3KeyPrefix,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		store, err := NewS3Store(ctx, client, cfg.S3Bucket, cfg.S3KeyPrefix)
		if err != nil {
			return nil, err
		}
		logger.Info("blob store ready", "backend", "s3", "bucket", cfg.S3Bucket, "key_prefix", cfg.S3KeyPrefix)
		return store, nil
	case "memory":
		logger.Warn("blob store is in memory; uploads are lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}
