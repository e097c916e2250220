package blobstore

import (
	"testing"

	vaultRepo "docvault/internal/domain/repositories/vault"
	"docvault/internal/repository/blobstore/blobtest"
)

func TestMemoryStore(t *testing.T) {
	blobtest.Run(t, func(t *testing.T) vaultRepo.BlobStore {
		return NewMemoryStore()
	})
}
