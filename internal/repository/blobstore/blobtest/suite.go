// Package blobtest holds behaviour tests shared by every BlobStore backend.
package blobtest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	vaultRepo "docvault/internal/domain/repositories/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store from newStore in every subtest
func Run(t *testing.T, newStore func(t *testing.T) vaultRepo.BlobStore) {
	t.Run("PutOpenRoundTrip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		payload := bytes.Repeat([]byte("docvault"), 4096)

		n, err := store.Put(ctx, "org-a/one.pdf", bytes.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), n)

		rc, err := store.Open(ctx, "org-a/one.pdf")
		require.NoError(t, err)
		defer rc.Close()
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("PutNeverOverwrites", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Put(ctx, "org-a/same.txt", strings.NewReader("first"))
		require.NoError(t, err)

		_, err = store.Put(ctx, "org-a/same.txt", strings.NewReader("second"))
		assert.ErrorIs(t, err, vaultRepo.ErrBlobExists)

		rc, err := store.Open(ctx, "org-a/same.txt")
		require.NoError(t, err)
		defer rc.Close()
		got, _ := io.ReadAll(rc)
		assert.Equal(t, "first", string(got))
	})

	t.Run("FailedPutLeavesNothing", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Put(ctx, "org-a/broken.txt", io.MultiReader(
			strings.NewReader("partial"),
			errReader{err: errors.New("connection reset")},
		))
		require.Error(t, err)

		exists, err := store.Exists(ctx, "org-a/broken.txt")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		store := newStore(t)
		err := store.Delete(context.Background(), "org-a/ghost.txt")
		assert.ErrorIs(t, err, vaultRepo.ErrBlobNotFound)
	})

	t.Run("OpenMissing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Open(context.Background(), "org-a/ghost.txt")
		assert.ErrorIs(t, err, vaultRepo.ErrBlobNotFound)
	})

	t.Run("DeleteRemoves", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Put(ctx, "org-a/gone.txt", strings.NewReader("x"))
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, "org-a/gone.txt"))

		exists, err := store.Exists(ctx, "org-a/gone.txt")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("WalkIsScopedToPrefix", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, key := range []string{"org-a/1.txt", "org-a/2.txt", "org-b/3.txt"} {
			_, err := store.Put(ctx, key, strings.NewReader(key))
			require.NoError(t, err)
		}

		var keys []string
		err := store.Walk(ctx, "org-a/", func(key string) error {
			keys = append(keys, key)
			return nil
		})
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{"org-a/1.txt", "org-a/2.txt"}, keys)

		keys = nil
		require.NoError(t, store.Walk(ctx, "org-c/", func(key string) error {
			keys = append(keys, key)
			return nil
		}))
		assert.Empty(t, keys)
	})

	t.Run("RejectsEscapingKeys", func(t *testing.T) {
		store := newStore(t)
		for _, key := range []string{"", "/abs.txt", "../up.txt", "org-a/../../up.txt"} {
			_, err := store.Put(context.Background(), key, strings.NewReader("x"))
			assert.Error(t, err, key)
		}
	})
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
