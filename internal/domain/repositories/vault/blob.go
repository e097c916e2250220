package vault

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrBlobNotFound is returned when a key has no blob
	ErrBlobNotFound = errors.New("blob not found")

	// ErrBlobExists is returned by Put when the key is already taken
	ErrBlobExists = errors.New("blob already exists")
)

// BlobStore holds the physical bytes of files under opaque keys.
// Keys look like "<organization id>/<unique token>.<ext>".
//
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Put streams r into a new blob. It never overwrites an existing key and
	// leaves nothing behind when it fails.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader for the blob; the caller closes it
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob, returning ErrBlobNotFound if it is absent
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// Walk calls fn for every key below prefix
	Walk(ctx context.Context, prefix string, fn func(key string) error) error
}
