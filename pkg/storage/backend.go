// Package storage publishes run artifacts to a blob store. Keys are
// slash-separated and store-relative; the engine writes, the export and
// review surfaces read back. Stores never interpret artifact contents.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound reports a key no stored object exists under.
var ErrNotFound = errors.New("storage: object not found")

// BlobStore defines the interface for abstract storage backends.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Put writes data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte) error
	// Get reads the object under key. A missing key returns an error
	// wrapping ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns every key under prefix, lexically ordered.
	List(ctx context.Context, prefix string) ([]string, error)
}
