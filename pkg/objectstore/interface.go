// Package objectstore provides key-addressed binary storage scoped to a single bucket.
package objectstore

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Get and Copy when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore defines the primitive operations needed to keep file bytes.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Bucket returns the namespace every key is stored in.
	Bucket() string

	// Put writes size bytes from reader to key, replacing any existing object.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Get returns a reader for the object; the caller closes it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Copy duplicates srcKey to dstKey within the bucket.
	Copy(ctx context.Context, srcKey, dstKey string) error

	Close() error
}
