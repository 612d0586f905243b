package filestorage

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound is returned when no blob is stored under an id
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore keeps opaque byte streams addressed by id
type BlobStore interface {
	// Put stores the stream and returns the new blob id together with the
	// storage path and the number of bytes written
	Put(ctx context.Context, r io.Reader, filename string) (id, path string, size int64, err error)

	// Open returns a reader for a stored blob path
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored blob; deleting a missing blob is not an error
	Delete(ctx context.Context, path string) error
}
