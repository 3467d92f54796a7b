package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for storing uploaded certificate blobs.
// Keys are generated by the caller; the store only moves bytes.
type ObjectStore interface {
	Save(ctx context.Context, storageKey string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
