package ports

import (
	"context"
	"io"
)

// BlobStore is the narrow document/image store collaborator: save a blob,
// get back a reference string. The core persists only the reference.
type BlobStore interface {
	// Save stores the blob under a generated name derived from prefix and
	// the original filename's extension, returning the reference.
	Save(ctx context.Context, prefix, filename string, r io.Reader) (string, error)
	// Remove deletes the blob behind ref. Removing a missing blob is not
	// an error.
	Remove(ctx context.Context, ref string) error
}
