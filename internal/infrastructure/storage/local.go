package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore saves blobs on the local filesystem under a base directory.
// References are relative paths like "applications/<uuid>.pdf", which keeps
// them portable across base directory moves.
type LocalStore struct {
	basePath string
}

// NewLocalStore ensures the base directory exists and returns the store.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", basePath, err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Save writes the blob under prefix with a generated name carrying the
// original extension, returning the relative reference.
func (s *LocalStore) Save(ctx context.Context, prefix, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.basePath, prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage subdirectory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String() + ext
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("write blob: %w", err)
	}

	return filepath.ToSlash(filepath.Join(prefix, name)), nil
}

// Remove deletes the blob behind ref. A missing blob is not an error.
func (s *LocalStore) Remove(_ context.Context, ref string) error {
	// Refuse refs escaping the base directory.
	clean := filepath.Clean(filepath.FromSlash(ref))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid blob reference %q", ref)
	}

	err := os.Remove(filepath.Join(s.basePath, clean))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}
