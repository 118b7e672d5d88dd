package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when nothing is stored under the path.
var ErrNotFound = errors.New("stored object not found")

// Storage defines the interface for file storage operations.
// Paths are relative and use forward slashes.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error

	// Get returns ErrNotFound for a missing path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete succeeds when the path is already gone.
	Delete(ctx context.Context, path string) error
}
