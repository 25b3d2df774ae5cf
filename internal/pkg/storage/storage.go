package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrInvalidPath = errors.New("invalid file path")

type FileStorage interface {
	// Upload stores a file and returns its storage key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, path string) error

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)

	// List returns every file stored below prefix
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

type FileInfo struct {
	Key     string
	Size    int64
	ModTime time.Time
}
