package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pawws/pawws/internal/config"
)

var ErrObjectNotFound = errors.New("storage: object not found")

// Storage defines the interface for blob storage operations
type Storage interface {
	// Save stores the blob at the given path, replacing any existing one
	Save(ctx context.Context, path string, r io.Reader, contentType string) error

	// Open returns a reader for the blob; ErrObjectNotFound if it is missing
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, path string) error
}

// New creates the storage backend selected by STORAGE_DRIVER.
func New(c *config.Config) (Storage, error) {
	switch c.StorageDriver {
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	case "local", "":
		slog.Info("initializing local storage", "path", c.StoragePath)
		return NewFileStore(c.StoragePath)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
}
