// Package storage abstracts the object store holding item media.
package storage

import (
	"context"
	"io"

	"github.com/sellorama/sellorama/internal"
)

// Storage defines the interface for file storage operations.
// Implementations can use local filesystem, S3, or any other backend.
type Storage interface {
	// Put stores a file and returns its URL/path for retrieval.
	// The key should be a unique identifier (e.g., "items/uuid/image.jpg").
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	// Get retrieves a file by its key.
	// Returns an io.ReadCloser that must be closed by the caller.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file by its key.
	// Returns nil if the file doesn't exist (idempotent).
	Delete(ctx context.Context, key string) error

	// SignedURL returns a URL a client can fetch the object from.
	// Local storage returns a static path; S3 returns a presigned GET
	// URL with a bounded lifetime.
	SignedURL(ctx context.Context, key string) (string, error)

	// Exists checks if a file exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// NewStorage creates a Storage implementation based on configuration.
func NewStorage(cfg internal.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	case "s3":
		return NewS3Storage(S3Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKeyID:   cfg.S3AccessKeyID,
			SecretKey:     cfg.S3SecretKey,
			BucketName:    cfg.S3BucketName,
			PresignExpiry: cfg.S3PresignExpiry,
		})
	default:
		return nil, ErrUnknownProvider(cfg.Provider)
	}
}
