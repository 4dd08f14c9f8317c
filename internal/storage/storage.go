// Package storage uploads images to a blob host and returns a public URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shinyyama/book-market-backend/internal/config"
)

var ErrNotConfigured = errors.New("storage: bucket not configured")

type ObjectStore interface {
	// Put stores r under key and returns a URL that serves the object.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (ObjectStore, error) {
	if cfg.Driver != "memory" && cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}
	switch cfg.Driver {
	case "", "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.GCSCredentialsFile)
	case "minio":
		return NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.Bucket, cfg.MinioUseSSL, cfg.MinioPublicBaseURL)
	case "memory":
		return NewMemoryStore("memory://uploads"), nil
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
	}
}
