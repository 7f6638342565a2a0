package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"localdink/internal/config"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("storage: object not found")

// Storage persists player avatar images behind a backend-neutral interface.
type Storage interface {
	// Store saves an avatar and returns its storage key.
	Store(ctx context.Context, playerID uuid.UUID, filename string, content io.Reader, contentType string) (string, error)

	// Retrieve streams an avatar by key.
	Retrieve(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an avatar by key.
	Delete(ctx context.Context, key string) error

	// URL returns a link to the avatar, presigned for S3 backends.
	URL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// New selects a backend from configuration.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		basePath := cfg.LocalPath
		if basePath == "" {
			basePath = "./uploads"
		}
		return NewLocalStorage(basePath)
	case "s3":
		if cfg.S3Bucket == "" || cfg.S3Region == "" {
			return nil, fmt.Errorf("storage: s3 backend requires a bucket and region")
		}
		return NewS3Storage(cfg.S3Bucket, cfg.S3Region)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Type)
	}
}

// avatarKey builds the per-player object key. The original filename only
// contributes its extension.
func avatarKey(playerID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("avatars/%s/%s%s", playerID, uuid.New(), ext)
}
