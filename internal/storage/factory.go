package storage

import (
	"alcyxob/workout-tracker/internal/config"
	"context"
	"fmt"
)

// PublicPrefix is the URL path local files are served under.
const PublicPrefix = "/uploads"

// NewFileStorage builds the backend named by cfg.Files.Backend.
func NewFileStorage(ctx context.Context, cfg config.Config) (FileStorage, error) {
	switch cfg.Files.Backend {
	case "", BackendLocal:
		return NewLocalStorage(cfg.Files.UploadDir, PublicPrefix)
	case BackendS3:
		return NewS3Storage(ctx, cfg.S3)
	}
	return nil, fmt.Errorf("unknown file storage backend %q", cfg.Files.Backend)
}
