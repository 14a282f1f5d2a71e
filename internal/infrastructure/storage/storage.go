package storage

import (
	"context"
	"fmt"

	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/internal/domain/service"
)

// StorageType names an export backend
type StorageType string

const (
	StorageTypeFilesystem StorageType = "filesystem"
	StorageTypeS3         StorageType = "s3"
	// StorageTypeGit commits every export into a local repository
	StorageTypeGit StorageType = "git"
)

// Factory opens the export backend selected by the storage section
type Factory struct {
	config *config.StorageConfig
}

func NewFactory(cfg *config.StorageConfig) *Factory {
	return &Factory{config: cfg}
}

// Create opens the backend; an empty type means filesystem
func (f *Factory) Create(ctx context.Context) (service.ExportStorage, error) {
	cfg := f.config
	switch StorageType(cfg.Type) {
	case "", StorageTypeFilesystem:
		return NewFilesystemStorage(cfg.BasePath)
	case StorageTypeGit:
		return NewGitStorage(cfg.BasePath, cfg.GitAuthor)
	case StorageTypeS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
		})
	}
	return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
}
