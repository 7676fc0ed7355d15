package objectstore

import (
	"context"
	"fmt"

	config "github.com/mwantia/godrive/internal/config/server"
)

// New opens the object store selected by storage.type.
func New(ctx context.Context, cfg config.StorageServerConfig) (ObjectStore, error) {
	switch cfg.Type {
	case "local":
		store, err := NewLocalStore(cfg.Local.Path, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		store, err := NewMinioStore(ctx, MinioConfig{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			Bucket:    cfg.Bucket,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported storage type '%s'", cfg.Type)
}
