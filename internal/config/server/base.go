package server

import (
	"fmt"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log        LogServerConfig        `mapstructure:"log"        yaml:"log"`
	Metadata   MetadataServerConfig   `mapstructure:"metadata"   yaml:"metadata"`
	Storage    StorageServerConfig    `mapstructure:"storage"    yaml:"storage"`
	Cleanup    CleanupServerConfig    `mapstructure:"cleanup"    yaml:"cleanup"`
	Pagination PaginationServerConfig `mapstructure:"pagination" yaml:"pagination"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise only fail once a store is opened.
func (cfg *BaseServerConfig) Validate() error {
	if err := cfg.Log.Validate(); err != nil {
		return err
	}

	switch cfg.Metadata.Type {
	case "sqlite":
		if cfg.Metadata.SQLite.Path == "" {
			return fmt.Errorf("metadata.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unsupported metadata type '%s'", cfg.Metadata.Type)
	}

	if cfg.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}

	switch cfg.Storage.Type {
	case "local":
		if cfg.Storage.Local.Path == "" {
			return fmt.Errorf("storage.local.path is required")
		}
	case "s3":
		if cfg.Storage.S3.Endpoint == "" {
			return fmt.Errorf("storage.s3.endpoint is required")
		}
	default:
		return fmt.Errorf("unsupported storage type '%s'", cfg.Storage.Type)
	}

	if cfg.Pagination.DefaultLimit <= 0 || cfg.Pagination.MaxLimit < cfg.Pagination.DefaultLimit {
		return fmt.Errorf("pagination limits must satisfy 0 < default_limit <= max_limit")
	}

	return nil
}
