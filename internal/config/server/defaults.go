package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			Format:     LogFormatText,
			NoTerminal: false,
			Rotation: LogRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Metadata: MetadataServerConfig{
			Type: "sqlite",
			SQLite: MetadataSQLiteConfig{
				Path:     "./data/godrive.db",
				LogLevel: "silent",
			},
		},

		Storage: StorageServerConfig{
			Type:   "local",
			Bucket: "godrive",
			Local: StorageLocalConfig{
				Path: "./data/objects",
			},
			S3: StorageS3Config{
				Endpoint: "localhost:9000",
				Region:   "us-east-1",
				UseSSL:   false,
			},
		},

		Cleanup: CleanupServerConfig{
			Enabled:   true,
			Interval:  "5m",
			BatchSize: 100,
		},

		Pagination: PaginationServerConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.format", defaults.Log.Format)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("metadata.type", defaults.Metadata.Type)
	viper.SetDefault("metadata.sqlite.path", defaults.Metadata.SQLite.Path)
	viper.SetDefault("metadata.sqlite.log_level", defaults.Metadata.SQLite.LogLevel)

	viper.SetDefault("storage.type", defaults.Storage.Type)
	viper.SetDefault("storage.bucket", defaults.Storage.Bucket)
	viper.SetDefault("storage.local.path", defaults.Storage.Local.Path)
	viper.SetDefault("storage.s3.endpoint", defaults.Storage.S3.Endpoint)
	viper.SetDefault("storage.s3.region", defaults.Storage.S3.Region)
	viper.SetDefault("storage.s3.access_key", defaults.Storage.S3.AccessKey)
	viper.SetDefault("storage.s3.secret_key", defaults.Storage.S3.SecretKey)
	viper.SetDefault("storage.s3.use_ssl", defaults.Storage.S3.UseSSL)

	viper.SetDefault("cleanup.enabled", defaults.Cleanup.Enabled)
	viper.SetDefault("cleanup.interval", defaults.Cleanup.Interval)
	viper.SetDefault("cleanup.batch_size", defaults.Cleanup.BatchSize)

	viper.SetDefault("pagination.default_limit", defaults.Pagination.DefaultLimit)
	viper.SetDefault("pagination.max_limit", defaults.Pagination.MaxLimit)
}
