package server

// MetadataServerConfig selects the relational store for folder and file rows.
type MetadataServerConfig struct {
	Type   string               `mapstructure:"type"   yaml:"type"`
	SQLite MetadataSQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
}

// MetadataSQLiteConfig points at the database file; LogLevel is the gorm log level.
type MetadataSQLiteConfig struct {
	Path     string `mapstructure:"path"      yaml:"path"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}
