package server

// CleanupServerConfig controls the sweeper removing objects whose metadata write failed.
type CleanupServerConfig struct {
	Enabled   bool   `mapstructure:"enabled"    yaml:"enabled"`
	Interval  string `mapstructure:"interval"   yaml:"interval"`
	BatchSize int    `mapstructure:"batch_size" yaml:"batch_size"`
}

type PaginationServerConfig struct {
	DefaultLimit int `mapstructure:"default_limit" yaml:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"     yaml:"max_limit"`
}
