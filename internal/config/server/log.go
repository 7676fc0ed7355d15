package server

import (
	"fmt"
	"strings"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LogServerConfig controls the agent log output. File output is rotated,
// terminal output can be disabled for daemonised runs.
type LogServerConfig struct {
	Level      string            `mapstructure:"level"       yaml:"level"`
	Format     string            `mapstructure:"format"      yaml:"format"`
	TimeFormat string            `mapstructure:"time_format" yaml:"time_format"`
	NoColor    bool              `mapstructure:"no_color"    yaml:"no_color"`
	NoTerminal bool              `mapstructure:"no_terminal" yaml:"no_terminal"`
	File       string            `mapstructure:"file"        yaml:"file"`
	Rotation   LogRotationConfig `mapstructure:"rotation"    yaml:"rotation"`
}

// LogRotationConfig is passed to lumberjack; sizes are in megabytes, age in days.
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"    yaml:"max_size"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"     yaml:"max_age"`
	Compress   bool `mapstructure:"compress"    yaml:"compress"`
}

func (cfg LogServerConfig) IsJSON() bool {
	return strings.EqualFold(cfg.Format, LogFormatJSON)
}

func (cfg LogServerConfig) Validate() error {
	switch strings.ToLower(cfg.Format) {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("unsupported log format '%s'", cfg.Format)
	}

	if cfg.NoTerminal && cfg.File == "" {
		return fmt.Errorf("log.file is required when terminal output is disabled")
	}
	return nil
}
