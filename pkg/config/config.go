package config

import (
	"github.com/sdejongh/dirmirror/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Mirror      MirrorConfig      `yaml:"mirror"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// MirrorConfig holds mirror behaviour settings
type MirrorConfig struct {
	CreateDest    bool `yaml:"create_dest"`    // Create a missing destination root before comparing
	PreserveTimes bool `yaml:"preserve_times"` // Copy modification times and mode bits
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar on terminals
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Format       string `yaml:"format"`        // "json" or "text"
	Level        string `yaml:"level"`         // "debug", "info", "warn", "error"
	File         string `yaml:"file"`          // Diagnostic log file (empty = disabled)
	MaxSize      int64  `yaml:"max_size"`      // Rotate after this many bytes (0 = never)
	MaxBackups   int    `yaml:"max_backups"`   // Rotated files to keep
	Compress     string `yaml:"compress"`      // "none", "gzip" or "zstd"
	ActivityFile string `yaml:"activity_file"` // Timestamped activity lines are appended here
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Mirror: MirrorConfig{
			CreateDest:    true,
			PreserveTimes: true,
		},
		Performance: PerformanceConfig{
			BufferSize: 65536,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Format:     "text",
			Level:      "info",
			File:       "",
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 5,
			Compress:   "gzip",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Performance.BufferSize < 4096 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 4096 bytes",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	validCompress := map[string]bool{"": true, "none": true, "gzip": true, "zstd": true}
	if !validCompress[c.Logging.Compress] {
		return &models.ValidationError{
			Field:   "logging.compress",
			Message: "must be 'none', 'gzip', or 'zstd'",
		}
	}

	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size",
			Message: "rotation limits cannot be negative",
		}
	}

	return nil
}
