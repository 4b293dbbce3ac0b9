// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Folding tool settings
	RNAfoldBin         string `env:"RNAFOLD_BIN, default=RNAfold" json:"rnafold_bin"`
	EnginesFile        string `env:"ENGINES_FILE" json:"engines_file,omitempty"`
	DefaultTemperature int    `env:"DEFAULT_TEMPERATURE, default=37" json:"default_temperature"`
	JoinTimeoutSec     int    `env:"JOIN_TIMEOUT_SEC, default=120" json:"join_timeout_sec"`

	// Storage settings
	TempDir string `env:"TEMP_DIR, default=/tmp/rnafold" json:"temp_dir"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"` // For S3-compatible stores
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// JoinTimeout returns the prediction deadline as a duration.
func (c *Config) JoinTimeout() time.Duration {
	return time.Duration(c.JoinTimeoutSec) * time.Second
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.RNAfoldBin == "" {
		return fmt.Errorf("config: RNAFOLD_BIN must not be empty")
	}
	if c.JoinTimeoutSec <= 0 {
		return fmt.Errorf("config: JOIN_TIMEOUT_SEC must be positive, got %d", c.JoinTimeoutSec)
	}
	if c.DefaultTemperature <= 0 || c.DefaultTemperature > 100 {
		return fmt.Errorf("config: DEFAULT_TEMPERATURE must be in (0,100], got %d", c.DefaultTemperature)
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, RNAfoldBin: %s, EnginesFile: %s, DefaultTemperature: %d, JoinTimeoutSec: %d, TempDir: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.RNAfoldBin,
		c.EnginesFile,
		c.DefaultTemperature,
		c.JoinTimeoutSec,
		c.TempDir,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
