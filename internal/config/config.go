// Package config handles configuration loading and validation for the
// voiceprint subsystem.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the complete subsystem configuration.
type Config struct {
	// Storage configuration for the persistent store (L2).
	Storage StorageConfig `toml:"storage"`

	// Cache configuration for the in-process tier (L1).
	Cache CacheConfig `toml:"cache"`

	// Extraction configuration for the feature extractor.
	Extraction ExtractionConfig `toml:"extraction"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// Type is the storage backend: "sqlite", "postgres", or "memory".
	Type string `toml:"type"`

	// Path is the database file path (sqlite).
	Path string `toml:"path"`

	// DatabaseURL is the connection string (postgres).
	DatabaseURL string `toml:"database_url"`

	// TimeoutSec is the per-call deadline for store operations.
	TimeoutSec int `toml:"timeout_sec"`
}

// CacheConfig holds L1 cache configuration.
type CacheConfig struct {
	// TTLSec is the maximum entry age in seconds.
	TTLSec int `toml:"ttl_sec"`

	// MaxEntries caps the in-process tier.
	MaxEntries int `toml:"max_entries"`

	// SweepIntervalSec is the background expiry sweep interval.
	SweepIntervalSec int `toml:"sweep_interval_sec"`
}

// ExtractionConfig holds feature-extractor configuration.
type ExtractionConfig struct {
	// Workers bounds concurrent extractions.
	Workers int `toml:"workers"`

	// MemoSize is the number of memoized extraction results.
	MemoSize int `toml:"memo_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `toml:"level"`

	// Format is text or json.
	Format string `toml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Type:       "sqlite",
			Path:       defaultDBPath(),
			TimeoutSec: 5,
		},
		Cache: CacheConfig{
			TTLSec:           300,
			MaxEntries:       100,
			SweepIntervalSec: 60,
		},
		Extraction: ExtractionConfig{
			Workers:  4,
			MemoSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// defaultDBPath returns the platform-specific default database path.
func defaultDBPath() string {
	switch runtime.GOOS {
	case "darwin":
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "Library", "Application Support", "voiceprint", "voiceprint.db")
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		return filepath.Join(appData, "voiceprint", "voiceprint.db")
	default:
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			homeDir, _ := os.UserHomeDir()
			dataHome = filepath.Join(homeDir, ".local", "share")
		}
		return filepath.Join(dataHome, "voiceprint", "voiceprint.db")
	}
}

// Load reads a TOML config file, filling unset fields with defaults.
// A missing file returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for sqlite storage")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.database_url is required for postgres storage")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage.type: %q", c.Storage.Type)
	}

	if c.Storage.TimeoutSec < 0 {
		return fmt.Errorf("storage.timeout_sec must not be negative")
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative")
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative")
	}
	if c.Cache.SweepIntervalSec < 0 {
		return fmt.Errorf("cache.sweep_interval_sec must not be negative")
	}
	if c.Extraction.Workers < 0 {
		return fmt.Errorf("extraction.workers must not be negative")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown logging.level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown logging.format: %q", c.Logging.Format)
	}

	return nil
}
