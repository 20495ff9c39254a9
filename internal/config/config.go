// Package config defines service configuration structures and loading hooks.
//
// Values are layered: defaults from New, an optional YAML file named by
// SCOUT_CONFIG, then SCOUT_* environment variables.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Repository backends understood by the service.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the report repository: memory, sqlite or redis.
	StoreBackend string `koanf:"store_backend"`

	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`

	// RedisURL is parsed with redis.ParseURL for the redis backend.
	RedisURL string `koanf:"redis_url"`

	// RedisPrefix namespaces the report hash and change channel.
	RedisPrefix string `koanf:"redis_prefix"`

	// NodeID seeds the snowflake node that assigns report ids (0-1023).
	NodeID int64 `koanf:"node_id"`

	// AutosaveDebounceMS is the quiet period after the last edit before a write.
	AutosaveDebounceMS int `koanf:"autosave_debounce_ms"`

	// SaveWorkers sets the number of save workers.
	SaveWorkers int `koanf:"save_workers"`

	// SaveQueueSize bounds the in-memory save job queue.
	SaveQueueSize int `koanf:"save_queue_size"`

	// ClubName is printed in the header band of exported documents.
	ClubName string `koanf:"club_name"`

	// ExportTimeoutS bounds a single PDF render.
	ExportTimeoutS int `koanf:"export_timeout_s"`
}

// New creates a Config with defaults. The context is reserved for sources
// that need one and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		StoreBackend:       BackendMemory,
		SQLitePath:         "scout.db",
		RedisURL:           "redis://localhost:6379/0",
		RedisPrefix:        "scout:",
		NodeID:             1,
		AutosaveDebounceMS: 1800,
		SaveWorkers:        runtime.NumCPU(),
		SaveQueueSize:      1024,
		ClubName:           "Scouting",
		ExportTimeoutS:     60,
	}
}

// AutosaveDebounce returns the debounce window as a duration.
func (c *Config) AutosaveDebounce() time.Duration {
	return time.Duration(c.AutosaveDebounceMS) * time.Millisecond
}

// ExportTimeout returns the export timeout as a duration.
func (c *Config) ExportTimeout() time.Duration {
	return time.Duration(c.ExportTimeoutS) * time.Second
}

// Validate reports the first invalid value, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.AutosaveDebounceMS <= 0:
		return fmt.Errorf("%w: autosave_debounce_ms must be positive", ErrInvalidConfig)
	case c.SaveWorkers <= 0:
		return fmt.Errorf("%w: save_workers must be positive", ErrInvalidConfig)
	case c.SaveQueueSize <= 0:
		return fmt.Errorf("%w: save_queue_size must be positive", ErrInvalidConfig)
	case c.NodeID < 0 || c.NodeID > 1023:
		return fmt.Errorf("%w: node_id must be within 0-1023", ErrInvalidConfig)
	case c.ExportTimeoutS <= 0:
		return fmt.Errorf("%w: export_timeout_s must be positive", ErrInvalidConfig)
	}

	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: redis_url must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	return nil
}
