// Package config loads server settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration.
type Config struct {
	Addr    string        `yaml:"addr"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Events  EventsConfig  `yaml:"events"`
	History HistoryConfig `yaml:"history"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig holds http.Server timeouts.
type ServerConfig struct {
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// EventsConfig controls the server-sent events stream.
type EventsConfig struct {
	Heartbeat time.Duration `yaml:"heartbeat"`
	Buffer    int           `yaml:"buffer"`
}

// HistoryConfig controls how the move list is displayed by default.
type HistoryConfig struct {
	Order string `yaml:"order"`
}

// Default returns a config with every field set.
func Default() *Config {
	c := &Config{}
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Events.Heartbeat == 0 {
		c.Events.Heartbeat = 15 * time.Second
	}
	if c.Events.Buffer == 0 {
		c.Events.Buffer = 1
	}
	if c.History.Order == "" {
		c.History.Order = "asc"
	}
}

// ApplyEnv overrides fields from GOMOKU_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GOMOKU_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("GOMOKU_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("GOMOKU_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("GOMOKU_HISTORY_ORDER"); v != "" {
		c.History.Order = v
	}
}

// Validate checks enumerated values and durations.
func (c *Config) Validate() error {
	var errs []error
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	switch c.History.Order {
	case "asc", "desc":
	default:
		errs = append(errs, fmt.Errorf("history.order: must be asc or desc, got %q", c.History.Order))
	}
	if c.Events.Heartbeat <= 0 {
		errs = append(errs, errors.New("events.heartbeat: must be positive"))
	}
	if c.Events.Buffer <= 0 {
		errs = append(errs, errors.New("events.buffer: must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout: must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads path (if non-empty), fills defaults, applies the environment and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
