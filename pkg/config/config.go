// Package config loads land-area settings from YAML
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPaths are tried in order when no config file is given
var DefaultPaths = []string{"config.yaml", "config.yaml.example"}

// Config structure for YAML configuration
type Config struct {
	Server Server `yaml:"server"`
	Log    Log    `yaml:"log"`
	Walk   Walk   `yaml:"walk"`
}

// Server configures the HTTP API
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// SessionTTL evicts sessions idle for longer than this. Zero keeps them forever.
	SessionTTL      time.Duration `yaml:"session_ttl"`
}

// Log configures the zap logger
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Walk configures the walk replay. Without a track file a rectangle of
// Width x Height meters is walked from (Lat, Lon).
type Walk struct {
	StepInterval time.Duration `yaml:"step_interval"`
	Width        float64       `yaml:"width"`
	Height       float64       `yaml:"height"`
	Lat          float64       `yaml:"lat"`
	Lon          float64       `yaml:"lon"`
	StepsPerSide int           `yaml:"steps_per_side"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			SessionTTL:      time.Hour,
		},
		Log: Log{
			Level: "info",
		},
		Walk: Walk{
			StepInterval: 150 * time.Millisecond,
			Width:        100,
			Height:       100,
			Lat:          18.5204,
			Lon:          73.8567,
			StepsPerSide: 10,
		},
	}
}

// Load reads path over the defaults. An empty path tries DefaultPaths and
// falls back to Default when none exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range DefaultPaths {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the commands cannot work with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 || c.Server.SessionTTL < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Walk.StepInterval <= 0 {
		errs = append(errs, errors.New("walk.step_interval must be positive"))
	}
	if c.Walk.Width <= 0 || c.Walk.Height <= 0 {
		errs = append(errs, errors.New("walk.width and walk.height must be positive"))
	}
	if c.Walk.StepsPerSide < 1 {
		errs = append(errs, errors.New("walk.steps_per_side must be at least 1"))
	}

	return errors.Join(errs...)
}
