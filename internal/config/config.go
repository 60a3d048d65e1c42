// Package config holds the tool configuration and its file loader.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the world tool configuration.
type Config struct {
	WorldDir string `yaml:"world_dir"`
	Seed     int64  `yaml:"seed"`
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn" or "error"
	Palette  string `yaml:"palette"`   // "alpha" or "classic"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WorldDir: "world",
		LogLevel: "info",
		Palette:  "alpha",
	}
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (*Config, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(blob, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["world"] {
		cfg.WorldDir = fromFile.WorldDir
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	if !explicitFlags["palette"] {
		cfg.Palette = fromFile.Palette
	}
}
