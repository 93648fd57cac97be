package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML configuration file, applying defaults and
// expanding environment variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	expandEnvVars(&cfg)

	return &cfg, nil
}

// Default returns a fully-defaulted Config, for callers (the `jobs` CLI
// subcommands) that operate fine without an explicit config file on disk.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	expandEnvVars(cfg)
	return cfg
}

// LoadOrDefault behaves like Load, except a missing file at path yields
// Default() instead of an error — every other read or parse failure still
// propagates.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
