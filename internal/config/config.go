package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreSqlite = "sqlite"
	StoreMemory = "memory"
)

// Config is the server configuration.
type Config struct {
	Addr    string `yaml:"addr"`
	Store   string `yaml:"store"`
	DBPath  string `yaml:"db_path"`
	LogFile string `yaml:"log_file"`
	Verbose bool   `yaml:"verbose"`
	GinMode string `yaml:"gin_mode"`
	// StaleResolveAfter resolves draws whose client never called resolve.
	// Zero disables the janitor.
	StaleResolveAfter time.Duration `yaml:"stale_resolve_after"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:              ":8080",
		Store:             StoreSqlite,
		DBPath:            "roulette.db",
		Verbose:           true,
		GinMode:           "release",
		StaleResolveAfter: 10 * time.Minute,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and ROULETTE_* environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("ROULETTE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("ROULETTE_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("ROULETTE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr must not be empty")
	}
	switch c.Store {
	case StoreMemory:
	case StoreSqlite:
		if c.DBPath == "" {
			return errors.New("config: db_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.StaleResolveAfter < 0 {
		return errors.New("config: stale_resolve_after must not be negative")
	}
	return nil
}
