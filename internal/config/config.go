// Package config loads blobcache process settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the CLI and the fx modules.
type Config struct {
	Store      string `env:"BLOBCACHE_STORE" envDefault:"file://./.blobcache"`
	Codec      string `env:"BLOBCACHE_CODEC" envDefault:"none"`
	StorageKey string `env:"BLOBCACHE_STORAGE_KEY" envDefault:"key_cache"`
	Profile    string `env:"BLOBCACHE_PROFILE" envDefault:"strict"`
	Verbose    bool   `env:"BLOBCACHE_VERBOSE" envDefault:"false"`
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
