// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for StrataFS
// commands.
//
// Configuration is loaded from a single file specified by:
//   - STRATAFS_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for StrataFS.
type Config struct {
	// Store configures the object store.
	Store StoreConfig `yaml:"store"`

	// Registry configures the repository registry.
	Registry RegistryConfig `yaml:"registry"`

	// Mount configures the FUSE mount.
	Mount MountConfig `yaml:"mount"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`
}

// StoreConfig configures the object store.
type StoreConfig struct {
	// Root is the directory holding chunk and metadata blobs.
	Root string `yaml:"root"`

	// EncryptionKeyFile is an optional path to a 32-byte master key.
	// When set, every blob is encrypted at rest.
	EncryptionKeyFile string `yaml:"encryption_key_file,omitempty"`
}

// RegistryConfig configures the repository registry.
type RegistryConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// PoolSize is the connection pool size. Zero uses the pool
	// default.
	PoolSize int `yaml:"pool_size,omitempty"`
}

// MountConfig configures the FUSE mount.
type MountConfig struct {
	// Mountpoint is the directory where the filesystem is mounted.
	Mountpoint string `yaml:"mountpoint"`

	// AllowOther permits other users to access the mount. Requires
	// user_allow_other in /etc/fuse.conf.
	AllowOther bool `yaml:"allow_other,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store:    StoreConfig{Root: "/var/lib/stratafs/objects"},
		Registry: RegistryConfig{Path: "/var/lib/stratafs/registry.db"},
		Mount:    MountConfig{Mountpoint: "/mnt/stratafs"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the configuration from the file named by the
// STRATAFS_CONFIG environment variable.
func Load() (*Config, error) {
	path := os.Getenv("STRATAFS_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("STRATAFS_CONFIG environment variable not set (no config discovery by design)")
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from an explicit path. Values in
// the file override defaults; fields the file omits keep them.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Store.Root == "" {
		return fmt.Errorf("store.root is required")
	}
	if c.Registry.Path == "" {
		return fmt.Errorf("registry.path is required")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
}
