// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Store.Root != "/var/lib/stratafs/objects" {
		t.Errorf("store.root = %q", cfg.Store.Root)
	}
	if cfg.Registry.Path != "/var/lib/stratafs/registry.db" {
		t.Errorf("registry.path = %q", cfg.Registry.Path)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadRequiresEnv(t *testing.T) {
	t.Setenv("STRATAFS_CONFIG", "")
	os.Unsetenv("STRATAFS_CONFIG")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when STRATAFS_CONFIG not set, got nil")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stratafs.yaml")
	content := `
store:
  root: /data/objects
  encryption_key_file: /etc/stratafs/master.key
registry:
  path: /data/registry.db
mount:
  mountpoint: /srv/repos
  allow_other: true
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.Root != "/data/objects" {
		t.Errorf("store.root = %q", cfg.Store.Root)
	}
	if cfg.Store.EncryptionKeyFile != "/etc/stratafs/master.key" {
		t.Errorf("store.encryption_key_file = %q", cfg.Store.EncryptionKeyFile)
	}
	if !cfg.Mount.AllowOther {
		t.Error("mount.allow_other not set")
	}
	level, err := cfg.LogLevel()
	if err != nil {
		t.Fatalf("LogLevel: %v", err)
	}
	if level != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level)
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stratafs.yaml")
	content := `
store:
  root: /data/objects
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Registry.Path != "/var/lib/stratafs/registry.db" {
		t.Errorf("registry.path = %q, want default", cfg.Registry.Path)
	}
	if cfg.Mount.Mountpoint != "/mnt/stratafs" {
		t.Errorf("mount.mountpoint = %q, want default", cfg.Mount.Mountpoint)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty store.root accepted")
	}

	cfg = Default()
	cfg.Log.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log level accepted")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file loaded successfully")
	}
}
