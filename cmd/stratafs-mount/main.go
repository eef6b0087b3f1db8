// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/strata-fs/stratafs/lib/config"
	"github.com/strata-fs/stratafs/lib/objstore"
	"github.com/strata-fs/stratafs/lib/repo"
	"github.com/strata-fs/stratafs/lib/vfs"
	vfsfuse "github.com/strata-fs/stratafs/lib/vfs/fuse"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var mountpoint string
	var allowOther bool

	flag.StringVar(&configPath, "config", "", "path to config file (defaults to $STRATAFS_CONFIG)")
	flag.StringVar(&mountpoint, "mountpoint", "", "override the configured mountpoint")
	flag.BoolVar(&allowOther, "allow-other", false, "permit other users to access the mount")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if mountpoint != "" {
		cfg.Mount.Mountpoint = mountpoint
	}
	if allowOther {
		cfg.Mount.AllowOther = true
	}
	if cfg.Mount.Mountpoint == "" {
		return fmt.Errorf("no mountpoint configured")
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	registry, err := repo.Open(repo.Options{
		Path:     cfg.Registry.Path,
		PoolSize: cfg.Registry.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer registry.Close()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	session, err := vfs.New(vfs.Options{
		Registry: registry,
		Store:    store,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	server, err := vfsfuse.Mount(vfsfuse.Options{
		Mountpoint: cfg.Mount.Mountpoint,
		Session:    session,
		AllowOther: cfg.Mount.AllowOther,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	logger.Info("unmounting", "signal", sig.String())

	if err := server.Unmount(); err != nil {
		return fmt.Errorf("unmounting %s: %w", cfg.Mount.Mountpoint, err)
	}
	server.Wait()
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// openStore opens the object store, loading the at-rest encryption
// key when one is configured.
func openStore(cfg *config.Config, logger *slog.Logger) (*objstore.Store, error) {
	options := objstore.Options{Root: cfg.Store.Root, Logger: logger}

	if cfg.Store.EncryptionKeyFile != "" {
		file, err := os.Open(cfg.Store.EncryptionKeyFile)
		if err != nil {
			return nil, fmt.Errorf("opening encryption key: %w", err)
		}
		defer file.Close()

		key, err := objstore.ReadEncryptionKey(file)
		if err != nil {
			return nil, fmt.Errorf("reading encryption key: %w", err)
		}
		options.EncryptionKey = key
	}

	return objstore.NewStore(options)
}
