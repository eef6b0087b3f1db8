// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/strata-fs/stratafs/lib/clock"
	"github.com/strata-fs/stratafs/lib/config"
	"github.com/strata-fs/stratafs/lib/objstore"
	"github.com/strata-fs/stratafs/lib/repo"
)

const usage = `usage: stratafs [--config path] <command> [arguments]

Repository administration:
  create --name NAME          register a new repository
  list                        list registered repositories
  delete ID                   remove a repository from the registry

Content:
  import --repo ID [--message MSG] [--creator WHO] DIR
                              commit a directory tree as the new head
  log --repo ID               show the commit history of the head branch
  ls --repo ID [PATH]         list a directory in the head snapshot
  cat --repo ID PATH          write a file from the head snapshot to stdout
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "stratafs: %v\n", err)
		os.Exit(1)
	}
}

// env bundles what every subcommand needs. The registry and store
// are opened once, after the config is known.
type env struct {
	registry *repo.Registry
	store    *objstore.Store
	logger   *slog.Logger
	clock    clock.Clock
}

func run(args []string) error {
	global := flag.NewFlagSet("stratafs", flag.ContinueOnError)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := global.String("config", "", "path to config file (defaults to $STRATAFS_CONFIG)")
	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return fmt.Errorf("no command given")
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	registry, err := repo.Open(repo.Options{
		Path:     cfg.Registry.Path,
		PoolSize: cfg.Registry.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer registry.Close()

	store, err := objstore.NewStore(objstore.Options{Root: cfg.Store.Root, Logger: logger})
	if err != nil {
		return err
	}

	e := &env{registry: registry, store: store, logger: logger, clock: clock.Real()}
	ctx := context.Background()

	switch command, commandArgs := rest[0], rest[1:]; command {
	case "create":
		return e.create(ctx, commandArgs)
	case "list":
		return e.list(ctx, commandArgs)
	case "delete":
		return e.delete(ctx, commandArgs)
	case "import":
		return e.importTree(ctx, commandArgs)
	case "log":
		return e.log(ctx, commandArgs)
	case "ls":
		return e.ls(ctx, commandArgs)
	case "cat":
		return e.cat(ctx, commandArgs)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (e *env) create(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("create", flag.ContinueOnError)
	name := flags.String("name", "", "repository name (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("create: --name is required")
	}

	repository, err := e.registry.Create(ctx, *name)
	if err != nil {
		return err
	}
	fmt.Println(repository.ID)
	return nil
}

func (e *env) list(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("list: takes no arguments")
	}

	repositories, err := e.registry.List(ctx)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tBRANCH\tCREATED")
	for _, repository := range repositories {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			repository.ID,
			repository.Name,
			repository.HeadBranch,
			repository.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	return writer.Flush()
}

func (e *env) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete: exactly one repository identifier expected")
	}
	return e.registry.Delete(ctx, args[0])
}
