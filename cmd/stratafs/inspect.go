// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sys/unix"

	"github.com/strata-fs/stratafs/lib/objstore"
	"github.com/strata-fs/stratafs/lib/vfs"
)

func (e *env) log(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("log", flag.ContinueOnError)
	repoID := flags.String("repo", "", "repository identifier (required)")
	limit := flags.Int("limit", 0, "stop after this many commits (0 = all)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *repoID == "" {
		return fmt.Errorf("log: --repo is required")
	}

	current, err := e.registry.Head(ctx, *repoID)
	if err != nil {
		return err
	}

	// First parents only. Imports never merge, so the history is a
	// straight line.
	for count := 0; ; count++ {
		if *limit > 0 && count >= *limit {
			break
		}
		commit, err := e.store.GetCommit(current)
		if err != nil {
			return fmt.Errorf("loading commit %s: %w", current, err)
		}

		fmt.Printf("commit %s\n", objstore.FormatID(current))
		if commit.Creator != "" {
			fmt.Printf("creator %s\n", commit.Creator)
		}
		fmt.Printf("date    %s\n", time.Unix(commit.Created, 0).UTC().Format(time.RFC3339))
		fmt.Printf("\n    %s\n\n", commit.Message)

		if len(commit.Parents) == 0 {
			break
		}
		current = commit.Parents[0]
	}
	return nil
}

// session builds a path translation session over the already-open
// registry and store, so ls and cat see exactly what the mount
// serves.
func (e *env) session() (*vfs.Session, error) {
	return vfs.New(vfs.Options{
		Registry: e.registry,
		Store:    e.store,
		Logger:   e.logger,
	})
}

func (e *env) ls(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	repoID := flags.String("repo", "", "repository identifier (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *repoID == "" {
		return fmt.Errorf("ls: --repo is required")
	}
	inner := "/"
	if flags.NArg() > 0 {
		inner = "/" + strings.TrimPrefix(flags.Arg(0), "/")
	}

	session, err := e.session()
	if err != nil {
		return err
	}

	mountPath := "/" + *repoID + inner
	entries, err := session.Readdir(ctx, mountPath)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		switch entry.Kind {
		case objstore.EntryDirectory:
			fmt.Fprintf(writer, "dir\t\t%s/\n", entry.Name)
		case objstore.EntryRegular:
			attr, err := session.Getattr(ctx, mountPath+"/"+entry.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(writer, "file\t%d\t%s\n", attr.Size, entry.Name)
		default:
			fmt.Fprintf(writer, "other\t\t%s\n", entry.Name)
		}
	}
	return writer.Flush()
}

func (e *env) cat(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("cat", flag.ContinueOnError)
	repoID := flags.String("repo", "", "repository identifier (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *repoID == "" {
		return fmt.Errorf("cat: --repo is required")
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("cat: exactly one path expected")
	}

	session, err := e.session()
	if err != nil {
		return err
	}

	mountPath := "/" + *repoID + "/" + strings.TrimPrefix(flags.Arg(0), "/")
	attr, err := session.Getattr(ctx, mountPath)
	if err != nil {
		return err
	}
	if attr.Kind != objstore.EntryRegular {
		return fmt.Errorf("cat: %s is not a regular file", flags.Arg(0))
	}

	// Stream in chunk-sized slabs rather than loading the file whole.
	buffer := make([]byte, objstore.TargetChunkSize)
	for offset := int64(0); offset < attr.Size; {
		n, err := session.Read(ctx, mountPath, buffer, offset, unix.O_RDONLY)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if _, err := os.Stdout.Write(buffer[:n]); err != nil {
			return err
		}
		offset += int64(n)
	}
	return nil
}
