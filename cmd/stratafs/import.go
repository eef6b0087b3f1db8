// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"

	"github.com/strata-fs/stratafs/lib/objstore"
	"github.com/strata-fs/stratafs/lib/repo"
)

func (e *env) importTree(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	repoID := flags.String("repo", "", "repository identifier (required)")
	message := flags.String("message", "", "commit message")
	creator := flags.String("creator", "", "commit creator (defaults to the current user)")
	branch := flags.String("branch", "", "branch to advance (defaults to the head branch)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *repoID == "" {
		return fmt.Errorf("import: --repo is required")
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("import: exactly one source directory expected")
	}
	source := flags.Arg(0)

	repository, err := e.registry.Get(ctx, *repoID)
	if err != nil {
		return err
	}
	if *branch == "" {
		*branch = repository.HeadBranch
	}
	if *message == "" {
		*message = fmt.Sprintf("import of %s", filepath.Base(source))
	}
	if *creator == "" {
		if current, err := user.Current(); err == nil {
			*creator = current.Username
		}
	}

	rootTree, stats, err := importDirectory(e.store, source)
	if err != nil {
		return err
	}

	commit := &objstore.Commit{
		Tree:    rootTree,
		Message: *message,
		Creator: *creator,
		Created: e.clock.Now().Unix(),
	}
	// The previous head, if any, becomes the parent.
	head, err := e.registry.Head(ctx, repository.ID)
	switch {
	case err == nil:
		previous, err := e.store.GetCommit(head)
		if err != nil {
			return fmt.Errorf("loading previous head: %w", err)
		}
		if previous.Tree == rootTree {
			return fmt.Errorf("import: no changes against the current head")
		}
		commit.Parents = []objstore.ID{head}
	case errors.Is(err, repo.ErrNotFound):
		// First commit.
	default:
		return err
	}

	commitID, err := e.store.PutCommit(commit)
	if err != nil {
		return err
	}
	if err := e.registry.SetHead(ctx, repository.ID, *branch, commitID); err != nil {
		return err
	}

	fmt.Printf("%s\n", objstore.FormatID(commitID))
	e.logger.Info("import complete",
		"repo", repository.ID,
		"branch", *branch,
		"files", stats.files,
		"bytes", stats.bytes,
		"skipped", stats.skipped,
	)
	return nil
}

type importStats struct {
	files   int
	bytes   int64
	skipped int
}

// importDirectory stores the directory rooted at path bottom-up and
// returns the root tree identifier. Regular files and directories are
// stored; anything else (symlinks, sockets, devices) is recorded as
// an entry of no kind and carries no content.
func importDirectory(store *objstore.Store, path string) (objstore.ID, *importStats, error) {
	stats := &importStats{}
	root, err := importOne(store, path, stats)
	if err != nil {
		return objstore.ID{}, nil, err
	}
	return root, stats, nil
}

func importOne(store *objstore.Store, dir string, stats *importStats) (objstore.ID, error) {
	listing, err := os.ReadDir(dir)
	if err != nil {
		return objstore.ID{}, fmt.Errorf("reading %s: %w", dir, err)
	}
	sort.Slice(listing, func(i, j int) bool { return listing[i].Name() < listing[j].Name() })

	tree := &objstore.Tree{}
	for _, entry := range listing {
		childPath := filepath.Join(dir, entry.Name())

		switch {
		case entry.IsDir():
			childID, err := importOne(store, childPath, stats)
			if err != nil {
				return objstore.ID{}, err
			}
			tree.Entries = append(tree.Entries, objstore.TreeEntry{
				Name: entry.Name(),
				Kind: objstore.EntryDirectory,
				ID:   childID,
			})

		case entry.Type().IsRegular():
			content, err := os.ReadFile(childPath)
			if err != nil {
				return objstore.ID{}, fmt.Errorf("reading %s: %w", childPath, err)
			}
			fileID, meta, err := store.WriteFile(content)
			if err != nil {
				return objstore.ID{}, fmt.Errorf("storing %s: %w", childPath, err)
			}
			tree.Entries = append(tree.Entries, objstore.TreeEntry{
				Name: entry.Name(),
				Kind: objstore.EntryRegular,
				ID:   fileID,
				Size: meta.Size,
			})
			stats.files++
			stats.bytes += meta.Size

		default:
			// Symlinks and special files keep their name in the tree
			// but carry no content. The mount skips them.
			tree.Entries = append(tree.Entries, objstore.TreeEntry{
				Name: entry.Name(),
				Kind: objstore.EntryOther,
			})
			stats.skipped++
		}
	}

	treeID, err := store.PutTree(tree)
	if err != nil {
		return objstore.ID{}, fmt.Errorf("storing tree for %s: %w", dir, err)
	}
	return treeID, nil
}
