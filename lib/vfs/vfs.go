// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/strata-fs/stratafs/lib/objstore"
	"github.com/strata-fs/stratafs/lib/repo"
)

// Attr describes one entry for a stat-style call.
type Attr struct {
	Kind objstore.EntryKind

	// Size is the content size in bytes. Zero for directories.
	Size int64
}

// DirEntry is one row of a directory listing.
type DirEntry struct {
	Name string
	Kind objstore.EntryKind
}

// Options configures a Session.
type Options struct {
	// Registry maps repository identifiers to head commits.
	Registry *repo.Registry

	// Store holds commits, trees, and file content.
	Store *objstore.Store

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// Session translates mount-relative paths into reads against
// registered repository snapshots. It holds no per-file state: every
// operation re-parses its path and re-locates the repository head, so
// concurrent calls never contend and a head advanced between two
// reads is simply picked up by the second.
type Session struct {
	registry *repo.Registry
	store    *objstore.Store
	logger   *slog.Logger
}

// New creates a Session over a registry and an object store.
func New(options Options) (*Session, error) {
	if options.Registry == nil {
		return nil, fmt.Errorf("vfs: registry is required")
	}
	if options.Store == nil {
		return nil, fmt.Errorf("vfs: store is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		registry: options.Registry,
		store:    options.Store,
		logger:   logger,
	}, nil
}

// isRoot reports whether path names the mount root itself.
func isRoot(path string) bool {
	return path == "" || path == "/"
}

// Getattr stats a mount-relative path. The mount root is always a
// directory; everything below it resolves through the owning
// repository's head snapshot.
func (s *Session) Getattr(ctx context.Context, path string) (Attr, error) {
	if isRoot(path) {
		return Attr{Kind: objstore.EntryDirectory}, nil
	}

	repoID, inner, err := SplitPath(path)
	if err != nil {
		return Attr{}, err
	}
	snap, err := s.locate(ctx, repoID)
	if err != nil {
		return Attr{}, err
	}
	entry, err := s.store.ResolvePath(snap.root, inner)
	if err != nil {
		return Attr{}, err
	}
	return Attr{Kind: entry.Kind, Size: entry.Size}, nil
}

// Readdir lists a directory. The mount root lists one directory per
// registered repository, named by identifier; below the root the
// listing comes from the snapshot tree. "." and ".." lead every
// listing.
func (s *Session) Readdir(ctx context.Context, path string) ([]DirEntry, error) {
	entries := []DirEntry{
		{Name: ".", Kind: objstore.EntryDirectory},
		{Name: "..", Kind: objstore.EntryDirectory},
	}

	if isRoot(path) {
		repositories, err := s.registry.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, repository := range repositories {
			entries = append(entries, DirEntry{Name: repository.ID, Kind: objstore.EntryDirectory})
		}
		return entries, nil
	}

	repoID, inner, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	snap, err := s.locate(ctx, repoID)
	if err != nil {
		return nil, err
	}
	listed, err := s.store.ListDir(snap.root, inner)
	if err != nil {
		return nil, err
	}
	for _, entry := range listed {
		entries = append(entries, DirEntry{Name: entry.Name, Kind: entry.Kind})
	}
	return entries, nil
}

// Open checks that a path may be opened with the given flags. The
// store is read-only: the masked access bits must be exactly
// O_RDONLY, and only regular files can be opened. No handle is
// returned — Read re-resolves on every call.
func (s *Session) Open(ctx context.Context, path string, flags uint32) error {
	if flags&unix.O_ACCMODE != unix.O_RDONLY {
		return fmt.Errorf("%w: %q opened for writing", ErrAccess, path)
	}
	if isRoot(path) {
		return fmt.Errorf("%w: %q is a directory", ErrAccess, path)
	}

	repoID, inner, err := SplitPath(path)
	if err != nil {
		return err
	}
	snap, err := s.locate(ctx, repoID)
	if err != nil {
		return err
	}
	entry, err := s.store.ResolvePath(snap.root, inner)
	if err != nil {
		return err
	}
	if entry.Kind != objstore.EntryRegular {
		return fmt.Errorf("%w: %q is not a regular file", ErrAccess, path)
	}
	return nil
}

// Read copies up to len(dest) bytes of a file starting at off. Reads
// at or past the end of the file return 0 with no error. The flags
// check mirrors Open's: with no handle table, every read restates
// its access mode. The path is resolved from scratch, so a read
// needs no prior Open to have happened on this Session.
func (s *Session) Read(ctx context.Context, path string, dest []byte, off int64, flags uint32) (int, error) {
	if flags&unix.O_ACCMODE != unix.O_RDONLY {
		return 0, fmt.Errorf("%w: %q read with write access", ErrAccess, path)
	}

	repoID, inner, err := SplitPath(path)
	if err != nil {
		return 0, err
	}
	snap, err := s.locate(ctx, repoID)
	if err != nil {
		return 0, err
	}
	meta, err := s.store.ResolveFile(snap.root, inner)
	if err != nil {
		return 0, err
	}

	n, err := s.store.Reader(meta).ReadAt(dest, off)
	if err == io.EOF {
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("vfs: reading %s: %w", path, err)
	}
	return n, nil
}
