// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"fmt"
	"strings"
)

// ResolvePath walks the tree rooted at rootTree along the given
// slash-separated path and returns the terminal entry. The path "/"
// (or "") resolves to the root directory itself. Any missing
// component, or a descent through a non-directory, fails with
// ErrNotFound.
//
// The walker is agnostic to what the caller wants the entry for; the
// filesystem layer interprets the returned kind.
func (s *Store) ResolvePath(rootTree ID, path string) (TreeEntry, error) {
	entry := TreeEntry{Kind: EntryDirectory, ID: rootTree}

	for _, component := range splitPath(path) {
		if entry.Kind != EntryDirectory {
			return TreeEntry{}, fmt.Errorf("%q: %w", path, ErrNotFound)
		}

		tree, err := s.GetTree(entry.ID)
		if err != nil {
			return TreeEntry{}, fmt.Errorf("walking %q: %w", path, err)
		}

		found := tree.Find(component)
		if found == nil {
			return TreeEntry{}, fmt.Errorf("%q: %w", path, ErrNotFound)
		}
		entry = *found
	}

	return entry, nil
}

// ResolveFile resolves a path directly to the file metadata of a
// regular file. This is the read path's variant of ResolvePath: one
// call yields the chunk list instead of a generic entry. Directories
// and other kinds fail with ErrNotFound.
func (s *Store) ResolveFile(rootTree ID, path string) (*FileMeta, error) {
	entry, err := s.ResolvePath(rootTree, path)
	if err != nil {
		return nil, err
	}
	if entry.Kind != EntryRegular {
		return nil, fmt.Errorf("%q is a %s, not a regular file: %w", path, entry.Kind, ErrNotFound)
	}
	return s.GetFileMeta(entry.ID)
}

// ListDir resolves a path to a directory and returns its entries in
// name order. Non-directories fail with ErrNotFound.
func (s *Store) ListDir(rootTree ID, path string) ([]TreeEntry, error) {
	entry, err := s.ResolvePath(rootTree, path)
	if err != nil {
		return nil, err
	}
	if entry.Kind != EntryDirectory {
		return nil, fmt.Errorf("%q is a %s, not a directory: %w", path, entry.Kind, ErrNotFound)
	}
	tree, err := s.GetTree(entry.ID)
	if err != nil {
		return nil, err
	}
	return tree.Entries, nil
}

// splitPath breaks a slash-separated path into components, dropping
// empty segments so "/", "//" and trailing slashes are harmless.
func splitPath(path string) []string {
	var components []string
	for _, component := range strings.Split(path, "/") {
		if component != "" {
			components = append(components, component)
		}
	}
	return components
}
