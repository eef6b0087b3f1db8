// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/strata-fs/stratafs/lib/objstore"
)

func newTestStore(t *testing.T) *objstore.Store {
	t.Helper()
	store, err := objstore.NewStore(objstore.Options{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

// writeSourceTree lays out a small directory tree to import:
//
//	hello.txt
//	docs/guide.md
//	docs/link -> guide.md (symlink)
func writeSourceTree(t *testing.T) string {
	t.Helper()
	source := t.TempDir()

	if err := os.WriteFile(filepath.Join(source, "hello.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Mkdir(filepath.Join(source, "docs"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(source, "docs", "guide.md"), []byte("# guide\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Symlink("guide.md", filepath.Join(source, "docs", "link")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	return source
}

func TestImportDirectory(t *testing.T) {
	store := newTestStore(t)
	source := writeSourceTree(t)

	root, stats, err := importDirectory(store, source)
	if err != nil {
		t.Fatalf("importDirectory: %v", err)
	}
	if stats.files != 2 {
		t.Errorf("files = %d, want 2", stats.files)
	}
	if stats.skipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.skipped)
	}

	meta, err := store.ResolveFile(root, "/docs/guide.md")
	if err != nil {
		t.Fatalf("ResolveFile: %v", err)
	}
	content, err := store.ReadAll(meta)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(content, []byte("# guide\n")) {
		t.Errorf("got %q", content)
	}

	// The symlink is present by name but has no content.
	entry, err := store.ResolvePath(root, "/docs/link")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if entry.Kind != objstore.EntryOther {
		t.Errorf("symlink Kind = %s, want other", entry.Kind)
	}
}

// TestImportDirectoryDeterministic verifies that importing the same
// tree twice yields the same root identifier, which is what makes a
// no-change import detectable.
func TestImportDirectoryDeterministic(t *testing.T) {
	store := newTestStore(t)
	source := writeSourceTree(t)

	first, _, err := importDirectory(store, source)
	if err != nil {
		t.Fatalf("importDirectory: %v", err)
	}
	second, _, err := importDirectory(store, source)
	if err != nil {
		t.Fatalf("importDirectory (repeat): %v", err)
	}
	if first != second {
		t.Error("same source produced different root trees")
	}
}

func TestImportDirectoryEmpty(t *testing.T) {
	store := newTestStore(t)

	root, stats, err := importDirectory(store, t.TempDir())
	if err != nil {
		t.Fatalf("importDirectory: %v", err)
	}
	if stats.files != 0 {
		t.Errorf("files = %d, want 0", stats.files)
	}

	tree, err := store.GetTree(root)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(tree.Entries) != 0 {
		t.Errorf("empty source produced %d entries", len(tree.Entries))
	}
}

func TestImportDirectoryMissingSource(t *testing.T) {
	store := newTestStore(t)

	if _, _, err := importDirectory(store, filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("missing source imported successfully")
	}
}
