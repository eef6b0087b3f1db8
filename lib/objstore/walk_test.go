// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"bytes"
	"errors"
	"testing"
)

// buildFixtureTree stores this layout and returns the root tree ID:
//
//	/hello.txt        (12 bytes)
//	/docs/readme.txt  (120 bytes)
//	/docs/deep/a.bin  (1 KiB)
func buildFixtureTree(t *testing.T, store *Store) (root ID, readme []byte) {
	t.Helper()

	helloID, helloMeta, err := store.WriteFile([]byte("hello world\n"))
	if err != nil {
		t.Fatalf("WriteFile hello: %v", err)
	}

	readme = bytes.Repeat([]byte("readme...."), 12) // 120 bytes
	readmeID, readmeMeta, err := store.WriteFile(readme)
	if err != nil {
		t.Fatalf("WriteFile readme: %v", err)
	}

	deepContent := randomBytes(t, 1024, 30)
	deepID, deepMeta, err := store.WriteFile(deepContent)
	if err != nil {
		t.Fatalf("WriteFile a.bin: %v", err)
	}

	deepTree, err := store.PutTree(&Tree{Entries: []TreeEntry{
		{Name: "a.bin", Kind: EntryRegular, ID: deepID, Size: deepMeta.Size},
	}})
	if err != nil {
		t.Fatalf("PutTree deep: %v", err)
	}

	docsTree, err := store.PutTree(&Tree{Entries: []TreeEntry{
		{Name: "readme.txt", Kind: EntryRegular, ID: readmeID, Size: readmeMeta.Size},
		{Name: "deep", Kind: EntryDirectory, ID: deepTree},
	}})
	if err != nil {
		t.Fatalf("PutTree docs: %v", err)
	}

	root, err = store.PutTree(&Tree{Entries: []TreeEntry{
		{Name: "hello.txt", Kind: EntryRegular, ID: helloID, Size: helloMeta.Size},
		{Name: "docs", Kind: EntryDirectory, ID: docsTree},
	}})
	if err != nil {
		t.Fatalf("PutTree root: %v", err)
	}
	return root, readme
}

func TestResolvePathRoot(t *testing.T) {
	store := newTestStore(t)
	root, _ := buildFixtureTree(t, store)

	for _, path := range []string{"/", "", "//"} {
		entry, err := store.ResolvePath(root, path)
		if err != nil {
			t.Fatalf("ResolvePath(%q): %v", path, err)
		}
		if entry.Kind != EntryDirectory || entry.ID != root {
			t.Errorf("ResolvePath(%q) = %+v, want root directory", path, entry)
		}
	}
}

func TestResolvePathFile(t *testing.T) {
	store := newTestStore(t)
	root, _ := buildFixtureTree(t, store)

	entry, err := store.ResolvePath(root, "/docs/readme.txt")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if entry.Kind != EntryRegular {
		t.Errorf("Kind = %s, want regular", entry.Kind)
	}
	if entry.Size != 120 {
		t.Errorf("Size = %d, want 120", entry.Size)
	}
}

func TestResolvePathDirectory(t *testing.T) {
	store := newTestStore(t)
	root, _ := buildFixtureTree(t, store)

	entry, err := store.ResolvePath(root, "docs/deep")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if entry.Kind != EntryDirectory {
		t.Errorf("Kind = %s, want directory", entry.Kind)
	}
}

func TestResolvePathMissing(t *testing.T) {
	store := newTestStore(t)
	root, _ := buildFixtureTree(t, store)

	for _, path := range []string{
		"/nope",
		"/docs/nope.txt",
		"/docs/deep/nope/deeper",
		"/hello.txt/child", // descending through a regular file
	} {
		if _, err := store.ResolvePath(root, path); !errors.Is(err, ErrNotFound) {
			t.Errorf("ResolvePath(%q) = %v, want ErrNotFound", path, err)
		}
	}
}

func TestResolveFile(t *testing.T) {
	store := newTestStore(t)
	root, readme := buildFixtureTree(t, store)

	meta, err := store.ResolveFile(root, "/docs/readme.txt")
	if err != nil {
		t.Fatalf("ResolveFile: %v", err)
	}
	if meta.Size != int64(len(readme)) {
		t.Errorf("Size = %d, want %d", meta.Size, len(readme))
	}

	// Directories are not files.
	if _, err := store.ResolveFile(root, "/docs"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveFile on directory = %v, want ErrNotFound", err)
	}
}

func TestListDir(t *testing.T) {
	store := newTestStore(t)
	root, _ := buildFixtureTree(t, store)

	entries, err := store.ListDir(root, "/docs")
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Name order.
	if entries[0].Name != "deep" || entries[1].Name != "readme.txt" {
		t.Errorf("entries = %q, %q", entries[0].Name, entries[1].Name)
	}

	if _, err := store.ListDir(root, "/hello.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListDir on file = %v, want ErrNotFound", err)
	}
}
