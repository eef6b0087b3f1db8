// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"fmt"
	"sort"
)

// EntryKind classifies what a tree entry points at. The walk layer
// returns it instead of raw mode bits so callers dispatch on an
// exhaustive variant rather than testing bit patterns.
type EntryKind uint8

const (
	// EntryRegular is an ordinary file backed by a FileMeta record.
	EntryRegular EntryKind = iota

	// EntryDirectory is a subdirectory backed by a Tree record.
	EntryDirectory

	// EntryOther is anything the store cannot represent as a file or
	// directory (the on-disk format reserves room for future kinds).
	// The filesystem layer rejects these.
	EntryOther
)

// String returns the human-readable name of an entry kind.
func (k EntryKind) String() string {
	switch k {
	case EntryRegular:
		return "regular"
	case EntryDirectory:
		return "directory"
	case EntryOther:
		return "other"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// TreeEntry is one name in a directory tree.
type TreeEntry struct {
	// Name is the entry's file name. Never contains a separator.
	Name string `cbor:"name"`

	// Kind classifies the referenced object.
	Kind EntryKind `cbor:"kind"`

	// ID identifies the referenced object: a Tree for directories,
	// a FileMeta for regular files.
	ID ID `cbor:"id"`

	// Size is the file size in bytes for regular files, zero for
	// directories. Duplicated from the FileMeta so directory
	// listings and attribute lookups do not need a second object
	// fetch.
	Size int64 `cbor:"size"`
}

// Tree is a directory object: a list of entries sorted by name.
// Sorting is part of the on-disk contract — it makes the encoding
// canonical (identical directories hash identically) and lets the
// walk do a binary search per component.
type Tree struct {
	Entries []TreeEntry `cbor:"entries"`
}

// Sort orders the entries by name. Callers building trees must call
// this before storing; Store.PutTree enforces it.
func (t *Tree) Sort() {
	sort.Slice(t.Entries, func(i, j int) bool {
		return t.Entries[i].Name < t.Entries[j].Name
	})
}

// Find returns the entry with the given name, or nil. Entries must
// be sorted.
func (t *Tree) Find(name string) *TreeEntry {
	index := sort.Search(len(t.Entries), func(i int) bool {
		return t.Entries[i].Name >= name
	})
	if index < len(t.Entries) && t.Entries[index].Name == name {
		return &t.Entries[index]
	}
	return nil
}

// ChunkRef locates one chunk of a file's content.
type ChunkRef struct {
	// ID is the chunk-domain identifier of the uncompressed bytes.
	ID ID `cbor:"id"`

	// Size is the uncompressed chunk size in bytes.
	Size uint32 `cbor:"size"`
}

// FileMeta is a regular file object: the ordered chunk list that
// reconstructs its content.
type FileMeta struct {
	// Size is the total content size in bytes. Always equals the sum
	// of the chunk sizes; GetFileMeta verifies this on load.
	Size int64 `cbor:"size"`

	// Chunks is the reconstruction order. Empty for an empty file.
	Chunks []ChunkRef `cbor:"chunks"`
}

// Commit is one snapshot of a repository: a root tree plus history
// metadata.
type Commit struct {
	// Tree is the root directory of the snapshot.
	Tree ID `cbor:"tree"`

	// Parents are the preceding commits, oldest first. Empty for the
	// initial commit.
	Parents []ID `cbor:"parents,omitempty"`

	// Message describes the change.
	Message string `cbor:"message"`

	// Creator identifies who made the commit (free-form, typically
	// user@host).
	Creator string `cbor:"creator"`

	// Created is the commit time in Unix seconds.
	Created int64 `cbor:"created"`
}
