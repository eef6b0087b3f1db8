// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package vfs translates filesystem paths seen at a mount point into
// reads against versioned repository snapshots.
//
// A path names a repository in its first component — the first 36
// characters form the identifier — and an entry inside that
// repository's head snapshot in the rest. The package exposes four
// operations (Getattr, Readdir, Open, Read) plus a synthetic root
// listing, all stateless: no handle table, no caching, every call
// resolves from the current registry state.
//
// The FUSE binding lives in the fuse subpackage; this package has no
// kernel dependencies and is exercised directly by its tests.
package vfs
