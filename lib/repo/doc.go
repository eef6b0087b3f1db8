// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package repo is the repository registry: a SQLite database mapping
// repository identifiers to names and branch heads. The object store
// holds the content; this package only records which commit each
// branch points at.
package repo
