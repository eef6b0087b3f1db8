// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the StrataFS standard SQLite connection
// pool.
//
// The repository registry is the only structured store in StrataFS,
// and this package is how it reaches SQLite: a thin wrapper over
// zombiezen.com/go/sqlite with production defaults (WAL journal,
// NORMAL synchronous, busy timeout, foreign keys on). Callers
// [Pool.Take] a connection, perform work, and [Pool.Put] it back;
// connections are not safe for concurrent use.
//
// The package deliberately does not abstract SQLite away: consumers
// write SQL and use sqlitex.Execute directly. One dependency, one set
// of pragmas, one pool pattern.
package sqlitepool
