// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

// Stratafs-mount serves registered repositories as a read-only FUSE
// filesystem. The mount root lists one directory per repository,
// named by identifier; each directory shows the snapshot its head
// branch points at.
//
// The process runs in the foreground until SIGINT or SIGTERM, then
// unmounts and exits. Configuration comes from the file named by
// --config or the STRATAFS_CONFIG environment variable.
package main
