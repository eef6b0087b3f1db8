// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/strata-fs/stratafs/lib/objstore"
	"github.com/strata-fs/stratafs/lib/repo"
)

// ErrParse is returned when a mount-relative path cannot carry a
// repository identifier: the first component is shorter than one.
var ErrParse = errors.New("vfs: path too short for a repository identifier")

// ErrNotFound is returned when a path parses but names nothing: an
// unregistered repository, a repository with no commits, or a missing
// entry inside a snapshot.
var ErrNotFound = errors.New("vfs: no such entry")

// ErrAccess is returned when an operation is denied: any open that
// requests write access, or opening a non-regular entry.
var ErrAccess = errors.New("vfs: access denied")

// Errno maps a translation error onto the errno the kernel expects.
// Parse failures and missing entries both surface as ENOENT — to the
// kernel a malformed name and an absent name look the same.
func Errno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrAccess):
		return unix.EACCES
	case errors.Is(err, ErrParse),
		errors.Is(err, ErrNotFound),
		errors.Is(err, repo.ErrNotFound),
		errors.Is(err, objstore.ErrNotFound):
		return unix.ENOENT
	default:
		return unix.EIO
	}
}
