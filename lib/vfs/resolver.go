// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"fmt"
	"strings"
)

// RepoIDLength is how many characters of the first path component
// carry the repository identifier.
const RepoIDLength = 36

// SplitPath splits a mount-relative path into a repository identifier
// and an in-repo path.
//
// One leading slash is stripped, then the first component — up to
// the next separator, or the whole remainder — must hold at least
// RepoIDLength characters, of which exactly the first RepoIDLength
// become the identifier. Characters between the identifier and the
// separator are ignored, so a directory name like "<uuid>-archive"
// still resolves; whether such an identifier exists is the
// registry's question, not the parser's. The remainder, from the
// separator on, is the in-repo path; when nothing follows, the
// in-repo path is "/".
//
// Paths whose first component cannot hold a full identifier fail with
// ErrParse.
func SplitPath(path string) (repoID, inner string, err error) {
	trimmed := strings.TrimPrefix(path, "/")

	slash := strings.IndexByte(trimmed, '/')
	if slash < 0 {
		if len(trimmed) < RepoIDLength {
			return "", "", fmt.Errorf("%w: %q", ErrParse, path)
		}
		return trimmed[:RepoIDLength], "/", nil
	}
	if slash < RepoIDLength {
		return "", "", fmt.Errorf("%w: %q", ErrParse, path)
	}
	return trimmed[:RepoIDLength], trimmed[slash:], nil
}
