// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"context"
	"fmt"

	"github.com/strata-fs/stratafs/lib/objstore"
	"github.com/strata-fs/stratafs/lib/repo"
)

// snapshot is the state a repository identifier resolves to: the
// registered repository, its head commit, and that commit's root
// tree. Located fresh on every operation; nothing here is cached, so
// an advanced head is visible on the next kernel call.
type snapshot struct {
	repository *repo.Repository
	commit     *objstore.Commit
	root       objstore.ID
}

// locate walks identifier → registry row → head branch → commit. A
// repository that exists but has no commits yet is indistinguishable
// from an absent one; both fail with a not-found error.
func (s *Session) locate(ctx context.Context, repoID string) (*snapshot, error) {
	repository, err := s.registry.Get(ctx, repoID)
	if err != nil {
		return nil, err
	}

	head, err := s.registry.Head(ctx, repoID)
	if err != nil {
		s.logger.Warn("repository has no head commit", "repo", repoID, "branch", repository.HeadBranch)
		return nil, err
	}

	commit, err := s.store.GetCommit(head)
	if err != nil {
		s.logger.Warn("head commit missing from object store", "repo", repoID, "commit", head)
		return nil, fmt.Errorf("vfs: loading head commit of %s: %w", repoID, err)
	}

	return &snapshot{repository: repository, commit: commit, root: commit.Tree}, nil
}
