// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/strata-fs/stratafs/lib/clock"
	"github.com/strata-fs/stratafs/lib/objstore"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := Open(Options{
		Path:  filepath.Join(t.TempDir(), "registry.db"),
		Clock: clock.Fake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := registry.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return registry
}

func TestCreateAndGet(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	created, err := registry.Create(ctx, "project-docs")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ValidateID(created.ID); err != nil {
		t.Errorf("generated identifier invalid: %v", err)
	}
	if created.HeadBranch != DefaultBranch {
		t.Errorf("HeadBranch = %q, want %q", created.HeadBranch, DefaultBranch)
	}

	got, err := registry.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "project-docs" {
		t.Errorf("Name = %q, want %q", got.Name, "project-docs")
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestCreateRequiresName(t *testing.T) {
	registry := newTestRegistry(t)

	if _, err := registry.Create(context.Background(), ""); err == nil {
		t.Error("Create with empty name succeeded")
	}
}

func TestGetUnknown(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	// A well-formed but unregistered identifier.
	if _, err := registry.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	// A malformed token misses the same way.
	if _, err := registry.Get(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta", "gamma"} {
		if _, err := registry.Create(ctx, name); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	repositories, err := registry.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(repositories) != 3 {
		t.Fatalf("got %d repositories, want 3", len(repositories))
	}
	for i := 1; i < len(repositories); i++ {
		if repositories[i-1].ID >= repositories[i].ID {
			t.Error("repositories not ordered by identifier")
		}
	}
}

func TestHeadBeforeFirstCommit(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	created, err := registry.Create(ctx, "empty")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := registry.Head(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Head of empty repository = %v, want ErrNotFound", err)
	}
}

func TestSetHeadAndHead(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	created, err := registry.Create(ctx, "docs")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first := objstore.HashCommit([]byte("commit one"))
	if err := registry.SetHead(ctx, created.ID, DefaultBranch, first); err != nil {
		t.Fatalf("SetHead: %v", err)
	}

	head, err := registry.Head(ctx, created.ID)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head != first {
		t.Errorf("Head = %s, want %s", head, first)
	}

	// Advancing the branch replaces the commit.
	second := objstore.HashCommit([]byte("commit two"))
	if err := registry.SetHead(ctx, created.ID, DefaultBranch, second); err != nil {
		t.Fatalf("SetHead (advance): %v", err)
	}
	head, err = registry.Head(ctx, created.ID)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head != second {
		t.Errorf("Head = %s, want %s", head, second)
	}
}

func TestSetHeadUnknownRepository(t *testing.T) {
	registry := newTestRegistry(t)

	err := registry.SetHead(context.Background(),
		"00000000-0000-0000-0000-000000000000", DefaultBranch,
		objstore.HashCommit([]byte("c")))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBranches(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	created, err := registry.Create(ctx, "multi")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	mainCommit := objstore.HashCommit([]byte("on main"))
	devCommit := objstore.HashCommit([]byte("on dev"))
	if err := registry.SetHead(ctx, created.ID, "main", mainCommit); err != nil {
		t.Fatalf("SetHead main: %v", err)
	}
	if err := registry.SetHead(ctx, created.ID, "dev", devCommit); err != nil {
		t.Fatalf("SetHead dev: %v", err)
	}

	branches, err := registry.Branches(ctx, created.ID)
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	if len(branches) != 2 {
		t.Fatalf("got %d branches, want 2", len(branches))
	}
	if branches[0].Name != "dev" || branches[0].Commit != devCommit {
		t.Errorf("branches[0] = %+v", branches[0])
	}
	if branches[1].Name != "main" || branches[1].Commit != mainCommit {
		t.Errorf("branches[1] = %+v", branches[1])
	}
}

func TestDelete(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	created, err := registry.Create(ctx, "doomed")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := registry.SetHead(ctx, created.ID, DefaultBranch, objstore.HashCommit([]byte("c"))); err != nil {
		t.Fatalf("SetHead: %v", err)
	}

	if err := registry.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := registry.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	// Branches cascade.
	branches, err := registry.Branches(ctx, created.ID)
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	if len(branches) != 0 {
		t.Errorf("got %d branches after Delete, want 0", len(branches))
	}

	if err := registry.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestValidateID(t *testing.T) {
	if err := ValidateID("2b5e6f3a-9c1d-4e7b-8a2f-0d4c6e8a1b3d"); err != nil {
		t.Errorf("canonical UUID rejected: %v", err)
	}
	for _, id := range []string{
		"",
		"short",
		"2b5e6f3a-9c1d-4e7b-8a2f-0d4c6e8a1b3dX",     // 37 chars
		"zb5e6f3a-9c1d-4e7b-8a2f-0d4c6e8a1b3d",      // bad hex
		"2b5e6f3a9c1d4e7b8a2f0d4c6e8a1b3d00000000",  // no hyphens, wrong length
	} {
		if err := ValidateID(id); err == nil {
			t.Errorf("ValidateID(%q) succeeded", id)
		}
	}
}
