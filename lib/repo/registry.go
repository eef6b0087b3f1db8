// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/strata-fs/stratafs/lib/clock"
	"github.com/strata-fs/stratafs/lib/objstore"
	"github.com/strata-fs/stratafs/lib/sqlitepool"
)

// IDLength is the length of a repository identifier: a canonical
// UUID, 36 characters including hyphens.
const IDLength = 36

// ErrNotFound is returned when a repository, branch, or head commit
// does not exist in the registry.
var ErrNotFound = errors.New("repo: not found")

// schema creates the registry tables. Branches cascade with their
// repository so Delete needs no second statement.
const schema = `
CREATE TABLE IF NOT EXISTS repositories (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	head_branch TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS branches (
	repo_id    TEXT NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	commit_id  TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (repo_id, name)
);
`

// DefaultBranch is the head branch assigned to new repositories.
const DefaultBranch = "main"

// Repository is one registry row.
type Repository struct {
	// ID is the canonical UUID identifying the repository. It is
	// also the repository's directory name at the mount root.
	ID string

	// Name is the human-readable repository name. Display only;
	// nothing resolves through it.
	Name string

	// HeadBranch names the branch the mount serves.
	HeadBranch string

	// CreatedAt is when the repository was registered.
	CreatedAt time.Time
}

// Branch is one branch row: a name pointing at a commit.
type Branch struct {
	RepoID    string
	Name      string
	Commit    objstore.ID
	UpdatedAt time.Time
}

// Options configures a Registry.
type Options struct {
	// Path is the SQLite database file.
	Path string

	// PoolSize is the connection pool size; zero uses the pool
	// default.
	PoolSize int

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger

	// Clock stamps new rows. If nil, the real clock is used.
	Clock clock.Clock
}

// Registry is the SQLite-backed repository registry: which
// repositories exist, and which commit each branch points at. It is
// safe for concurrent use; every method borrows a pooled connection
// for the duration of the call and returns it on every exit path.
type Registry struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// Open opens (creating if needed) a registry at options.Path.
// The caller must Close it when done.
func Open(options Options) (*Registry, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     options.Path,
		PoolSize: options.PoolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repo: opening registry: %w", err)
	}

	return &Registry{pool: pool, clock: clk, logger: logger}, nil
}

// Close releases the registry's database connections.
func (r *Registry) Close() error {
	return r.pool.Close()
}

// ValidateID checks that id is a canonical 36-character UUID. The
// registry enforces this on creation; lookups simply miss for
// malformed tokens.
func ValidateID(id string) error {
	if len(id) != IDLength {
		return fmt.Errorf("repo: identifier is %d characters, want %d", len(id), IDLength)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("repo: identifier is not a canonical UUID: %w", err)
	}
	return nil
}

// Create registers a new repository with a generated identifier and
// DefaultBranch as its head branch. The branch exists but points at
// no commit until the first import.
func (r *Registry) Create(ctx context.Context, name string) (*Repository, error) {
	if name == "" {
		return nil, fmt.Errorf("repo: name is required")
	}

	repository := &Repository{
		ID:         uuid.NewString(),
		Name:       name,
		HeadBranch: DefaultBranch,
		CreatedAt:  r.clock.Now(),
	}

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"INSERT INTO repositories (id, name, head_branch, created_at) VALUES (?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{repository.ID, repository.Name, repository.HeadBranch, repository.CreatedAt.Unix()},
		})
	if err != nil {
		return nil, fmt.Errorf("repo: creating repository: %w", err)
	}

	r.logger.Info("repository created", "id", repository.ID, "name", name)
	return repository, nil
}

// Get looks up a repository by identifier. Unknown identifiers —
// including syntactically invalid ones — fail with ErrNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*Repository, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	var repository *Repository
	err = sqlitex.Execute(conn,
		"SELECT id, name, head_branch, created_at FROM repositories WHERE id = ?",
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				repository = &Repository{
					ID:         stmt.ColumnText(0),
					Name:       stmt.ColumnText(1),
					HeadBranch: stmt.ColumnText(2),
					CreatedAt:  time.Unix(stmt.ColumnInt64(3), 0),
				}
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("repo: looking up %s: %w", id, err)
	}
	if repository == nil {
		return nil, fmt.Errorf("repo: %s: %w", id, ErrNotFound)
	}
	return repository, nil
}

// List returns all registered repositories ordered by identifier.
func (r *Registry) List(ctx context.Context) ([]Repository, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	var repositories []Repository
	err = sqlitex.Execute(conn,
		"SELECT id, name, head_branch, created_at FROM repositories ORDER BY id",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				repositories = append(repositories, Repository{
					ID:         stmt.ColumnText(0),
					Name:       stmt.ColumnText(1),
					HeadBranch: stmt.ColumnText(2),
					CreatedAt:  time.Unix(stmt.ColumnInt64(3), 0),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("repo: listing repositories: %w", err)
	}
	return repositories, nil
}

// Head returns the commit the repository's head branch points at.
// Fails with ErrNotFound when the repository does not exist or its
// head branch has no commit yet.
func (r *Registry) Head(ctx context.Context, repoID string) (objstore.ID, error) {
	repository, err := r.Get(ctx, repoID)
	if err != nil {
		return objstore.ID{}, err
	}

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return objstore.ID{}, err
	}
	defer r.pool.Put(conn)

	var commitHex string
	err = sqlitex.Execute(conn,
		"SELECT commit_id FROM branches WHERE repo_id = ? AND name = ?",
		&sqlitex.ExecOptions{
			Args: []any{repository.ID, repository.HeadBranch},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				commitHex = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return objstore.ID{}, fmt.Errorf("repo: reading head of %s: %w", repoID, err)
	}
	if commitHex == "" {
		return objstore.ID{}, fmt.Errorf("repo: %s has no commits on %s: %w",
			repoID, repository.HeadBranch, ErrNotFound)
	}

	commitID, err := objstore.ParseID(commitHex)
	if err != nil {
		return objstore.ID{}, fmt.Errorf("repo: head of %s: %w", repoID, err)
	}
	return commitID, nil
}

// SetHead points a branch at a commit, creating the branch if
// needed. The repository must exist.
func (r *Registry) SetHead(ctx context.Context, repoID, branch string, commit objstore.ID) error {
	if _, err := r.Get(ctx, repoID); err != nil {
		return err
	}
	if branch == "" {
		return fmt.Errorf("repo: branch name is required")
	}

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO branches (repo_id, name, commit_id, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (repo_id, name) DO UPDATE SET commit_id = excluded.commit_id, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{
			Args: []any{repoID, branch, objstore.FormatID(commit), r.clock.Now().Unix()},
		})
	if err != nil {
		return fmt.Errorf("repo: updating %s branch %s: %w", repoID, branch, err)
	}

	r.logger.Info("branch updated", "repo", repoID, "branch", branch, "commit", commit)
	return nil
}

// Branches returns a repository's branches ordered by name.
func (r *Registry) Branches(ctx context.Context, repoID string) ([]Branch, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	var branches []Branch
	err = sqlitex.Execute(conn,
		"SELECT repo_id, name, commit_id, updated_at FROM branches WHERE repo_id = ? ORDER BY name",
		&sqlitex.ExecOptions{
			Args: []any{repoID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				commitID, err := objstore.ParseID(stmt.ColumnText(2))
				if err != nil {
					return err
				}
				branches = append(branches, Branch{
					RepoID:    stmt.ColumnText(0),
					Name:      stmt.ColumnText(1),
					Commit:    commitID,
					UpdatedAt: time.Unix(stmt.ColumnInt64(3), 0),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("repo: listing branches of %s: %w", repoID, err)
	}
	return branches, nil
}

// Delete removes a repository and its branches. Object store content
// is untouched — blobs may be shared with other repositories.
func (r *Registry) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM repositories WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
	})
	if err != nil {
		return fmt.Errorf("repo: deleting %s: %w", id, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("repo: %s: %w", id, ErrNotFound)
	}

	r.logger.Info("repository deleted", "id", id)
	return nil
}
