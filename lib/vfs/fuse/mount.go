// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package fuse exposes a vfs.Session as a read-only FUSE mount.
//
// Every inode holds nothing but its mount-relative path; each kernel
// call delegates to the session, which resolves the path from
// scratch. Freshness comes from the kernel's entry and attribute
// timeouts, not from any state held here.
package fuse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"golang.org/x/sys/unix"

	"github.com/strata-fs/stratafs/lib/objstore"
	"github.com/strata-fs/stratafs/lib/vfs"
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	// Created if it does not exist.
	Mountpoint string

	// Session performs the path translation.
	Session *vfs.Session

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Logger receives diagnostic messages. If nil, errors go to
	// stderr.
	Logger *slog.Logger
}

// Mount mounts the filesystem at the configured mountpoint. The
// caller must call Unmount on the returned server when done.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	root := &pathNode{options: &options, path: "/"}

	entryTimeout := 1 * time.Second
	attrTimeout := 1 * time.Second
	negativeTimeout := 100 * time.Millisecond

	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "stratafs",
			Name:       "stratafs",
			AllowOther: options.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("filesystem mounted", "mountpoint", options.Mountpoint)
	return server, nil
}

// pathNode is every inode in the tree, root included. It knows only
// its own mount-relative path.
type pathNode struct {
	gofuse.Inode
	options *Options
	path    string
}

var _ gofuse.InodeEmbedder = (*pathNode)(nil)
var _ gofuse.NodeLookuper = (*pathNode)(nil)
var _ gofuse.NodeReaddirer = (*pathNode)(nil)
var _ gofuse.NodeGetattrer = (*pathNode)(nil)
var _ gofuse.NodeOpener = (*pathNode)(nil)
var _ gofuse.NodeReader = (*pathNode)(nil)

// childPath joins a directory entry name onto this node's path.
func (n *pathNode) childPath(name string) string {
	if n.path == "/" {
		return "/" + name
	}
	return n.path + "/" + name
}

// entryMode maps an entry kind onto stat mode bits. Entries of other
// kinds have no mode here; callers reject them before asking.
func entryMode(kind objstore.EntryKind) uint32 {
	if kind == objstore.EntryDirectory {
		return syscall.S_IFDIR | 0o555
	}
	return syscall.S_IFREG | 0o444
}

func (n *pathNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	childPath := n.childPath(name)

	attr, err := n.options.Session.Getattr(ctx, childPath)
	if err != nil {
		return nil, vfs.Errno(err)
	}
	// Special entries (symlinks, devices) are not served.
	if attr.Kind == objstore.EntryOther {
		return nil, syscall.ENOENT
	}

	child := n.NewInode(ctx, &pathNode{options: n.options, path: childPath},
		gofuse.StableAttr{Mode: entryMode(attr.Kind) & syscall.S_IFMT})
	out.Mode = entryMode(attr.Kind)
	out.Size = uint64(attr.Size)
	return child, 0
}

func (n *pathNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	attr, err := n.options.Session.Getattr(ctx, n.path)
	if err != nil {
		return vfs.Errno(err)
	}
	if attr.Kind == objstore.EntryOther {
		return syscall.ENOENT
	}
	out.Mode = entryMode(attr.Kind)
	out.Size = uint64(attr.Size)
	out.Blocks = (out.Size + 511) / 512
	out.Blksize = 65536 // matches the store's target chunk size
	return 0
}

func (n *pathNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	listed, err := n.options.Session.Readdir(ctx, n.path)
	if err != nil {
		return nil, vfs.Errno(err)
	}

	entries := make([]fuse.DirEntry, 0, len(listed))
	for _, entry := range listed {
		if entry.Kind == objstore.EntryOther {
			continue
		}
		entries = append(entries, fuse.DirEntry{
			Name: entry.Name,
			Mode: entryMode(entry.Kind) & syscall.S_IFMT,
		})
	}
	return &sliceDirStream{entries: entries}, 0
}

func (n *pathNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if err := n.options.Session.Open(ctx, n.path, flags); err != nil {
		return nil, 0, vfs.Errno(err)
	}
	// Snapshot content is immutable, so the kernel page cache is
	// always valid. No handle: Read resolves the path itself.
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *pathNode) Read(ctx context.Context, f gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	// The kernel only issues reads on descriptors Open admitted, so
	// the access mode here is always read-only.
	bytesRead, err := n.options.Session.Read(ctx, n.path, dest, off, unix.O_RDONLY)
	if err != nil {
		n.options.Logger.Error("read failed", "path", n.path, "offset", off, "error", err)
		return nil, vfs.Errno(err)
	}
	return fuse.ReadResultData(dest[:bytesRead]), 0
}

// sliceDirStream implements fs.DirStream from a slice of entries.
type sliceDirStream struct {
	entries []fuse.DirEntry
	index   int
}

func (s *sliceDirStream) HasNext() bool {
	return s.index < len(s.entries)
}

func (s *sliceDirStream) Next() (fuse.DirEntry, syscall.Errno) {
	if s.index >= len(s.entries) {
		return fuse.DirEntry{}, syscall.EINVAL
	}
	entry := s.entries[s.index]
	s.index++
	return entry, 0
}

func (s *sliceDirStream) Close() {}
