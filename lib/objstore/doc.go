// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package objstore implements the content-addressed object store
// backing StrataFS repositories.
//
// Everything in the store is immutable and named by a 32-byte BLAKE3
// keyed hash of its content, with separate hash domains for the four
// object kinds:
//
//   - chunks: raw pieces of file content, produced by a GearHash
//     content-defined chunker
//   - file metadata: the ordered chunk list reconstructing one file
//   - trees: sorted directory listings referencing files and subtrees
//   - commits: a root tree plus history metadata
//
// A repository snapshot is reached by following a commit's root tree;
// [Store.ResolvePath] walks a slash-separated path down the tree and
// [FileReader] serves random-access reads across chunk boundaries.
//
// On disk, every blob is framed with a compression tag (LZ4 for chunk
// data, zstd for metadata, automatic fallback to none) and may be
// encrypted at rest with XChaCha20-Poly1305 under per-blob keys
// derived from a store master key. Blobs are verified against their
// identifier on every read.
package objstore
