// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// ID is a 32-byte BLAKE3 digest identifying an object in the store.
// Chunks, trees, file metadata records, and commits all use this
// size; the hash domain distinguishes the kinds.
type ID [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures that the same input bytes produce different
// identifiers in different contexts, so a chunk can never collide
// with a tree that happens to encode to the same bytes.
type domainKey [32]byte

// Domain separation keys. These are protocol constants — changing
// them invalidates every identifier in an existing store. The byte
// values are the ASCII encoding of the domain name, zero-padded to
// 32 bytes, which keeps the keys readable in hex dumps.
var (
	chunkDomainKey = domainKey{
		's', 't', 'r', 'a', 't', 'a', '.', 'o', 'b', 'j', 'e', 'c', 't', '.',
		'c', 'h', 'u', 'n', 'k', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	treeDomainKey = domainKey{
		's', 't', 'r', 'a', 't', 'a', '.', 'o', 'b', 'j', 'e', 'c', 't', '.',
		't', 'r', 'e', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	fileDomainKey = domainKey{
		's', 't', 'r', 'a', 't', 'a', '.', 'o', 'b', 'j', 'e', 'c', 't', '.',
		'f', 'i', 'l', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	commitDomainKey = domainKey{
		's', 't', 'r', 'a', 't', 'a', '.', 'o', 'b', 'j', 'e', 'c', 't', '.',
		'c', 'o', 'm', 'm', 'i', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// HashChunk computes the chunk-domain identifier of raw chunk bytes.
// Chunk identifiers are always computed on uncompressed, unencrypted
// bytes so deduplication is independent of storage encoding.
func HashChunk(data []byte) ID {
	return keyedHash(chunkDomainKey, data)
}

// HashTree computes the tree-domain identifier of an encoded tree
// record.
func HashTree(encoded []byte) ID {
	return keyedHash(treeDomainKey, encoded)
}

// HashFileMeta computes the file-domain identifier of an encoded
// file metadata record.
func HashFileMeta(encoded []byte) ID {
	return keyedHash(fileDomainKey, encoded)
}

// HashCommit computes the commit-domain identifier of an encoded
// commit record.
func HashCommit(encoded []byte) ID {
	return keyedHash(commitDomainKey, encoded)
}

// FormatID returns the hex-encoded string representation of an
// identifier. This is the canonical format for metadata, logs, and
// CLI output.
func FormatID(id ID) string {
	return hex.EncodeToString(id[:])
}

// ParseID parses a 64-character hex string into an ID.
func ParseID(hexString string) (ID, error) {
	var id ID
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return id, fmt.Errorf("parsing object id: %w", err)
	}
	if len(decoded) != 32 {
		return id, fmt.Errorf("object id is %d bytes, want 32", len(decoded))
	}
	copy(id[:], decoded)
	return id, nil
}

// IsZero reports whether the identifier is the all-zero value, used
// as "no object" in commit parent lists and branch heads.
func (id ID) IsZero() bool {
	return id == ID{}
}

// String implements fmt.Stringer with the canonical hex form.
func (id ID) String() string {
	return FormatID(id)
}

// keyedHash computes the BLAKE3 keyed hash with the given domain key.
func keyedHash(key domainKey, data []byte) ID {
	// NewKeyed only fails for a wrong key length, which the
	// domainKey type rules out.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("objstore: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var id ID
	copy(id[:], hasher.Sum(nil))
	return id
}
