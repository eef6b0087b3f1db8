// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/strata-fs/stratafs/lib/codec"
)

// Directory names within the store root. Chunks and metadata objects
// live in separate trees so an operator can reason about space usage
// (chunk data dwarfs metadata) and so identifiers from different hash
// domains never share a namespace on disk.
const (
	chunksDir  = "chunks"
	objectsDir = "objects"
	tmpDir     = "tmp"
)

// blobFormatVersion is the first byte of every stored blob frame.
const blobFormatVersion = 0x01

// blobHeaderSize is the frame header: version byte, compression tag,
// 4-byte little-endian uncompressed size.
const blobHeaderSize = 6

// ErrNotFound is returned when a chunk or object does not exist in
// the store. Callers test with errors.Is.
var ErrNotFound = errors.New("objstore: object not found")

// Options configures a Store.
type Options struct {
	// Root is the store directory. Created if absent.
	Root string

	// Logger receives diagnostic messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger

	// EncryptionKey enables at-rest encryption of every blob. Nil
	// means plaintext storage. A store written with a key can only
	// be read with the same key.
	EncryptionKey *EncryptionKey
}

// Store is a content-addressed object store on local disk. Chunks
// hold file content; objects hold CBOR-encoded trees, file metadata,
// and commits. Every blob is framed with a compression tag and
// verified against its identifier on read.
//
// The store is safe for concurrent reads. Writes of distinct objects
// may also run concurrently: blobs land under their content hash via
// write-to-temp-then-rename, so two writers of the same object race
// benignly.
type Store struct {
	root   string
	logger *slog.Logger
	key    *EncryptionKey
}

// NewStore opens (creating if needed) a store rooted at
// options.Root.
func NewStore(options Options) (*Store, error) {
	if options.Root == "" {
		return nil, fmt.Errorf("objstore: Root is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for _, dir := range []string{
		options.Root,
		filepath.Join(options.Root, chunksDir),
		filepath.Join(options.Root, objectsDir),
		filepath.Join(options.Root, tmpDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}

	return &Store{root: options.Root, logger: logger, key: options.EncryptionKey}, nil
}

// PutChunk stores raw chunk bytes and returns their identifier.
// Already-present chunks are not rewritten (deduplication).
func (s *Store) PutChunk(data []byte) (ID, error) {
	id := HashChunk(data)
	path := s.chunkPath(id)
	if fileExists(path) {
		return id, nil
	}
	if err := s.writeBlob(path, data, CompressionLZ4, id); err != nil {
		return ID{}, fmt.Errorf("storing chunk %s: %w", id, err)
	}
	return id, nil
}

// GetChunk returns the raw bytes of a chunk, verifying them against
// the identifier.
func (s *Store) GetChunk(id ID) ([]byte, error) {
	data, err := s.readBlob(s.chunkPath(id), id)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", id, err)
	}
	if HashChunk(data) != id {
		return nil, fmt.Errorf("chunk %s: content does not match identifier", id)
	}
	return data, nil
}

// HasChunk reports whether a chunk exists without reading it.
func (s *Store) HasChunk(id ID) bool {
	return fileExists(s.chunkPath(id))
}

// PutTree stores a directory tree object. Entries are sorted before
// encoding so identical directories always produce the same
// identifier.
func (s *Store) PutTree(tree *Tree) (ID, error) {
	tree.Sort()
	return s.putObject(tree, HashTree, "tree")
}

// GetTree loads a directory tree object.
func (s *Store) GetTree(id ID) (*Tree, error) {
	var tree Tree
	if err := s.getObject(id, &tree, HashTree, "tree"); err != nil {
		return nil, err
	}
	return &tree, nil
}

// PutFileMeta stores a file metadata object.
func (s *Store) PutFileMeta(meta *FileMeta) (ID, error) {
	return s.putObject(meta, HashFileMeta, "file metadata")
}

// GetFileMeta loads a file metadata object and validates that the
// chunk sizes sum to the recorded size.
func (s *Store) GetFileMeta(id ID) (*FileMeta, error) {
	var meta FileMeta
	if err := s.getObject(id, &meta, HashFileMeta, "file metadata"); err != nil {
		return nil, err
	}

	var total int64
	for _, chunk := range meta.Chunks {
		total += int64(chunk.Size)
	}
	if total != meta.Size {
		return nil, fmt.Errorf("file metadata %s: chunk sizes sum to %d, record says %d",
			id, total, meta.Size)
	}
	return &meta, nil
}

// PutCommit stores a commit object.
func (s *Store) PutCommit(commit *Commit) (ID, error) {
	return s.putObject(commit, HashCommit, "commit")
}

// GetCommit loads a commit object.
func (s *Store) GetCommit(id ID) (*Commit, error) {
	var commit Commit
	if err := s.getObject(id, &commit, HashCommit, "commit"); err != nil {
		return nil, err
	}
	return &commit, nil
}

// WriteFile chunks content, stores every chunk, and stores the
// resulting file metadata object. Returns the metadata identifier
// and the record itself. Files at or below SmallFileThreshold are
// stored as a single chunk.
func (s *Store) WriteFile(content []byte) (ID, *FileMeta, error) {
	meta := &FileMeta{Size: int64(len(content))}

	if len(content) > 0 {
		var chunks []Chunk
		if len(content) <= SmallFileThreshold {
			chunks = []Chunk{{Data: content, ID: HashChunk(content)}}
		} else {
			chunks = ChunkAll(content)
		}

		for _, chunk := range chunks {
			if _, err := s.PutChunk(chunk.Data); err != nil {
				return ID{}, nil, err
			}
			meta.Chunks = append(meta.Chunks, ChunkRef{
				ID:   chunk.ID,
				Size: uint32(len(chunk.Data)),
			})
		}
	}

	id, err := s.PutFileMeta(meta)
	if err != nil {
		return ID{}, nil, err
	}
	return id, meta, nil
}

// putObject encodes, hashes, and stores a metadata object. Metadata
// is zstd-compressed: trees and commits are highly regular CBOR.
func (s *Store) putObject(value any, hash func([]byte) ID, kind string) (ID, error) {
	encoded, err := marshalObject(value)
	if err != nil {
		return ID{}, fmt.Errorf("encoding %s: %w", kind, err)
	}

	id := hash(encoded)
	path := s.objectPath(id)
	if fileExists(path) {
		return id, nil
	}
	if err := s.writeBlob(path, encoded, CompressionZstd, id); err != nil {
		return ID{}, fmt.Errorf("storing %s %s: %w", kind, id, err)
	}
	return id, nil
}

// getObject loads, verifies, and decodes a metadata object.
func (s *Store) getObject(id ID, value any, hash func([]byte) ID, kind string) error {
	encoded, err := s.readBlob(s.objectPath(id), id)
	if err != nil {
		return fmt.Errorf("%s %s: %w", kind, id, err)
	}
	if hash(encoded) != id {
		return fmt.Errorf("%s %s: content does not match identifier", kind, id)
	}
	if err := unmarshalObject(encoded, value); err != nil {
		return fmt.Errorf("decoding %s %s: %w", kind, id, err)
	}
	return nil
}

// writeBlob frames, optionally encrypts, and atomically writes a
// blob: write to the tmp directory, fsync, rename into place. A
// concurrent writer of the same blob produces the same bytes, so the
// rename race is benign.
func (s *Store) writeBlob(path string, data []byte, tag CompressionTag, identity ID) error {
	stored, actualTag, err := compressWithFallback(data, tag)
	if err != nil {
		return err
	}

	framed := make([]byte, blobHeaderSize+len(stored))
	framed[0] = blobFormatVersion
	framed[1] = byte(actualTag)
	binary.LittleEndian.PutUint32(framed[2:6], uint32(len(data)))
	copy(framed[blobHeaderSize:], stored)

	if s.key != nil {
		framed, err = s.key.encryptBlob(framed, identity)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating fan-out directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, tmpDir), "blob-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(framed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing blob: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("moving blob into place: %w", err)
	}
	return nil
}

// readBlob reads, optionally decrypts, and unframes a blob.
func (s *Store) readBlob(path string, identity ID) ([]byte, error) {
	framed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading blob: %w", err)
	}

	if s.key != nil {
		framed, err = s.key.decryptBlob(framed, identity)
		if err != nil {
			return nil, err
		}
	}

	if len(framed) < blobHeaderSize {
		return nil, fmt.Errorf("blob is %d bytes, minimum frame is %d", len(framed), blobHeaderSize)
	}
	if framed[0] != blobFormatVersion {
		return nil, fmt.Errorf("blob format version %d is not supported (expected %d)",
			framed[0], blobFormatVersion)
	}

	tag := CompressionTag(framed[1])
	uncompressedSize := int(binary.LittleEndian.Uint32(framed[2:6]))

	data, err := decompress(framed[blobHeaderSize:], tag, uncompressedSize)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// chunkPath returns the fan-out path for a chunk: the first hex byte
// of the identifier is a subdirectory, keeping directory sizes
// manageable for large stores.
func (s *Store) chunkPath(id ID) string {
	hexID := FormatID(id)
	return filepath.Join(s.root, chunksDir, hexID[:2], hexID)
}

// objectPath returns the fan-out path for a metadata object.
func (s *Store) objectPath(id ID) string {
	hexID := FormatID(id)
	return filepath.Join(s.root, objectsDir, hexID[:2], hexID)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// marshalObject and unmarshalObject isolate the codec dependency so
// the rest of this file reads in terms of objects, not CBOR.
func marshalObject(value any) ([]byte, error) {
	return codec.Marshal(value)
}

func unmarshalObject(data []byte, value any) error {
	return codec.Unmarshal(data, value)
}

// Reader returns an io.ReaderAt view of the file described by meta.
// See [FileReader].
func (s *Store) Reader(meta *FileMeta) *FileReader {
	offsets := make([]int64, len(meta.Chunks))
	var cumulative int64
	for i, chunk := range meta.Chunks {
		offsets[i] = cumulative
		cumulative += int64(chunk.Size)
	}
	return &FileReader{store: s, meta: meta, offsets: offsets}
}

// ReadAll reconstructs a file's entire content. Intended for small
// files and tests; the mount's read path uses [FileReader.ReadAt].
func (s *Store) ReadAll(meta *FileMeta) ([]byte, error) {
	out := make([]byte, 0, meta.Size)
	for _, ref := range meta.Chunks {
		data, err := s.GetChunk(ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	if int64(len(out)) != meta.Size {
		return nil, fmt.Errorf("reconstructed %d bytes, metadata says %d", len(out), meta.Size)
	}
	return out, nil
}

var _ io.ReaderAt = (*FileReader)(nil)
