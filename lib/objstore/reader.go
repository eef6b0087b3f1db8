// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"fmt"
	"io"
	"sort"
)

// FileReader serves random-access reads over a chunked file. It
// holds no open resources — every read fetches the chunks it needs
// from the store — so a reader may be created per call and discarded
// without cleanup. Safe for concurrent use: the offset table is
// built at construction and never mutated afterwards.
type FileReader struct {
	store *Store
	meta  *FileMeta

	// offsets is the cumulative start offset of each chunk.
	// len(offsets) == len(meta.Chunks).
	offsets []int64
}

// ReadAt implements io.ReaderAt: it reads up to len(dest) bytes at
// the given offset, spanning chunk boundaries as needed. Reads past
// the end of the file return 0, io.EOF; short reads at the tail
// return the available bytes with no error.
func (r *FileReader) ReadAt(dest []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("negative offset %d", offset)
	}
	if offset >= r.meta.Size {
		return 0, io.EOF
	}

	// Clamp the read to the file size.
	if remaining := r.meta.Size - offset; int64(len(dest)) > remaining {
		dest = dest[:remaining]
	}

	var totalRead int
	for totalRead < len(dest) {
		currentOffset := offset + int64(totalRead)
		chunkIndex := r.findChunk(currentOffset)
		if chunkIndex < 0 {
			break
		}

		data, err := r.store.GetChunk(r.meta.Chunks[chunkIndex].ID)
		if err != nil {
			return totalRead, fmt.Errorf("reading chunk at offset %d: %w", currentOffset, err)
		}

		offsetInChunk := int(currentOffset - r.offsets[chunkIndex])
		available := len(data) - offsetInChunk
		if available <= 0 {
			break
		}

		toCopy := len(dest) - totalRead
		if toCopy > available {
			toCopy = available
		}
		copy(dest[totalRead:totalRead+toCopy], data[offsetInChunk:offsetInChunk+toCopy])
		totalRead += toCopy
	}

	return totalRead, nil
}

// Size returns the file's total size in bytes.
func (r *FileReader) Size() int64 {
	return r.meta.Size
}

// findChunk returns the index of the chunk containing the given byte
// offset, or -1 when the offset is out of range.
func (r *FileReader) findChunk(offset int64) int {
	if len(r.offsets) == 0 || offset < 0 {
		return -1
	}

	// Binary search for the last chunk whose start offset <= target.
	index := sort.Search(len(r.offsets), func(i int) bool {
		return r.offsets[i] > offset
	}) - 1

	if index < 0 {
		return -1
	}
	if offset >= r.offsets[index]+int64(r.meta.Chunks[index].Size) {
		return -1
	}
	return index
}
