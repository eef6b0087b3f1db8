// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

// sampleRecord mirrors the shape of a stored object record: string
// and integer fields with cbor tags.
type sampleRecord struct {
	Name    string `cbor:"name"`
	Size    int64  `cbor:"size"`
	Comment string `cbor:"comment,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Name: "docs/readme.txt",
		Size: 120,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

// TestMarshalDeterministic verifies that encoding the same value twice
// produces identical bytes. Object identity depends on this.
func TestMarshalDeterministic(t *testing.T) {
	record := sampleRecord{Name: "a", Size: 7, Comment: "x"}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("non-deterministic encoding: %x vs %x", first, second)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	// A map with an extra key decodes into the struct without error.
	data, err := Marshal(map[string]any{
		"name":   "f",
		"size":   int64(3),
		"future": true,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Name != "f" || decoded.Size != 3 {
		t.Errorf("got %+v", decoded)
	}
}
