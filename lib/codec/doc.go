// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the StrataFS standard CBOR encoding
// configuration.
//
// Every durable record in the object store (commits, trees, file
// metadata) is CBOR with Core Deterministic Encoding. Object
// identifiers are keyed hashes over the encoded bytes, so the
// encoding must be byte-stable: sorted map keys, smallest integer
// encoding, no indefinite-length items. This package centralizes
// that configuration so every package encodes identically.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Struct fields on stored types carry `cbor` tags: these types are
// only ever serialized as CBOR, never as JSON.
package codec
