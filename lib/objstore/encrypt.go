// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the size of the store master encryption key in bytes.
const KeySize = 32

// encryptedBlobVersion is the format version byte at the start of
// every encrypted blob.
const encryptedBlobVersion = 0x01

// encryptedBlobOverhead is the minimum size of an encrypted blob:
// version byte + XChaCha20 nonce + Poly1305 tag.
const encryptedBlobOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// hkdfInfoBlob is the HKDF info string for per-blob key derivation.
// A protocol constant: changing it makes existing stores unreadable.
var hkdfInfoBlob = []byte("strata.objstore.blob.v1")

// EncryptionKey is the store master key for at-rest blob encryption.
// Per-blob keys are derived from it with HKDF-SHA256, salted with the
// blob's identifier, so no two blobs share a cipher key.
type EncryptionKey struct {
	master [KeySize]byte
}

// NewEncryptionKey constructs a key from exactly KeySize raw bytes.
func NewEncryptionKey(raw []byte) (*EncryptionKey, error) {
	if len(raw) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(raw))
	}
	key := &EncryptionKey{}
	copy(key.master[:], raw)
	return key, nil
}

// ReadEncryptionKey reads exactly KeySize bytes from r (typically
// stdin, so the key never appears in argv or the environment).
func ReadEncryptionKey(r io.Reader) (*EncryptionKey, error) {
	raw := make([]byte, KeySize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("reading encryption key: %w", err)
	}
	return NewEncryptionKey(raw)
}

// deriveBlobKey derives the per-blob cipher key from the master key
// and the blob's identifier.
func (k *EncryptionKey) deriveBlobKey(identity ID) ([]byte, error) {
	reader := hkdf.New(sha256.New, k.master[:], identity[:], hkdfInfoBlob)
	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, fmt.Errorf("deriving blob key: %w", err)
	}
	return derived, nil
}

// encryptBlob encrypts plaintext with XChaCha20-Poly1305 under the
// per-blob key for identity. The output format is:
//
//	[version: 1 byte] [nonce: 24 bytes, random] [ciphertext+tag]
//
// The version byte and identity are authenticated as AAD, binding
// the ciphertext to the object it stores — a blob moved to another
// object's path fails authentication.
func (k *EncryptionKey) encryptBlob(plaintext []byte, identity ID) ([]byte, error) {
	blobKey, err := k.deriveBlobKey(identity)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(blobKey)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}

	output := make([]byte, 1+chacha20poly1305.NonceSizeX,
		1+chacha20poly1305.NonceSizeX+len(plaintext)+aead.Overhead())
	output[0] = encryptedBlobVersion
	copy(output[1:], nonce[:])

	return aead.Seal(output, nonce[:], plaintext, blobAAD(encryptedBlobVersion, identity)), nil
}

// decryptBlob reverses encryptBlob. Fails when the blob is truncated,
// carries an unknown version, or does not authenticate (wrong key,
// tampered data, or wrong identity).
func (k *EncryptionKey) decryptBlob(encrypted []byte, identity ID) ([]byte, error) {
	if len(encrypted) < encryptedBlobOverhead {
		return nil, fmt.Errorf("encrypted blob is %d bytes, minimum is %d (version + nonce + tag)",
			len(encrypted), encryptedBlobOverhead)
	}

	version := encrypted[0]
	if version != encryptedBlobVersion {
		return nil, fmt.Errorf("encrypted blob version %d is not supported (expected %d)",
			version, encryptedBlobVersion)
	}

	nonce := encrypted[1 : 1+chacha20poly1305.NonceSizeX]
	ciphertext := encrypted[1+chacha20poly1305.NonceSizeX:]

	blobKey, err := k.deriveBlobKey(identity)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(blobKey)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, blobAAD(version, identity))
	if err != nil {
		return nil, fmt.Errorf("AEAD decryption failed (wrong key, tampered data, or mismatched identity): %w", err)
	}
	return plaintext, nil
}

// blobAAD builds the additional authenticated data for a blob:
// version byte followed by the object identifier.
func blobAAD(version byte, identity ID) []byte {
	aad := make([]byte, 1+len(identity))
	aad[0] = version
	copy(aad[1:], identity[:])
	return aad
}
