// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
)

// KeySize is the length of every symmetric key handled by this package
// (AES-256).
const KeySize = 32

// Key is an opaque 256-bit symmetric key. The zero value is invalid.
//
// Keys are passed explicitly into every cipher call; nothing in this package
// keeps a reference to one after the call returns.
type Key struct {
	raw []byte
}

// GenerateKey returns a fresh random key read from the OS CSPRNG.
func GenerateKey() (Key, error) {
	raw := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return Key{}, fmt.Errorf("generate key: %w", err)
	}
	return Key{raw: raw}, nil
}

// ImportKey copies raw into a new [Key]. raw must be exactly [KeySize] bytes.
func ImportKey(raw []byte) (Key, error) {
	if len(raw) != KeySize {
		return Key{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(raw), KeySize)
	}
	cp := make([]byte, KeySize)
	copy(cp, raw)
	return Key{raw: cp}, nil
}

// BorrowKey wraps raw without copying it. It exists for holders of locked
// memory (the session store) that must not duplicate key bytes onto the Go
// heap. The returned key must not outlive raw.
func BorrowKey(raw []byte) (Key, error) {
	if len(raw) != KeySize {
		return Key{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(raw), KeySize)
	}
	return Key{raw: raw}, nil
}

// Export returns a copy of the key bytes. The caller owns the copy and should
// wipe it when done.
func (k Key) Export() []byte {
	cp := make([]byte, len(k.raw))
	copy(cp, k.raw)
	return cp
}

// IsZero reports whether k holds no key material.
func (k Key) IsZero() bool {
	return len(k.raw) == 0
}

// Equal compares two keys in constant time.
func (k Key) Equal(other Key) bool {
	return subtle.ConstantTimeCompare(k.raw, other.raw) == 1
}

// Wipe zeroes the key bytes in place. Borrowed keys must not be wiped by the
// borrower.
func (k Key) Wipe() {
	memguard.WipeBytes(k.raw)
}

func (k Key) valid() error {
	if len(k.raw) != KeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(k.raw), KeySize)
	}
	return nil
}
