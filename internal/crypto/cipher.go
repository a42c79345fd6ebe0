// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/MKhiriev/go-sanctuary/models"
)

const (
	// IVSize is the AES-GCM nonce length (96 bits).
	IVSize = 12
	// TagSize is the AES-GCM authentication tag length (128 bits).
	TagSize = 16
)

// contentCipher is the private implementation of [ContentCipher].
type contentCipher struct{}

// NewContentCipher constructs a [ContentCipher] using AES-256-GCM.
func NewContentCipher() ContentCipher {
	return &contentCipher{}
}

// Encrypt implements [ContentCipher]. A fresh random IV is drawn for every
// call, so encrypting the same plaintext twice yields different ciphertexts.
func (c *contentCipher) Encrypt(plaintext []byte, key Key) (models.Sealed, error) {
	iv, ct, err := seal(key, plaintext, nil)
	if err != nil {
		return models.Sealed{}, err
	}

	return models.Sealed{
		IV:         base64.StdEncoding.EncodeToString(iv),
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
	}, nil
}

// Decrypt implements [ContentCipher]. Every failure, including malformed
// base64 and a wrong IV length, is reported as [ErrDecryption].
func (c *contentCipher) Decrypt(sealed models.Sealed, key Key) ([]byte, error) {
	iv, err := base64.StdEncoding.DecodeString(sealed.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: decode iv: %w", ErrDecryption, err)
	}
	ct, err := base64.StdEncoding.DecodeString(sealed.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: decode ciphertext: %w", ErrDecryption, err)
	}

	plaintext, err := open(key, iv, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryption, err)
	}
	return plaintext, nil
}

func newGCM(key Key) (cipher.AEAD, error) {
	if err := key.valid(); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key.raw)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// seal encrypts plaintext under key with a fresh IV and returns iv and
// ciphertext||tag separately.
func seal(key Key, plaintext, aad []byte) (iv, ct []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	iv = make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, fmt.Errorf("generate iv: %w", err)
	}

	return iv, gcm.Seal(nil, iv, plaintext, aad), nil
}

// open verifies and decrypts ct. The GCM error is returned as is; callers map
// it to their own taxonomy.
func open(key Key, iv, ct, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != gcm.NonceSize() {
		return nil, fmt.Errorf("iv length = %d, want %d", len(iv), gcm.NonceSize())
	}
	if len(ct) < TagSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	return gcm.Open(nil, iv, ct, aad)
}

// sealBlob returns iv || ciphertext, the layout used for the encrypted salt.
func sealBlob(key Key, plaintext, aad []byte) ([]byte, error) {
	iv, ct, err := seal(key, plaintext, aad)
	if err != nil {
		return nil, err
	}
	return append(iv, ct...), nil
}

// openBlob splits iv || ciphertext and decrypts it.
func openBlob(key Key, blob, aad []byte) ([]byte, error) {
	if len(blob) < IVSize+TagSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	return open(key, blob[:IVSize], blob[IVSize:], aad)
}
