// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/MKhiriev/go-sanctuary/models"
)

const (
	// PRFEvalSalt is the fixed input the authenticator's PRF is evaluated on.
	// Keeping it constant makes the PRF output stable per credential.
	PRFEvalSalt = "go-sanctuary-prf-v1"

	hkdfSalt = "go-sanctuary-prf-salt-v1"
	hkdfInfo = "go-sanctuary-passkey-v1"
)

// Additional data bound into each envelope kind, so an envelope cannot be
// presented as one of another kind.
var envelopeAAD = map[models.EnvelopeKind][]byte{
	models.EnvelopePasskey:    []byte("go-sanctuary/envelope/passkey/v1"),
	models.EnvelopeRecovery:   []byte("go-sanctuary/envelope/recovery/v1"),
	models.EnvelopePassphrase: []byte("go-sanctuary/envelope/passphrase/v1"),
}

// keyWrapper is the private implementation of [KeyWrapper].
type keyWrapper struct{}

// NewKeyWrapper constructs an AES-256-GCM [KeyWrapper] with HKDF-SHA256
// wrapping-key derivation.
func NewKeyWrapper() KeyWrapper {
	return &keyWrapper{}
}

// GenerateMasterKey implements [KeyWrapper].
func (w *keyWrapper) GenerateMasterKey() (Key, error) {
	return GenerateKey()
}

// DeriveWrappingKey implements [KeyWrapper]. HKDF-SHA256 runs over the raw
// PRF output with a fixed salt and context string.
func (w *keyWrapper) DeriveWrappingKey(prfOutput []byte) (Key, error) {
	if len(prfOutput) == 0 {
		return Key{}, fmt.Errorf("derive wrapping key: empty prf output")
	}

	r := hkdf.New(sha256.New, prfOutput, []byte(hkdfSalt), []byte(hkdfInfo))
	raw := make([]byte, KeySize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return Key{}, fmt.Errorf("derive wrapping key: %w", err)
	}
	return Key{raw: raw}, nil
}

// Wrap implements [KeyWrapper].
func (w *keyWrapper) Wrap(kind models.EnvelopeKind, key, wrappingKey Key, version models.SchemeVersion) (models.WrappedKey, error) {
	if !version.IsValid() {
		return models.WrappedKey{}, fmt.Errorf("%w: %d", models.ErrUnknownSchemeVersion, int(version))
	}
	aad, ok := envelopeAAD[kind]
	if !ok {
		return models.WrappedKey{}, fmt.Errorf("wrap key: unknown envelope kind %q", kind)
	}
	if err := key.valid(); err != nil {
		return models.WrappedKey{}, fmt.Errorf("wrap key: %w", err)
	}

	iv, ct, err := seal(wrappingKey, key.raw, aad)
	if err != nil {
		return models.WrappedKey{}, fmt.Errorf("wrap key: %w", err)
	}

	return models.WrappedKey{
		Sealed: models.Sealed{
			IV:         base64.StdEncoding.EncodeToString(iv),
			Ciphertext: base64.StdEncoding.EncodeToString(ct),
		},
		KeyVersion: version,
	}, nil
}

// Unwrap implements [KeyWrapper]. A wrong wrapping key, a wrong kind or a
// corrupted envelope all yield [ErrUnwrap].
func (w *keyWrapper) Unwrap(kind models.EnvelopeKind, wrapped models.WrappedKey, wrappingKey Key) (Key, error) {
	aad, ok := envelopeAAD[kind]
	if !ok {
		return Key{}, fmt.Errorf("%w: unknown envelope kind %q", ErrUnwrap, kind)
	}

	iv, err := base64.StdEncoding.DecodeString(wrapped.IV)
	if err != nil {
		return Key{}, fmt.Errorf("%w: decode iv: %w", ErrUnwrap, err)
	}
	ct, err := base64.StdEncoding.DecodeString(wrapped.Ciphertext)
	if err != nil {
		return Key{}, fmt.Errorf("%w: decode ciphertext: %w", ErrUnwrap, err)
	}

	raw, err := open(wrappingKey, iv, ct, aad)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %w", ErrUnwrap, err)
	}
	if len(raw) != KeySize {
		return Key{}, fmt.Errorf("%w: unwrapped %d bytes", ErrUnwrap, len(raw))
	}
	return Key{raw: raw}, nil
}

// WrapForRecovery implements [KeyWrapper].
func (w *keyWrapper) WrapForRecovery(key, recoveryKey Key, version models.SchemeVersion) (models.WrappedKey, error) {
	return w.Wrap(models.EnvelopeRecovery, key, recoveryKey, version)
}

// UnwrapWithRecovery implements [KeyWrapper].
func (w *keyWrapper) UnwrapWithRecovery(wrapped models.WrappedKey, recoveryKey Key) (Key, error) {
	return w.Unwrap(models.EnvelopeRecovery, wrapped, recoveryKey)
}
