// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Sealed is the output of authenticated encryption: a fresh 96-bit IV and the
// ciphertext with its 128-bit tag appended. Both are base64 (standard
// encoding) so they can be stored as text by any backend.
type Sealed struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// WrappedKey is a key encrypted under a wrapping key. KeyVersion names the
// generation of the wrapped key, not of the wrapping key.
type WrappedKey struct {
	Sealed
	KeyVersion SchemeVersion `json:"version"`
}

// EnvelopeKind tells which unlock path a [KeyEnvelope] belongs to.
type EnvelopeKind string

const (
	// EnvelopePassphrase wraps the content key under a passphrase-derived key.
	EnvelopePassphrase EnvelopeKind = "passphrase"
	// EnvelopeRecovery wraps the content key under the recovery-phrase key.
	EnvelopeRecovery EnvelopeKind = "recovery"
	// EnvelopePasskey wraps the content key under a key derived from one
	// device credential's PRF output.
	EnvelopePasskey EnvelopeKind = "passkey"
)

// IsValid reports whether k is a declared envelope kind.
func (k EnvelopeKind) IsValid() bool {
	switch k {
	case EnvelopePassphrase, EnvelopeRecovery, EnvelopePasskey:
		return true
	}
	return false
}

// KeyEnvelope is one independent wrapping of a content key. Several envelopes
// of the same key coexist (one per passkey, one for recovery, one for the
// passphrase); deleting one never affects the others.
//
// CredentialID is set only for [EnvelopePasskey].
type KeyEnvelope struct {
	ID           string
	UserID       string
	Kind         EnvelopeKind
	CredentialID string
	Wrapped      WrappedKey
	CreatedAt    time.Time
}
