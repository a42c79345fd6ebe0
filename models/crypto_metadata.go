// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// CryptoMetadata is the per-user record held by the backend store. None of its
// fields allows decryption on its own: the salt and iteration count are
// public, the verifier is a one-way hash unrelated to the derived key and the
// encrypted salt needs the recovery phrase.
type CryptoMetadata struct {
	UserID string

	// Scheme is the active unlock scheme.
	Scheme SchemeVersion

	// KeyVersion is the generation of the content key the user's entries are
	// encrypted under once no migration is pending.
	KeyVersion SchemeVersion

	// PendingKeyVersion is non-nil while a migration towards a new key is in
	// flight. The previous key material stays valid until it is cleared.
	PendingKeyVersion *SchemeVersion

	// Salt is the base64 PBKDF2 salt.
	Salt string
	// Iterations is the PBKDF2 round count used with Salt.
	Iterations int
	// VerifierHash is the base64 one-way passphrase verifier.
	VerifierHash string
	// EncryptedSalt is base64(iv || ciphertext) of Salt under the recovery key.
	EncryptedSalt string
	// StagedEncryptedSalt holds the salt encrypted under a freshly issued
	// recovery phrase until the migration that issued it commits.
	StagedEncryptedSalt string

	MigratedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DefaultMetadata is the state of a user without any stored record: the
// legacy random-key scheme.
func DefaultMetadata(userID string) CryptoMetadata {
	return CryptoMetadata{
		UserID:     userID,
		Scheme:     SchemeRandomKey,
		KeyVersion: SchemeRandomKey,
	}
}

// HasPassphrase reports whether the passphrase scheme material is present.
func (m CryptoMetadata) HasPassphrase() bool {
	return m.Salt != "" && m.VerifierHash != ""
}

// IsPending reports whether a key migration is in flight.
func (m CryptoMetadata) IsPending() bool {
	return m.PendingKeyVersion != nil
}
