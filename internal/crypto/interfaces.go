// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "github.com/MKhiriev/go-sanctuary/models"

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

// ContentCipher encrypts and decrypts journal content. It knows nothing about
// users, storage or sessions: the key is an explicit argument of every call.
//
//	sealed    = Encrypt(plaintext, key)      fresh 96-bit IV per call
//	plaintext = Decrypt(sealed, key)         ErrDecryption on any tag mismatch
type ContentCipher interface {
	// Encrypt seals plaintext with AES-256-GCM under key.
	Encrypt(plaintext []byte, key Key) (models.Sealed, error)

	// Decrypt opens sealed under key. It never returns partial plaintext.
	Decrypt(sealed models.Sealed, key Key) ([]byte, error)
}

// PassphraseKDF turns a memorized passphrase into a content key and a
// verifier the server can check.
type PassphraseKDF interface {
	// ValidateStrength returns nil or a *WeakPassphraseError naming the first
	// unmet rule.
	ValidateStrength(passphrase string) error

	// GenerateSalt returns a fresh random salt (16 bytes).
	GenerateSalt() ([]byte, error)

	// DeriveKey runs PBKDF2-HMAC-SHA256 and returns a 256-bit key.
	DeriveKey(passphrase string, salt []byte) (Key, error)

	// HashPassphrase returns the one-way verifier under a fresh random salt.
	// It is not the derived key and cannot be used to obtain it.
	HashPassphrase(passphrase string) (string, error)

	// VerifyPassphrase compares passphrase against a stored verifier.
	VerifyPassphrase(passphrase, verifier string) bool

	// Iterations reports the PBKDF2 round count in use.
	Iterations() int
}

// RecoveryCodec generates and checks BIP39 recovery phrases and uses them to
// protect the passphrase salt.
type RecoveryCodec interface {
	// Generate samples 128 bits of entropy and encodes them as 12 words.
	Generate() (string, error)

	// Validate checks word count and checksum locally.
	Validate(phrase string) bool

	// DeriveKey derives the recovery key deterministically from the phrase.
	DeriveKey(phrase string) (Key, error)

	// EncryptSalt encrypts salt under recoveryKey.
	EncryptSalt(salt []byte, recoveryKey Key) (string, error)

	// DecryptSalt recovers the salt with the phrase, or fails with
	// ErrInvalidRecoveryPhrase.
	DecryptSalt(encryptedSalt, phrase string) ([]byte, error)
}

// KeyWrapper generates master keys and wraps them under keys derived from
// device-credential PRF output, the recovery key or the passphrase key.
// One master key may have any number of independent envelopes.
type KeyWrapper interface {
	// GenerateMasterKey returns a fresh random 256-bit key.
	GenerateMasterKey() (Key, error)

	// DeriveWrappingKey runs HKDF-SHA256 over normalized PRF output.
	DeriveWrappingKey(prfOutput []byte) (Key, error)

	// Wrap encrypts key under wrappingKey for the given envelope kind.
	Wrap(kind models.EnvelopeKind, key, wrappingKey Key, version models.SchemeVersion) (models.WrappedKey, error)

	// Unwrap reverses Wrap or fails with ErrUnwrap.
	Unwrap(kind models.EnvelopeKind, wrapped models.WrappedKey, wrappingKey Key) (Key, error)

	// WrapForRecovery is Wrap with the recovery envelope kind.
	WrapForRecovery(key, recoveryKey Key, version models.SchemeVersion) (models.WrappedKey, error)

	// UnwrapWithRecovery is Unwrap with the recovery envelope kind.
	UnwrapWithRecovery(wrapped models.WrappedKey, recoveryKey Key) (Key, error)
}
