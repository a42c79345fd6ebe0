// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"errors"
	"fmt"
)

// Key-path failures. Every one of them is terminal for the call that produced
// it: no fallback key is tried and nothing is retried.
var (
	// ErrDecryption is returned when content fails authentication: wrong key,
	// corrupted data or tampering. No partial plaintext is ever returned.
	ErrDecryption = errors.New("decryption failed")

	// ErrInvalidRecoveryPhrase is returned for a malformed phrase (word count,
	// unknown word, checksum) or when the phrase does not open the encrypted
	// salt.
	ErrInvalidRecoveryPhrase = errors.New("invalid recovery phrase")

	// ErrUnwrap is returned when a wrapped key does not open under the given
	// wrapping key, e.g. an envelope made for a different device credential.
	ErrUnwrap = errors.New("key unwrap failed")

	// ErrWeakPassphrase is the sentinel wrapped by [*WeakPassphraseError].
	ErrWeakPassphrase = errors.New("passphrase does not meet strength requirements")

	// ErrInvalidKey is returned when key material has the wrong length.
	ErrInvalidKey = errors.New("invalid key")

	// ErrIterationsTooLow is returned when a PBKDF2 round count below
	// [MinPBKDF2Iterations] is configured.
	ErrIterationsTooLow = errors.New("pbkdf2 iteration count too low")
)

// WeakPassphraseError names the first strength rule a passphrase failed.
type WeakPassphraseError struct {
	Rule   StrengthRule
	Reason string
}

func (e *WeakPassphraseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrWeakPassphrase, e.Reason)
}

func (e *WeakPassphraseError) Unwrap() error {
	return ErrWeakPassphrase
}
