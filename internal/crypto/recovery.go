// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/tyler-smith/go-bip39"
)

const (
	// RecoveryEntropyBits is the entropy encoded by a recovery phrase.
	RecoveryEntropyBits = 128
	// RecoveryWordCount is the number of words of a 128-bit BIP39 mnemonic.
	RecoveryWordCount = 12
)

var saltAAD = []byte("go-sanctuary/recovery-salt/v1")

// recoveryCodec is the private implementation of [RecoveryCodec].
type recoveryCodec struct{}

// NewRecoveryCodec constructs a BIP39 based [RecoveryCodec].
func NewRecoveryCodec() RecoveryCodec {
	return &recoveryCodec{}
}

// Generate implements [RecoveryCodec].
func (r *recoveryCodec) Generate() (string, error) {
	entropy, err := bip39.NewEntropy(RecoveryEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	defer memguard.WipeBytes(entropy)

	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("encode mnemonic: %w", err)
	}
	return phrase, nil
}

// Validate implements [RecoveryCodec]. It checks word count, word list
// membership and the checksum. No server round-trip is involved.
func (r *recoveryCodec) Validate(phrase string) bool {
	normalized := NormalizePhrase(phrase)
	if len(strings.Fields(normalized)) != RecoveryWordCount {
		return false
	}
	return bip39.IsMnemonicValid(normalized)
}

// DeriveKey implements [RecoveryCodec]. The key is the first 32 bytes of the
// BIP39 seed of the normalized phrase with an empty passphrase, so any device
// derives byte-identical output from the same words.
func (r *recoveryCodec) DeriveKey(phrase string) (Key, error) {
	if !r.Validate(phrase) {
		return Key{}, ErrInvalidRecoveryPhrase
	}
	seed := bip39.NewSeed(NormalizePhrase(phrase), "")
	defer memguard.WipeBytes(seed)

	return ImportKey(seed[:KeySize])
}

// EncryptSalt implements [RecoveryCodec]. The result is base64(iv || ct).
func (r *recoveryCodec) EncryptSalt(salt []byte, recoveryKey Key) (string, error) {
	blob, err := sealBlob(recoveryKey, salt, saltAAD)
	if err != nil {
		return "", fmt.Errorf("encrypt salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptSalt implements [RecoveryCodec]. A malformed phrase, a malformed
// blob and a tag mismatch all yield [ErrInvalidRecoveryPhrase].
func (r *recoveryCodec) DecryptSalt(encryptedSalt, phrase string) ([]byte, error) {
	key, err := r.DeriveKey(phrase)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	blob, err := base64.StdEncoding.DecodeString(encryptedSalt)
	if err != nil {
		return nil, fmt.Errorf("%w: decode encrypted salt: %w", ErrInvalidRecoveryPhrase, err)
	}

	salt, err := openBlob(key, blob, saltAAD)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecoveryPhrase, err)
	}
	return salt, nil
}

// NormalizePhrase lower-cases the phrase and collapses all whitespace runs to
// single spaces.
func NormalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// SplitPhrase returns the normalized words of phrase.
func SplitPhrase(phrase string) []string {
	return strings.Fields(NormalizePhrase(phrase))
}

// FormatPhrase lays the words out as a numbered grid with the given number of
// columns, for printing on paper.
func FormatPhrase(phrase string, columns int) string {
	words := SplitPhrase(phrase)
	if columns <= 0 {
		columns = 3
	}

	var b strings.Builder
	for i, w := range words {
		fmt.Fprintf(&b, "%2d. %-10s", i+1, w)
		if (i+1)%columns == 0 || i == len(words)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString("  ")
		}
	}
	return b.String()
}
