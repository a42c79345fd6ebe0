// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the PBKDF2 salt length.
	SaltSize = 16
	// DefaultPBKDF2Iterations is the OWASP 2023 recommendation for
	// PBKDF2-HMAC-SHA256.
	DefaultPBKDF2Iterations = 210_000
	// MinPBKDF2Iterations is the floor accepted by [NewPassphraseKDF].
	MinPBKDF2Iterations = 200_000
	// MinPassphraseLength is the minimum number of characters.
	MinPassphraseLength = 12

	// VerifierSaltSize is the length of the random Argon2id salt stored in
	// front of every verifier. It is drawn apart from the PBKDF2 salt.
	VerifierSaltSize = 16
)

// StrengthRule identifies one passphrase strength requirement. Rules are
// checked in declaration order and the first failure is reported.
type StrengthRule int

const (
	RuleLength StrengthRule = iota + 1
	RuleUppercase
	RuleLowercase
	RuleDigit
	RuleSymbol
)

var ruleReasons = map[StrengthRule]string{
	RuleLength:    fmt.Sprintf("must be at least %d characters long", MinPassphraseLength),
	RuleUppercase: "must contain an uppercase letter",
	RuleLowercase: "must contain a lowercase letter",
	RuleDigit:     "must contain a digit",
	RuleSymbol:    "must contain a non-alphanumeric character",
}

// passphraseKDF is the private implementation of [PassphraseKDF].
type passphraseKDF struct {
	iterations int

	// Argon2id parameters of the verifier (OWASP minimum profile).
	verifierTime    uint32
	verifierMemory  uint32
	verifierThreads uint8
}

// NewPassphraseKDF constructs a [PassphraseKDF] running PBKDF2-HMAC-SHA256
// with the given round count. Counts below [MinPBKDF2Iterations] are
// rejected with [ErrIterationsTooLow].
//
// The verifier uses Argon2id with:
//   - time cost:   2 iterations
//   - memory cost: 19 MiB
//   - parallelism: 1 thread
func NewPassphraseKDF(iterations int) (PassphraseKDF, error) {
	if iterations < MinPBKDF2Iterations {
		return nil, fmt.Errorf("%w: %d < %d", ErrIterationsTooLow, iterations, MinPBKDF2Iterations)
	}
	return &passphraseKDF{
		iterations:      iterations,
		verifierTime:    2,
		verifierMemory:  19 * 1024, // 19 MiB
		verifierThreads: 1,
	}, nil
}

// Iterations implements [PassphraseKDF].
func (p *passphraseKDF) Iterations() int {
	return p.iterations
}

// ValidateStrength implements [PassphraseKDF]. It returns nil or a
// [*WeakPassphraseError] naming the first unmet rule in the order length,
// uppercase, lowercase, digit, symbol. Length counts characters, not bytes.
func (p *passphraseKDF) ValidateStrength(passphrase string) error {
	var upper, lower, digit, symbol bool
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			symbol = true
		}
	}

	checks := []struct {
		rule StrengthRule
		ok   bool
	}{
		{RuleLength, utf8.RuneCountInString(passphrase) >= MinPassphraseLength},
		{RuleUppercase, upper},
		{RuleLowercase, lower},
		{RuleDigit, digit},
		{RuleSymbol, symbol},
	}
	for _, c := range checks {
		if !c.ok {
			return &WeakPassphraseError{Rule: c.rule, Reason: ruleReasons[c.rule]}
		}
	}
	return nil
}

// GenerateSalt implements [PassphraseKDF]. It reads [SaltSize] random bytes
// from the OS CSPRNG.
func (p *passphraseKDF) GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey implements [PassphraseKDF]. The output is deterministic for a
// given (passphrase, salt) pair.
func (p *passphraseKDF) DeriveKey(passphrase string, salt []byte) (Key, error) {
	if len(salt) == 0 {
		return Key{}, fmt.Errorf("derive key: empty salt")
	}
	raw := pbkdf2.Key([]byte(passphrase), salt, p.iterations, KeySize, sha256.New)
	return Key{raw: raw}, nil
}

// HashPassphrase implements [PassphraseKDF]. The verifier is
// base64(salt || Argon2id(passphrase, salt)) with a fresh random salt, so two
// users with the same passphrase get unrelated verifiers. It shares neither
// function nor salt with [passphraseKDF.DeriveKey].
func (p *passphraseKDF) HashPassphrase(passphrase string) (string, error) {
	out := make([]byte, VerifierSaltSize, VerifierSaltSize+KeySize)
	if _, err := io.ReadFull(rand.Reader, out); err != nil {
		return "", fmt.Errorf("generate verifier salt: %w", err)
	}
	out = append(out, p.verifierHash(passphrase, out)...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// VerifyPassphrase implements [PassphraseKDF] with a constant-time compare.
func (p *passphraseKDF) VerifyPassphrase(passphrase, verifier string) bool {
	raw, err := base64.StdEncoding.DecodeString(verifier)
	if err != nil || len(raw) != VerifierSaltSize+KeySize {
		return false
	}
	salt, want := raw[:VerifierSaltSize], raw[VerifierSaltSize:]
	return subtle.ConstantTimeCompare(p.verifierHash(passphrase, salt), want) == 1
}

func (p *passphraseKDF) verifierHash(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, p.verifierTime, p.verifierMemory, p.verifierThreads, KeySize)
}
