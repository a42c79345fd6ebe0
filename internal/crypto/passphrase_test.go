package crypto

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func newTestKDF(t *testing.T) PassphraseKDF {
	t.Helper()
	kdf, err := NewPassphraseKDF(DefaultPBKDF2Iterations)
	if err != nil {
		t.Fatalf("NewPassphraseKDF error: %v", err)
	}
	return kdf
}

func TestNewPassphraseKDF_RejectsLowIterations(t *testing.T) {
	if _, err := NewPassphraseKDF(MinPBKDF2Iterations - 1); !errors.Is(err, ErrIterationsTooLow) {
		t.Fatalf("error = %v, want ErrIterationsTooLow", err)
	}
	kdf, err := NewPassphraseKDF(MinPBKDF2Iterations)
	if err != nil {
		t.Fatalf("NewPassphraseKDF(min) error: %v", err)
	}
	if kdf.Iterations() != MinPBKDF2Iterations {
		t.Fatalf("Iterations() = %d, want %d", kdf.Iterations(), MinPBKDF2Iterations)
	}
}

func TestValidateStrength(t *testing.T) {
	kdf := newTestKDF(t)

	tests := []struct {
		name       string
		passphrase string
		wantRule   StrengthRule
	}{
		{"valid example", "Tr0ub4dor&Extra", 0},
		{"valid unicode symbol", "Ünïcødé-Pass1", 0},
		{"short", "short1A", RuleLength},
		{"eleven characters", "Abcdefgh1!x", RuleLength},
		{"missing uppercase", "abcdefgh1!xyz", RuleUppercase},
		{"missing lowercase", "ABCDEFGH1!XYZ", RuleLowercase},
		{"missing digit", "Abcdefghij!xyz", RuleDigit},
		{"missing symbol", "Abcdefghij1xyz", RuleSymbol},
		{"length reported before classes", "abc", RuleLength},
		{"space counts as symbol", "Correct Horse 9", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := kdf.ValidateStrength(tt.passphrase)
			if tt.wantRule == 0 {
				if err != nil {
					t.Fatalf("ValidateStrength(%q) = %v, want nil", tt.passphrase, err)
				}
				return
			}

			var weak *WeakPassphraseError
			if !errors.As(err, &weak) {
				t.Fatalf("ValidateStrength(%q) = %v, want *WeakPassphraseError", tt.passphrase, err)
			}
			if weak.Rule != tt.wantRule {
				t.Fatalf("rule = %d, want %d (%s)", weak.Rule, tt.wantRule, weak.Reason)
			}
			if !errors.Is(err, ErrWeakPassphrase) {
				t.Fatalf("expected error to match ErrWeakPassphrase")
			}
		})
	}
}

func TestGenerateSalt_LengthAndRandomness(t *testing.T) {
	kdf := newTestKDF(t)

	s1, err := kdf.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}
	s2, err := kdf.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}

	if len(s1) != SaltSize || len(s2) != SaltSize {
		t.Fatalf("salt lengths = %d/%d, want %d", len(s1), len(s2), SaltSize)
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("expected salts to differ, but they are equal")
	}
}

func TestDeriveKey_DeterministicForSameInputs(t *testing.T) {
	kdf := newTestKDF(t)
	salt := bytes.Repeat([]byte{0xAB}, SaltSize)

	k1, err := kdf.DeriveKey("Tr0ub4dor&Extra", salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	k2, err := kdf.DeriveKey("Tr0ub4dor&Extra", salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}

	if !k1.Equal(k2) {
		t.Fatalf("expected identical keys for identical inputs")
	}
	if len(k1.Export()) != KeySize {
		t.Fatalf("key length = %d, want %d", len(k1.Export()), KeySize)
	}
}

func TestDeriveKey_DiffersBySaltAndPassphrase(t *testing.T) {
	kdf := newTestKDF(t)
	saltA := bytes.Repeat([]byte{0x01}, SaltSize)
	saltB := bytes.Repeat([]byte{0x02}, SaltSize)

	base, _ := kdf.DeriveKey("Tr0ub4dor&Extra", saltA)
	otherSalt, _ := kdf.DeriveKey("Tr0ub4dor&Extra", saltB)
	otherPass, _ := kdf.DeriveKey("Tr0ub4dor&Extra!", saltA)

	if base.Equal(otherSalt) {
		t.Fatalf("expected different keys for different salts")
	}
	if base.Equal(otherPass) {
		t.Fatalf("expected different keys for different passphrases")
	}
}

func TestDeriveKey_EmptySalt(t *testing.T) {
	kdf := newTestKDF(t)
	if _, err := kdf.DeriveKey("Tr0ub4dor&Extra", nil); err == nil {
		t.Fatalf("expected error for empty salt")
	}
}

func TestHashPassphrase_IndependentOfDerivedKey(t *testing.T) {
	kdf := newTestKDF(t)
	salt := bytes.Repeat([]byte{0x07}, SaltSize)
	passphrase := "Tr0ub4dor&Extra"

	key, err := kdf.DeriveKey(passphrase, salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	verifier, err := kdf.HashPassphrase(passphrase)
	if err != nil {
		t.Fatalf("HashPassphrase error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(verifier)
	if err != nil {
		t.Fatalf("verifier is not base64: %v", err)
	}
	if len(raw) != VerifierSaltSize+KeySize {
		t.Fatalf("verifier length = %d, want %d", len(raw), VerifierSaltSize+KeySize)
	}

	if bytes.Contains(raw, key.Export()) {
		t.Fatalf("verifier must not contain the derived key")
	}
}

func TestHashPassphrase_SaltedPerCall(t *testing.T) {
	kdf := newTestKDF(t)
	passphrase := "Tr0ub4dor&Extra"

	first, err := kdf.HashPassphrase(passphrase)
	if err != nil {
		t.Fatalf("HashPassphrase error: %v", err)
	}
	second, err := kdf.HashPassphrase(passphrase)
	if err != nil {
		t.Fatalf("HashPassphrase error: %v", err)
	}

	if first == second {
		t.Fatalf("same passphrase produced the same verifier twice")
	}
	a, _ := base64.StdEncoding.DecodeString(first)
	b, _ := base64.StdEncoding.DecodeString(second)
	if bytes.Equal(a[VerifierSaltSize:], b[VerifierSaltSize:]) {
		t.Fatalf("hashes must differ when salts differ")
	}
	if !kdf.VerifyPassphrase(passphrase, first) || !kdf.VerifyPassphrase(passphrase, second) {
		t.Fatalf("both verifiers must accept the passphrase")
	}
}

func TestVerifyPassphrase(t *testing.T) {
	kdf := newTestKDF(t)
	verifier, err := kdf.HashPassphrase("Tr0ub4dor&Extra")
	if err != nil {
		t.Fatalf("HashPassphrase error: %v", err)
	}

	if !kdf.VerifyPassphrase("Tr0ub4dor&Extra", verifier) {
		t.Fatalf("expected matching passphrase to verify")
	}
	if kdf.VerifyPassphrase("Tr0ub4dor&Extrb", verifier) {
		t.Fatalf("expected different passphrase to fail")
	}
	if kdf.VerifyPassphrase("Tr0ub4dor&Extra", "not base64 %%") {
		t.Fatalf("expected malformed verifier to fail")
	}
	raw, _ := base64.StdEncoding.DecodeString(verifier)
	if kdf.VerifyPassphrase("Tr0ub4dor&Extra", base64.StdEncoding.EncodeToString(raw[VerifierSaltSize:])) {
		t.Fatalf("expected verifier without its salt to fail")
	}
}
