// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/models"
)

// ProgressFunc receives one report per processed entry. It may be nil.
type ProgressFunc func(models.MigrationProgress)

// MigrationOrchestrator moves a user's entries from one content key to the
// next and drives the scheme transition around that move.
type MigrationOrchestrator interface {
	// DetectLegacyScheme reports whether the scheme 1 local key is present.
	DetectLegacyScheme(ctx context.Context, userID string) (bool, error)

	// Migrate re-encrypts, one at a time, every entry whose key version is
	// not newVersion: decrypt under oldKey, encrypt under newKey, persist.
	// A failed entry is recorded and the loop goes on. A result with
	// failures comes with a *MigrationPartialFailureError.
	Migrate(ctx context.Context, userID string, oldKey, newKey crypto.Key, newVersion models.SchemeVersion, onProgress ProgressFunc) (models.MigrationResult, error)

	// Validate tries to decrypt every entry under key and writes nothing.
	Validate(ctx context.Context, userID string, key crypto.Key) (models.ValidationReport, error)

	// Backup returns all entries, still encrypted, as an indented JSON
	// document.
	Backup(ctx context.Context, userID string) ([]byte, error)

	// Promote stages new key material, migrates, commits the new metadata
	// and only then retires the old key material.
	Promote(ctx context.Context, p Promotion, onProgress ProgressFunc) (models.MigrationResult, error)
}

// PassphraseService covers the passphrase and recovery phrase unlock paths.
type PassphraseService interface {
	// SetupPassphrase moves a scheme 1 user to scheme 2. The recovery phrase
	// in the result is shown once and never stored. It is returned even when
	// the migration partially failed, because the staged material needs it.
	SetupPassphrase(ctx context.Context, userID, passphrase string, onProgress ProgressFunc) (SetupResult, error)

	// UnlockWithPassphrase checks the verifier, derives the passphrase key
	// and places the content key in the session.
	UnlockWithPassphrase(ctx context.Context, userID, passphrase string) error

	// RecoverWithPhrase replaces a forgotten passphrase using the recovery
	// phrase, then unlocks.
	RecoverWithPhrase(ctx context.Context, userID, phrase, newPassphrase string) error

	// ResumeMigration retries the entries of a staged migration that are
	// still on the old key and commits when none is left.
	ResumeMigration(ctx context.Context, userID, passphrase string, onProgress ProgressFunc) (models.MigrationResult, error)
}

// PasskeyService covers device credentials.
type PasskeyService interface {
	// SetupPasskey registers a device credential. On a key version 2 user it
	// generates a master key and migrates all entries to it; otherwise the
	// current master key is wrapped for the new credential.
	SetupPasskey(ctx context.Context, userID, passphrase, deviceName string, onProgress ProgressFunc) (PasskeySetupResult, error)

	// UnlockWithPasskey runs an authentication ceremony and unwraps the
	// master key with the credential's PRF output.
	UnlockWithPasskey(ctx context.Context, userID string) error

	ListPasskeys(ctx context.Context, userID string) ([]models.CredentialRecord, error)

	// DeletePasskey removes one credential and its envelope. Removing the
	// last one reverts the user to scheme 2.
	DeletePasskey(ctx context.Context, userID, credentialID string) error
}

// ChallengeService issues and consumes short-lived ceremony challenges.
type ChallengeService interface {
	Issue(ctx context.Context, userID string, typ models.ChallengeType) (models.Challenge, error)

	// Consume deletes the user's challenge and returns it if it has the
	// expected type and is younger than the TTL. Anything else is
	// ErrChallengeExpired.
	Consume(ctx context.Context, userID string, typ models.ChallengeType) (models.Challenge, error)
}

// LegacyService serves users still on the scheme 1 random key.
type LegacyService interface {
	// Unlock loads the local key into the session, creating it on first use.
	Unlock(ctx context.Context, userID string) error
}

// EntryService reads and writes journal entries under the session key.
type EntryService interface {
	Write(ctx context.Context, userID string, plaintext []byte) (models.EncryptedEntry, error)
	Read(ctx context.Context, userID, entryID string) ([]byte, error)
	// List returns entries without decrypting them.
	List(ctx context.Context, userID string) ([]models.EncryptedEntry, error)
	Delete(ctx context.Context, userID, entryID string) error
}

// StatusService reports a user's key lifecycle state.
type StatusService interface {
	Status(ctx context.Context, userID string) (models.Status, error)
}
