// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the user-facing wording of the sanctuary CLI.
//
// All Msg* constants are human-readable messages printed on stderr when a
// command fails. Keeping them in one place ensures consistent wording across
// commands; [Message] maps an error returned by the services onto one of
// them.
package app

import (
	"errors"

	"github.com/MKhiriev/go-sanctuary/internal/ceremony"
	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/service"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/models"
)

const (
	// MsgInvalidPassphrase is shown when the passphrase does not match.
	MsgInvalidPassphrase = "invalid passphrase"

	// MsgWeakPassphrase prefixes the failed strength rule.
	MsgWeakPassphrase = "passphrase is too weak"

	// MsgInvalidRecoveryPhrase is shown for a malformed or wrong phrase.
	MsgInvalidRecoveryPhrase = "invalid recovery phrase"

	// MsgLocked is shown when a command needs an unlocked journal.
	MsgLocked = "journal is locked, unlock it first"

	// MsgMigrationPending is shown while a staged migration is unfinished.
	MsgMigrationPending = "a key migration is unfinished, run `sanctuary migrate --resume`"

	// MsgMigrationPartial is shown when some entries stayed on the old key.
	MsgMigrationPartial = "some entries could not be migrated; your previous unlock method still works"

	// MsgMigrationRetry is appended when every failure was transient.
	MsgMigrationRetry = "the failures look temporary, retry with `sanctuary migrate --resume`"

	// MsgNoPendingMigration is shown by resume when there is nothing to do.
	MsgNoPendingMigration = "no migration to resume"

	// MsgAlreadyConfigured is shown when setup runs twice.
	MsgAlreadyConfigured = "a passphrase is already set up"

	// MsgNeedsPassphrase is shown when the requested step needs an earlier
	// scheme first.
	MsgNeedsPassphrase = "this needs a passphrase, run `sanctuary setup` first"

	// MsgLastUnlockPath is shown when a delete would lock the user out.
	MsgLastUnlockPath = "refusing to remove the last way to unlock your journal"

	// MsgNoPasskeys is shown when no passkey is registered.
	MsgNoPasskeys = "no passkeys registered"

	// MsgCeremonyCancelled is shown when the user dismissed the prompt.
	MsgCeremonyCancelled = "passkey prompt dismissed"

	// MsgCeremonyRetry is shown for timeouts and other retryable ceremony
	// failures.
	MsgCeremonyRetry = "the passkey did not respond, please try again"

	// MsgChallengeExpired is shown when a ceremony outlived its challenge.
	MsgChallengeExpired = "the passkey request expired, please start again"

	// MsgNotVerified is shown when the passkey response was rejected.
	MsgNotVerified = "the passkey response could not be verified"

	// MsgPRFUnsupported is shown for authenticators without PRF.
	MsgPRFUnsupported = "this authenticator cannot protect journal keys"

	// MsgEntryPending is shown when an entry is still on an older key.
	MsgEntryPending = "this entry is still waiting for migration"

	// MsgEntryNotFound is shown for an unknown entry id.
	MsgEntryNotFound = "entry not found"

	// MsgCredentialNotFound is shown for an unknown passkey id.
	MsgCredentialNotFound = "passkey not found"

	// MsgDecryption is shown when ciphertext fails authentication.
	MsgDecryption = "entry could not be decrypted"

	// MsgUnwrap is shown when a key envelope does not open.
	MsgUnwrap = "the journal key could not be opened with this credential"

	// MsgCorruptRecord is shown when stored metadata is unreadable.
	MsgCorruptRecord = "stored key metadata is corrupt"

	// MsgStorageUnavailable is shown for transient storage failures.
	MsgStorageUnavailable = "storage is temporarily unavailable, please retry"

	// MsgInternalError is shown for anything else.
	MsgInternalError = "unexpected error, see the log file for details"
)

// Message returns the user-facing wording for err. It never includes key
// material or the error chain itself.
func Message(err error) string {
	var weak *crypto.WeakPassphraseError
	var partial *service.MigrationPartialFailureError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &weak):
		return MsgWeakPassphrase + ": " + weak.Reason
	case errors.As(err, &partial):
		if partial.Retryable() {
			return MsgMigrationPartial + "; " + MsgMigrationRetry
		}
		return MsgMigrationPartial
	case errors.Is(err, service.ErrInvalidPassphrase):
		return MsgInvalidPassphrase
	case errors.Is(err, crypto.ErrInvalidRecoveryPhrase):
		return MsgInvalidRecoveryPhrase
	case errors.Is(err, service.ErrNotUnlocked):
		return MsgLocked
	case errors.Is(err, service.ErrMigrationPending):
		return MsgMigrationPending
	case errors.Is(err, service.ErrNoPendingMigration):
		return MsgNoPendingMigration
	case errors.Is(err, service.ErrAlreadyConfigured):
		return MsgAlreadyConfigured
	case errors.Is(err, service.ErrSchemeTransition):
		return MsgNeedsPassphrase
	case errors.Is(err, service.ErrLastUnlockPath):
		return MsgLastUnlockPath
	case errors.Is(err, service.ErrNoPasskeys):
		return MsgNoPasskeys
	case errors.Is(err, ceremony.ErrCeremonyCancelled):
		return MsgCeremonyCancelled
	case errors.Is(err, service.ErrChallengeExpired):
		return MsgChallengeExpired
	case errors.Is(err, ceremony.ErrNotVerified), errors.Is(err, ceremony.ErrUnknownCredential):
		return MsgNotVerified
	case errors.Is(err, ceremony.ErrPRFUnsupported), errors.Is(err, ceremony.ErrInvalidPRFOutput):
		return MsgPRFUnsupported
	case ceremony.IsRetryable(err):
		return MsgCeremonyRetry
	case errors.Is(err, service.ErrEntryPendingMigration):
		return MsgEntryPending
	case errors.Is(err, store.ErrEntryNotFound):
		return MsgEntryNotFound
	case errors.Is(err, store.ErrCredentialNotFound):
		return MsgCredentialNotFound
	case errors.Is(err, crypto.ErrDecryption):
		return MsgDecryption
	case errors.Is(err, crypto.ErrUnwrap):
		return MsgUnwrap
	case errors.Is(err, store.ErrCorruptRecord), errors.Is(err, models.ErrUnknownSchemeVersion):
		return MsgCorruptRecord
	case store.IsRetryable(err):
		return MsgStorageUnavailable
	default:
		return MsgInternalError
	}
}
