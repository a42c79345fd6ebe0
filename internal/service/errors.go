// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-sanctuary/models"
)

var (
	// ErrChallengeExpired is returned for a missing, expired or mismatched
	// ceremony challenge. The ceremony must be restarted from scratch.
	ErrChallengeExpired = errors.New("challenge expired")

	// ErrMigrationPartialFailure is matched by [*MigrationPartialFailureError].
	ErrMigrationPartialFailure = errors.New("migration partially failed")

	// ErrInvalidPassphrase is returned when a passphrase does not match the
	// stored verifier.
	ErrInvalidPassphrase = errors.New("invalid passphrase")

	// ErrSchemeTransition is returned when an operation would need a scheme
	// transition the state machine does not have.
	ErrSchemeTransition = errors.New("scheme transition not allowed")

	// ErrLastUnlockPath is returned when removing key material would leave
	// the user without a way to unlock.
	ErrLastUnlockPath = errors.New("refusing to remove the last unlock path")

	// ErrEntryPendingMigration is returned when an entry is still encrypted
	// under a key version other than the unlocked one.
	ErrEntryPendingMigration = errors.New("entry is pending migration")

	// ErrNotUnlocked is returned when no content key is held for the user.
	ErrNotUnlocked = errors.New("journal is locked")

	// ErrAlreadyConfigured is returned by setup calls for a user already past
	// the requested scheme.
	ErrAlreadyConfigured = errors.New("already configured")

	// ErrNoPendingMigration is returned by resume calls when nothing is
	// staged.
	ErrNoPendingMigration = errors.New("no pending migration")

	// ErrMigrationPending is returned by operations that cannot run while a
	// migration is staged but not committed.
	ErrMigrationPending = errors.New("a migration is pending; resume it first")

	// ErrNoPasskeys is returned when a passkey unlock is attempted without
	// any registered credential.
	ErrNoPasskeys = errors.New("no passkeys registered")

	// ErrMetadataNotConfirmed is returned when metadata read back after a
	// write does not match what was written.
	ErrMetadataNotConfirmed = errors.New("metadata write not confirmed")
)

// MigrationPartialFailureError reports a migration pass that left entries on
// the old key. The pass is not successful; failed entries can be retried.
type MigrationPartialFailureError struct {
	Total    int
	Failed   int
	Failures []models.EntryFailure
}

func newPartialFailure(res models.MigrationResult) *MigrationPartialFailureError {
	return &MigrationPartialFailureError{
		Total:    res.Total,
		Failed:   res.FailedCount(),
		Failures: res.Failed,
	}
}

func (e *MigrationPartialFailureError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.EntryID)
	}
	return fmt.Sprintf("%s: %d of %d entries failed (%s)", ErrMigrationPartialFailure, e.Failed, e.Total, strings.Join(ids, ", "))
}

func (e *MigrationPartialFailureError) Unwrap() error {
	return ErrMigrationPartialFailure
}

// Retryable reports whether every failure was a transient storage error.
func (e *MigrationPartialFailureError) Retryable() bool {
	for _, f := range e.Failures {
		if !f.Retryable {
			return false
		}
	}
	return len(e.Failures) > 0
}
