// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// MigrationProgress is reported after every processed entry. Current grows by
// exactly one per report.
type MigrationProgress struct {
	Current    int
	Total      int
	Percentage int
}

// NewMigrationProgress computes the rounded percentage for current/total.
// An empty migration is reported as complete.
func NewMigrationProgress(current, total int) MigrationProgress {
	pct := 100
	if total > 0 {
		pct = current * 100 / total
	}
	return MigrationProgress{Current: current, Total: total, Percentage: pct}
}

// EntryFailure records why a single entry could not be migrated.
type EntryFailure struct {
	EntryID string
	Err     error
	// Retryable is true when the failure came from a transient storage error.
	Retryable bool
}

// MigrationResult summarises one pass of the orchestrator.
type MigrationResult struct {
	Total    int
	Migrated int
	Failed   []EntryFailure
}

// FailedCount is the number of entries left on the old key.
func (r MigrationResult) FailedCount() int {
	return len(r.Failed)
}

// Succeeded is true only when every entry was migrated.
func (r MigrationResult) Succeeded() bool {
	return len(r.Failed) == 0
}

// ValidationReport is the outcome of a dry run: nothing is written.
type ValidationReport struct {
	Total            int
	Decryptable      int
	Undecryptable    int
	UndecryptableIDs []string
}

// BackupFormatVersion is the version of the [Backup] JSON layout.
const BackupFormatVersion = 1

// Backup is the user-downloadable safety net taken before a migration. The
// entries stay encrypted.
type Backup struct {
	Version   int              `json:"version"`
	UserID    string           `json:"userId"`
	Timestamp time.Time        `json:"timestamp"`
	Entries   []EncryptedEntry `json:"entries"`
}

// Status is a read-only overview of a user's key lifecycle state.
type Status struct {
	UserID            string
	Scheme            SchemeVersion
	KeyVersion        SchemeVersion
	PendingKeyVersion *SchemeVersion
	LegacyKeyPresent  bool
	Passkeys          int
	Entries           int
	EntriesByVersion  map[SchemeVersion]int
	Unlocked          bool
}
