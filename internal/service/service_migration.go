// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/models"
)

// Promotion describes one scheme transition carried out by Promote.
type Promotion struct {
	UserID string

	// Staged is written before any entry moves. Scheme and KeyVersion are
	// still the current ones; PendingKeyVersion names the new key version.
	Staged models.CryptoMetadata

	// Target is the scheme committed once every entry is on the new key.
	Target models.SchemeVersion

	// Envelopes of the new key at the pending key version. Empty on resume.
	Envelopes []models.KeyEnvelope

	OldKey crypto.Key
	NewKey crypto.Key
}

type migrationService struct {
	*deps
}

// newMigrationOrchestrator returns the entry migration driver.
func newMigrationOrchestrator(d *deps) MigrationOrchestrator {
	return &migrationService{deps: d}
}

func (m *migrationService) DetectLegacyScheme(ctx context.Context, userID string) (bool, error) {
	ok, err := m.legacy.Exists(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*migrationService.DetectLegacyScheme").Str("user_id", userID).Msg("legacy key lookup failed")
		return false, fmt.Errorf("detect legacy key: %w", err)
	}
	return ok, nil
}

// Migrate processes entries strictly one at a time, so at most one plaintext
// is held in memory and progress only ever grows by one.
func (m *migrationService) Migrate(ctx context.Context, userID string, oldKey, newKey crypto.Key, newVersion models.SchemeVersion, onProgress ProgressFunc) (models.MigrationResult, error) {
	log := logger.FromContext(ctx)

	all, err := m.entries.List(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*migrationService.Migrate").Str("user_id", userID).Msg("listing entries failed")
		return models.MigrationResult{}, fmt.Errorf("list entries: %w", err)
	}

	pending := make([]models.EncryptedEntry, 0, len(all))
	for _, e := range all {
		if e.KeyVersion != newVersion {
			pending = append(pending, e)
		}
	}

	res := models.MigrationResult{Total: len(pending)}
	log.Info().Str("user_id", userID).Int("entries", res.Total).Int("key_version", int(newVersion)).Msg("migration started")

	for i, e := range pending {
		if err := ctx.Err(); err != nil {
			log.Warn().Str("user_id", userID).Int("processed", i).Int("total", res.Total).Msg("migration interrupted")
			return res, fmt.Errorf("migration interrupted after %d of %d entries: %w", i, res.Total, err)
		}

		if err := m.migrateEntry(ctx, e, oldKey, newKey, newVersion); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Str("entry_id", e.ID).Msg("entry migration failed")
			res.Failed = append(res.Failed, models.EntryFailure{
				EntryID:   e.ID,
				Err:       err,
				Retryable: store.IsRetryable(err),
			})
		} else {
			res.Migrated++
		}

		if onProgress != nil {
			onProgress(models.NewMigrationProgress(i+1, res.Total))
		}
	}

	log.Info().Str("user_id", userID).
		Int("migrated", res.Migrated).
		Int("failed", res.FailedCount()).
		Msg("migration pass finished")

	if !res.Succeeded() {
		return res, newPartialFailure(res)
	}
	return res, nil
}

func (m *migrationService) migrateEntry(ctx context.Context, e models.EncryptedEntry, oldKey, newKey crypto.Key, newVersion models.SchemeVersion) error {
	plaintext, err := m.cipher.Decrypt(e.Sealed, oldKey)
	if err != nil {
		return fmt.Errorf("decrypt under old key: %w", err)
	}
	defer memguard.WipeBytes(plaintext)

	sealed, err := m.cipher.Encrypt(plaintext, newKey)
	if err != nil {
		return fmt.Errorf("encrypt under new key: %w", err)
	}

	if err := m.entries.UpdateCiphertext(ctx, e.UserID, e.ID, sealed, newVersion); err != nil {
		return fmt.Errorf("persist migrated entry: %w", err)
	}
	return nil
}

func (m *migrationService) Validate(ctx context.Context, userID string, key crypto.Key) (models.ValidationReport, error) {
	all, err := m.entries.List(ctx, userID)
	if err != nil {
		return models.ValidationReport{}, fmt.Errorf("list entries: %w", err)
	}

	report := models.ValidationReport{Total: len(all)}
	for _, e := range all {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		plaintext, err := m.cipher.Decrypt(e.Sealed, key)
		if err != nil {
			report.Undecryptable++
			report.UndecryptableIDs = append(report.UndecryptableIDs, e.ID)
			continue
		}
		memguard.WipeBytes(plaintext)
		report.Decryptable++
	}

	logger.FromContext(ctx).Info().Str("user_id", userID).
		Int("decryptable", report.Decryptable).
		Int("undecryptable", report.Undecryptable).
		Msg("dry run finished")
	return report, nil
}

// Backup never decrypts.
func (m *migrationService) Backup(ctx context.Context, userID string) ([]byte, error) {
	all, err := m.entries.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if all == nil {
		all = []models.EncryptedEntry{}
	}

	blob, err := json.MarshalIndent(models.Backup{
		Version:   models.BackupFormatVersion,
		UserID:    userID,
		Timestamp: m.now().UTC(),
		Entries:   all,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return blob, nil
}

// Promote runs a scheme transition in an order that always leaves one valid
// unlock path:
//
//  1. write the new envelopes and the staged metadata, read them back
//  2. migrate every entry not yet on the new key
//  3. stop here if any entry failed; the staged state stays for a retry
//  4. write the committed metadata, read it back
//  5. retire the old key material
func (m *migrationService) Promote(ctx context.Context, p Promotion, onProgress ProgressFunc) (models.MigrationResult, error) {
	log := logger.FromContext(ctx)
	staged := p.Staged

	if staged.PendingKeyVersion == nil {
		return models.MigrationResult{}, ErrNoPendingMigration
	}
	if !models.CanTransition(staged.Scheme, p.Target) {
		return models.MigrationResult{}, fmt.Errorf("%w: %s to %s", ErrSchemeTransition, staged.Scheme, p.Target)
	}
	oldVersion, newVersion := staged.KeyVersion, *staged.PendingKeyVersion

	// 1. stage; envelopes go first so that pending metadata never points at
	// missing envelopes
	for _, env := range p.Envelopes {
		if err := m.envelopes.Save(ctx, env); err != nil {
			log.Err(err).Str("func", "*migrationService.Promote").Str("kind", string(env.Kind)).Msg("staging envelope failed")
			return models.MigrationResult{}, fmt.Errorf("stage %s envelope: %w", env.Kind, err)
		}
	}
	if err := m.metadata.Save(ctx, staged); err != nil {
		log.Err(err).Str("func", "*migrationService.Promote").Str("user_id", p.UserID).Msg("staging metadata failed")
		return models.MigrationResult{}, fmt.Errorf("stage metadata: %w", err)
	}
	if err := m.confirmMetadata(ctx, staged); err != nil {
		return models.MigrationResult{}, err
	}
	for _, env := range p.Envelopes {
		if _, err := m.envelopes.Get(ctx, env.UserID, env.Kind, env.CredentialID, env.Wrapped.KeyVersion); err != nil {
			return models.MigrationResult{}, fmt.Errorf("confirm staged %s envelope: %w", env.Kind, err)
		}
	}
	log.Info().Str("user_id", p.UserID).
		Int("from_key_version", int(oldVersion)).
		Int("to_key_version", int(newVersion)).
		Msg("new key material staged")

	// 2, 3. migrate
	res, err := m.Migrate(ctx, p.UserID, p.OldKey, p.NewKey, newVersion, onProgress)
	if err != nil {
		return res, err
	}

	// 4. commit
	committed := staged
	committed.Scheme = p.Target
	committed.KeyVersion = newVersion
	committed.PendingKeyVersion = nil
	committed.EncryptedSalt = staged.StagedEncryptedSalt
	committed.StagedEncryptedSalt = ""
	now := m.now().UTC()
	committed.MigratedAt = &now
	committed.UpdatedAt = now

	if err := m.metadata.Save(ctx, committed); err != nil {
		log.Err(err).Str("func", "*migrationService.Promote").Str("user_id", p.UserID).Msg("committing metadata failed")
		return res, fmt.Errorf("commit metadata: %w", err)
	}
	if err := m.confirmMetadata(ctx, committed); err != nil {
		return res, err
	}
	log.Info().Str("user_id", p.UserID).Int("scheme", int(p.Target)).Msg("scheme committed")

	// 5. retire
	if err := m.retire(ctx, p.UserID, oldVersion); err != nil {
		// the new scheme is committed, so leftovers are harmless
		log.Warn().Err(err).Str("user_id", p.UserID).Int("key_version", int(oldVersion)).Msg("retiring old key material failed")
	}

	return res, nil
}

func (m *migrationService) retire(ctx context.Context, userID string, oldVersion models.SchemeVersion) error {
	if oldVersion == models.SchemeRandomKey {
		return m.legacy.Delete(ctx, userID)
	}
	return m.envelopes.DeleteVersion(ctx, userID, oldVersion)
}
