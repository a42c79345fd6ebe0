// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/models"
)

// SetupResult is returned by SetupPassphrase. RecoveryPhrase must be shown to
// the user once and then dropped.
type SetupResult struct {
	RecoveryPhrase string
	Migration      *models.MigrationResult
}

type passphraseService struct {
	*deps
	orchestrator MigrationOrchestrator
}

func newPassphraseService(d *deps, orchestrator MigrationOrchestrator) PassphraseService {
	return &passphraseService{deps: d, orchestrator: orchestrator}
}

func (s *passphraseService) SetupPassphrase(ctx context.Context, userID, passphrase string, onProgress ProgressFunc) (SetupResult, error) {
	log := logger.FromContext(ctx)

	if err := s.kdf.ValidateStrength(passphrase); err != nil {
		return SetupResult{}, err
	}

	meta, err := s.loadMetadata(ctx, userID)
	if err != nil {
		return SetupResult{}, err
	}
	if meta.IsPending() {
		return SetupResult{}, ErrMigrationPending
	}
	if meta.Scheme != models.SchemeRandomKey {
		return SetupResult{}, fmt.Errorf("%w: scheme is %s", ErrAlreadyConfigured, meta.Scheme)
	}

	oldKey, err := s.legacyKey(ctx, userID, true)
	if err != nil {
		return SetupResult{}, err
	}
	defer oldKey.Wipe()

	salt, err := s.kdf.GenerateSalt()
	if err != nil {
		return SetupResult{}, err
	}
	newKey, err := s.kdf.DeriveKey(passphrase, salt)
	if err != nil {
		return SetupResult{}, err
	}
	defer newKey.Wipe()

	phrase, recKey, err := s.issueRecoveryPhrase()
	if err != nil {
		return SetupResult{}, err
	}
	defer recKey.Wipe()

	encSalt, err := s.recovery.EncryptSalt(salt, recKey)
	if err != nil {
		return SetupResult{}, err
	}
	wrapped, err := s.wrapper.WrapForRecovery(newKey, recKey, models.SchemePassphraseRecovery)
	if err != nil {
		return SetupResult{}, err
	}
	verifier, err := s.kdf.HashPassphrase(passphrase)
	if err != nil {
		return SetupResult{}, err
	}

	now := s.now().UTC()
	staged := meta
	if staged.CreatedAt.IsZero() {
		staged.CreatedAt = now
	}
	staged.UpdatedAt = now
	staged.PendingKeyVersion = versionPtr(models.SchemePassphraseRecovery)
	staged.Salt = base64.StdEncoding.EncodeToString(salt)
	staged.Iterations = s.kdf.Iterations()
	staged.VerifierHash = verifier
	staged.StagedEncryptedSalt = encSalt

	res, err := s.orchestrator.Promote(ctx, Promotion{
		UserID:    userID,
		Staged:    staged,
		Target:    models.SchemePassphraseRecovery,
		Envelopes: []models.KeyEnvelope{s.newEnvelope(userID, models.EnvelopeRecovery, "", wrapped)},
		OldKey:    oldKey,
		NewKey:    newKey,
	}, onProgress)
	if err != nil {
		log.Err(err).Str("func", "*passphraseService.SetupPassphrase").Str("user_id", userID).Msg("passphrase setup did not commit")
		// once staged, the phrase is the only way to recover the new salt
		if s.isStaged(ctx, userID) {
			return SetupResult{RecoveryPhrase: phrase, Migration: &res}, err
		}
		return SetupResult{}, err
	}

	if err := s.session.Unlock(userID, newKey, models.SchemePassphraseRecovery); err != nil {
		return SetupResult{RecoveryPhrase: phrase, Migration: &res}, err
	}

	log.Info().Str("user_id", userID).Int("entries", res.Total).Msg("passphrase scheme set up")
	return SetupResult{RecoveryPhrase: phrase, Migration: &res}, nil
}

func (s *passphraseService) UnlockWithPassphrase(ctx context.Context, userID, passphrase string) error {
	meta, err := s.loadMetadata(ctx, userID)
	if err != nil {
		return err
	}

	passKey, err := s.passphraseKey(meta, passphrase)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("user_id", userID).Msg("passphrase unlock refused")
		return err
	}
	defer passKey.Wipe()

	version := unlockVersion(meta)
	key, err := s.contentKey(ctx, userID, version, passKey)
	if err != nil {
		return err
	}
	defer key.Wipe()

	return s.session.Unlock(userID, key, version)
}

// RecoverWithPhrase checks the phrase against the encrypted salt, unwraps the
// recovery envelope and stores a passphrase envelope under a key derived from
// newPassphrase over the same salt. The envelope is written before the new
// verifier, so an interrupted recovery can simply be run again.
func (s *passphraseService) RecoverWithPhrase(ctx context.Context, userID, phrase, newPassphrase string) error {
	log := logger.FromContext(ctx)

	if err := s.kdf.ValidateStrength(newPassphrase); err != nil {
		return err
	}
	if !s.recovery.Validate(phrase) {
		return crypto.ErrInvalidRecoveryPhrase
	}

	meta, err := s.loadMetadata(ctx, userID)
	if err != nil {
		return err
	}
	version, encSalt := meta.KeyVersion, meta.EncryptedSalt
	if meta.IsPending() {
		// only a migration off the legacy key keeps its old key independent
		// of the passphrase being replaced
		if meta.KeyVersion != models.SchemeRandomKey {
			return ErrMigrationPending
		}
		version, encSalt = *meta.PendingKeyVersion, meta.StagedEncryptedSalt
	}
	if version == models.SchemeRandomKey || encSalt == "" {
		return fmt.Errorf("%w: no recovery phrase configured", ErrSchemeTransition)
	}

	salt, err := s.recovery.DecryptSalt(encSalt, phrase)
	if err != nil {
		log.Warn().Str("user_id", userID).Msg("recovery phrase does not open the salt")
		return err
	}
	defer memguard.WipeBytes(salt)

	stored, err := base64.StdEncoding.DecodeString(meta.Salt)
	if err != nil || !bytes.Equal(stored, salt) {
		return fmt.Errorf("%w: recovered salt does not match", crypto.ErrInvalidRecoveryPhrase)
	}

	recKey, err := s.recovery.DeriveKey(phrase)
	if err != nil {
		return err
	}
	defer recKey.Wipe()

	env, err := s.envelopes.Get(ctx, userID, models.EnvelopeRecovery, "", version)
	if err != nil {
		return fmt.Errorf("load recovery envelope: %w", err)
	}
	key, err := s.wrapper.UnwrapWithRecovery(env.Wrapped, recKey)
	if err != nil {
		return fmt.Errorf("%w: %w", crypto.ErrInvalidRecoveryPhrase, err)
	}
	defer key.Wipe()

	kdf, err := s.kdfFor(meta)
	if err != nil {
		return err
	}
	newPassKey, err := kdf.DeriveKey(newPassphrase, salt)
	if err != nil {
		return err
	}
	defer newPassKey.Wipe()

	wrapped, err := s.wrapper.Wrap(models.EnvelopePassphrase, key, newPassKey, version)
	if err != nil {
		return err
	}
	verifier, err := kdf.HashPassphrase(newPassphrase)
	if err != nil {
		return err
	}
	if err := s.saveEnvelope(ctx, s.newEnvelope(userID, models.EnvelopePassphrase, "", wrapped)); err != nil {
		log.Err(err).Str("func", "*passphraseService.RecoverWithPhrase").Str("user_id", userID).Msg("storing passphrase envelope failed")
		return err
	}

	meta.VerifierHash = verifier
	meta.UpdatedAt = s.now().UTC()
	if err := s.metadata.Save(ctx, meta); err != nil {
		log.Err(err).Str("func", "*passphraseService.RecoverWithPhrase").Str("user_id", userID).Msg("storing verifier failed")
		return fmt.Errorf("save verifier: %w", err)
	}
	if err := s.confirmMetadata(ctx, meta); err != nil {
		return err
	}

	log.Info().Str("user_id", userID).Int("key_version", int(version)).Msg("passphrase replaced through recovery")
	return s.session.Unlock(userID, key, version)
}

func (s *passphraseService) ResumeMigration(ctx context.Context, userID, passphrase string, onProgress ProgressFunc) (models.MigrationResult, error) {
	meta, err := s.loadMetadata(ctx, userID)
	if err != nil {
		return models.MigrationResult{}, err
	}
	if !meta.IsPending() {
		return models.MigrationResult{}, ErrNoPendingMigration
	}
	target := *meta.PendingKeyVersion

	passKey, err := s.passphraseKey(meta, passphrase)
	if err != nil {
		return models.MigrationResult{}, err
	}
	defer passKey.Wipe()

	newKey, err := s.contentKey(ctx, userID, target, passKey)
	if err != nil {
		return models.MigrationResult{}, fmt.Errorf("new key: %w", err)
	}
	defer newKey.Wipe()

	oldKey, err := s.contentKey(ctx, userID, meta.KeyVersion, passKey)
	if err != nil {
		return models.MigrationResult{}, fmt.Errorf("old key: %w", err)
	}
	defer oldKey.Wipe()

	logger.FromContext(ctx).Info().Str("user_id", userID).Int("key_version", int(target)).Msg("resuming migration")

	meta.UpdatedAt = s.now().UTC()
	res, err := s.orchestrator.Promote(ctx, Promotion{
		UserID: userID,
		Staged: meta,
		Target: target,
		OldKey: oldKey,
		NewKey: newKey,
	}, onProgress)
	if err != nil {
		return res, err
	}

	return res, s.session.Unlock(userID, newKey, target)
}

// issueRecoveryPhrase generates a phrase and its key. The phrase is never
// logged.
func (s *deps) issueRecoveryPhrase() (string, crypto.Key, error) {
	phrase, err := s.recovery.Generate()
	if err != nil {
		return "", crypto.Key{}, fmt.Errorf("generate recovery phrase: %w", err)
	}
	key, err := s.recovery.DeriveKey(phrase)
	if err != nil {
		return "", crypto.Key{}, fmt.Errorf("derive recovery key: %w", err)
	}
	return phrase, key, nil
}

// isStaged reports whether a migration is pending after a failed promotion.
func (s *deps) isStaged(ctx context.Context, userID string) bool {
	meta, err := s.metadata.Get(ctx, userID)
	return err == nil && meta.IsPending()
}
