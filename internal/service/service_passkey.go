// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/go-sanctuary/internal/ceremony"
	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/internal/session"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/models"
)

// PasskeySetupResult is returned by SetupPasskey. RecoveryPhrase is set only
// when a new master key was generated, which also invalidates the previous
// phrase.
type PasskeySetupResult struct {
	Credential     models.CredentialRecord
	RecoveryPhrase string
	Migration      *models.MigrationResult
}

type passkeyService struct {
	*deps
	orchestrator  MigrationOrchestrator
	challenges    ChallengeService
	provider      ceremony.Provider
	authenticator ceremony.Authenticator
	timeout       time.Duration
}

func newPasskeyService(d *deps, orchestrator MigrationOrchestrator, challenges ChallengeService, provider ceremony.Provider, authenticator ceremony.Authenticator, timeout time.Duration) PasskeyService {
	return &passkeyService{
		deps:          d,
		orchestrator:  orchestrator,
		challenges:    challenges,
		provider:      provider,
		authenticator: authenticator,
		timeout:       timeout,
	}
}

func (s *passkeyService) SetupPasskey(ctx context.Context, userID, passphrase, deviceName string, onProgress ProgressFunc) (PasskeySetupResult, error) {
	meta, err := s.loadMetadata(ctx, userID)
	if err != nil {
		return PasskeySetupResult{}, err
	}
	if meta.IsPending() {
		return PasskeySetupResult{}, ErrMigrationPending
	}

	switch meta.KeyVersion {
	case models.SchemePassphraseRecovery:
		return s.setupFirstPasskey(ctx, meta, passphrase, deviceName, onProgress)
	case models.SchemePasskeyRecovery:
		return s.addPasskey(ctx, meta, passphrase, deviceName)
	default:
		return PasskeySetupResult{}, fmt.Errorf("%w: set up a passphrase first", ErrSchemeTransition)
	}
}

// setupFirstPasskey moves a key version 2 user onto a random master key
// wrapped for the new credential, a fresh recovery phrase and the passphrase.
func (s *passkeyService) setupFirstPasskey(ctx context.Context, meta models.CryptoMetadata, passphrase, deviceName string, onProgress ProgressFunc) (PasskeySetupResult, error) {
	log := logger.FromContext(ctx)
	userID := meta.UserID

	passKey, err := s.passphraseKey(meta, passphrase)
	if err != nil {
		return PasskeySetupResult{}, err
	}
	defer passKey.Wipe()

	oldKey, err := s.contentKey(ctx, userID, meta.KeyVersion, passKey)
	if err != nil {
		return PasskeySetupResult{}, err
	}
	defer oldKey.Wipe()

	cred, wrappingKey, err := s.register(ctx, userID, deviceName)
	if err != nil {
		return PasskeySetupResult{}, err
	}
	defer wrappingKey.Wipe()

	newKey, err := s.wrapper.GenerateMasterKey()
	if err != nil {
		return PasskeySetupResult{}, err
	}
	defer newKey.Wipe()

	phrase, recKey, err := s.issueRecoveryPhrase()
	if err != nil {
		return PasskeySetupResult{}, err
	}
	defer recKey.Wipe()

	salt, err := base64.StdEncoding.DecodeString(meta.Salt)
	if err != nil {
		return PasskeySetupResult{}, fmt.Errorf("%w: salt encoding: %w", store.ErrCorruptRecord, err)
	}
	defer memguard.WipeBytes(salt)
	encSalt, err := s.recovery.EncryptSalt(salt, recKey)
	if err != nil {
		return PasskeySetupResult{}, err
	}

	target := models.SchemePasskeyRecovery
	passkeyEnv, err := s.wrapper.Wrap(models.EnvelopePasskey, newKey, wrappingKey, target)
	if err != nil {
		return PasskeySetupResult{}, err
	}
	recoveryEnv, err := s.wrapper.WrapForRecovery(newKey, recKey, target)
	if err != nil {
		return PasskeySetupResult{}, err
	}
	passphraseEnv, err := s.wrapper.Wrap(models.EnvelopePassphrase, newKey, passKey, target)
	if err != nil {
		return PasskeySetupResult{}, err
	}

	if err := s.credentials.Save(ctx, cred); err != nil {
		log.Err(err).Str("func", "*passkeyService.setupFirstPasskey").Str("user_id", userID).Msg("saving credential failed")
		return PasskeySetupResult{}, fmt.Errorf("save credential: %w", err)
	}

	staged := meta
	staged.PendingKeyVersion = versionPtr(target)
	staged.StagedEncryptedSalt = encSalt
	staged.UpdatedAt = s.now().UTC()

	res, err := s.orchestrator.Promote(ctx, Promotion{
		UserID: userID,
		Staged: staged,
		Target: target,
		Envelopes: []models.KeyEnvelope{
			s.newEnvelope(userID, models.EnvelopePasskey, cred.CredentialID, passkeyEnv),
			s.newEnvelope(userID, models.EnvelopeRecovery, "", recoveryEnv),
			s.newEnvelope(userID, models.EnvelopePassphrase, "", passphraseEnv),
		},
		OldKey: oldKey,
		NewKey: newKey,
	}, onProgress)
	if err != nil {
		log.Err(err).Str("func", "*passkeyService.setupFirstPasskey").Str("user_id", userID).Msg("passkey setup did not commit")
		if s.isStaged(ctx, userID) {
			return PasskeySetupResult{Credential: cred, RecoveryPhrase: phrase, Migration: &res}, err
		}
		if derr := s.credentials.Delete(ctx, userID, cred.CredentialID); derr != nil && !errors.Is(derr, store.ErrCredentialNotFound) {
			log.Warn().Err(derr).Str("credential_id", cred.CredentialID).Msg("unstaged credential left behind")
		}
		return PasskeySetupResult{}, err
	}

	if err := s.session.Unlock(userID, newKey, target); err != nil {
		return PasskeySetupResult{Credential: cred, RecoveryPhrase: phrase, Migration: &res}, err
	}

	log.Info().Str("user_id", userID).Str("credential_id", cred.CredentialID).Int("entries", res.Total).Msg("first passkey set up")
	return PasskeySetupResult{Credential: cred, RecoveryPhrase: phrase, Migration: &res}, nil
}

// addPasskey wraps the existing master key for one more credential. A user
// reverted to scheme 2 still holding key version 3 goes back to scheme 3.
func (s *passkeyService) addPasskey(ctx context.Context, meta models.CryptoMetadata, passphrase, deviceName string) (PasskeySetupResult, error) {
	log := logger.FromContext(ctx)
	userID := meta.UserID

	key, err := s.masterKey(ctx, meta, passphrase)
	if err != nil {
		return PasskeySetupResult{}, err
	}
	defer key.Wipe()

	cred, wrappingKey, err := s.register(ctx, userID, deviceName)
	if err != nil {
		return PasskeySetupResult{}, err
	}
	defer wrappingKey.Wipe()

	wrapped, err := s.wrapper.Wrap(models.EnvelopePasskey, key, wrappingKey, meta.KeyVersion)
	if err != nil {
		return PasskeySetupResult{}, err
	}
	if err := s.saveEnvelope(ctx, s.newEnvelope(userID, models.EnvelopePasskey, cred.CredentialID, wrapped)); err != nil {
		return PasskeySetupResult{}, err
	}
	if err := s.credentials.Save(ctx, cred); err != nil {
		log.Err(err).Str("func", "*passkeyService.addPasskey").Str("user_id", userID).Msg("saving credential failed")
		return PasskeySetupResult{}, fmt.Errorf("save credential: %w", err)
	}

	if meta.Scheme != models.SchemePasskeyRecovery {
		if !models.CanTransition(meta.Scheme, models.SchemePasskeyRecovery) {
			return PasskeySetupResult{}, fmt.Errorf("%w: %s to %s", ErrSchemeTransition, meta.Scheme, models.SchemePasskeyRecovery)
		}
		meta.Scheme = models.SchemePasskeyRecovery
		meta.UpdatedAt = s.now().UTC()
		if err := s.metadata.Save(ctx, meta); err != nil {
			return PasskeySetupResult{}, fmt.Errorf("save metadata: %w", err)
		}
		if err := s.confirmMetadata(ctx, meta); err != nil {
			return PasskeySetupResult{}, err
		}
	}

	log.Info().Str("user_id", userID).Str("credential_id", cred.CredentialID).Msg("passkey added")
	return PasskeySetupResult{Credential: cred}, nil
}

// masterKey takes the key version 3 key from the session when it is held
// there, otherwise from the passphrase envelope.
func (s *passkeyService) masterKey(ctx context.Context, meta models.CryptoMetadata, passphrase string) (crypto.Key, error) {
	lease, err := s.session.Acquire(meta.UserID)
	if err == nil {
		defer lease.Release()
		if lease.Version() == meta.KeyVersion {
			return cloneKey(lease.Key())
		}
	} else if !errors.Is(err, session.ErrLocked) && !errors.Is(err, session.ErrWrongUser) {
		return crypto.Key{}, err
	}

	passKey, err := s.passphraseKey(meta, passphrase)
	if err != nil {
		return crypto.Key{}, err
	}
	defer passKey.Wipe()
	return s.contentKey(ctx, meta.UserID, meta.KeyVersion, passKey)
}

// register runs a registration ceremony and derives the credential's
// wrapping key from its PRF output.
func (s *passkeyService) register(ctx context.Context, userID, deviceName string) (models.CredentialRecord, crypto.Key, error) {
	log := logger.FromContext(ctx)

	existing, err := s.credentials.List(ctx, userID)
	if err != nil {
		return models.CredentialRecord{}, crypto.Key{}, fmt.Errorf("list credentials: %w", err)
	}

	challenge, err := s.challenges.Issue(ctx, userID, models.ChallengeRegistration)
	if err != nil {
		return models.CredentialRecord{}, crypto.Key{}, err
	}
	opts, err := s.provider.GenerateRegistrationOptions(ctx, ceremony.User{ID: userID, Name: userID}, challenge.Value, existing)
	if err != nil {
		return models.CredentialRecord{}, crypto.Key{}, fmt.Errorf("registration options: %w", err)
	}

	resp, err := ceremony.Run(ctx, s.timeout, func(ctx context.Context) (ceremony.RegistrationResponse, error) {
		return s.authenticator.Register(ctx, opts)
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Bool("retryable", ceremony.IsRetryable(err)).Msg("registration ceremony ended")
		return models.CredentialRecord{}, crypto.Key{}, err
	}

	consumed, err := s.challenges.Consume(ctx, userID, models.ChallengeRegistration)
	if err != nil {
		return models.CredentialRecord{}, crypto.Key{}, err
	}
	verification, err := s.provider.VerifyRegistrationResponse(ctx, resp, consumed.Value)
	if err != nil {
		return models.CredentialRecord{}, crypto.Key{}, err
	}
	if !verification.Verified {
		return models.CredentialRecord{}, crypto.Key{}, ceremony.ErrNotVerified
	}

	wrappingKey, err := s.wrappingKey(resp.PRFOutput)
	if err != nil {
		return models.CredentialRecord{}, crypto.Key{}, err
	}

	cred := verification.Credential
	cred.UserID = userID
	if deviceName != "" {
		cred.DeviceName = deviceName
	}
	return cred, wrappingKey, nil
}

func (s *passkeyService) wrappingKey(prfOutput any) (crypto.Key, error) {
	if prfOutput == nil {
		return crypto.Key{}, ceremony.ErrPRFUnsupported
	}
	raw, err := ceremony.NormalizePRFOutput(prfOutput)
	if err != nil {
		return crypto.Key{}, err
	}
	defer memguard.WipeBytes(raw)
	return s.wrapper.DeriveWrappingKey(raw)
}

func (s *passkeyService) UnlockWithPasskey(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)

	meta, err := s.loadMetadata(ctx, userID)
	if err != nil {
		return err
	}
	// a staged first passkey opens the pending key version
	version := unlockVersion(meta)
	if meta.Scheme != models.SchemePasskeyRecovery && version != models.SchemePasskeyRecovery {
		return fmt.Errorf("%w: scheme is %s", ErrNoPasskeys, meta.Scheme)
	}

	creds, err := s.credentials.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list credentials: %w", err)
	}
	if len(creds) == 0 {
		return ErrNoPasskeys
	}

	challenge, err := s.challenges.Issue(ctx, userID, models.ChallengeAuthentication)
	if err != nil {
		return err
	}
	opts, err := s.provider.GenerateAuthenticationOptions(ctx, challenge.Value, creds)
	if err != nil {
		return fmt.Errorf("authentication options: %w", err)
	}

	resp, err := ceremony.Run(ctx, s.timeout, func(ctx context.Context) (ceremony.AuthenticationResponse, error) {
		return s.authenticator.Authenticate(ctx, opts)
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Bool("retryable", ceremony.IsRetryable(err)).Msg("authentication ceremony ended")
		return err
	}

	consumed, err := s.challenges.Consume(ctx, userID, models.ChallengeAuthentication)
	if err != nil {
		return err
	}

	var cred *models.CredentialRecord
	for i := range creds {
		if creds[i].CredentialID == resp.CredentialID {
			cred = &creds[i]
			break
		}
	}
	if cred == nil {
		return ceremony.ErrUnknownCredential
	}

	verification, err := s.provider.VerifyAuthenticationResponse(ctx, resp, consumed.Value, *cred)
	if err != nil {
		return err
	}
	if !verification.Verified {
		return ceremony.ErrNotVerified
	}
	if err := s.credentials.UpdateUsage(ctx, userID, cred.CredentialID, verification.NewCounter, s.now().UTC()); err != nil {
		return fmt.Errorf("update credential usage: %w", err)
	}

	wrappingKey, err := s.wrappingKey(resp.PRFOutput)
	if err != nil {
		return err
	}
	defer wrappingKey.Wipe()

	env, err := s.envelopes.Get(ctx, userID, models.EnvelopePasskey, cred.CredentialID, version)
	if err != nil {
		return fmt.Errorf("load passkey envelope: %w", err)
	}
	key, err := s.wrapper.Unwrap(models.EnvelopePasskey, env.Wrapped, wrappingKey)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("credential_id", cred.CredentialID).Msg("passkey envelope did not open")
		return err
	}
	defer key.Wipe()

	return s.session.Unlock(userID, key, version)
}

func (s *passkeyService) ListPasskeys(ctx context.Context, userID string) ([]models.CredentialRecord, error) {
	creds, err := s.credentials.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return creds, nil
}

func (s *passkeyService) DeletePasskey(ctx context.Context, userID, credentialID string) error {
	log := logger.FromContext(ctx)

	meta, err := s.loadMetadata(ctx, userID)
	if err != nil {
		return err
	}
	if meta.IsPending() {
		return ErrMigrationPending
	}

	if _, err := s.credentials.Get(ctx, userID, credentialID); err != nil {
		return err
	}
	creds, err := s.credentials.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list credentials: %w", err)
	}

	if len(creds) == 1 && meta.Scheme == models.SchemePasskeyRecovery {
		// the passphrase and recovery envelopes must survive the passkey
		for _, kind := range []models.EnvelopeKind{models.EnvelopePassphrase, models.EnvelopeRecovery} {
			if _, err := s.envelopes.Get(ctx, userID, kind, "", meta.KeyVersion); err != nil {
				if errors.Is(err, store.ErrEnvelopeNotFound) {
					return fmt.Errorf("%w: no %s envelope", ErrLastUnlockPath, kind)
				}
				return fmt.Errorf("load %s envelope: %w", kind, err)
			}
		}

		meta.Scheme = models.SchemePassphraseRecovery
		meta.UpdatedAt = s.now().UTC()
		if err := s.metadata.Save(ctx, meta); err != nil {
			return fmt.Errorf("save metadata: %w", err)
		}
		if err := s.confirmMetadata(ctx, meta); err != nil {
			return err
		}
		log.Info().Str("user_id", userID).Int("key_version", int(meta.KeyVersion)).Msg("last passkey removed, reverted to passphrase scheme")
	}

	if err := s.envelopes.Delete(ctx, userID, models.EnvelopePasskey, credentialID); err != nil {
		return fmt.Errorf("delete passkey envelope: %w", err)
	}
	if err := s.credentials.Delete(ctx, userID, credentialID); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	log.Info().Str("user_id", userID).Str("credential_id", credentialID).Msg("passkey deleted")
	return nil
}
