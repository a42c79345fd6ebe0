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

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/internal/session"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/models"
)

// deps is what every key lifecycle service shares.
type deps struct {
	metadata    store.MetadataRepository
	entries     store.EntryRepository
	envelopes   store.EnvelopeRepository
	credentials store.CredentialRepository
	challenges  store.ChallengeRepository
	legacy      store.LegacyKeyStore

	cipher   crypto.ContentCipher
	kdf      crypto.PassphraseKDF
	newKDF   func(iterations int) (crypto.PassphraseKDF, error)
	recovery crypto.RecoveryCodec
	wrapper  crypto.KeyWrapper

	session *session.Store
	now     func() time.Time
	newID   func() string
}

// loadMetadata returns the user's metadata, or the scheme 1 default when no
// record exists.
func (d *deps) loadMetadata(ctx context.Context, userID string) (models.CryptoMetadata, error) {
	meta, err := d.metadata.Get(ctx, userID)
	if errors.Is(err, store.ErrMetadataNotFound) {
		return models.DefaultMetadata(userID), nil
	}
	if err != nil {
		return models.CryptoMetadata{}, fmt.Errorf("load crypto metadata: %w", err)
	}
	return meta, nil
}

// kdfFor returns a KDF running the round count stored for the user. New
// users get the configured one.
func (d *deps) kdfFor(meta models.CryptoMetadata) (crypto.PassphraseKDF, error) {
	if meta.Iterations == 0 || meta.Iterations == d.kdf.Iterations() {
		return d.kdf, nil
	}
	kdf, err := d.newKDF(meta.Iterations)
	if err != nil {
		return nil, fmt.Errorf("passphrase kdf for %d iterations: %w", meta.Iterations, err)
	}
	return kdf, nil
}

// passphraseKey checks passphrase against the stored verifier and derives
// the passphrase key over the stored salt.
func (d *deps) passphraseKey(meta models.CryptoMetadata, passphrase string) (crypto.Key, error) {
	if !meta.HasPassphrase() {
		return crypto.Key{}, fmt.Errorf("%w: no passphrase configured", ErrSchemeTransition)
	}

	kdf, err := d.kdfFor(meta)
	if err != nil {
		return crypto.Key{}, err
	}
	if !kdf.VerifyPassphrase(passphrase, meta.VerifierHash) {
		return crypto.Key{}, ErrInvalidPassphrase
	}

	salt, err := base64.StdEncoding.DecodeString(meta.Salt)
	if err != nil {
		return crypto.Key{}, fmt.Errorf("%w: salt encoding: %w", store.ErrCorruptRecord, err)
	}
	return kdf.DeriveKey(passphrase, salt)
}

// unlockVersion is the key version an unlock opens. While a migration is
// pending it is the pending one: migrated entries and new writes live there.
func unlockVersion(meta models.CryptoMetadata) models.SchemeVersion {
	if meta.IsPending() {
		return *meta.PendingKeyVersion
	}
	return meta.KeyVersion
}

// contentKey resolves the content key of version for a user holding passKey.
//
//	version 1                   the local legacy key
//	passphrase envelope exists  unwrap it with passKey
//	version 2 without envelope  passKey itself
func (d *deps) contentKey(ctx context.Context, userID string, version models.SchemeVersion, passKey crypto.Key) (crypto.Key, error) {
	if version == models.SchemeRandomKey {
		return d.legacyKey(ctx, userID, false)
	}

	env, err := d.envelopes.Get(ctx, userID, models.EnvelopePassphrase, "", version)
	switch {
	case err == nil:
		return d.wrapper.Unwrap(models.EnvelopePassphrase, env.Wrapped, passKey)
	case errors.Is(err, store.ErrEnvelopeNotFound) && version == models.SchemePassphraseRecovery:
		return cloneKey(passKey)
	case errors.Is(err, store.ErrEnvelopeNotFound):
		return crypto.Key{}, fmt.Errorf("no passphrase envelope for key version %d: %w", version, err)
	default:
		return crypto.Key{}, fmt.Errorf("load passphrase envelope: %w", err)
	}
}

// legacyKey loads the scheme 1 key. With create set, a missing key is
// generated and stored.
func (d *deps) legacyKey(ctx context.Context, userID string, create bool) (crypto.Key, error) {
	raw, err := d.legacy.Get(ctx, userID)
	if errors.Is(err, store.ErrLegacyKeyNotFound) && create {
		key, err := crypto.GenerateKey()
		if err != nil {
			return crypto.Key{}, err
		}
		raw = key.Export()
		defer memguard.WipeBytes(raw)
		if err := d.legacy.Put(ctx, userID, raw); err != nil {
			key.Wipe()
			return crypto.Key{}, fmt.Errorf("store legacy key: %w", err)
		}
		logger.FromContext(ctx).Info().Str("user_id", userID).Msg("generated legacy random key")
		return key, nil
	}
	if err != nil {
		return crypto.Key{}, fmt.Errorf("load legacy key: %w", err)
	}
	defer memguard.WipeBytes(raw)
	return crypto.ImportKey(raw)
}

// confirmMetadata reads the record back and checks the fields a scheme
// transition depends on.
func (d *deps) confirmMetadata(ctx context.Context, want models.CryptoMetadata) error {
	got, err := d.metadata.Get(ctx, want.UserID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMetadataNotConfirmed, err)
	}

	switch {
	case got.Scheme != want.Scheme,
		got.KeyVersion != want.KeyVersion,
		!samePending(got.PendingKeyVersion, want.PendingKeyVersion),
		got.Salt != want.Salt,
		got.VerifierHash != want.VerifierHash,
		got.EncryptedSalt != want.EncryptedSalt,
		got.StagedEncryptedSalt != want.StagedEncryptedSalt:
		return fmt.Errorf("%w: stored scheme %d key version %d", ErrMetadataNotConfirmed, got.Scheme, got.KeyVersion)
	}
	return nil
}

// saveEnvelope writes env and reads it back.
func (d *deps) saveEnvelope(ctx context.Context, env models.KeyEnvelope) error {
	if err := d.envelopes.Save(ctx, env); err != nil {
		return fmt.Errorf("save %s envelope: %w", env.Kind, err)
	}
	got, err := d.envelopes.Get(ctx, env.UserID, env.Kind, env.CredentialID, env.Wrapped.KeyVersion)
	if err != nil {
		return fmt.Errorf("confirm %s envelope: %w", env.Kind, err)
	}
	if got.Wrapped.Sealed != env.Wrapped.Sealed {
		return fmt.Errorf("confirm %s envelope: stored ciphertext differs", env.Kind)
	}
	return nil
}

func (d *deps) newEnvelope(userID string, kind models.EnvelopeKind, credentialID string, wrapped models.WrappedKey) models.KeyEnvelope {
	return models.KeyEnvelope{
		ID:           d.newID(),
		UserID:       userID,
		Kind:         kind,
		CredentialID: credentialID,
		Wrapped:      wrapped,
		CreatedAt:    d.now().UTC(),
	}
}

func samePending(a, b *models.SchemeVersion) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneKey(k crypto.Key) (crypto.Key, error) {
	raw := k.Export()
	defer memguard.WipeBytes(raw)
	return crypto.ImportKey(raw)
}

func versionPtr(v models.SchemeVersion) *models.SchemeVersion {
	return &v
}
