// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-sanctuary/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ErrorClassificator tells retryable driver errors from terminal ones.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
	IsUniqueViolation(err error) bool
}

// MetadataRepository persists the per-user crypto metadata record.
type MetadataRepository interface {
	// Get returns ErrMetadataNotFound when the user has no record.
	Get(ctx context.Context, userID string) (models.CryptoMetadata, error)
	// Save inserts or replaces the record.
	Save(ctx context.Context, meta models.CryptoMetadata) error
}

// EntryRepository persists encrypted journal entries.
type EntryRepository interface {
	Create(ctx context.Context, entry models.EncryptedEntry) error
	Get(ctx context.Context, userID, entryID string) (models.EncryptedEntry, error)
	List(ctx context.Context, userID string) ([]models.EncryptedEntry, error)
	// UpdateCiphertext replaces iv, ciphertext and key version of one entry
	// and touches updated_at. No other column changes.
	UpdateCiphertext(ctx context.Context, userID, entryID string, sealed models.Sealed, keyVersion models.SchemeVersion) error
	Delete(ctx context.Context, userID, entryID string) error
	// CountByVersion returns the number of entries per key version.
	CountByVersion(ctx context.Context, userID string) (map[models.SchemeVersion]int, error)
}

// EnvelopeRepository persists wrapped copies of a content key. An envelope
// is identified by (user, kind, credential id, key version).
type EnvelopeRepository interface {
	// Save inserts or replaces an envelope.
	Save(ctx context.Context, env models.KeyEnvelope) error
	List(ctx context.Context, userID string) ([]models.KeyEnvelope, error)
	// Get returns ErrEnvelopeNotFound when nothing matches.
	Get(ctx context.Context, userID string, kind models.EnvelopeKind, credentialID string, keyVersion models.SchemeVersion) (models.KeyEnvelope, error)
	// Delete removes every key version of one (kind, credential) envelope.
	Delete(ctx context.Context, userID string, kind models.EnvelopeKind, credentialID string) error
	// DeleteVersion removes all envelopes of a retired key version.
	DeleteVersion(ctx context.Context, userID string, keyVersion models.SchemeVersion) error
}

// CredentialRepository persists device credential records. They carry no
// key material.
type CredentialRepository interface {
	Save(ctx context.Context, cred models.CredentialRecord) error
	List(ctx context.Context, userID string) ([]models.CredentialRecord, error)
	Get(ctx context.Context, userID, credentialID string) (models.CredentialRecord, error)
	// UpdateUsage stores the new signature counter and last-used time.
	UpdateUsage(ctx context.Context, userID, credentialID string, counter uint32, usedAt time.Time) error
	Delete(ctx context.Context, userID, credentialID string) error
}

// ChallengeRepository holds at most one pending ceremony challenge per user.
type ChallengeRepository interface {
	// Save replaces the user's pending challenge.
	Save(ctx context.Context, challenge models.Challenge) error
	// Get returns ErrChallengeNotFound when there is none.
	Get(ctx context.Context, userID string) (models.Challenge, error)
	Delete(ctx context.Context, userID string) error
}

// LegacyKeyStore is the device-local home of the scheme 1 random key.
type LegacyKeyStore interface {
	// Get returns ErrLegacyKeyNotFound when no key is stored.
	Get(ctx context.Context, userID string) ([]byte, error)
	Put(ctx context.Context, userID string, key []byte) error
	// Delete is idempotent.
	Delete(ctx context.Context, userID string) error
	Exists(ctx context.Context, userID string) (bool, error)
}
