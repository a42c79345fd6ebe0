// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/models"
)

// metadataRepository is the SQL implementation of [MetadataRepository].
type metadataRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewMetadataRepository constructs a [MetadataRepository] over db.
func NewMetadataRepository(db *DB, logger *logger.Logger) MetadataRepository {
	logger.Debug().Msg("creating crypto metadata repository")
	return &metadataRepository{db: db, logger: logger}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Get returns the user's crypto metadata or ErrMetadataNotFound. Stored
// scheme and key versions outside the closed set yield ErrCorruptRecord.
func (r *metadataRepository) Get(ctx context.Context, userID string) (models.CryptoMetadata, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetMetadataQuery(r.db.builder(), userID)
	if err != nil {
		log.Err(err).Str("func", "*metadataRepository.Get").Msg("error building query")
		return models.CryptoMetadata{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	meta, err := scanMetadata(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CryptoMetadata{}, ErrMetadataNotFound
	}
	if errors.Is(err, ErrCorruptRecord) {
		log.Error().Err(err).Str("func", "*metadataRepository.Get").Str("user_id", userID).Msg("corrupt metadata record")
		return models.CryptoMetadata{}, err
	}
	if err != nil {
		log.Err(err).Str("func", "*metadataRepository.Get").Msg("error scanning metadata")
		return models.CryptoMetadata{}, r.db.wrapErr(ErrScanningRow, err)
	}

	return meta, nil
}

// Save inserts or replaces the user's metadata record in one statement.
func (r *metadataRepository) Save(ctx context.Context, meta models.CryptoMetadata) error {
	log := logger.FromContext(ctx)

	if !meta.Scheme.IsValid() || !meta.KeyVersion.IsValid() {
		return fmt.Errorf("%w: scheme %d, key version %d", models.ErrUnknownSchemeVersion, meta.Scheme, meta.KeyVersion)
	}

	query, args, err := buildSaveMetadataQuery(r.db.builder(), meta)
	if err != nil {
		log.Err(err).Str("func", "*metadataRepository.Save").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*metadataRepository.Save").Str("user_id", meta.UserID).Msg("error saving metadata")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}

	return nil
}

func scanMetadata(row rowScanner) (models.CryptoMetadata, error) {
	var (
		m                  models.CryptoMetadata
		scheme, keyVersion int
		pending            sql.NullInt64
		migratedAt         sql.NullTime
	)

	err := row.Scan(
		&m.UserID, &scheme, &keyVersion, &pending,
		&m.Salt, &m.Iterations, &m.VerifierHash, &m.EncryptedSalt, &m.StagedEncryptedSalt,
		&migratedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return models.CryptoMetadata{}, err
	}

	if m.Scheme, err = models.ParseSchemeVersion(scheme); err != nil {
		return models.CryptoMetadata{}, fmt.Errorf("%w: scheme: %w", ErrCorruptRecord, err)
	}
	if m.KeyVersion, err = models.ParseSchemeVersion(keyVersion); err != nil {
		return models.CryptoMetadata{}, fmt.Errorf("%w: key version: %w", ErrCorruptRecord, err)
	}
	if pending.Valid {
		p, err := models.ParseSchemeVersion(int(pending.Int64))
		if err != nil {
			return models.CryptoMetadata{}, fmt.Errorf("%w: pending key version: %w", ErrCorruptRecord, err)
		}
		m.PendingKeyVersion = &p
	}
	if migratedAt.Valid {
		t := migratedAt.Time
		m.MigratedAt = &t
	}

	return m, nil
}
