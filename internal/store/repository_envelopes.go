package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/models"
)

type envelopeRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewEnvelopeRepository constructs an [EnvelopeRepository] over db.
func NewEnvelopeRepository(db *DB, logger *logger.Logger) EnvelopeRepository {
	logger.Debug().Msg("creating key envelope repository")
	return &envelopeRepository{db: db, logger: logger}
}

func (r *envelopeRepository) Save(ctx context.Context, env models.KeyEnvelope) error {
	log := logger.FromContext(ctx)

	if !env.Kind.IsValid() {
		return fmt.Errorf("unknown envelope kind %q", env.Kind)
	}
	if !env.Wrapped.KeyVersion.IsValid() {
		return fmt.Errorf("%w: %d", models.ErrUnknownSchemeVersion, env.Wrapped.KeyVersion)
	}

	query, args, err := buildSaveEnvelopeQuery(r.db.builder(), env)
	if err != nil {
		log.Err(err).Str("func", "*envelopeRepository.Save").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*envelopeRepository.Save").
			Str("kind", string(env.Kind)).
			Int("key_version", int(env.Wrapped.KeyVersion)).
			Msg("error saving envelope")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}
	return nil
}

func (r *envelopeRepository) List(ctx context.Context, userID string) ([]models.KeyEnvelope, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListEnvelopesQuery(r.db.builder(), userID)
	if err != nil {
		log.Err(err).Str("func", "*envelopeRepository.List").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*envelopeRepository.List").Msg("error querying envelopes")
		return nil, r.db.wrapErr(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var envelopes []models.KeyEnvelope
	for rows.Next() {
		env, err := scanEnvelope(rows)
		if err != nil {
			log.Err(err).Str("func", "*envelopeRepository.List").Msg("error scanning envelope")
			if errors.Is(err, ErrCorruptRecord) {
				return nil, err
			}
			return nil, r.db.wrapErr(ErrScanningRows, err)
		}
		envelopes = append(envelopes, env)
	}
	if err := rows.Err(); err != nil {
		return nil, r.db.wrapErr(ErrScanningRows, err)
	}
	return envelopes, nil
}

func (r *envelopeRepository) Get(ctx context.Context, userID string, kind models.EnvelopeKind, credentialID string, keyVersion models.SchemeVersion) (models.KeyEnvelope, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetEnvelopeQuery(r.db.builder(), userID, kind, credentialID, keyVersion)
	if err != nil {
		log.Err(err).Str("func", "*envelopeRepository.Get").Msg("error building query")
		return models.KeyEnvelope{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	env, err := scanEnvelope(r.db.QueryRowContext(ctx, query, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.KeyEnvelope{}, ErrEnvelopeNotFound
	case errors.Is(err, ErrCorruptRecord):
		log.Error().Err(err).Str("func", "*envelopeRepository.Get").Msg("corrupt envelope record")
		return models.KeyEnvelope{}, err
	case err != nil:
		log.Err(err).Str("func", "*envelopeRepository.Get").Msg("error scanning envelope")
		return models.KeyEnvelope{}, r.db.wrapErr(ErrScanningRow, err)
	}
	return env, nil
}

// Delete is idempotent.
func (r *envelopeRepository) Delete(ctx context.Context, userID string, kind models.EnvelopeKind, credentialID string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteEnvelopeQuery(r.db.builder(), userID, kind, credentialID)
	if err != nil {
		log.Err(err).Str("func", "*envelopeRepository.Delete").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*envelopeRepository.Delete").Str("kind", string(kind)).Msg("error deleting envelope")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}
	return nil
}

// DeleteVersion is idempotent.
func (r *envelopeRepository) DeleteVersion(ctx context.Context, userID string, keyVersion models.SchemeVersion) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteEnvelopeVersionQuery(r.db.builder(), userID, keyVersion)
	if err != nil {
		log.Err(err).Str("func", "*envelopeRepository.DeleteVersion").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*envelopeRepository.DeleteVersion").Int("key_version", int(keyVersion)).Msg("error deleting envelopes")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		log.Debug().Int64("deleted", n).Int("key_version", int(keyVersion)).Msg("retired key envelopes")
	}
	return nil
}

func scanEnvelope(row rowScanner) (models.KeyEnvelope, error) {
	var (
		env     models.KeyEnvelope
		kind    string
		version int
	)
	err := row.Scan(&env.ID, &env.UserID, &kind, &env.CredentialID, &version,
		&env.Wrapped.IV, &env.Wrapped.Ciphertext, &env.CreatedAt)
	if err != nil {
		return models.KeyEnvelope{}, err
	}

	env.Kind = models.EnvelopeKind(kind)
	if !env.Kind.IsValid() {
		return models.KeyEnvelope{}, fmt.Errorf("%w: envelope kind %q", ErrCorruptRecord, kind)
	}
	if env.Wrapped.KeyVersion, err = models.ParseSchemeVersion(version); err != nil {
		return models.KeyEnvelope{}, fmt.Errorf("%w: envelope key version: %w", ErrCorruptRecord, err)
	}
	return env, nil
}
