package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/models"
)

type credentialRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewCredentialRepository constructs a [CredentialRepository] over db.
func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialRepository {
	logger.Debug().Msg("creating credential repository")
	return &credentialRepository{db: db, logger: logger}
}

func (r *credentialRepository) Save(ctx context.Context, cred models.CredentialRecord) error {
	log := logger.FromContext(ctx)

	query, args, err := buildSaveCredentialQuery(r.db.builder(), cred)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.Save").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*credentialRepository.Save").Str("credential_id", cred.CredentialID).Msg("error saving credential")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}
	return nil
}

func (r *credentialRepository) List(ctx context.Context, userID string) ([]models.CredentialRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListCredentialsQuery(r.db.builder(), userID)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.List").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.List").Msg("error querying credentials")
		return nil, r.db.wrapErr(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var creds []models.CredentialRecord
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			log.Err(err).Str("func", "*credentialRepository.List").Msg("error scanning credential")
			return nil, r.db.wrapErr(ErrScanningRows, err)
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.db.wrapErr(ErrScanningRows, err)
	}
	return creds, nil
}

func (r *credentialRepository) Get(ctx context.Context, userID, credentialID string) (models.CredentialRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetCredentialQuery(r.db.builder(), userID, credentialID)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.Get").Msg("error building query")
		return models.CredentialRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	c, err := scanCredential(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CredentialRecord{}, ErrCredentialNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.Get").Msg("error scanning credential")
		return models.CredentialRecord{}, r.db.wrapErr(ErrScanningRow, err)
	}
	return c, nil
}

func (r *credentialRepository) UpdateUsage(ctx context.Context, userID, credentialID string, counter uint32, usedAt time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateCredentialUsageQuery(r.db.builder(), userID, credentialID, counter, usedAt)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.UpdateUsage").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.UpdateUsage").Str("credential_id", credentialID).Msg("error updating credential usage")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}
	return affectedOrNotFound(res, ErrCredentialNotFound)
}

func (r *credentialRepository) Delete(ctx context.Context, userID, credentialID string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteCredentialQuery(r.db.builder(), userID, credentialID)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.Delete").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*credentialRepository.Delete").Str("credential_id", credentialID).Msg("error deleting credential")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}
	return affectedOrNotFound(res, ErrCredentialNotFound)
}

func scanCredential(row rowScanner) (models.CredentialRecord, error) {
	var (
		c          models.CredentialRecord
		counter    int64
		transports string
		lastUsed   sql.NullTime
	)
	err := row.Scan(&c.UserID, &c.CredentialID, &c.PublicKey, &counter, &transports,
		&c.DeviceName, &c.CreatedAt, &lastUsed)
	if err != nil {
		return models.CredentialRecord{}, err
	}

	c.Counter = uint32(counter)
	if transports != "" {
		c.Transports = strings.Split(transports, ",")
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		c.LastUsedAt = &t
	}
	return c, nil
}
