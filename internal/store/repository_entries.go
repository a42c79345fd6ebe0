package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/models"
)

// entryRepository is the SQL implementation of [EntryRepository].
type entryRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewEntryRepository constructs an [EntryRepository] over db.
func NewEntryRepository(db *DB, logger *logger.Logger) EntryRepository {
	logger.Debug().Msg("creating entry repository")
	return &entryRepository{db: db, logger: logger}
}

// Create inserts a new entry. A duplicate id returns ErrEntryExists.
func (r *entryRepository) Create(ctx context.Context, entry models.EncryptedEntry) error {
	log := logger.FromContext(ctx)

	query, args, err := buildCreateEntryQuery(r.db.builder(), entry)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.Create").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*entryRepository.Create").Str("entry_id", entry.ID).Msg("error inserting entry")
		if r.db.isUniqueViolation(err) {
			return ErrEntryExists
		}
		return r.db.wrapErr(ErrExecutingStatement, err)
	}

	return nil
}

func (r *entryRepository) Get(ctx context.Context, userID, entryID string) (models.EncryptedEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetEntryQuery(r.db.builder(), userID, entryID)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.Get").Msg("error building query")
		return models.EncryptedEntry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.EncryptedEntry{}, ErrEntryNotFound
	case errors.Is(err, ErrCorruptRecord):
		log.Error().Err(err).Str("func", "*entryRepository.Get").Str("entry_id", entryID).Msg("corrupt entry record")
		return models.EncryptedEntry{}, err
	case err != nil:
		log.Err(err).Str("func", "*entryRepository.Get").Msg("error scanning entry")
		return models.EncryptedEntry{}, r.db.wrapErr(ErrScanningRow, err)
	}

	return entry, nil
}

// List returns the user's entries ordered by creation time.
func (r *entryRepository) List(ctx context.Context, userID string) ([]models.EncryptedEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListEntriesQuery(r.db.builder(), userID)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.List").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.List").Msg("error querying entries")
		return nil, r.db.wrapErr(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []models.EncryptedEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			log.Err(err).Str("func", "*entryRepository.List").Msg("error scanning entry")
			if errors.Is(err, ErrCorruptRecord) {
				return nil, err
			}
			return nil, r.db.wrapErr(ErrScanningRows, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*entryRepository.List").Msg("error iterating entries")
		return nil, r.db.wrapErr(ErrScanningRows, err)
	}

	return entries, nil
}

// UpdateCiphertext rewrites one entry under a new key version. It returns
// ErrEntryNotFound when no row matched.
func (r *entryRepository) UpdateCiphertext(ctx context.Context, userID, entryID string, sealed models.Sealed, keyVersion models.SchemeVersion) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateEntryCiphertextQuery(r.db.builder(), userID, entryID, sealed, keyVersion)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.UpdateCiphertext").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.UpdateCiphertext").Str("entry_id", entryID).Msg("error updating entry")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}

	return affectedOrNotFound(res, ErrEntryNotFound)
}

func (r *entryRepository) Delete(ctx context.Context, userID, entryID string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteEntryQuery(r.db.builder(), userID, entryID)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.Delete").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.Delete").Str("entry_id", entryID).Msg("error deleting entry")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}

	return affectedOrNotFound(res, ErrEntryNotFound)
}

func (r *entryRepository) CountByVersion(ctx context.Context, userID string) (map[models.SchemeVersion]int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountEntriesByVersionQuery(r.db.builder(), userID)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.CountByVersion").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.CountByVersion").Msg("error counting entries")
		return nil, r.db.wrapErr(ErrExecutingQuery, err)
	}
	defer rows.Close()

	counts := make(map[models.SchemeVersion]int)
	for rows.Next() {
		var raw, n int
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, r.db.wrapErr(ErrScanningRows, err)
		}
		v, err := models.ParseSchemeVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: entry key version: %w", ErrCorruptRecord, err)
		}
		counts[v] = n
	}
	if err := rows.Err(); err != nil {
		return nil, r.db.wrapErr(ErrScanningRows, err)
	}

	return counts, nil
}

func scanEntry(row rowScanner) (models.EncryptedEntry, error) {
	var (
		e       models.EncryptedEntry
		version int
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.IV, &e.Ciphertext, &version, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.EncryptedEntry{}, err
	}

	v, err := models.ParseSchemeVersion(version)
	if err != nil {
		return models.EncryptedEntry{}, fmt.Errorf("%w: entry %s: %w", ErrCorruptRecord, e.ID, err)
	}
	e.KeyVersion = v
	return e, nil
}

// affectedOrNotFound maps a statement that touched no row to notFound.
func affectedOrNotFound(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
