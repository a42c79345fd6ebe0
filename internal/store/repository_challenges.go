package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/models"
)

type challengeRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewChallengeRepository constructs a [ChallengeRepository] over db.
func NewChallengeRepository(db *DB, logger *logger.Logger) ChallengeRepository {
	logger.Debug().Msg("creating challenge repository")
	return &challengeRepository{db: db, logger: logger}
}

func (r *challengeRepository) Save(ctx context.Context, c models.Challenge) error {
	log := logger.FromContext(ctx)

	query, args, err := buildSaveChallengeQuery(r.db.builder(), c)
	if err != nil {
		log.Err(err).Str("func", "*challengeRepository.Save").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*challengeRepository.Save").Str("type", string(c.Type)).Msg("error saving challenge")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}
	return nil
}

func (r *challengeRepository) Get(ctx context.Context, userID string) (models.Challenge, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetChallengeQuery(r.db.builder(), userID)
	if err != nil {
		log.Err(err).Str("func", "*challengeRepository.Get").Msg("error building query")
		return models.Challenge{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		c   models.Challenge
		typ string
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&c.UserID, &c.Value, &typ, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Challenge{}, ErrChallengeNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*challengeRepository.Get").Msg("error scanning challenge")
		return models.Challenge{}, r.db.wrapErr(ErrScanningRow, err)
	}
	c.Type = models.ChallengeType(typ)
	return c, nil
}

// Delete is idempotent.
func (r *challengeRepository) Delete(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteChallengeQuery(r.db.builder(), userID)
	if err != nil {
		log.Err(err).Str("func", "*challengeRepository.Delete").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*challengeRepository.Delete").Msg("error deleting challenge")
		return r.db.wrapErr(ErrExecutingStatement, err)
	}
	return nil
}
