package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MKhiriev/go-sanctuary/internal/config"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
)

// Storages groups every repository the service layer needs into a single
// value.
type Storages struct {
	Metadata    MetadataRepository
	Entries     EntryRepository
	Envelopes   EnvelopeRepository
	Credentials CredentialRepository
	Challenges  ChallengeRepository
	LegacyKeys  LegacyKeyStore

	closers []io.Closer
}

// NewStorages opens the database selected by cfg.DSN, runs pending schema
// migrations and opens the legacy key store named by cfg.LegacyBackend.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	s := NewSQLStorages(db, logger)

	switch cfg.LegacyBackend {
	case config.LegacyBackendBolt:
		bolt, err := OpenBoltLegacyStore(cfg.LegacyPath, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		s.LegacyKeys = bolt
		s.closers = append(s.closers, bolt)
	case config.LegacyBackendKeyring, "":
		s.LegacyKeys = NewKeyringLegacyStore(logger)
	default:
		db.Close()
		return nil, fmt.Errorf("unknown legacy key backend %q", cfg.LegacyBackend)
	}

	logger.Info().Str("dialect", string(db.Dialect())).Str("legacy_backend", cfg.LegacyBackend).Msg("storages ready")
	return s, nil
}

// NewSQLStorages wires the SQL repositories over an open db. LegacyKeys is
// left for the caller to set.
func NewSQLStorages(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		Metadata:    NewMetadataRepository(db, logger),
		Entries:     NewEntryRepository(db, logger),
		Envelopes:   NewEnvelopeRepository(db, logger),
		Credentials: NewCredentialRepository(db, logger),
		Challenges:  NewChallengeRepository(db, logger),
		closers:     []io.Closer{db},
	}
}

// Close releases the database and the legacy key file, if any.
func (s *Storages) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
