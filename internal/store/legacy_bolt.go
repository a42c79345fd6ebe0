package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
)

var legacyKeysBucket = []byte("legacy_keys")

// BoltLegacyStore keeps scheme 1 keys in a local bbolt file. It serves
// devices without a usable OS keychain.
type BoltLegacyStore struct {
	db     *bolt.DB
	logger *logger.Logger
}

// OpenBoltLegacyStore opens or creates the bbolt file at path.
func OpenBoltLegacyStore(path string, logger *logger.Logger) (*BoltLegacyStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create legacy store dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		logger.Err(err).Str("func", "OpenBoltLegacyStore").Msg("error opening legacy key file")
		return nil, fmt.Errorf("open legacy key file: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(legacyKeysBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create legacy key bucket: %w", err)
	}

	return &BoltLegacyStore{db: db, logger: logger}, nil
}

// Close releases the file lock.
func (s *BoltLegacyStore) Close() error {
	return s.db.Close()
}

func (s *BoltLegacyStore) Get(ctx context.Context, userID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var key []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(legacyKeysBucket).Get([]byte(userID))
		if v == nil {
			return ErrLegacyKeyNotFound
		}
		// the slice is only valid during the transaction
		key = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

func (s *BoltLegacyStore) Put(ctx context.Context, userID string, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(legacyKeysBucket).Put([]byte(userID), key)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*BoltLegacyStore.Put").Msg("error writing legacy key")
		return fmt.Errorf("write legacy key: %w", err)
	}
	return nil
}

func (s *BoltLegacyStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(legacyKeysBucket).Delete([]byte(userID))
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*BoltLegacyStore.Delete").Msg("error deleting legacy key")
		return fmt.Errorf("delete legacy key: %w", err)
	}
	return nil
}

func (s *BoltLegacyStore) Exists(ctx context.Context, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(legacyKeysBucket).Get([]byte(userID)) != nil
		return nil
	})
	return found, err
}
