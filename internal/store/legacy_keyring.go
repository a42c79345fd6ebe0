package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
)

// legacyKeyringService is the OS keychain service under which scheme 1 keys
// are stored, one item per user.
const legacyKeyringService = "go-sanctuary-legacy"

// keyringLegacyStore keeps scheme 1 keys in the OS keychain.
type keyringLegacyStore struct {
	logger *logger.Logger
}

// NewKeyringLegacyStore returns a [LegacyKeyStore] backed by the OS keychain.
func NewKeyringLegacyStore(logger *logger.Logger) LegacyKeyStore {
	return &keyringLegacyStore{logger: logger}
}

func (s *keyringLegacyStore) Get(ctx context.Context, userID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	encoded, err := keyring.Get(legacyKeyringService, userID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrLegacyKeyNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*keyringLegacyStore.Get").Msg("error reading keychain")
		return nil, fmt.Errorf("read legacy key from keychain: %w", err)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: legacy key encoding: %w", ErrCorruptRecord, err)
	}
	return key, nil
}

func (s *keyringLegacyStore) Put(ctx context.Context, userID string, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := keyring.Set(legacyKeyringService, userID, base64.StdEncoding.EncodeToString(key)); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*keyringLegacyStore.Put").Msg("error writing keychain")
		return fmt.Errorf("write legacy key to keychain: %w", err)
	}
	return nil
}

func (s *keyringLegacyStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := keyring.Delete(legacyKeyringService, userID)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logger.FromContext(ctx).Err(err).Str("func", "*keyringLegacyStore.Delete").Msg("error deleting keychain item")
		return fmt.Errorf("delete legacy key from keychain: %w", err)
	}
	return nil
}

func (s *keyringLegacyStore) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := s.Get(ctx, userID)
	if errors.Is(err, ErrLegacyKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
