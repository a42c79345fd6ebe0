// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/internal/session"
	"github.com/MKhiriev/go-sanctuary/models"
)

type entryService struct {
	*deps
}

func newEntryService(d *deps) EntryService {
	return &entryService{deps: d}
}

func (s *entryService) acquire(userID string) (*session.Lease, error) {
	lease, err := s.session.Acquire(userID)
	if errors.Is(err, session.ErrLocked) || errors.Is(err, session.ErrWrongUser) {
		return nil, fmt.Errorf("%w: %w", ErrNotUnlocked, err)
	}
	return lease, err
}

// Write encrypts plaintext under the session key and stores it tagged with
// the session's key version.
func (s *entryService) Write(ctx context.Context, userID string, plaintext []byte) (models.EncryptedEntry, error) {
	lease, err := s.acquire(userID)
	if err != nil {
		return models.EncryptedEntry{}, err
	}
	defer lease.Release()

	sealed, err := s.cipher.Encrypt(plaintext, lease.Key())
	if err != nil {
		return models.EncryptedEntry{}, err
	}

	now := s.now().UTC()
	entry := models.EncryptedEntry{
		ID:         s.newID(),
		UserID:     userID,
		Sealed:     sealed,
		KeyVersion: lease.Version(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*entryService.Write").Str("user_id", userID).Msg("storing entry failed")
		return models.EncryptedEntry{}, fmt.Errorf("store entry: %w", err)
	}
	return entry, nil
}

func (s *entryService) Read(ctx context.Context, userID, entryID string) ([]byte, error) {
	lease, err := s.acquire(userID)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	entry, err := s.entries.Get(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.KeyVersion != lease.Version() {
		return nil, fmt.Errorf("%w: entry %s has key version %d, session holds %d", ErrEntryPendingMigration, entryID, entry.KeyVersion, lease.Version())
	}

	plaintext, err := s.cipher.Decrypt(entry.Sealed, lease.Key())
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("user_id", userID).Str("entry_id", entryID).Msg("entry did not decrypt")
		return nil, err
	}
	return plaintext, nil
}

func (s *entryService) List(ctx context.Context, userID string) ([]models.EncryptedEntry, error) {
	return s.entries.List(ctx, userID)
}

func (s *entryService) Delete(ctx context.Context, userID, entryID string) error {
	return s.entries.Delete(ctx, userID, entryID)
}
