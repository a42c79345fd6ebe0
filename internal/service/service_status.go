// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-sanctuary/models"
)

type statusService struct {
	*deps
}

func newStatusService(d *deps) StatusService {
	return &statusService{deps: d}
}

func (s *statusService) Status(ctx context.Context, userID string) (models.Status, error) {
	meta, err := s.loadMetadata(ctx, userID)
	if err != nil {
		return models.Status{}, err
	}

	legacy, err := s.legacy.Exists(ctx, userID)
	if err != nil {
		return models.Status{}, fmt.Errorf("check legacy key: %w", err)
	}
	creds, err := s.credentials.List(ctx, userID)
	if err != nil {
		return models.Status{}, fmt.Errorf("list credentials: %w", err)
	}
	byVersion, err := s.entries.CountByVersion(ctx, userID)
	if err != nil {
		return models.Status{}, fmt.Errorf("count entries: %w", err)
	}

	total := 0
	for _, n := range byVersion {
		total += n
	}

	return models.Status{
		UserID:            userID,
		Scheme:            meta.Scheme,
		KeyVersion:        meta.KeyVersion,
		PendingKeyVersion: meta.PendingKeyVersion,
		LegacyKeyPresent:  legacy,
		Passkeys:          len(creds),
		Entries:           total,
		EntriesByVersion:  byVersion,
		Unlocked:          s.session.Unlocked(userID),
	}, nil
}
