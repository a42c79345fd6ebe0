// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-sanctuary/models"
)

type legacyService struct {
	*deps
}

func newLegacyService(d *deps) LegacyService {
	return &legacyService{deps: d}
}

func (s *legacyService) Unlock(ctx context.Context, userID string) error {
	meta, err := s.loadMetadata(ctx, userID)
	if err != nil {
		return err
	}
	if meta.Scheme != models.SchemeRandomKey {
		return fmt.Errorf("%w: scheme is %s", ErrSchemeTransition, meta.Scheme)
	}

	// the legacy key stays until a staged migration commits; it opens the
	// entries not migrated yet
	key, err := s.legacyKey(ctx, userID, !meta.IsPending())
	if err != nil {
		return err
	}
	defer key.Wipe()

	return s.session.Unlock(userID, key, models.SchemeRandomKey)
}
