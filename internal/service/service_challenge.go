// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/models"
)

// DefaultChallengeTTL is how long an issued challenge stays valid.
const DefaultChallengeTTL = 5 * time.Minute

const challengeSize = 32

type challengeService struct {
	repo store.ChallengeRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewChallengeService returns a [ChallengeService] keeping challenges in
// repo for ttl. A non-positive ttl means DefaultChallengeTTL.
func NewChallengeService(repo store.ChallengeRepository, ttl time.Duration) ChallengeService {
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	return &challengeService{repo: repo, ttl: ttl, now: time.Now}
}

// Issue replaces any pending challenge of the user.
func (s *challengeService) Issue(ctx context.Context, userID string, typ models.ChallengeType) (models.Challenge, error) {
	raw := make([]byte, challengeSize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return models.Challenge{}, fmt.Errorf("generate challenge: %w", err)
	}

	c := models.Challenge{
		UserID:    userID,
		Value:     base64.RawURLEncoding.EncodeToString(raw),
		Type:      typ,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Save(ctx, c); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*challengeService.Issue").Str("user_id", userID).Msg("saving challenge failed")
		return models.Challenge{}, fmt.Errorf("save challenge: %w", err)
	}
	return c, nil
}

// Consume never extends a challenge: whatever the outcome, the stored one is
// gone afterwards.
func (s *challengeService) Consume(ctx context.Context, userID string, typ models.ChallengeType) (models.Challenge, error) {
	log := logger.FromContext(ctx)

	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, store.ErrChallengeNotFound) {
		return models.Challenge{}, ErrChallengeExpired
	}
	if err != nil {
		return models.Challenge{}, fmt.Errorf("load challenge: %w", err)
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		log.Err(err).Str("func", "*challengeService.Consume").Str("user_id", userID).Msg("deleting challenge failed")
		return models.Challenge{}, fmt.Errorf("delete challenge: %w", err)
	}

	if c.Type != typ {
		log.Warn().Str("user_id", userID).Str("want", string(typ)).Str("got", string(c.Type)).Msg("challenge type mismatch")
		return models.Challenge{}, ErrChallengeExpired
	}
	if c.ExpiredAt(s.now(), s.ttl) {
		log.Warn().Str("user_id", userID).Time("created_at", c.CreatedAt).Msg("challenge expired")
		return models.Challenge{}, ErrChallengeExpired
	}
	return c, nil
}
