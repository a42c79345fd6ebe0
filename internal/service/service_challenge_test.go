package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-sanctuary/internal/mock"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/models"
)

func newTestChallengeService(repo store.ChallengeRepository, clock *time.Time) *challengeService {
	return &challengeService{repo: repo, ttl: DefaultChallengeTTL, now: func() time.Time { return *clock }}
}

func TestChallenge_IssueAndConsume(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &memChallenges{challenges: map[string]models.Challenge{}}
	svc := newTestChallengeService(repo, &clock)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, testUser, models.ChallengeRegistration)
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(issued.Value)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	clock = clock.Add(4 * time.Minute)
	got, err := svc.Consume(ctx, testUser, models.ChallengeRegistration)
	require.NoError(t, err)
	assert.Equal(t, issued.Value, got.Value)

	_, err = svc.Consume(ctx, testUser, models.ChallengeRegistration)
	assert.ErrorIs(t, err, ErrChallengeExpired, "a challenge is single use")
}

func TestChallenge_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		issue   models.ChallengeType
		consume models.ChallengeType
		wait    time.Duration
	}{
		{name: "expired", issue: models.ChallengeAuthentication, consume: models.ChallengeAuthentication, wait: 6 * time.Minute},
		{name: "wrong type", issue: models.ChallengeRegistration, consume: models.ChallengeAuthentication},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			repo := &memChallenges{challenges: map[string]models.Challenge{}}
			svc := newTestChallengeService(repo, &clock)
			ctx := context.Background()

			_, err := svc.Issue(ctx, testUser, tt.issue)
			require.NoError(t, err)
			clock = clock.Add(tt.wait)

			_, err = svc.Consume(ctx, testUser, tt.consume)
			require.ErrorIs(t, err, ErrChallengeExpired)

			_, err = repo.Get(ctx, testUser)
			assert.ErrorIs(t, err, store.ErrChallengeNotFound, "a rejected challenge is still consumed")
		})
	}
}

func TestChallenge_Missing(t *testing.T) {
	clock := time.Now()
	svc := newTestChallengeService(&memChallenges{challenges: map[string]models.Challenge{}}, &clock)

	_, err := svc.Consume(context.Background(), testUser, models.ChallengeRegistration)
	assert.ErrorIs(t, err, ErrChallengeExpired)
}

func TestChallenge_IssueReplacesPending(t *testing.T) {
	clock := time.Now()
	repo := &memChallenges{challenges: map[string]models.Challenge{}}
	svc := newTestChallengeService(repo, &clock)
	ctx := context.Background()

	_, err := svc.Issue(ctx, testUser, models.ChallengeRegistration)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, testUser, models.ChallengeAuthentication)
	require.NoError(t, err)

	got, err := svc.Consume(ctx, testUser, models.ChallengeAuthentication)
	require.NoError(t, err)
	assert.Equal(t, second.Value, got.Value)
}

func TestChallenge_StorageErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockChallengeRepository(ctrl)
	clock := time.Now()
	svc := newTestChallengeService(repo, &clock)
	boom := errors.New("db down")

	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(boom)
	_, err := svc.Issue(context.Background(), testUser, models.ChallengeRegistration)
	assert.ErrorIs(t, err, boom)

	repo.EXPECT().Get(gomock.Any(), testUser).Return(models.Challenge{Type: models.ChallengeRegistration, CreatedAt: clock}, nil)
	repo.EXPECT().Delete(gomock.Any(), testUser).Return(boom)
	_, err = svc.Consume(context.Background(), testUser, models.ChallengeRegistration)
	assert.ErrorIs(t, err, boom)
}
