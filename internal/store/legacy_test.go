package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
)

func exerciseLegacyStore(t *testing.T, s LegacyKeyStore) {
	t.Helper()
	ctx := testContext()

	ok, err := s.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrLegacyKeyNotFound)

	key := []byte("0123456789abcdef0123456789abcdef")
	require.NoError(t, s.Put(ctx, "u1", key))

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, key, got)

	ok, err = s.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Get(ctx, "u2")
	assert.ErrorIs(t, err, ErrLegacyKeyNotFound, "keys are per user")

	require.NoError(t, s.Delete(ctx, "u1"))
	require.NoError(t, s.Delete(ctx, "u1"), "delete is idempotent")

	ok, err = s.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

// ── keyring ──────────────────────────────────────────────────────────────────

func TestKeyringLegacyStore(t *testing.T) {
	keyring.MockInit()
	exerciseLegacyStore(t, NewKeyringLegacyStore(logger.Nop()))
}

func TestKeyringLegacyStore_CancelledContext(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringLegacyStore(logger.Nop())

	ctx, cancel := context.WithCancel(testContext())
	cancel()

	_, err := s.Get(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}

// ── bbolt ────────────────────────────────────────────────────────────────────

func TestBoltLegacyStore(t *testing.T) {
	s, err := OpenBoltLegacyStore(filepath.Join(t.TempDir(), "keys", "legacy.db"), logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	exerciseLegacyStore(t, s)
}

func TestBoltLegacyStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	s, err := OpenBoltLegacyStore(path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Put(testContext(), "u1", []byte{1, 2, 3}))
	require.NoError(t, s.Close())

	s, err = OpenBoltLegacyStore(path, logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(testContext(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}
