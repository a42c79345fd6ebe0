package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/models"
)

// ── SetupPassphrase ──

func TestSetupPassphrase_MigratesLegacyEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedLegacyEntries(t, "first", "second", "third")

	var reports []models.MigrationProgress
	res, err := f.passphraseService().SetupPassphrase(ctx, testUser, testPassphrase, func(p models.MigrationProgress) {
		reports = append(reports, p)
	})
	require.NoError(t, err)

	assert.True(t, crypto.NewRecoveryCodec().Validate(res.RecoveryPhrase))
	require.NotNil(t, res.Migration)
	assert.Equal(t, 3, res.Migration.Migrated)
	require.Len(t, reports, 3)
	for i, p := range reports {
		assert.Equal(t, i+1, p.Current)
		assert.Equal(t, 3, p.Total)
	}
	assert.Equal(t, 100, reports[2].Percentage)

	meta := f.meta(t)
	assert.Equal(t, models.SchemePassphraseRecovery, meta.Scheme)
	assert.Equal(t, models.SchemePassphraseRecovery, meta.KeyVersion)
	assert.Nil(t, meta.PendingKeyVersion)
	assert.NotEmpty(t, meta.EncryptedSalt)
	assert.Empty(t, meta.StagedEncryptedSalt)
	assert.NotNil(t, meta.MigratedAt)

	ok, err := f.legacy.Exists(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, ok, "legacy key must be retired after commit")
	assert.Equal(t, 1, f.envelopes.count(models.EnvelopeRecovery, models.SchemePassphraseRecovery))

	assert.True(t, f.deps.session.Unlocked(testUser))
	assert.Equal(t, []string{"first", "second", "third"}, f.readAll(t))
}

func TestSetupPassphrase_WeakPassphrase(t *testing.T) {
	f := newFixture(t)

	_, err := f.passphraseService().SetupPassphrase(context.Background(), testUser, "short", nil)

	var weak *crypto.WeakPassphraseError
	require.ErrorAs(t, err, &weak)
	assert.Empty(t, f.metadata.records)
}

func TestSetupPassphrase_AlreadyConfigured(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.passphraseService().SetupPassphrase(ctx, testUser, testPassphrase, nil)
	require.NoError(t, err)

	_, err = f.passphraseService().SetupPassphrase(ctx, testUser, testPassphrase, nil)
	assert.ErrorIs(t, err, ErrAlreadyConfigured)
}

func TestSetupPassphrase_PartialFailureKeepsLegacyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seeded := f.seedLegacyEntries(t, "a", "b", "c")

	broken := seeded[1].ID
	f.entries.updateFn = func(entryID string) error {
		if entryID == broken {
			return store.ErrTransient
		}
		return nil
	}

	res, err := f.passphraseService().SetupPassphrase(ctx, testUser, testPassphrase, nil)
	require.ErrorIs(t, err, ErrMigrationPartialFailure)

	var partial *MigrationPartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, len(partial.Failures))
	assert.True(t, partial.Retryable())
	assert.NotEmpty(t, res.RecoveryPhrase, "staged material needs the phrase")

	meta := f.meta(t)
	assert.Equal(t, models.SchemeRandomKey, meta.Scheme)
	require.NotNil(t, meta.PendingKeyVersion)
	assert.Equal(t, models.SchemePassphraseRecovery, *meta.PendingKeyVersion)

	ok, _ := f.legacy.Exists(ctx, testUser)
	assert.True(t, ok, "legacy key must survive an uncommitted migration")
	assert.False(t, f.deps.session.Unlocked(testUser))

	// ── resume once storage recovers ──
	f.entries.updateFn = nil
	resumed, err := f.passphraseService().ResumeMigration(ctx, testUser, testPassphrase, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed.Total)

	meta = f.meta(t)
	assert.Equal(t, models.SchemePassphraseRecovery, meta.Scheme)
	assert.Nil(t, meta.PendingKeyVersion)
	assert.Equal(t, []string{"a", "b", "c"}, f.readAll(t))

	ok, _ = f.legacy.Exists(ctx, testUser)
	assert.False(t, ok)
}

func TestSetupPassphrase_StagingFailureReturnsNoPhrase(t *testing.T) {
	f := newFixture(t)
	f.metadata.saveFn = func(models.CryptoMetadata) error { return errors.New("disk full") }

	res, err := f.passphraseService().SetupPassphrase(context.Background(), testUser, testPassphrase, nil)
	require.Error(t, err)
	assert.Empty(t, res.RecoveryPhrase)
}

func TestSetupPassphrase_PendingRefused(t *testing.T) {
	f := newFixture(t)
	pending := models.SchemePassphraseRecovery
	meta := models.DefaultMetadata(testUser)
	meta.PendingKeyVersion = &pending
	f.metadata.records[testUser] = meta

	_, err := f.passphraseService().SetupPassphrase(context.Background(), testUser, testPassphrase, nil)
	assert.ErrorIs(t, err, ErrMigrationPending)
}

// ── UnlockWithPassphrase ──

func TestUnlockWithPassphrase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedLegacyEntries(t, "entry")
	_, err := f.passphraseService().SetupPassphrase(ctx, testUser, testPassphrase, nil)
	require.NoError(t, err)
	f.deps.session.Lock()

	tests := []struct {
		name       string
		passphrase string
		wantErr    error
	}{
		{name: "wrong passphrase", passphrase: "Wrong-Horse-Battery-9", wantErr: ErrInvalidPassphrase},
		{name: "correct passphrase", passphrase: testPassphrase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.passphraseService().UnlockWithPassphrase(ctx, testUser, tt.passphrase)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, f.deps.session.Unlocked(testUser))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"entry"}, f.readAll(t))
		})
	}
}

func TestUnlockWithPassphrase_LegacyUser(t *testing.T) {
	f := newFixture(t)

	err := f.passphraseService().UnlockWithPassphrase(context.Background(), testUser, testPassphrase)
	assert.ErrorIs(t, err, ErrSchemeTransition)
}

// ── RecoverWithPhrase ──

func TestRecoverWithPhrase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedLegacyEntries(t, "remember me")
	setup, err := f.passphraseService().SetupPassphrase(ctx, testUser, testPassphrase, nil)
	require.NoError(t, err)
	f.deps.session.Lock()

	const newPassphrase = "Brand-New-Passphrase-7"

	t.Run("wrong phrase", func(t *testing.T) {
		other, err := crypto.NewRecoveryCodec().Generate()
		require.NoError(t, err)
		err = f.passphraseService().RecoverWithPhrase(ctx, testUser, other, newPassphrase)
		assert.ErrorIs(t, err, crypto.ErrInvalidRecoveryPhrase)
	})

	t.Run("malformed phrase", func(t *testing.T) {
		err := f.passphraseService().RecoverWithPhrase(ctx, testUser, "not a phrase", newPassphrase)
		assert.ErrorIs(t, err, crypto.ErrInvalidRecoveryPhrase)
	})

	t.Run("valid phrase", func(t *testing.T) {
		require.NoError(t, f.passphraseService().RecoverWithPhrase(ctx, testUser, setup.RecoveryPhrase, newPassphrase))
		assert.Equal(t, []string{"remember me"}, f.readAll(t))

		f.deps.session.Lock()
		assert.ErrorIs(t, f.passphraseService().UnlockWithPassphrase(ctx, testUser, testPassphrase), ErrInvalidPassphrase)
		require.NoError(t, f.passphraseService().UnlockWithPassphrase(ctx, testUser, newPassphrase))
		assert.Equal(t, []string{"remember me"}, f.readAll(t))
	})
}

// ── ResumeMigration ──

func TestResumeMigration_NothingPending(t *testing.T) {
	f := newFixture(t)

	_, err := f.passphraseService().ResumeMigration(context.Background(), testUser, testPassphrase, nil)
	assert.ErrorIs(t, err, ErrNoPendingMigration)
}
