package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sanctuary/models"
)

// ── envelopes ────────────────────────────────────────────────────────────────

func TestEnvelopeRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnvelopeRepository(db, db.logger)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM key_envelopes").
		WithArgs("", 3, "recovery", "u1").
		WillReturnRows(sqlmock.NewRows(envelopeColumns).
			AddRow("env-1", "u1", "recovery", "", 3, "iv", "ct", now))

	env, err := repo.Get(testContext(), "u1", models.EnvelopeRecovery, "", models.SchemePasskeyRecovery)
	require.NoError(t, err)
	assert.Equal(t, models.EnvelopeRecovery, env.Kind)
	assert.Equal(t, models.SchemePasskeyRecovery, env.Wrapped.KeyVersion)
	assert.Equal(t, "ct", env.Wrapped.Ciphertext)
}

func TestEnvelopeRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnvelopeRepository(db, db.logger)

	mock.ExpectQuery("SELECT (.+) FROM key_envelopes").WillReturnRows(sqlmock.NewRows(envelopeColumns))

	_, err := repo.Get(testContext(), "u1", models.EnvelopePassphrase, "", models.SchemePassphraseRecovery)
	assert.ErrorIs(t, err, ErrEnvelopeNotFound)
}

func TestEnvelopeRepository_List_UnknownKindIsCorrupt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnvelopeRepository(db, db.logger)

	mock.ExpectQuery("SELECT (.+) FROM key_envelopes").
		WillReturnRows(sqlmock.NewRows(envelopeColumns).
			AddRow("env-1", "u1", "sms", "", 2, "iv", "ct", time.Now()))

	_, err := repo.List(testContext(), "u1")
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestEnvelopeRepository_Save_RejectsUnknownKind(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewEnvelopeRepository(db, db.logger)

	err := repo.Save(testContext(), models.KeyEnvelope{Kind: "sms", Wrapped: models.WrappedKey{KeyVersion: 2}})
	assert.Error(t, err)
}

func TestEnvelopeRepository_DeleteVersion_IsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnvelopeRepository(db, db.logger)

	mock.ExpectExec("DELETE FROM key_envelopes WHERE").
		WithArgs(2, "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteVersion(testContext(), "u1", models.SchemePassphraseRecovery))
}

// ── credentials ──────────────────────────────────────────────────────────────

func TestCredentialRepository_List_SplitsTransports(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepository(db, db.logger)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM credentials").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(credentialColumns).
			AddRow("u1", "c1", "pk", 4, "internal,hybrid", "laptop", now, now).
			AddRow("u1", "c2", "pk", 0, "", "phone", now, nil))

	creds, err := repo.List(testContext(), "u1")
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, []string{"internal", "hybrid"}, creds[0].Transports)
	assert.Equal(t, uint32(4), creds[0].Counter)
	assert.NotNil(t, creds[0].LastUsedAt)
	assert.Nil(t, creds[1].Transports)
	assert.Nil(t, creds[1].LastUsedAt)
}

func TestCredentialRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepository(db, db.logger)

	mock.ExpectExec("DELETE FROM credentials").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(testContext(), "u1", "c1"), ErrCredentialNotFound)
}

func TestCredentialRepository_UpdateUsage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCredentialRepository(db, db.logger)
	used := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)

	mock.ExpectExec("UPDATE credentials SET counter = \\$1, last_used_at = \\$2").
		WithArgs(int64(9), used, "c1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateUsage(testContext(), "u1", "c1", 9, used))
}

// ── challenges ───────────────────────────────────────────────────────────────

func TestChallengeRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChallengeRepository(db, db.logger)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM challenges").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(challengeColumns).AddRow("u1", "abc", "authentication", now))

	c, err := repo.Get(testContext(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeAuthentication, c.Type)
	assert.Equal(t, "abc", c.Value)
}

func TestChallengeRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChallengeRepository(db, db.logger)

	mock.ExpectQuery("SELECT (.+) FROM challenges").WillReturnRows(sqlmock.NewRows(challengeColumns))

	_, err := repo.Get(testContext(), "u1")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestChallengeRepository_Save_Upserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChallengeRepository(db, db.logger)

	mock.ExpectExec("INSERT INTO challenges (.+) ON CONFLICT \\(user_id\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(testContext(), models.Challenge{UserID: "u1", Value: "v", Type: models.ChallengeRegistration, CreatedAt: time.Now()})
	assert.NoError(t, err)
}
