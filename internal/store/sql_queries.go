package store

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-sanctuary/models"
)

const (
	tableMetadata    = "crypto_metadata"
	tableEnvelopes   = "key_envelopes"
	tableCredentials = "credentials"
	tableEntries     = "entries"
	tableChallenges  = "challenges"
)

var (
	metadataColumns = []string{
		"user_id", "scheme", "key_version", "pending_key_version",
		"salt", "iterations", "verifier_hash", "encrypted_salt", "staged_encrypted_salt",
		"migrated_at", "created_at", "updated_at",
	}
	envelopeColumns = []string{
		"id", "user_id", "kind", "credential_id", "key_version", "iv", "ciphertext", "created_at",
	}
	credentialColumns = []string{
		"user_id", "credential_id", "public_key", "counter", "transports", "device_name", "created_at", "last_used_at",
	}
	entryColumns = []string{
		"id", "user_id", "iv", "ciphertext", "key_version", "created_at", "updated_at",
	}
	challengeColumns = []string{
		"user_id", "value", "type", "created_at",
	}
)

// upsertSuffix renders "ON CONFLICT (keys) DO UPDATE SET c = excluded.c, ..."
// for every column not in keys. Both SQLite and PostgreSQL accept it.
func upsertSuffix(keys []string, columns []string) string {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		if isKey[c] || c == "created_at" {
			continue
		}
		sets = append(sets, c+" = excluded."+c)
	}
	return "ON CONFLICT (" + strings.Join(keys, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

// ── crypto_metadata ──────────────────────────────────────────────────────────

func buildGetMetadataQuery(b sq.StatementBuilderType, userID string) (string, []any, error) {
	return b.Select(metadataColumns...).
		From(tableMetadata).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
}

func buildSaveMetadataQuery(b sq.StatementBuilderType, m models.CryptoMetadata) (string, []any, error) {
	var pending any
	if m.PendingKeyVersion != nil {
		pending = int(*m.PendingKeyVersion)
	}
	var migratedAt any
	if m.MigratedAt != nil {
		migratedAt = m.MigratedAt.UTC()
	}

	return b.Insert(tableMetadata).
		Columns(metadataColumns...).
		Values(
			m.UserID, int(m.Scheme), int(m.KeyVersion), pending,
			m.Salt, m.Iterations, m.VerifierHash, m.EncryptedSalt, m.StagedEncryptedSalt,
			migratedAt, m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
		).
		Suffix(upsertSuffix([]string{"user_id"}, metadataColumns)).
		ToSql()
}

// ── key_envelopes ────────────────────────────────────────────────────────────

func buildSaveEnvelopeQuery(b sq.StatementBuilderType, e models.KeyEnvelope) (string, []any, error) {
	return b.Insert(tableEnvelopes).
		Columns(envelopeColumns...).
		Values(
			e.ID, e.UserID, string(e.Kind), e.CredentialID, int(e.Wrapped.KeyVersion),
			e.Wrapped.IV, e.Wrapped.Ciphertext, e.CreatedAt.UTC(),
		).
		// the id of the first write is kept on replace
		Suffix(upsertSuffix([]string{"user_id", "kind", "credential_id", "key_version"}, envelopeColumns[2:])).
		ToSql()
}

func buildListEnvelopesQuery(b sq.StatementBuilderType, userID string) (string, []any, error) {
	return b.Select(envelopeColumns...).
		From(tableEnvelopes).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("key_version", "kind", "credential_id").
		ToSql()
}

func buildGetEnvelopeQuery(b sq.StatementBuilderType, userID string, kind models.EnvelopeKind, credentialID string, version models.SchemeVersion) (string, []any, error) {
	return b.Select(envelopeColumns...).
		From(tableEnvelopes).
		Where(sq.Eq{
			"user_id":       userID,
			"kind":          string(kind),
			"credential_id": credentialID,
			"key_version":   int(version),
		}).
		ToSql()
}

func buildDeleteEnvelopeQuery(b sq.StatementBuilderType, userID string, kind models.EnvelopeKind, credentialID string) (string, []any, error) {
	return b.Delete(tableEnvelopes).
		Where(sq.Eq{"user_id": userID, "kind": string(kind), "credential_id": credentialID}).
		ToSql()
}

func buildDeleteEnvelopeVersionQuery(b sq.StatementBuilderType, userID string, version models.SchemeVersion) (string, []any, error) {
	return b.Delete(tableEnvelopes).
		Where(sq.Eq{"user_id": userID, "key_version": int(version)}).
		ToSql()
}

// ── credentials ──────────────────────────────────────────────────────────────

func buildSaveCredentialQuery(b sq.StatementBuilderType, c models.CredentialRecord) (string, []any, error) {
	var lastUsed any
	if c.LastUsedAt != nil {
		lastUsed = c.LastUsedAt.UTC()
	}
	return b.Insert(tableCredentials).
		Columns(credentialColumns...).
		Values(
			c.UserID, c.CredentialID, c.PublicKey, int64(c.Counter),
			strings.Join(c.Transports, ","), c.DeviceName, c.CreatedAt.UTC(), lastUsed,
		).
		Suffix(upsertSuffix([]string{"user_id", "credential_id"}, credentialColumns)).
		ToSql()
}

func buildListCredentialsQuery(b sq.StatementBuilderType, userID string) (string, []any, error) {
	return b.Select(credentialColumns...).
		From(tableCredentials).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at").
		ToSql()
}

func buildGetCredentialQuery(b sq.StatementBuilderType, userID, credentialID string) (string, []any, error) {
	return b.Select(credentialColumns...).
		From(tableCredentials).
		Where(sq.Eq{"user_id": userID, "credential_id": credentialID}).
		ToSql()
}

func buildUpdateCredentialUsageQuery(b sq.StatementBuilderType, userID, credentialID string, counter uint32, usedAt time.Time) (string, []any, error) {
	return b.Update(tableCredentials).
		Set("counter", int64(counter)).
		Set("last_used_at", usedAt.UTC()).
		Where(sq.Eq{"user_id": userID, "credential_id": credentialID}).
		ToSql()
}

func buildDeleteCredentialQuery(b sq.StatementBuilderType, userID, credentialID string) (string, []any, error) {
	return b.Delete(tableCredentials).
		Where(sq.Eq{"user_id": userID, "credential_id": credentialID}).
		ToSql()
}

// ── entries ──────────────────────────────────────────────────────────────────

func buildCreateEntryQuery(b sq.StatementBuilderType, e models.EncryptedEntry) (string, []any, error) {
	return b.Insert(tableEntries).
		Columns(entryColumns...).
		Values(e.ID, e.UserID, e.IV, e.Ciphertext, int(e.KeyVersion), e.CreatedAt.UTC(), e.UpdatedAt.UTC()).
		ToSql()
}

func buildGetEntryQuery(b sq.StatementBuilderType, userID, entryID string) (string, []any, error) {
	return b.Select(entryColumns...).
		From(tableEntries).
		Where(sq.Eq{"user_id": userID, "id": entryID}).
		ToSql()
}

func buildListEntriesQuery(b sq.StatementBuilderType, userID string) (string, []any, error) {
	return b.Select(entryColumns...).
		From(tableEntries).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at", "id").
		ToSql()
}

// buildUpdateEntryCiphertextQuery rewrites only what migration changes; the
// entry's timestamps stay as the user left them.
func buildUpdateEntryCiphertextQuery(b sq.StatementBuilderType, userID, entryID string, sealed models.Sealed, version models.SchemeVersion) (string, []any, error) {
	return b.Update(tableEntries).
		Set("iv", sealed.IV).
		Set("ciphertext", sealed.Ciphertext).
		Set("key_version", int(version)).
		Where(sq.Eq{"user_id": userID, "id": entryID}).
		ToSql()
}

func buildDeleteEntryQuery(b sq.StatementBuilderType, userID, entryID string) (string, []any, error) {
	return b.Delete(tableEntries).
		Where(sq.Eq{"user_id": userID, "id": entryID}).
		ToSql()
}

func buildCountEntriesByVersionQuery(b sq.StatementBuilderType, userID string) (string, []any, error) {
	return b.Select("key_version", "COUNT(*)").
		From(tableEntries).
		Where(sq.Eq{"user_id": userID}).
		GroupBy("key_version").
		ToSql()
}

// ── challenges ───────────────────────────────────────────────────────────────

func buildSaveChallengeQuery(b sq.StatementBuilderType, c models.Challenge) (string, []any, error) {
	return b.Insert(tableChallenges).
		Columns(challengeColumns...).
		Values(c.UserID, c.Value, string(c.Type), c.CreatedAt.UTC()).
		// a fresh challenge also restarts its TTL
		Suffix("ON CONFLICT (user_id) DO UPDATE SET value = excluded.value, type = excluded.type, created_at = excluded.created_at").
		ToSql()
}

func buildGetChallengeQuery(b sq.StatementBuilderType, userID string) (string, []any, error) {
	return b.Select(challengeColumns...).
		From(tableChallenges).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
}

func buildDeleteChallengeQuery(b sq.StatementBuilderType, userID string) (string, []any, error) {
	return b.Delete(tableChallenges).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
}
