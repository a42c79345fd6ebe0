package service

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/internal/session"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/internal/utils"
	"github.com/MKhiriev/go-sanctuary/models"
)

const (
	testUser       = "user-1"
	testPassphrase = "Correct-Horse-Battery-9"
)

// ─────────────────────────────────────────────
// In-memory storage
// ─────────────────────────────────────────────

type memMetadata struct {
	mu      sync.Mutex
	records map[string]models.CryptoMetadata
	saveFn  func(meta models.CryptoMetadata) error
}

func (m *memMetadata) Get(_ context.Context, userID string) (models.CryptoMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.records[userID]
	if !ok {
		return models.CryptoMetadata{}, store.ErrMetadataNotFound
	}
	return meta, nil
}

func (m *memMetadata) Save(_ context.Context, meta models.CryptoMetadata) error {
	if m.saveFn != nil {
		if err := m.saveFn(meta); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[meta.UserID] = meta
	return nil
}

type memEntries struct {
	mu       sync.Mutex
	entries  []models.EncryptedEntry
	updateFn func(entryID string) error
}

func (m *memEntries) Create(_ context.Context, entry models.EncryptedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == entry.ID {
			return store.ErrEntryExists
		}
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memEntries) Get(_ context.Context, userID, entryID string) (models.EncryptedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.UserID == userID && e.ID == entryID {
			return e, nil
		}
	}
	return models.EncryptedEntry{}, store.ErrEntryNotFound
}

func (m *memEntries) List(_ context.Context, userID string) ([]models.EncryptedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EncryptedEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEntries) UpdateCiphertext(_ context.Context, userID, entryID string, sealed models.Sealed, keyVersion models.SchemeVersion) error {
	if m.updateFn != nil {
		if err := m.updateFn(entryID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.UserID == userID && e.ID == entryID {
			m.entries[i].Sealed = sealed
			m.entries[i].KeyVersion = keyVersion
			return nil
		}
	}
	return store.ErrEntryNotFound
}

func (m *memEntries) Delete(_ context.Context, userID, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.UserID == userID && e.ID == entryID {
			m.entries = slices.Delete(m.entries, i, i+1)
			return nil
		}
	}
	return store.ErrEntryNotFound
}

func (m *memEntries) CountByVersion(_ context.Context, userID string) (map[models.SchemeVersion]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[models.SchemeVersion]int)
	for _, e := range m.entries {
		if e.UserID == userID {
			out[e.KeyVersion]++
		}
	}
	return out, nil
}

type envelopeKey struct {
	userID       string
	kind         models.EnvelopeKind
	credentialID string
	version      models.SchemeVersion
}

type memEnvelopes struct {
	mu        sync.Mutex
	envelopes map[envelopeKey]models.KeyEnvelope
}

func (m *memEnvelopes) Save(_ context.Context, env models.KeyEnvelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envelopes[envelopeKey{env.UserID, env.Kind, env.CredentialID, env.Wrapped.KeyVersion}] = env
	return nil
}

func (m *memEnvelopes) List(_ context.Context, userID string) ([]models.KeyEnvelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.KeyEnvelope
	for k, env := range m.envelopes {
		if k.userID == userID {
			out = append(out, env)
		}
	}
	return out, nil
}

func (m *memEnvelopes) Get(_ context.Context, userID string, kind models.EnvelopeKind, credentialID string, keyVersion models.SchemeVersion) (models.KeyEnvelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	env, ok := m.envelopes[envelopeKey{userID, kind, credentialID, keyVersion}]
	if !ok {
		return models.KeyEnvelope{}, store.ErrEnvelopeNotFound
	}
	return env, nil
}

func (m *memEnvelopes) Delete(_ context.Context, userID string, kind models.EnvelopeKind, credentialID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.envelopes {
		if k.userID == userID && k.kind == kind && k.credentialID == credentialID {
			delete(m.envelopes, k)
		}
	}
	return nil
}

func (m *memEnvelopes) DeleteVersion(_ context.Context, userID string, keyVersion models.SchemeVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.envelopes {
		if k.userID == userID && k.version == keyVersion {
			delete(m.envelopes, k)
		}
	}
	return nil
}

func (m *memEnvelopes) count(kind models.EnvelopeKind, version models.SchemeVersion) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.envelopes {
		if k.kind == kind && k.version == version {
			n++
		}
	}
	return n
}

type memCredentials struct {
	mu    sync.Mutex
	creds []models.CredentialRecord
}

func (m *memCredentials) Save(_ context.Context, cred models.CredentialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.creds {
		if c.UserID == cred.UserID && c.CredentialID == cred.CredentialID {
			m.creds[i] = cred
			return nil
		}
	}
	m.creds = append(m.creds, cred)
	return nil
}

func (m *memCredentials) List(_ context.Context, userID string) ([]models.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CredentialRecord
	for _, c := range m.creds {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCredentials) Get(_ context.Context, userID, credentialID string) (models.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.creds {
		if c.UserID == userID && c.CredentialID == credentialID {
			return c, nil
		}
	}
	return models.CredentialRecord{}, store.ErrCredentialNotFound
}

func (m *memCredentials) UpdateUsage(_ context.Context, userID, credentialID string, counter uint32, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.creds {
		if c.UserID == userID && c.CredentialID == credentialID {
			m.creds[i].Counter = counter
			m.creds[i].LastUsedAt = &usedAt
			return nil
		}
	}
	return store.ErrCredentialNotFound
}

func (m *memCredentials) Delete(_ context.Context, userID, credentialID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.creds {
		if c.UserID == userID && c.CredentialID == credentialID {
			m.creds = slices.Delete(m.creds, i, i+1)
			return nil
		}
	}
	return store.ErrCredentialNotFound
}

type memChallenges struct {
	mu         sync.Mutex
	challenges map[string]models.Challenge
}

func (m *memChallenges) Save(_ context.Context, c models.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challenges[c.UserID] = c
	return nil
}

func (m *memChallenges) Get(_ context.Context, userID string) (models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.challenges[userID]
	if !ok {
		return models.Challenge{}, store.ErrChallengeNotFound
	}
	return c, nil
}

func (m *memChallenges) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.challenges, userID)
	return nil
}

type memLegacy struct {
	mu   sync.Mutex
	keys map[string][]byte
}

func (m *memLegacy) Get(_ context.Context, userID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[userID]
	if !ok {
		return nil, store.ErrLegacyKeyNotFound
	}
	return append([]byte(nil), k...), nil
}

func (m *memLegacy) Put(_ context.Context, userID string, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[userID] = append([]byte(nil), key...)
	return nil
}

func (m *memLegacy) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, userID)
	return nil
}

func (m *memLegacy) Exists(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[userID]
	return ok, nil
}

// ─────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────

type fixture struct {
	deps        *deps
	metadata    *memMetadata
	entries     *memEntries
	envelopes   *memEnvelopes
	credentials *memCredentials
	challenges  *memChallenges
	legacy      *memLegacy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	keyring.MockInit()

	kdf, err := crypto.NewPassphraseKDF(crypto.MinPBKDF2Iterations)
	require.NoError(t, err)

	f := &fixture{
		metadata:    &memMetadata{records: map[string]models.CryptoMetadata{}},
		entries:     &memEntries{},
		envelopes:   &memEnvelopes{envelopes: map[envelopeKey]models.KeyEnvelope{}},
		credentials: &memCredentials{},
		challenges:  &memChallenges{challenges: map[string]models.Challenge{}},
		legacy:      &memLegacy{keys: map[string][]byte{}},
	}
	f.deps = &deps{
		metadata:    f.metadata,
		entries:     f.entries,
		envelopes:   f.envelopes,
		credentials: f.credentials,
		challenges:  f.challenges,
		legacy:      f.legacy,
		cipher:      crypto.NewContentCipher(),
		kdf:         kdf,
		newKDF:      crypto.NewPassphraseKDF,
		recovery:    crypto.NewRecoveryCodec(),
		wrapper:     crypto.NewKeyWrapper(),
		session:     session.NewStore(time.Hour, logger.Nop()),
		now:         time.Now,
		newID:       utils.NewUUIDGenerator().Generate,
	}
	return f
}

func (f *fixture) passphraseService() PassphraseService {
	return newPassphraseService(f.deps, newMigrationOrchestrator(f.deps))
}

func (f *fixture) entryService() EntryService {
	return newEntryService(f.deps)
}

// seedLegacyEntries unlocks with a fresh legacy key and writes texts under it.
func (f *fixture) seedLegacyEntries(t *testing.T, texts ...string) []models.EncryptedEntry {
	t.Helper()

	require.NoError(t, newLegacyService(f.deps).Unlock(context.Background(), testUser))
	out := make([]models.EncryptedEntry, 0, len(texts))
	for _, text := range texts {
		e, err := f.entryService().Write(context.Background(), testUser, []byte(text))
		require.NoError(t, err)
		out = append(out, e)
	}
	f.deps.session.Lock()
	return out
}

// readAll decrypts every entry under the current session.
func (f *fixture) readAll(t *testing.T) []string {
	t.Helper()

	list, err := f.entryService().List(context.Background(), testUser)
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, e := range list {
		plain, err := f.entryService().Read(context.Background(), testUser, e.ID)
		require.NoError(t, err)
		out = append(out, string(plain))
	}
	return out
}

func (f *fixture) meta(t *testing.T) models.CryptoMetadata {
	t.Helper()
	meta, err := f.metadata.Get(context.Background(), testUser)
	require.NoError(t, err)
	return meta
}
