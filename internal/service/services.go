// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"time"

	"github.com/MKhiriev/go-sanctuary/internal/ceremony"
	"github.com/MKhiriev/go-sanctuary/internal/config"
	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/internal/session"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/internal/utils"
)

// Services bundles the key lifecycle services around one session store.
type Services struct {
	Migration  MigrationOrchestrator
	Passphrase PassphraseService
	Passkey    PasskeyService
	Challenges ChallengeService
	Legacy     LegacyService
	Entries    EntryService
	Status     StatusService

	Session *session.Store
}

func NewServices(storages *store.Storages, cfg config.StructuredConfig, authenticator ceremony.Authenticator, logger *logger.Logger) (*Services, error) {
	kdf, err := crypto.NewPassphraseKDF(cfg.Crypto.PBKDF2Iterations)
	if err != nil {
		return nil, err
	}

	d := &deps{
		metadata:    storages.Metadata,
		entries:     storages.Entries,
		envelopes:   storages.Envelopes,
		credentials: storages.Credentials,
		challenges:  storages.Challenges,
		legacy:      storages.LegacyKeys,

		cipher:   crypto.NewContentCipher(),
		kdf:      kdf,
		newKDF:   crypto.NewPassphraseKDF,
		recovery: crypto.NewRecoveryCodec(),
		wrapper:  crypto.NewKeyWrapper(),

		session: session.NewStore(cfg.Session.IdleTimeout, logger),
		now:     time.Now,
		newID:   utils.NewUUIDGenerator().Generate,
	}

	challenges := NewChallengeService(storages.Challenges, cfg.Ceremony.ChallengeTTL)
	provider := ceremony.NewLocalProvider(ceremony.RelyingParty{ID: cfg.App.RPID, Name: cfg.App.RPName}, cfg.Ceremony.Timeout)
	orchestrator := newMigrationOrchestrator(d)

	return &Services{
		Migration:  orchestrator,
		Passphrase: newPassphraseService(d, orchestrator),
		Passkey:    newPasskeyService(d, orchestrator, challenges, provider, authenticator, cfg.Ceremony.Timeout),
		Challenges: challenges,
		Legacy:     newLegacyService(d),
		Entries:    newEntryService(d),
		Status:     newStatusService(d),
		Session:    d.session,
	}, nil
}

// Lock drops the session key.
func (s *Services) Lock() {
	s.Session.Lock()
}
