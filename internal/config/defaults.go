package config

import (
	"strings"
	"time"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
)

// Defaults applied to every field no other source set.
const (
	DefaultUserID        = "local"
	DefaultRPID          = "localhost"
	DefaultRPName        = "Sanctuary"
	DefaultDSN           = "sanctuary.db"
	DefaultLegacyBackend = LegacyBackendKeyring
	DefaultLegacyPath    = "sanctuary-legacy.db"
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultCheckInterval = 30 * time.Second
	DefaultCeremony      = 60 * time.Second
	DefaultChallengeTTL  = 5 * time.Minute
	DefaultLogFile       = "sanctuary.log"
	DefaultLogLevel      = "info"
)

// Legacy key store backends.
const (
	LegacyBackendKeyring = "keyring"
	LegacyBackendBolt    = "bolt"
)

func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			UserID: DefaultUserID,
			RPID:   DefaultRPID,
			RPName: DefaultRPName,
		},
		Storage: Storage{
			DSN:           DefaultDSN,
			LegacyBackend: DefaultLegacyBackend,
			LegacyPath:    DefaultLegacyPath,
		},
		Crypto: Crypto{
			PBKDF2Iterations: crypto.DefaultPBKDF2Iterations,
		},
		Session: Session{
			IdleTimeout:   DefaultIdleTimeout,
			CheckInterval: DefaultCheckInterval,
		},
		Ceremony: Ceremony{
			Timeout:      DefaultCeremony,
			ChallengeTTL: DefaultChallengeTTL,
		},
		Log: Log{
			File:  DefaultLogFile,
			Level: DefaultLogLevel,
		},
	}
}

func hasPostgresScheme(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
