// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"

	"github.com/spf13/pflag"
)

// StructuredConfig is the top-level configuration container for the
// sanctuary CLI. It aggregates all sub-configurations and is populated by
// merging command-line flags, environment variables, an optional JSON file
// and built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App identifies the journal owner and the relying party passkeys are
	// scoped to.
	App App `envPrefix:"APP_"`

	// Storage holds the relational database and legacy key store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Crypto holds key derivation parameters.
	Crypto Crypto `envPrefix:"CRYPTO_"`

	// Session holds the auto-lock settings of an unlocked session.
	Session Session `envPrefix:"SESSION_"`

	// Ceremony holds device-credential ceremony limits.
	Ceremony Ceremony `envPrefix:"CEREMONY_"`

	// Log holds the structured log destination.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds the identity of the journal owner.
type App struct {
	// UserID is the journal owner all key material belongs to.
	// Env: APP_USER_ID
	UserID string `env:"USER_ID"`

	// RPID is the relying party ID passkeys are bound to.
	// Env: APP_RP_ID
	RPID string `env:"RP_ID"`

	// RPName is the human readable relying party name shown in prompts.
	// Env: APP_RP_NAME
	RPName string `env:"RP_NAME"`
}

// Storage groups the persistence settings.
type Storage struct {
	// DSN is the database connection string. A postgres:// or postgresql://
	// prefix selects PostgreSQL, anything else is a SQLite file path.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DB_DSN"`

	// LegacyBackend selects where the scheme 1 random key lives:
	// "keyring" (OS keychain) or "bolt" (a bbolt file).
	// Env: STORAGE_LEGACY_BACKEND
	LegacyBackend string `env:"LEGACY_BACKEND"`

	// LegacyPath is the bbolt file used when LegacyBackend is "bolt".
	// Env: STORAGE_LEGACY_PATH
	LegacyPath string `env:"LEGACY_PATH"`
}

// Crypto holds key derivation parameters.
type Crypto struct {
	// PBKDF2Iterations is the round count for new passphrase keys. Existing
	// users keep the count stored in their metadata.
	// Env: CRYPTO_PBKDF2_ITERATIONS
	PBKDF2Iterations int `env:"PBKDF2_ITERATIONS"`
}

// Session holds auto-lock settings.
type Session struct {
	// IdleTimeout locks the session after this much inactivity.
	// Env: SESSION_IDLE_TIMEOUT
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT"`

	// CheckInterval is how often idleness is checked.
	// Env: SESSION_CHECK_INTERVAL
	CheckInterval time.Duration `env:"CHECK_INTERVAL"`
}

// Ceremony holds device-credential ceremony limits.
type Ceremony struct {
	// Timeout bounds a single authenticator interaction.
	// Env: CEREMONY_TIMEOUT
	Timeout time.Duration `env:"TIMEOUT"`

	// ChallengeTTL is how long an issued challenge stays valid.
	// Env: CEREMONY_CHALLENGE_TTL
	ChallengeTTL time.Duration `env:"CHALLENGE_TTL"`
}

// Log holds logging settings.
type Log struct {
	// File receives JSON log lines. Logs never go to stdout, which carries
	// command output.
	// Env: LOG_FILE
	File string `env:"FILE"`

	// Level is a zerolog level name.
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`
}

// IsPostgres reports whether DSN selects the PostgreSQL backend.
func (s Storage) IsPostgres() bool {
	return hasPostgresScheme(s.DSN)
}

// Load merges the given flag values with the environment, the optional JSON
// file and the defaults, then validates the result. Sources earlier in that
// list win for every field they set.
//
// flags is typically the value returned by [BindFlags] after the command line
// was parsed; nil means no flags.
func Load(flags *StructuredConfig) (*StructuredConfig, error) {
	return newConfigBuilder().
		withFlags(flags).
		withEnv().
		withJSON().
		withDefaults().
		build()
}

// BindFlags registers the configuration flags on fs and returns the config
// they are parsed into.
//
// Flags:
//
//	-c/--config          JSON config file path
//	-d/--dsn             database DSN
//	--user               journal owner id
//	--rp-id              relying party id
//	--legacy-backend     keyring | bolt
//	--legacy-path        bbolt file path
//	--pbkdf2-iterations  PBKDF2 rounds for new passphrase keys
//	--idle-timeout       session auto-lock timeout (e.g. 30m)
//	--ceremony-timeout   authenticator timeout (e.g. 60s)
//	--log-file           log file path
func BindFlags(fs *pflag.FlagSet) *StructuredConfig {
	cfg := &StructuredConfig{}

	fs.StringVarP(&cfg.JSONFilePath, "config", "c", "", "JSON config file path")
	fs.StringVarP(&cfg.Storage.DSN, "dsn", "d", "", "Database DSN (file path or postgres:// URL)")
	fs.StringVar(&cfg.App.UserID, "user", "", "Journal owner id")
	fs.StringVar(&cfg.App.RPID, "rp-id", "", "Relying party id for passkeys")
	fs.StringVar(&cfg.Storage.LegacyBackend, "legacy-backend", "", "Legacy key store: keyring or bolt")
	fs.StringVar(&cfg.Storage.LegacyPath, "legacy-path", "", "Legacy bbolt key store path")
	fs.IntVar(&cfg.Crypto.PBKDF2Iterations, "pbkdf2-iterations", 0, "PBKDF2 rounds for new passphrase keys")
	fs.DurationVar(&cfg.Session.IdleTimeout, "idle-timeout", 0, "Session auto-lock timeout (e.g. 30m)")
	fs.DurationVar(&cfg.Ceremony.Timeout, "ceremony-timeout", 0, "Authenticator timeout (e.g. 60s)")
	fs.StringVar(&cfg.Log.File, "log-file", "", "Log file path")

	return cfg
}
