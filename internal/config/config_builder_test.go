package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func parseFlags(t *testing.T, args ...string) *StructuredConfig {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := BindFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cfg
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBuild_FirstSourceWins(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{UserID: "from-flags"}},
		&StructuredConfig{App: App{UserID: "from-env", RPName: "env name"}},
	)
	b.withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "from-flags", cfg.App.UserID)
	assert.Equal(t, "env name", cfg.App.RPName)
	assert.Equal(t, DefaultRPID, cfg.App.RPID)
}

func TestBuild_EmptyFailsValidation(t *testing.T) {
	_, err := newConfigBuilder().build()
	assert.ErrorIs(t, err, ErrInvalidAppConfigs)
}

// ── Load ──────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultUserID, cfg.App.UserID)
	assert.Equal(t, DefaultDSN, cfg.Storage.DSN)
	assert.False(t, cfg.Storage.IsPostgres())
	assert.Equal(t, LegacyBackendKeyring, cfg.Storage.LegacyBackend)
	assert.Equal(t, crypto.DefaultPBKDF2Iterations, cfg.Crypto.PBKDF2Iterations)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 60*time.Second, cfg.Ceremony.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Ceremony.ChallengeTTL)
}

func TestLoad_Priority(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"app":     map[string]any{"user_id": "json-user", "rp_name": "json name", "rp_id": "json.example"},
		"storage": map[string]any{"dsn": "json.db"},
		"session": map[string]any{"idle_timeout": "5m"},
	})
	setEnvVars(t, map[string]string{
		"APP_USER_ID": "env-user",
		"APP_RP_ID":   "env.example",
		"CONFIG":      path,
	})

	cfg, err := Load(parseFlags(t, "--user", "flag-user", "-d", "postgres://localhost/journal"))
	require.NoError(t, err)

	assert.Equal(t, "flag-user", cfg.App.UserID)
	assert.Equal(t, "env.example", cfg.App.RPID)
	assert.Equal(t, "json name", cfg.App.RPName)
	assert.Equal(t, "postgres://localhost/journal", cfg.Storage.DSN)
	assert.True(t, cfg.Storage.IsPostgres())
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, DefaultCheckInterval, cfg.Session.CheckInterval)
}

func TestLoad_MissingJSONFile(t *testing.T) {
	clearEnvVars(t)

	_, err := Load(parseFlags(t, "-c", "/definitely/not/here.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading a json file")
}

// ── validate ──────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *StructuredConfig)
		wantErr error
	}{
		{name: "defaults", mutate: func(c *StructuredConfig) {}},
		{name: "unknown legacy backend", mutate: func(c *StructuredConfig) { c.Storage.LegacyBackend = "s3" }, wantErr: ErrInvalidStorageConfigs},
		{name: "bolt without path", mutate: func(c *StructuredConfig) {
			c.Storage.LegacyBackend = LegacyBackendBolt
			c.Storage.LegacyPath = ""
		}, wantErr: ErrInvalidStorageConfigs},
		{name: "low iterations", mutate: func(c *StructuredConfig) { c.Crypto.PBKDF2Iterations = 1000 }, wantErr: ErrInvalidCryptoConfigs},
		{name: "negative idle timeout", mutate: func(c *StructuredConfig) { c.Session.IdleTimeout = -time.Second }, wantErr: ErrInvalidSessionConfigs},
		{name: "zero challenge ttl", mutate: func(c *StructuredConfig) { c.Ceremony.ChallengeTTL = 0 }, wantErr: ErrInvalidCeremonyConfigs},
		{name: "empty rp id", mutate: func(c *StructuredConfig) { c.App.RPID = "" }, wantErr: ErrInvalidAppConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ── BindFlags ─────────────────────────────────────────────────────────────────

func TestBindFlags(t *testing.T) {
	cfg := parseFlags(t,
		"-c", "cfg.json",
		"--dsn", "x.db",
		"--user", "u",
		"--rp-id", "rp",
		"--legacy-backend", "bolt",
		"--legacy-path", "l.db",
		"--pbkdf2-iterations", "250000",
		"--idle-timeout", "10m",
		"--ceremony-timeout", "20s",
		"--log-file", "l.log",
	)

	assert.Equal(t, "cfg.json", cfg.JSONFilePath)
	assert.Equal(t, "x.db", cfg.Storage.DSN)
	assert.Equal(t, "u", cfg.App.UserID)
	assert.Equal(t, "rp", cfg.App.RPID)
	assert.Equal(t, "bolt", cfg.Storage.LegacyBackend)
	assert.Equal(t, "l.db", cfg.Storage.LegacyPath)
	assert.Equal(t, 250000, cfg.Crypto.PBKDF2Iterations)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 20*time.Second, cfg.Ceremony.Timeout)
	assert.Equal(t, "l.log", cfg.Log.File)
}
