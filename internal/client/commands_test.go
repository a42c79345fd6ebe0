package client

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/MKhiriev/go-sanctuary/internal/app"
	"github.com/MKhiriev/go-sanctuary/internal/config"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/models"
)

const passphrase = "Correct-Horse-Battery-9"

// sandbox runs commands against SQLite and bbolt files in a temp dir.
type sandbox struct {
	t     *testing.T
	flags []string
}

func newSandbox(t *testing.T) *sandbox {
	t.Helper()
	color.NoColor = true
	keyring.MockInit()
	dir := t.TempDir()

	storage := config.Storage{
		DSN:           filepath.Join(dir, "sanctuary.db"),
		LegacyBackend: config.LegacyBackendBolt,
		LegacyPath:    filepath.Join(dir, "legacy.db"),
	}
	probe, err := store.NewStorages(context.Background(), storage, logger.Nop())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	require.NoError(t, probe.Close())

	return &sandbox{t: t, flags: []string{
		"--dsn", storage.DSN,
		"--legacy-backend", storage.LegacyBackend,
		"--legacy-path", storage.LegacyPath,
		"--log-file", filepath.Join(dir, "sanctuary.log"),
		"--user", "alice",
	}}
}

// run executes one command with input fed to the prompts.
func (s *sandbox) run(input string, args ...string) (code int, stdout, stderr string) {
	s.t.Helper()
	var out, errOut bytes.Buffer
	code = Execute(context.Background(), models.NewAppBuildInfo("1.0.0", "", "abc"), append(args, s.flags...), strings.NewReader(input), &out, &errOut)
	return code, out.String(), errOut.String()
}

func (s *sandbox) mustRun(input string, args ...string) string {
	s.t.Helper()
	code, out, errOut := s.run(input, args...)
	require.Equal(s.t, 0, code, "stdout: %s\nstderr: %s", out, errOut)
	return out
}

var phraseWord = regexp.MustCompile(`\d+\. (\w+)`)

func recoveryPhrase(t *testing.T, out string) string {
	t.Helper()
	var words []string
	for _, m := range phraseWord.FindAllStringSubmatch(out, -1) {
		words = append(words, m[1])
	}
	require.Len(t, words, 12, out)
	return strings.Join(words, " ")
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// ── version ──

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	code := Execute(context.Background(), models.NewAppBuildInfo("1.0.0", "", "abc"), []string{"version"}, strings.NewReader(""), &out, &out)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Build version: 1.0.0")
	assert.Contains(t, out.String(), "Build date: N/A")
}

// ── full lifecycle ──

func TestLifecycle(t *testing.T) {
	s := newSandbox(t)
	twice := passphrase + "\n" + passphrase + "\n"

	id := lastLine(s.mustRun("", "entry", "write", "dear", "diary"))
	assert.NotEmpty(t, id)

	out := s.mustRun(twice, "setup")
	assert.Contains(t, out, "RECOVERY PHRASE")
	assert.Contains(t, out, "Migrated 1 of 1 entries.")
	phrase := recoveryPhrase(t, out)

	out = s.mustRun(passphrase+"\n", "entry", "read", id)
	assert.Contains(t, out, "dear diary")

	code, _, errOut := s.run("Wrong-Horse-Battery-9\n", "entry", "read", id)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, app.MsgInvalidPassphrase)

	const newPass = "Brand-New-Passphrase-7"
	s.mustRun(phrase+"\n"+newPass+"\n"+newPass+"\n", "recover")
	out = s.mustRun(newPass+"\n", "entry", "read", id)
	assert.Contains(t, out, "dear diary")

	// passkey: passphrase, then approve the ceremony
	out = s.mustRun(newPass+"\ny\n", "passkey", "add", "--device", "laptop")
	assert.Contains(t, out, "RECOVERY PHRASE")
	m := regexp.MustCompile(`Passkey (\S+) registered for laptop`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	credentialID := m[1]

	out = s.mustRun("y\n", "entry", "read", id)
	assert.Contains(t, out, "dear diary")

	out = s.mustRun("", "status")
	assert.Regexp(t, `Scheme\s+3`, out)
	assert.Regexp(t, `Passkeys\s+1`, out)

	out = s.mustRun("", "passkey", "list")
	assert.Contains(t, out, credentialID)

	s.mustRun("", "passkey", "remove", credentialID)
	out = s.mustRun("", "status")
	assert.Regexp(t, `Scheme\s+2`, out)
	assert.Regexp(t, `Key version\s+3`, out)

	out = s.mustRun(newPass+"\n", "entry", "read", id)
	assert.Contains(t, out, "dear diary")

	out = s.mustRun("", "backup")
	assert.Contains(t, out, `"entries"`)
	assert.NotContains(t, out, "dear diary")

	s.mustRun("", "entry", "delete", "--yes", id)
	out = s.mustRun("", "entry", "list")
	assert.Contains(t, out, "No entries.")
}

func TestSetup_MismatchedPassphrases(t *testing.T) {
	s := newSandbox(t)

	code, _, errOut := s.run(passphrase+"\nsomething-else\n", "setup")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, errPassphraseMismatch.Error())

	out := s.mustRun("", "status")
	assert.Regexp(t, `Scheme\s+1`, out)
}

func TestSetup_WeakPassphrase(t *testing.T) {
	s := newSandbox(t)

	code, _, errOut := s.run("short\nshort\n", "setup")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, app.MsgWeakPassphrase)
}

func TestMigrate_NothingPending(t *testing.T) {
	s := newSandbox(t)

	out := s.mustRun("", "migrate")
	assert.Contains(t, out, "No migration is pending.")
}

func TestShell(t *testing.T) {
	s := newSandbox(t)

	out := s.mustRun("write first thought\nlist\nlock\nwrite locked out\nunlock\nstatus\nexit\n", "shell")
	assert.Contains(t, out, "Unlocked. Type `help` for commands.")
	assert.Contains(t, out, "KEY VERSION")
	assert.Contains(t, out, "Locked.")
	assert.Contains(t, out, app.MsgLocked)
	assert.Regexp(t, `Entries\s+1`, out)
}

func TestArgumentErrorsPrintedAsIs(t *testing.T) {
	s := newSandbox(t)

	code, _, errOut := s.run("", "entry", "read")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "accepts 1 arg")
}
