package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(line), &entry))
	return entry
}

func TestNewLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("cli", &buf, zerolog.DebugLevel)

	l.Info().Msg("hello")

	entry := decode(t, buf.Bytes())
	assert.Equal(t, "cli", entry["role"])
	assert.Contains(t, entry, "time")
	assert.Equal(t, "func", zerolog.CallerFieldName)
	assert.Contains(t, entry["func"], "TestNewLogger_Fields", "caller is the function name, not file:line")
}

func TestNop_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)

	l.Info().Msg("should be discarded")

	assert.Empty(t, buf.String())
}

func TestForCommand(t *testing.T) {
	var buf bytes.Buffer
	parent := newLogger("cli", &buf, zerolog.DebugLevel)

	child := parent.ForCommand("sanctuary entry read")
	child.Info().Msg("child")
	parent.Info().Msg("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	first, second := decode(t, []byte(lines[0])), decode(t, []byte(lines[1]))
	assert.Equal(t, "sanctuary entry read", first["command"])
	assert.Equal(t, "cli", first["role"])
	assert.NotContains(t, second, "command")
}

// ── FromContext ──

func TestFromContext_WithoutLogger(t *testing.T) {
	require.NotNil(t, FromContext(context.Background()))
}

func TestFromContext_ReturnsAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("cli", &buf, zerolog.DebugLevel).ForCommand("status")
	ctx := l.WithContext(context.Background())

	FromContext(ctx).Warn().Msg("from context")

	entry := decode(t, buf.Bytes())
	assert.Equal(t, "status", entry["command"])
	assert.Equal(t, "warn", entry["level"])
}

// ── NewFileLogger ──

func TestNewFileLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sanctuary.log")

	l, closer, err := NewFileLogger("cli", path, "warn")
	require.NoError(t, err)

	l.Info().Msg("filtered")
	l.Warn().Str("user_id", "u1").Msg("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	entry := decode(t, data)
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "u1", entry["user_id"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNewFileLogger_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sanctuary.log")

	for _, msg := range []string{"first", "second"} {
		l, closer, err := NewFileLogger("cli", path, "")
		require.NoError(t, err)
		l.Info().Msg(msg)
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestNewFileLogger_BadLevel(t *testing.T) {
	_, _, err := NewFileLogger("cli", filepath.Join(t.TempDir(), "x.log"), "loud")
	require.Error(t, err)
}
