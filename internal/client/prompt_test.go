package client

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sanctuary/models"
)

func TestPrompter_Line(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("first\r\nsecond"), &out)

	got, err := p.Line("> ")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = p.Secret("secret: ")
	require.NoError(t, err)
	assert.Equal(t, "second", got, "a last line without newline still counts")

	_, err = p.Line("> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> secret: > ", out.String())
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p := NewPrompter(strings.NewReader(tt.input), io.Discard)
			got, err := p.Confirm(context.Background(), "Sure?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_ConfirmCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPrompter(strings.NewReader("y\n"), io.Discard).Confirm(ctx, "Sure?")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPassphrase(t *testing.T) {
	got, err := newPassphrase(NewPrompter(strings.NewReader("abc\nabc\n"), io.Discard), "New: ")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = newPassphrase(NewPrompter(strings.NewReader("abc\nabd\n"), io.Discard), "New: ")
	assert.ErrorIs(t, err, errPassphraseMismatch)
}

// ── rendering ──

func TestPrintRecoveryPhrase(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	printRecoveryPhrase(&out, "one two three four five six seven eight nine ten eleven twelve")

	assert.Contains(t, out.String(), " 1. one")
	assert.Contains(t, out.String(), "12. twelve")
	assert.Contains(t, out.String(), "will not be shown again")
}

func TestProgressPrinter(t *testing.T) {
	var out bytes.Buffer
	progress := progressPrinter(&out)
	progress(models.NewMigrationProgress(1, 2))
	progress(models.NewMigrationProgress(2, 2))

	assert.Equal(t, "\rMigrating entries 1/2 (50%)\rMigrating entries 2/2 (100%)\n", out.String())
}

func TestPrintMigration(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	printMigration(&out, &models.MigrationResult{
		Total:    3,
		Migrated: 2,
		Failed:   []models.EntryFailure{{EntryID: "e-9", Retryable: true}},
	})

	assert.Contains(t, out.String(), "Migrated 2 of 3 entries, 1 failed")
	assert.Contains(t, out.String(), "e-9 (temporary)")
}
