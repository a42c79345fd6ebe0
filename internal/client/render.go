package client

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/service"
	"github.com/MKhiriev/go-sanctuary/models"
)

var (
	headline = color.New(color.FgYellow, color.Bold)
	good     = color.New(color.FgGreen)
	bad      = color.New(color.FgRed, color.Bold)
	faint    = color.New(color.Faint)
)

// printRecoveryPhrase shows the phrase once, numbered, four words a row.
func printRecoveryPhrase(w io.Writer, phrase string) {
	fmt.Fprintln(w)
	headline.Fprintln(w, "  RECOVERY PHRASE  write it down and keep it offline")
	fmt.Fprintln(w)
	for _, row := range strings.Split(strings.TrimRight(crypto.FormatPhrase(phrase, 4), "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", row)
	}
	fmt.Fprintln(w)
	faint.Fprintln(w, "  It will not be shown again. Anyone holding it can read your journal.")
	fmt.Fprintln(w)
}

// progressPrinter redraws a single progress line.
func progressPrinter(w io.Writer) service.ProgressFunc {
	return func(p models.MigrationProgress) {
		fmt.Fprintf(w, "\rMigrating entries %d/%d (%d%%)", p.Current, p.Total, p.Percentage)
		if p.Current == p.Total {
			fmt.Fprintln(w)
		}
	}
}

func printMigration(w io.Writer, res *models.MigrationResult) {
	if res == nil {
		return
	}
	if res.Succeeded() {
		good.Fprintf(w, "Migrated %d of %d entries.\n", res.Migrated, res.Total)
		return
	}
	bad.Fprintf(w, "Migrated %d of %d entries, %d failed:\n", res.Migrated, res.Total, res.FailedCount())
	for _, f := range res.Failed {
		retry := ""
		if f.Retryable {
			retry = " (temporary)"
		}
		fmt.Fprintf(w, "  %s%s\n", f.EntryID, retry)
	}
}

func printStatus(w io.Writer, st models.Status) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "User\t%s\n", st.UserID)
	fmt.Fprintf(tw, "Scheme\t%d (%s)\n", st.Scheme, st.Scheme)
	fmt.Fprintf(tw, "Key version\t%d\n", st.KeyVersion)
	if st.PendingKeyVersion != nil {
		fmt.Fprintf(tw, "Pending key version\t%d\n", *st.PendingKeyVersion)
	}
	fmt.Fprintf(tw, "Legacy key\t%s\n", yesNo(st.LegacyKeyPresent))
	fmt.Fprintf(tw, "Passkeys\t%d\n", st.Passkeys)
	fmt.Fprintf(tw, "Entries\t%d\n", st.Entries)
	for _, v := range []models.SchemeVersion{models.SchemeRandomKey, models.SchemePassphraseRecovery, models.SchemePasskeyRecovery} {
		if n := st.EntriesByVersion[v]; n > 0 {
			fmt.Fprintf(tw, "  on key version %d\t%d\n", v, n)
		}
	}
	fmt.Fprintf(tw, "Unlocked\t%s\n", yesNo(st.Unlocked))
	tw.Flush()
}

func printEntries(w io.Writer, entries []models.EncryptedEntry) {
	if len(entries) == 0 {
		faint.Fprintln(w, "No entries.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKEY VERSION\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", e.ID, e.KeyVersion, e.CreatedAt.Local().Format(time.DateTime))
	}
	tw.Flush()
}

func printPasskeys(w io.Writer, creds []models.CredentialRecord) {
	if len(creds) == 0 {
		faint.Fprintln(w, "No passkeys.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDEVICE\tCREATED\tLAST USED")
	for _, c := range creds {
		last := "never"
		if c.LastUsedAt != nil {
			last = c.LastUsedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.CredentialID, c.DeviceName, c.CreatedAt.Local().Format(time.DateTime), last)
	}
	tw.Flush()
}

func printBuildInfo(w io.Writer, info models.AppBuildInfo) {
	fmt.Fprintln(w, info)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
