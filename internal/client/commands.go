// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-sanctuary/internal/app"
	"github.com/MKhiriev/go-sanctuary/internal/ceremony"
	"github.com/MKhiriev/go-sanctuary/internal/config"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/models"
)

// annotationNoApp marks commands that run without storage.
const annotationNoApp = "sanctuary/no-app"

type cli struct {
	build  models.AppBuildInfo
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	flags  *config.StructuredConfig
	device string
	method string

	started   bool
	app       *App
	log       *logger.Logger
	logCloser io.Closer
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, build models.AppBuildInfo, args []string, in io.Reader, out, errOut io.Writer) int {
	c := &cli{build: build, in: in, out: out, errOut: errOut}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err != nil {
		c.report(err)
	}
	if cerr := c.close(); cerr != nil {
		fmt.Fprintf(errOut, "closing: %v\n", cerr)
	}
	if err != nil {
		return 1
	}
	return 0
}

func (c *cli) report(err error) {
	if !c.started {
		// flag and argument errors come before any service call
		bad.Fprintf(c.errOut, "Error: %v\n", err)
		return
	}
	if c.log != nil {
		c.log.Error().Err(err).Msg("command failed")
	}
	msg := app.Message(err)
	if errors.Is(err, errPassphraseMismatch) {
		msg = err.Error()
	}
	bad.Fprintf(c.errOut, "Error: %s\n", msg)
}

func (c *cli) close() error {
	var errs []error
	if c.app != nil {
		errs = append(errs, c.app.Close())
	}
	if c.logCloser != nil {
		errs = append(errs, c.logCloser.Close())
	}
	return errors.Join(errs...)
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sanctuary",
		Short:         "An encrypted journal with passphrase, recovery phrase and passkey unlock",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationNoApp] == "true" {
				return nil
			}
			cmd.SilenceUsage = true
			c.started = true
			return c.open(cmd)
		},
	}

	c.flags = config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&c.device, "device", ceremony.DefaultDevice, "Name of this device's passkey authenticator")
	root.PersistentFlags().StringVar(&c.method, "method", MethodAuto, "Unlock method: auto, passphrase or passkey")

	root.AddCommand(
		c.versionCommand(),
		c.statusCommand(),
		c.setupCommand(),
		c.unlockCommand(),
		c.recoverCommand(),
		c.migrateCommand(),
		c.validateCommand(),
		c.backupCommand(),
		c.entryCommand(),
		c.passkeyCommand(),
		c.shellCommand(),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := config.Load(c.flags)
	if err != nil {
		return err
	}

	log, closer, err := logger.NewFileLogger("cli", cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	log = log.ForCommand(cmd.CommandPath())
	c.log, c.logCloser = log, closer

	ctx := log.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	c.app, err = NewApp(ctx, cfg, log, c.device, NewPrompter(c.in, c.out), c.out)
	return err
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Annotations: map[string]string{annotationNoApp: "true"},
		Args:        cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printBuildInfo(c.out, c.build)
		},
	}
}

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the unlock scheme, key versions and entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.app.services.Status.Status(cmd.Context(), c.app.userID())
			if err != nil {
				return err
			}
			printStatus(c.out, st)
			return nil
		},
	}
}

func (c *cli) setupCommand() *cobra.Command {
	var backupPath string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Protect the journal with a passphrase and a recovery phrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a := c.app

			legacy, err := a.services.Migration.DetectLegacyScheme(ctx, a.userID())
			if err != nil {
				return err
			}
			if legacy {
				fmt.Fprintln(c.out, "Existing entries will be re-encrypted under your passphrase.")
			}
			if backupPath != "" {
				if err := c.writeBackup(ctx, backupPath); err != nil {
					return err
				}
			}

			pass, err := newPassphrase(a.prompt, "New passphrase: ")
			if err != nil {
				return err
			}
			res, err := a.services.Passphrase.SetupPassphrase(ctx, a.userID(), pass, progressPrinter(c.out))
			if res.RecoveryPhrase != "" {
				printRecoveryPhrase(c.out, res.RecoveryPhrase)
			}
			printMigration(c.out, res.Migration)
			if err != nil {
				return err
			}
			good.Fprintln(c.out, "Passphrase set up. The journal is now unlocked with your passphrase.")
			return nil
		},
	}
	cmd.Flags().StringVar(&backupPath, "backup", "", "Write an encrypted backup to this file before migrating")
	return cmd
}

func (c *cli) unlockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Check that the journal opens with the chosen method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.app.Unlock(ctx, c.method); err != nil {
				return err
			}
			st, err := c.app.services.Status.Status(ctx, c.app.userID())
			if err != nil {
				return err
			}
			good.Fprintf(c.out, "Unlocked (key version %d).\n", st.KeyVersion)
			return nil
		},
	}
}

func (c *cli) recoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Set a new passphrase using the recovery phrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			phrase, err := a.prompt.Secret("Recovery phrase: ")
			if err != nil {
				return err
			}
			pass, err := newPassphrase(a.prompt, "New passphrase: ")
			if err != nil {
				return err
			}
			if err := a.services.Passphrase.RecoverWithPhrase(cmd.Context(), a.userID(), strings.TrimSpace(phrase), pass); err != nil {
				return err
			}
			good.Fprintln(c.out, "Passphrase replaced. Your recovery phrase stays the same.")
			return nil
		},
	}
}

func (c *cli) migrateCommand() *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Show or resume an unfinished key migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a := c.app

			st, err := a.services.Status.Status(ctx, a.userID())
			if err != nil {
				return err
			}
			if st.PendingKeyVersion == nil {
				fmt.Fprintln(c.out, "No migration is pending.")
				return nil
			}
			if !resume {
				fmt.Fprintf(c.out, "Migration to key version %d is pending: %d of %d entries already moved.\n",
					*st.PendingKeyVersion, st.EntriesByVersion[*st.PendingKeyVersion], st.Entries)
				fmt.Fprintln(c.out, "Run with --resume to finish it.")
				return nil
			}

			pass, err := a.prompt.Secret("Passphrase: ")
			if err != nil {
				return err
			}
			res, err := a.services.Passphrase.ResumeMigration(ctx, a.userID(), pass, progressPrinter(c.out))
			printMigration(c.out, &res)
			if err != nil {
				return err
			}
			good.Fprintln(c.out, "Migration finished.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "Retry the entries still on the old key and commit")
	return cmd
}

func (c *cli) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Try to decrypt every entry without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a := c.app
			if err := a.Unlock(ctx, c.method); err != nil {
				return err
			}
			lease, err := a.services.Session.Acquire(a.userID())
			if err != nil {
				return err
			}
			defer lease.Release()

			report, err := a.services.Migration.Validate(ctx, a.userID(), lease.Key())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%d entries, %d decryptable, %d not decryptable with the current key.\n",
				report.Total, report.Decryptable, report.Undecryptable)
			for _, id := range report.UndecryptableIDs {
				fmt.Fprintf(c.out, "  %s\n", id)
			}
			return nil
		},
	}
}

func (c *cli) backupCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export all entries, still encrypted, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				blob, err := c.app.services.Migration.Backup(cmd.Context(), c.app.userID())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.out, string(blob))
				return err
			}
			return c.writeBackup(cmd.Context(), path)
		},
	}
	cmd.Flags().StringVarP(&path, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func (c *cli) writeBackup(ctx context.Context, path string) error {
	blob, err := c.app.services.Migration.Backup(ctx, c.app.userID())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	fmt.Fprintf(c.out, "Backup written to %s.\n", path)
	return nil
}

func (c *cli) entryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Write, read, list and delete journal entries",
	}

	write := &cobra.Command{
		Use:   "write [text]",
		Short: "Encrypt and store a new entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := c.app
			text := strings.Join(args, " ")
			if err := a.Unlock(ctx, c.method); err != nil {
				return err
			}
			if text == "" {
				var err error
				if text, err = a.prompt.Line("Entry: "); err != nil {
					return err
				}
			}
			e, err := a.services.Entries.Write(ctx, a.userID(), []byte(text))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, e.ID)
			return nil
		},
	}

	read := &cobra.Command{
		Use:   "read <id>",
		Short: "Decrypt and print an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := c.app
			if err := a.Unlock(ctx, c.method); err != nil {
				return err
			}
			plain, err := a.services.Entries.Read(ctx, a.userID(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, string(plain))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List entries without decrypting them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.app.services.Entries.List(cmd.Context(), c.app.userID())
			if err != nil {
				return err
			}
			printEntries(c.out, entries)
			return nil
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !yes {
				ok, err := c.app.prompt.Confirm(ctx, fmt.Sprintf("Delete entry %s?", args[0]))
				if err != nil || !ok {
					return err
				}
			}
			return c.app.services.Entries.Delete(ctx, c.app.userID(), args[0])
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.AddCommand(write, read, list, del)
	return cmd
}

func (c *cli) passkeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passkey",
		Short: "Manage device passkeys",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Register this device's authenticator as a passkey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a := c.app

			st, err := a.services.Status.Status(ctx, a.userID())
			if err != nil {
				return err
			}
			var pass string
			if st.Scheme == models.SchemePasskeyRecovery {
				// another passkey or the passphrase opens the master key
				if err := a.Unlock(ctx, c.method); err != nil {
					return err
				}
			} else if pass, err = a.prompt.Secret("Passphrase: "); err != nil {
				return err
			}

			res, err := a.services.Passkey.SetupPasskey(ctx, a.userID(), pass, c.device, progressPrinter(c.out))
			if res.RecoveryPhrase != "" {
				fmt.Fprintln(c.out, "Your journal now has a new master key. The previous recovery phrase no longer works.")
				printRecoveryPhrase(c.out, res.RecoveryPhrase)
			}
			printMigration(c.out, res.Migration)
			if err != nil {
				return err
			}
			good.Fprintf(c.out, "Passkey %s registered for %s.\n", res.Credential.CredentialID, res.Credential.DeviceName)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered passkeys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := c.app.services.Passkey.ListPasskeys(cmd.Context(), c.app.userID())
			if err != nil {
				return err
			}
			printPasskeys(c.out, creds)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a passkey; removing the last one falls back to the passphrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			if err := a.services.Passkey.DeletePasskey(cmd.Context(), a.userID(), args[0]); err != nil {
				return err
			}
			if err := a.authenticator.Forget(args[0]); err != nil {
				c.log.Warn().Err(err).Str("credential_id", args[0]).Msg("credential left in keychain")
			}
			good.Fprintf(c.out, "Passkey %s removed.\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

func (c *cli) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Unlock once and work with entries interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return NewShell(c.app, c.method).Run(cmd.Context())
		},
	}
}
