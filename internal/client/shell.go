package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/go-sanctuary/internal/app"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/internal/workers"
)

const shellHelp = `Commands:
  write <text>   encrypt and store an entry
  read <id>      decrypt an entry
  list           list entries
  delete <id>    delete an entry
  status         show key lifecycle state
  lock           forget the key now
  unlock         unlock again
  help           show this help
  exit           leave the shell`

type shell struct {
	app    *App
	method string
}

// NewShell returns the interactive session. The journal auto-locks after the
// configured idle timeout.
func NewShell(a *App, method string) Client {
	return &shell{app: a, method: method}
}

func (s *shell) Run(ctx context.Context) error {
	a := s.app
	if err := a.Unlock(ctx, s.method); err != nil {
		return err
	}

	autoLock := workers.NewAutoLock(a.services.Session, a.cfg.Session.CheckInterval, func() {
		faint.Fprintln(a.out, "\nLocked after inactivity. Type `unlock` to continue.")
	})
	jobs := workers.NewWorkers(autoLock)
	jobs.Start(ctx)
	defer jobs.Stop()

	good.Fprintln(a.out, "Unlocked. Type `help` for commands.")
	for {
		line, err := a.prompt.Line("sanctuary> ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out)
			return nil
		}
		if err != nil {
			return err
		}

		done, err := s.exec(ctx, strings.TrimSpace(line))
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("shell command failed")
			bad.Fprintf(a.out, "Error: %s\n", app.Message(err))
		}
		if done {
			return nil
		}
	}
}

// exec runs one shell line and reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	a := s.app
	user := a.userID()
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return false, nil
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprintln(a.out, shellHelp)
	case "write":
		if arg == "" {
			return false, errors.New("nothing to write")
		}
		e, err := a.services.Entries.Write(ctx, user, []byte(arg))
		if err != nil {
			return false, err
		}
		fmt.Fprintln(a.out, e.ID)
	case "read":
		plain, err := a.services.Entries.Read(ctx, user, arg)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(a.out, string(plain))
	case "list":
		entries, err := a.services.Entries.List(ctx, user)
		if err != nil {
			return false, err
		}
		printEntries(a.out, entries)
	case "delete":
		return false, a.services.Entries.Delete(ctx, user, arg)
	case "status":
		st, err := a.services.Status.Status(ctx, user)
		if err != nil {
			return false, err
		}
		printStatus(a.out, st)
	case "lock":
		a.services.Lock()
		faint.Fprintln(a.out, "Locked.")
	case "unlock":
		if err := a.Unlock(ctx, s.method); err != nil {
			return false, err
		}
		good.Fprintln(a.out, "Unlocked.")
	default:
		fmt.Fprintf(a.out, "Unknown command %q. Type `help`.\n", cmd)
	}
	return false, nil
}
