package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MKhiriev/go-sanctuary/internal/app"
	"github.com/MKhiriev/go-sanctuary/internal/ceremony"
	"github.com/MKhiriev/go-sanctuary/internal/config"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/internal/service"
	"github.com/MKhiriev/go-sanctuary/internal/store"
	"github.com/MKhiriev/go-sanctuary/models"
)

// Unlock methods accepted by --method.
const (
	MethodAuto       = "auto"
	MethodPassphrase = "passphrase"
	MethodPasskey    = "passkey"
)

// App holds everything one command invocation needs.
type App struct {
	cfg      *config.StructuredConfig
	log      *logger.Logger
	storages *store.Storages
	services *service.Services

	authenticator *ceremony.SoftwareAuthenticator
	prompt        Prompter
	out           io.Writer

	closers []io.Closer
}

// NewApp opens storage and builds the services for cfg. device names the
// software authenticator used for passkey ceremonies.
func NewApp(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger, device string, prompt Prompter, out io.Writer) (*App, error) {
	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	authenticator := ceremony.NewSoftwareAuthenticator(device, prompt.Confirm)
	services, err := service.NewServices(storages, *cfg, authenticator, log)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create services: %w", err), storages.Close())
	}

	return &App{
		cfg:           cfg,
		log:           log,
		storages:      storages,
		services:      services,
		authenticator: authenticator,
		prompt:        prompt,
		out:           out,
		closers:       []io.Closer{storages},
	}, nil
}

// Close locks the session and releases storage.
func (a *App) Close() error {
	a.services.Lock()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

func (a *App) userID() string {
	return a.cfg.App.UserID
}

// Unlock opens the journal with the method matching the user's scheme, or
// with method when it is not auto. While a migration is pending a passphrase
// or passkey unlock opens the pending key version.
func (a *App) Unlock(ctx context.Context, method string) error {
	st, err := a.services.Status.Status(ctx, a.userID())
	if err != nil {
		return err
	}
	if st.PendingKeyVersion != nil {
		faint.Fprintln(a.out, app.MsgMigrationPending)
	}

	switch {
	case st.Scheme == models.SchemeRandomKey && st.PendingKeyVersion == nil:
		return a.services.Legacy.Unlock(ctx, a.userID())
	case method == MethodPasskey, method == MethodAuto && st.Scheme == models.SchemePasskeyRecovery:
		fmt.Fprintln(a.out, "Waiting for your passkey...")
		return a.services.Passkey.UnlockWithPasskey(ctx, a.userID())
	case method == MethodPassphrase, method == MethodAuto:
		pass, err := a.prompt.Secret("Passphrase: ")
		if err != nil {
			return err
		}
		return a.services.Passphrase.UnlockWithPassphrase(ctx, a.userID(), pass)
	default:
		return fmt.Errorf("unknown unlock method %q", method)
	}
}
