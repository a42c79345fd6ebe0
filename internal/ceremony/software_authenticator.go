// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ceremony

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/awnumar/memguard"
	"github.com/zalando/go-keyring"
)

// keyringService is the OS keychain service name under which software
// credentials are stored.
const keyringService = "go-sanctuary-authenticator"

// ConfirmFunc asks the user to approve a ceremony. Returning false means the
// user dismissed it.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// SoftwareAuthenticator is a platform authenticator whose credential secrets
// live in the OS keychain. Each credential holds an ECDSA P-256 signing key
// and a PRF secret; the PRF output is HMAC-SHA256(secret, evaluation salt).
//
// Several named devices may share one keychain. Registration refuses a
// device that already holds one of the excluded credentials; assertions may
// use any credential in the keychain.
type SoftwareAuthenticator struct {
	device  string
	confirm ConfirmFunc

	// keychain credentials are updated (counter) on every assertion.
	mu sync.Mutex
}

// DefaultDevice names the device when none is given.
const DefaultDevice = "software authenticator"

// NewSoftwareAuthenticator returns an [Authenticator] backed by the OS
// keychain acting as the named device. confirm is called before every
// ceremony; nil approves silently.
func NewSoftwareAuthenticator(device string, confirm ConfirmFunc) *SoftwareAuthenticator {
	if device == "" {
		device = DefaultDevice
	}
	return &SoftwareAuthenticator{device: device, confirm: confirm}
}

type softwareCredential struct {
	PrivateKey string `json:"private_key"` // base64 SEC1 DER
	PRFSecret  string `json:"prf_secret"`  // base64
	RPID       string `json:"rp_id"`
	UserID     string `json:"user_id"`
	Device     string `json:"device"`
	Counter    uint32 `json:"counter"`
}

// Register implements [Authenticator].
func (a *SoftwareAuthenticator) Register(ctx context.Context, opts RegistrationOptions) (RegistrationResponse, error) {
	if err := a.approve(ctx, fmt.Sprintf("Create a passkey for %s on %s?", opts.User.Name, opts.RP.Name)); err != nil {
		return RegistrationResponse{}, err
	}

	for _, id := range opts.ExcludeCredentials {
		if cred, err := a.load(id); err == nil && cred.Device == a.device {
			return RegistrationResponse{}, fmt.Errorf("credential %s already registered on %s", id, a.device)
		}
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return RegistrationResponse{}, fmt.Errorf("generate credential key: %w", err)
	}
	privDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return RegistrationResponse{}, fmt.Errorf("marshal credential key: %w", err)
	}
	defer memguard.WipeBytes(privDER)

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return RegistrationResponse{}, fmt.Errorf("marshal public key: %w", err)
	}

	prfSecret := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, prfSecret); err != nil {
		return RegistrationResponse{}, fmt.Errorf("generate prf secret: %w", err)
	}
	defer memguard.WipeBytes(prfSecret)

	rawID := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, rawID); err != nil {
		return RegistrationResponse{}, fmt.Errorf("generate credential id: %w", err)
	}
	credentialID := base64.RawURLEncoding.EncodeToString(rawID)

	cd, err := json.Marshal(clientData{Type: clientDataCreate, Challenge: opts.Challenge, RPID: opts.RP.ID})
	if err != nil {
		return RegistrationResponse{}, fmt.Errorf("marshal client data: %w", err)
	}
	digest := sha256.Sum256(cd)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		return RegistrationResponse{}, fmt.Errorf("sign attestation: %w", err)
	}

	cred := softwareCredential{
		PrivateKey: base64.StdEncoding.EncodeToString(privDER),
		PRFSecret:  base64.StdEncoding.EncodeToString(prfSecret),
		RPID:       opts.RP.ID,
		UserID:     opts.User.ID,
		Device:     a.device,
	}
	if err := a.store(credentialID, cred); err != nil {
		return RegistrationResponse{}, err
	}

	return RegistrationResponse{
		CredentialID:   credentialID,
		PublicKey:      pubDER,
		ClientDataJSON: cd,
		Signature:      sig,
		Transports:     []string{"internal"},
		DeviceName:     a.device,
		// base64url text, the shape browsers hand over after JSON transport.
		PRFOutput: base64.RawURLEncoding.EncodeToString(prf(prfSecret, opts.PRFEvalSalt)),
	}, nil
}

// Authenticate implements [Authenticator]. It signs with the first allowed
// credential present in the keychain and increments its counter.
func (a *SoftwareAuthenticator) Authenticate(ctx context.Context, opts AuthenticationOptions) (AuthenticationResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var (
		id   string
		cred softwareCredential
		err  error
	)
	for _, candidate := range opts.AllowCredentials {
		cred, err = a.load(candidate)
		if err == nil && cred.RPID == opts.RPID {
			id = candidate
			break
		}
	}
	if id == "" {
		return AuthenticationResponse{}, ErrUnknownCredential
	}

	if err := a.approve(ctx, "Unlock your journal with this passkey?"); err != nil {
		return AuthenticationResponse{}, err
	}

	privDER, err := base64.StdEncoding.DecodeString(cred.PrivateKey)
	if err != nil {
		return AuthenticationResponse{}, fmt.Errorf("decode credential key: %w", err)
	}
	defer memguard.WipeBytes(privDER)
	priv, err := x509.ParseECPrivateKey(privDER)
	if err != nil {
		return AuthenticationResponse{}, fmt.Errorf("parse credential key: %w", err)
	}
	prfSecret, err := base64.StdEncoding.DecodeString(cred.PRFSecret)
	if err != nil {
		return AuthenticationResponse{}, fmt.Errorf("decode prf secret: %w", err)
	}
	defer memguard.WipeBytes(prfSecret)

	cred.Counter++
	cd, err := json.Marshal(clientData{Type: clientDataGet, Challenge: opts.Challenge, RPID: opts.RPID})
	if err != nil {
		return AuthenticationResponse{}, fmt.Errorf("marshal client data: %w", err)
	}
	sig, err := ecdsa.SignASN1(rand.Reader, priv, assertionDigest(opts.RPID, cred.Counter, cd))
	if err != nil {
		return AuthenticationResponse{}, fmt.Errorf("sign assertion: %w", err)
	}

	if err := a.store(id, cred); err != nil {
		return AuthenticationResponse{}, err
	}

	return AuthenticationResponse{
		CredentialID:   id,
		ClientDataJSON: cd,
		Counter:        cred.Counter,
		Signature:      sig,
		PRFOutput:      prf(prfSecret, opts.PRFEvalSalt),
	}, nil
}

// Forget deletes a credential from the keychain. Missing credentials are not
// an error.
func (a *SoftwareAuthenticator) Forget(credentialID string) error {
	err := keyring.Delete(keyringService, credentialID)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete credential from keychain: %w", err)
	}
	return nil
}

func (a *SoftwareAuthenticator) approve(ctx context.Context, prompt string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.confirm == nil {
		return nil
	}
	ok, err := a.confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCeremonyCancelled
	}
	return nil
}

func (a *SoftwareAuthenticator) load(credentialID string) (softwareCredential, error) {
	raw, err := keyring.Get(keyringService, credentialID)
	if err != nil {
		return softwareCredential{}, fmt.Errorf("read credential from keychain: %w", err)
	}
	var cred softwareCredential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return softwareCredential{}, fmt.Errorf("decode credential: %w", err)
	}
	return cred, nil
}

func (a *SoftwareAuthenticator) store(credentialID string, cred softwareCredential) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	if err := keyring.Set(keyringService, credentialID, string(raw)); err != nil {
		return fmt.Errorf("write credential to keychain: %w", err)
	}
	return nil
}

func prf(secret, evalSalt []byte) []byte {
	m := hmac.New(sha256.New, secret)
	m.Write(evalSalt)
	return m.Sum(nil)
}
