// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ceremony

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/models"
)

// localProvider is a relying party that verifies ECDSA P-256 self-attested
// credentials in process. It pairs with [SoftwareAuthenticator].
type localProvider struct {
	rp      RelyingParty
	timeout time.Duration
	now     func() time.Time
}

// NewLocalProvider returns a [Provider] for the relying party rp.
func NewLocalProvider(rp RelyingParty, timeout time.Duration) Provider {
	return &localProvider{rp: rp, timeout: timeout, now: time.Now}
}

// GenerateRegistrationOptions implements [Provider].
func (p *localProvider) GenerateRegistrationOptions(_ context.Context, user User, challenge string, exclude []models.CredentialRecord) (RegistrationOptions, error) {
	ids := make([]string, 0, len(exclude))
	for _, c := range exclude {
		ids = append(ids, c.CredentialID)
	}

	return RegistrationOptions{
		RP:                 p.rp,
		User:               user,
		Challenge:          challenge,
		ExcludeCredentials: ids,
		PRFEvalSalt:        []byte(crypto.PRFEvalSalt),
		Timeout:            p.timeout,
	}, nil
}

// VerifyRegistrationResponse implements [Provider]. It checks the client data
// type, challenge and RP ID, parses the public key and verifies the self
// attestation signature.
func (p *localProvider) VerifyRegistrationResponse(ctx context.Context, resp RegistrationResponse, expectedChallenge string) (RegistrationVerification, error) {
	log := logger.FromContext(ctx)

	if err := p.checkClientData(resp.ClientDataJSON, clientDataCreate, expectedChallenge); err != nil {
		log.Warn().Err(err).Str("func", "localProvider.VerifyRegistrationResponse").Msg("client data rejected")
		return RegistrationVerification{}, err
	}

	pub, err := parsePublicKey(resp.PublicKey)
	if err != nil {
		return RegistrationVerification{}, err
	}

	digest := sha256.Sum256(resp.ClientDataJSON)
	if !ecdsa.VerifyASN1(pub, digest[:], resp.Signature) {
		log.Warn().Str("func", "localProvider.VerifyRegistrationResponse").Msg("attestation signature invalid")
		return RegistrationVerification{}, fmt.Errorf("%w: attestation signature", ErrNotVerified)
	}

	return RegistrationVerification{
		Verified: true,
		Credential: models.CredentialRecord{
			CredentialID: resp.CredentialID,
			PublicKey:    base64.StdEncoding.EncodeToString(resp.PublicKey),
			Counter:      0,
			Transports:   resp.Transports,
			DeviceName:   resp.DeviceName,
			CreatedAt:    p.now().UTC(),
		},
	}, nil
}

// GenerateAuthenticationOptions implements [Provider].
func (p *localProvider) GenerateAuthenticationOptions(_ context.Context, challenge string, allowed []models.CredentialRecord) (AuthenticationOptions, error) {
	ids := make([]string, 0, len(allowed))
	for _, c := range allowed {
		ids = append(ids, c.CredentialID)
	}

	return AuthenticationOptions{
		RPID:             p.rp.ID,
		Challenge:        challenge,
		AllowCredentials: ids,
		PRFEvalSalt:      []byte(crypto.PRFEvalSalt),
		Timeout:          p.timeout,
	}, nil
}

// VerifyAuthenticationResponse implements [Provider]. Besides the signature
// it requires the counter to grow, unless both the stored and the presented
// counter are zero (authenticators without a counter).
func (p *localProvider) VerifyAuthenticationResponse(ctx context.Context, resp AuthenticationResponse, expectedChallenge string, credential models.CredentialRecord) (AuthenticationVerification, error) {
	log := logger.FromContext(ctx)

	if resp.CredentialID != credential.CredentialID {
		return AuthenticationVerification{}, fmt.Errorf("%w: credential id mismatch", ErrNotVerified)
	}
	if err := p.checkClientData(resp.ClientDataJSON, clientDataGet, expectedChallenge); err != nil {
		log.Warn().Err(err).Str("func", "localProvider.VerifyAuthenticationResponse").Msg("client data rejected")
		return AuthenticationVerification{}, err
	}

	der, err := base64.StdEncoding.DecodeString(credential.PublicKey)
	if err != nil {
		return AuthenticationVerification{}, fmt.Errorf("%w: stored public key: %w", ErrNotVerified, err)
	}
	pub, err := parsePublicKey(der)
	if err != nil {
		return AuthenticationVerification{}, err
	}

	digest := assertionDigest(p.rp.ID, resp.Counter, resp.ClientDataJSON)
	if !ecdsa.VerifyASN1(pub, digest, resp.Signature) {
		log.Warn().Str("func", "localProvider.VerifyAuthenticationResponse").
			Str("credential_id", credential.CredentialID).
			Msg("assertion signature invalid")
		return AuthenticationVerification{}, fmt.Errorf("%w: assertion signature", ErrNotVerified)
	}

	if (resp.Counter != 0 || credential.Counter != 0) && resp.Counter <= credential.Counter {
		log.Warn().Str("func", "localProvider.VerifyAuthenticationResponse").
			Str("credential_id", credential.CredentialID).
			Uint32("stored_counter", credential.Counter).
			Uint32("presented_counter", resp.Counter).
			Msg("signature counter did not increase")
		return AuthenticationVerification{}, fmt.Errorf("%w: signature counter", ErrNotVerified)
	}

	return AuthenticationVerification{Verified: true, NewCounter: resp.Counter}, nil
}

func (p *localProvider) checkClientData(raw []byte, wantType, wantChallenge string) error {
	var cd clientData
	if err := json.Unmarshal(raw, &cd); err != nil {
		return fmt.Errorf("%w: client data: %w", ErrNotVerified, err)
	}
	if cd.Type != wantType {
		return fmt.Errorf("%w: client data type %q", ErrNotVerified, cd.Type)
	}
	if cd.Challenge != wantChallenge {
		return fmt.Errorf("%w: challenge mismatch", ErrNotVerified)
	}
	if cd.RPID != p.rp.ID {
		return fmt.Errorf("%w: rp id %q", ErrNotVerified, cd.RPID)
	}
	return nil
}

func parsePublicKey(der []byte) (*ecdsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %w", ErrNotVerified, err)
	}
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is %T, want ECDSA", ErrNotVerified, key)
	}
	return pub, nil
}

// assertionDigest is SHA-256(SHA-256(rpID) || counter_be32 || SHA-256(clientData)).
func assertionDigest(rpID string, counter uint32, clientDataJSON []byte) []byte {
	rpHash := sha256.Sum256([]byte(rpID))
	cdHash := sha256.Sum256(clientDataJSON)

	msg := make([]byte, 0, 32+4+32)
	msg = append(msg, rpHash[:]...)
	msg = binary.BigEndian.AppendUint32(msg, counter)
	msg = append(msg, cdHash[:]...)

	d := sha256.Sum256(msg)
	return d[:]
}
