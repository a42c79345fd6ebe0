// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ceremony

import (
	"context"

	"github.com/MKhiriev/go-sanctuary/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/ceremony_mock.go -package=mock

// Provider is the relying-party side of a device-credential ceremony. The
// key lifecycle treats it as opaque: it only consumes the verified flag, the
// credential record and the updated signature counter.
type Provider interface {
	// GenerateRegistrationOptions builds the options passed to the
	// authenticator for a new credential. exclude lists credentials already
	// registered for the user.
	GenerateRegistrationOptions(ctx context.Context, user User, challenge string, exclude []models.CredentialRecord) (RegistrationOptions, error)

	// VerifyRegistrationResponse checks the authenticator's answer against
	// the expected challenge and returns the credential to store.
	VerifyRegistrationResponse(ctx context.Context, resp RegistrationResponse, expectedChallenge string) (RegistrationVerification, error)

	// GenerateAuthenticationOptions builds assertion options restricted to
	// the user's credentials.
	GenerateAuthenticationOptions(ctx context.Context, challenge string, allowed []models.CredentialRecord) (AuthenticationOptions, error)

	// VerifyAuthenticationResponse checks an assertion made with credential
	// and returns the new signature counter.
	VerifyAuthenticationResponse(ctx context.Context, resp AuthenticationResponse, expectedChallenge string, credential models.CredentialRecord) (AuthenticationVerification, error)
}

// Authenticator is the device side: it creates credentials, signs
// assertions and evaluates the PRF extension. Implementations block on user
// interaction and must honour ctx cancellation; a user dismissal is reported
// as ErrCeremonyCancelled.
type Authenticator interface {
	Register(ctx context.Context, opts RegistrationOptions) (RegistrationResponse, error)
	Authenticate(ctx context.Context, opts AuthenticationOptions) (AuthenticationResponse, error)
}
