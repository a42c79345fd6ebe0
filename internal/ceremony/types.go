package ceremony

import (
	"time"

	"github.com/MKhiriev/go-sanctuary/models"
)

// Client data types, as in WebAuthn.
const (
	clientDataCreate = "webauthn.create"
	clientDataGet    = "webauthn.get"
)

// RelyingParty identifies the application the credential is scoped to.
type RelyingParty struct {
	ID   string
	Name string
}

// User is the account a credential is created for.
type User struct {
	ID   string
	Name string
}

// RegistrationOptions is what the authenticator needs to create a credential.
type RegistrationOptions struct {
	RP                 RelyingParty
	User               User
	Challenge          string
	ExcludeCredentials []string
	// PRFEvalSalt is the fixed PRF evaluation input.
	PRFEvalSalt []byte
	Timeout     time.Duration
}

// RegistrationResponse is the authenticator's answer to RegistrationOptions.
type RegistrationResponse struct {
	CredentialID string
	// PublicKey is the PKIX DER encoded credential public key.
	PublicKey []byte
	// ClientDataJSON carries type, challenge and RP ID.
	ClientDataJSON []byte
	// Signature is a self attestation over SHA-256(ClientDataJSON).
	Signature  []byte
	Transports []string
	DeviceName string
	// PRFOutput is the raw PRF result in whatever shape the platform uses.
	// It is normalized with NormalizePRFOutput before use.
	PRFOutput any
}

// RegistrationVerification is the provider's verdict on a registration.
type RegistrationVerification struct {
	Verified   bool
	Credential models.CredentialRecord
}

// AuthenticationOptions is what the authenticator needs to sign an assertion.
type AuthenticationOptions struct {
	RPID             string
	Challenge        string
	AllowCredentials []string
	PRFEvalSalt      []byte
	Timeout          time.Duration
}

// AuthenticationResponse is the authenticator's assertion.
type AuthenticationResponse struct {
	CredentialID   string
	ClientDataJSON []byte
	Counter        uint32
	// Signature covers SHA-256(rpID) || counter || SHA-256(ClientDataJSON).
	Signature []byte
	PRFOutput any
}

// AuthenticationVerification is the provider's verdict on an assertion.
type AuthenticationVerification struct {
	Verified   bool
	NewCounter uint32
}

type clientData struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	RPID      string `json:"rpId"`
}
