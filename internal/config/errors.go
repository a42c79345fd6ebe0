package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates a missing user id or relying party id.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidStorageConfigs indicates an empty DSN or an unusable legacy
	// key store setting.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidCryptoConfigs indicates a PBKDF2 round count below the floor.
	ErrInvalidCryptoConfigs = errors.New("invalid crypto configuration")
	// ErrInvalidSessionConfigs indicates a non-positive auto-lock duration.
	ErrInvalidSessionConfigs = errors.New("invalid session configuration")
	// ErrInvalidCeremonyConfigs indicates a non-positive ceremony timeout or
	// challenge TTL.
	ErrInvalidCeremonyConfigs = errors.New("invalid ceremony configuration")
)
