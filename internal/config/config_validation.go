// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.UserID == "" || cfg.App.RPID == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.Storage.DSN == "" {
		return ErrInvalidStorageConfigs
	}
	switch cfg.Storage.LegacyBackend {
	case LegacyBackendKeyring:
	case LegacyBackendBolt:
		if cfg.Storage.LegacyPath == "" {
			return fmt.Errorf("%w: bolt legacy backend needs a path", ErrInvalidStorageConfigs)
		}
	default:
		return fmt.Errorf("%w: unknown legacy backend %q", ErrInvalidStorageConfigs, cfg.Storage.LegacyBackend)
	}

	if cfg.Crypto.PBKDF2Iterations < crypto.MinPBKDF2Iterations {
		return fmt.Errorf("%w: pbkdf2 iterations %d below %d", ErrInvalidCryptoConfigs, cfg.Crypto.PBKDF2Iterations, crypto.MinPBKDF2Iterations)
	}

	if cfg.Session.IdleTimeout <= 0 || cfg.Session.CheckInterval <= 0 {
		return ErrInvalidSessionConfigs
	}

	if cfg.Ceremony.Timeout <= 0 || cfg.Ceremony.ChallengeTTL <= 0 {
		return ErrInvalidCeremonyConfigs
	}

	return nil
}
