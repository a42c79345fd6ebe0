// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemeVersion is the ordinal stage of a user's unlock mechanism. The set is
// closed: values outside the declared constants are rejected by
// [ParseSchemeVersion] and by JSON decoding.
//
// The same type also names a key version: the scheme under which a content
// key was generated. Entries, envelopes and metadata carry it so that a key
// and the data it protects can always be matched.
type SchemeVersion int

const (
	// SchemeRandomKey is the legacy scheme: a random key kept only on the
	// local device.
	SchemeRandomKey SchemeVersion = 1

	// SchemePassphraseRecovery derives the content key from a memorized
	// passphrase; a printed recovery phrase is the second unlock path.
	SchemePassphraseRecovery SchemeVersion = 2

	// SchemePasskeyRecovery uses an independently generated master key wrapped
	// once per device credential, once for recovery and once for the
	// passphrase.
	SchemePasskeyRecovery SchemeVersion = 3
)

// ErrUnknownSchemeVersion is returned whenever a value outside the closed set
// of scheme versions crosses a boundary (storage, JSON, configuration).
var ErrUnknownSchemeVersion = errors.New("unknown scheme version")

// ParseSchemeVersion converts a raw integer into a [SchemeVersion], rejecting
// anything that is not a declared constant.
func ParseSchemeVersion(v int) (SchemeVersion, error) {
	s := SchemeVersion(v)
	if !s.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSchemeVersion, v)
	}
	return s, nil
}

// IsValid reports whether s is one of the declared scheme versions.
func (s SchemeVersion) IsValid() bool {
	switch s {
	case SchemeRandomKey, SchemePassphraseRecovery, SchemePasskeyRecovery:
		return true
	}
	return false
}

func (s SchemeVersion) String() string {
	switch s {
	case SchemeRandomKey:
		return "random-key"
	case SchemePassphraseRecovery:
		return "passphrase+recovery"
	case SchemePasskeyRecovery:
		return "passkey+recovery"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// transitions is the exhaustive edge list of the scheme state machine.
//
//	1 -> 2  passphrase set up over a legacy random key
//	2 -> 3  first device credential registered
//	3 -> 2  last device credential deleted
var transitions = map[SchemeVersion][]SchemeVersion{
	SchemeRandomKey:          {SchemePassphraseRecovery},
	SchemePassphraseRecovery: {SchemePasskeyRecovery},
	SchemePasskeyRecovery:    {SchemePassphraseRecovery},
}

// CanTransition reports whether the state machine has an edge from -> to.
// Unknown versions never transition.
func CanTransition(from, to SchemeVersion) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the version as its integer ordinal.
func (s SchemeVersion) MarshalJSON() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSchemeVersion, int(s))
	}
	return json.Marshal(int(s))
}

// UnmarshalJSON decodes an integer ordinal and rejects unknown values.
func (s *SchemeVersion) UnmarshalJSON(b []byte) error {
	var raw int
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode scheme version: %w", err)
	}
	parsed, err := ParseSchemeVersion(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
