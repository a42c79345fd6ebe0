// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// CredentialRecord is the authentication metadata of one registered device
// credential. It carries no key material.
type CredentialRecord struct {
	// CredentialID is the base64url credential identifier.
	CredentialID string
	UserID       string
	// PublicKey is the base64 encoded public key used to verify assertions.
	PublicKey string
	// Counter is the last seen signature counter.
	Counter    uint32
	Transports []string
	DeviceName string
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// ChallengeType separates registration challenges from authentication ones;
// a challenge of one type never satisfies the other.
type ChallengeType string

const (
	ChallengeRegistration   ChallengeType = "registration"
	ChallengeAuthentication ChallengeType = "authentication"
)

// Challenge is the short-lived record used during one device-credential
// ceremony.
type Challenge struct {
	UserID string
	// Value is the base64url challenge sent to the authenticator.
	Value     string
	Type      ChallengeType
	CreatedAt time.Time
}

// ExpiredAt reports whether the challenge is older than ttl at now.
func (c Challenge) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.CreatedAt) > ttl
}
