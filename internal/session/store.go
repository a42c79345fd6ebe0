// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session holds the unwrapped content key for the lifetime of an
// unlocked session.
//
// The key is sealed in a memguard Enclave and only decrypted into locked
// memory while a caller holds a [Lease]. Nothing here is persisted. Lock is
// the explicit "lock" operation; an idle session is locked by the auto-lock
// worker or by the next Acquire.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/go-sanctuary/internal/crypto"
	"github.com/MKhiriev/go-sanctuary/internal/logger"
	"github.com/MKhiriev/go-sanctuary/models"
)

// DefaultIdleTimeout is how long an unlocked session may stay unused.
const DefaultIdleTimeout = 30 * time.Minute

var (
	// ErrLocked is returned by Acquire when no key is held.
	ErrLocked = errors.New("session is locked")

	// ErrWrongUser is returned by Acquire when the session belongs to
	// another user.
	ErrWrongUser = errors.New("session belongs to another user")
)

// Store is the only long-lived holder of an unwrapped content key.
type Store struct {
	mu sync.Mutex

	enclave  *memguard.Enclave
	userID   string
	version  models.SchemeVersion
	lastUsed time.Time

	idleTimeout time.Duration
	now         func() time.Time
	log         *logger.Logger
}

// NewStore returns a locked Store. A non-positive idleTimeout means
// DefaultIdleTimeout.
func NewStore(idleTimeout time.Duration, log *logger.Logger) *Store {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{idleTimeout: idleTimeout, now: time.Now, log: log}
}

// Unlock seals key for userID, replacing whatever the store held. version is
// the key generation the key belongs to. The caller keeps ownership of key
// and should wipe it.
func (s *Store) Unlock(userID string, key crypto.Key, version models.SchemeVersion) error {
	if key.IsZero() {
		return fmt.Errorf("unlock session: %w", crypto.ErrInvalidKey)
	}

	// NewEnclave wipes its argument, so hand it a copy.
	enclave := memguard.NewEnclave(key.Export())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = enclave
	s.userID = userID
	s.version = version
	s.lastUsed = s.now()

	s.log.Info().Str("func", "session.Unlock").Str("user_id", userID).Int("key_version", int(version)).Msg("session unlocked")
	return nil
}

// Lock drops the sealed key. Leases already handed out stay usable until
// released. Locking a locked store is a no-op.
func (s *Store) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockLocked("explicit")
}

func (s *Store) lockLocked(reason string) {
	if s.enclave == nil {
		return
	}
	s.enclave = nil
	s.log.Info().Str("func", "session.Lock").Str("user_id", s.userID).Str("reason", reason).Msg("session locked")
	s.userID = ""
	s.version = 0
}

// Unlocked reports whether a key is held for userID.
func (s *Store) Unlocked(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enclave != nil && s.userID == userID
}

// Acquire opens the sealed key for userID into locked memory. The lease must
// be released once the caller's operation is finished. Acquiring counts as
// activity for the idle timer; a session already idle past the timeout is
// locked instead.
func (s *Store) Acquire(userID string) (*Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enclave == nil {
		return nil, ErrLocked
	}
	if s.idle() {
		s.lockLocked("idle")
		return nil, ErrLocked
	}
	if s.userID != userID {
		return nil, ErrWrongUser
	}

	buf, err := s.enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("open session key: %w", err)
	}
	key, err := crypto.BorrowKey(buf.Bytes())
	if err != nil {
		buf.Destroy()
		return nil, err
	}

	s.lastUsed = s.now()
	return &Lease{buf: buf, key: key, version: s.version}, nil
}

// LockIfIdle locks the store when it has not been used for longer than the
// idle timeout. It reports whether it locked.
func (s *Store) LockIfIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enclave == nil || !s.idle() {
		return false
	}
	s.lockLocked("idle")
	return true
}

func (s *Store) idle() bool {
	return s.now().Sub(s.lastUsed) > s.idleTimeout
}

// Lease is a capability granting use of the session key until Release.
type Lease struct {
	once    sync.Once
	buf     *memguard.LockedBuffer
	key     crypto.Key
	version models.SchemeVersion
}

// Key returns the content key. It must not be used after Release.
func (l *Lease) Key() crypto.Key { return l.key }

// Version returns the key generation of the leased key.
func (l *Lease) Version() models.SchemeVersion { return l.version }

// Release wipes and frees the leased key. Safe to call more than once.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.buf.Destroy()
		l.key = crypto.Key{}
	})
}
