/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keymanager

import (
	"errors"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/google/uuid"
)

// ErrAlreadyUnlocked is returned when unlocking a session that is already unlocked.
var ErrAlreadyUnlocked = errors.New("wallet already unlocked")

// SessionState tells whether a wallet is unlocked. A session unlocked with a non-zero idle timeout locks itself
// when it is not used for that long.
//
// underlying gcache is threadsafe; mu only guards the current token.
type SessionState struct {
	gstore gcache.Cache
	idle   time.Duration
	token  string
	mu     sync.Mutex
}

// NewSessionState returns a locked session. idle is the idle timeout, 0 disables it.
func NewSessionState(idle time.Duration) *SessionState {
	return &SessionState{
		gstore: gcache.New(0).Build(),
		idle:   idle,
	}
}

// IsUnlocked reports whether the session is unlocked.
func (s *SessionState) IsUnlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeLocked()
}

// Token returns the token of the unlocked session, or an empty string.
func (s *SessionState) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.activeLocked() {
		return ""
	}

	return s.token
}

// Lock locks the session. It reports whether the session was unlocked.
func (s *SessionState) Lock() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasUnlocked := s.activeLocked()

	if s.token != "" {
		s.gstore.Remove(s.token)
		s.token = ""
	}

	return wasUnlocked
}

// unlock opens a new session and returns its token.
func (s *SessionState) unlock() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeLocked() {
		return "", ErrAlreadyUnlocked
	}

	token := uuid.New().String()

	if err := s.set(token); err != nil {
		return "", err
	}

	s.token = token

	return token, nil
}

// touch restarts the idle timeout. It reports whether the session is unlocked.
func (s *SessionState) touch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.activeLocked() {
		return false
	}

	return s.set(s.token) == nil
}

func (s *SessionState) set(token string) error {
	if s.idle > 0 {
		return s.gstore.SetWithExpire(token, struct{}{}, s.idle)
	}

	return s.gstore.Set(token, struct{}{})
}

func (s *SessionState) activeLocked() bool {
	if s.token == "" {
		return false
	}

	if _, err := s.gstore.Get(s.token); err != nil {
		s.token = ""

		return false
	}

	return true
}
