// Package session holds the signed-in user, the access token and the cloud
// sync status. It knows nothing about the ledger.
package session

import (
	"sync"
	"time"
)

// SyncStatus is the state of the last cloud save.
type SyncStatus string

const (
	StatusIdle    SyncStatus = "idle"
	StatusSyncing SyncStatus = "syncing"
	StatusSuccess SyncStatus = "success"
	StatusError   SyncStatus = "error"
)

// User is the account returned by login.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Store is the in-memory session. Tokens are optionally mirrored to a
// TokenStore so a later process can resume the session.
type Store struct {
	mu     sync.Mutex
	user   *User
	token  string
	status SyncStatus
	gen    uint64
	tokens TokenStore
}

// New returns an empty session. tokens may be nil.
func New(tokens TokenStore) *Store {
	return &Store{status: StatusIdle, tokens: tokens}
}

// Restore loads a saved session from the token store, if any.
func (s *Store) Restore() bool {
	if s.tokens == nil {
		return false
	}
	u, tok, err := s.tokens.Load()
	if err != nil || tok == "" {
		return false
	}
	s.mu.Lock()
	s.user, s.token = &u, tok
	s.mu.Unlock()
	return true
}

// SignIn records a successful login.
func (s *Store) SignIn(u User, token string) error {
	s.mu.Lock()
	s.user, s.token = &u, token
	s.mu.Unlock()
	if s.tokens != nil {
		return s.tokens.Save(u, token)
	}
	return nil
}

// SignOut forgets the user and token. It never touches the network.
func (s *Store) SignOut() error {
	s.mu.Lock()
	s.user, s.token = nil, ""
	s.mu.Unlock()
	if s.tokens != nil {
		return s.tokens.Clear()
	}
	return nil
}

// User returns the signed-in user.
func (s *Store) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Token returns the access token, empty when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Active reports whether both a user and a token are present.
func (s *Store) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.token != ""
}

// SyncStatus returns the current sync status.
func (s *Store) SyncStatus() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetSyncStatus sets the status and cancels any pending revert.
func (s *Store) SetSyncStatus(st SyncStatus) {
	s.mu.Lock()
	s.status = st
	s.gen++
	s.mu.Unlock()
}

// RevertAfter sets st and returns to idle after d, unless the status was
// changed again in the meantime. The returned timer may be stopped.
func (s *Store) RevertAfter(st SyncStatus, d time.Duration) *time.Timer {
	s.mu.Lock()
	s.status = st
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	return time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen == gen {
			s.status = StatusIdle
			s.gen++
		}
	})
}

// DismissError returns an error status to idle.
func (s *Store) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusError {
		s.status = StatusIdle
		s.gen++
	}
}
