package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Bernardxu123/unicom-calc/internal/persist"
	"github.com/Bernardxu123/unicom-calc/internal/session"
)

// sessionKey is the state-file key holding the signed-in session when the
// OS keyring is not used.
const sessionKey = "unicom-calc-session"

type savedSession struct {
	User  session.User `json:"user"`
	Token string       `json:"token"`
}

// stateTokenStore keeps the session next to the ledger in the state file.
type stateTokenStore struct {
	backend persist.Backend
}

func (s *stateTokenStore) Load() (session.User, string, error) {
	raw, err := s.backend.Get(context.Background(), sessionKey)
	if err != nil {
		return session.User{}, "", err
	}
	if len(raw) == 0 {
		return session.User{}, "", persist.ErrNotFound
	}
	var saved savedSession
	if err := json.Unmarshal(raw, &saved); err != nil {
		return session.User{}, "", fmt.Errorf("decode session: %w", err)
	}
	return saved.User, saved.Token, nil
}

func (s *stateTokenStore) Save(u session.User, token string) error {
	b, err := json.Marshal(savedSession{User: u, Token: token})
	if err != nil {
		return err
	}
	return s.backend.Put(context.Background(), sessionKey, b)
}

func (s *stateTokenStore) Clear() error {
	return s.backend.Put(context.Background(), sessionKey, []byte{})
}
