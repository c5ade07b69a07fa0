package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService names the OS keyring entry used by cardctl.
const KeyringService = "com.github.bernardxu123.unicom-calc"

const keyringUser = "session"

// TokenStore persists a session between processes.
type TokenStore interface {
	Load() (User, string, error)
	Save(u User, token string) error
	Clear() error
}

type savedSession struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// KeyringTokenStore keeps the session in the OS keyring.
type KeyringTokenStore struct {
	Service string
}

func NewKeyringTokenStore() *KeyringTokenStore {
	return &KeyringTokenStore{Service: KeyringService}
}

func (k *KeyringTokenStore) Load() (User, string, error) {
	raw, err := keyring.Get(k.Service, keyringUser)
	if err != nil {
		return User{}, "", fmt.Errorf("keyring get: %w", err)
	}
	var s savedSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return User{}, "", fmt.Errorf("decode keyring session: %w", err)
	}
	return s.User, s.Token, nil
}

func (k *KeyringTokenStore) Save(u User, token string) error {
	b, err := json.Marshal(savedSession{User: u, Token: token})
	if err != nil {
		return err
	}
	if err := keyring.Set(k.Service, keyringUser, string(b)); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func (k *KeyringTokenStore) Clear() error {
	if err := keyring.Delete(k.Service, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
