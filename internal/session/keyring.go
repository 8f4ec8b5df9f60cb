package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "clinicgate-cli"

// KeyringPersister stores the snapshot in the OS keychain/credential
// manager, one entry per API base URL.
type KeyringPersister struct {
	key string
}

// NewKeyringPersister returns a persister for the given key and API base URL
func NewKeyringPersister(key, baseURL string) *KeyringPersister {
	return &KeyringPersister{key: fmt.Sprintf("%s-%s", key, baseURL)}
}

// Load implements Persister
func (p *KeyringPersister) Load(_ context.Context) (*Snapshot, error) {
	data, err := keyring.Get(keyringService, p.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decodeSnapshot([]byte(data))
}

// Save implements Persister
func (p *KeyringPersister) Save(_ context.Context, snap Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := keyring.Set(keyringService, p.key, string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear implements Persister
func (p *KeyringPersister) Clear(_ context.Context) error {
	if err := keyring.Delete(keyringService, p.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
