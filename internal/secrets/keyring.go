// Package secrets stores provider credentials.
package secrets

// file: internal/secrets/keyring.go

import (
	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// keyringService is the service name under which entries are stored in the
// OS keyring.
const keyringService = "SwissknifeMCP"

// KeyringStore stores secrets in the OS keyring.
type KeyringStore struct {
	logger logging.Logger
}

var _ Store = (*KeyringStore)(nil)

// NewKeyringStore creates a keyring-backed secret store.
func NewKeyringStore(logger logging.Logger) *KeyringStore {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &KeyringStore{
		logger: logger.WithField("component", "keyring_secrets"),
	}
}

// IsAvailable checks whether the OS keyring service is accessible.
func (s *KeyringStore) IsAvailable() bool {
	_, err := keyring.Get(keyringService, "availability_probe")
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		s.logger.Warn("Keyring service is inaccessible or permissions are insufficient.", "error", err)
		return false
	}
	return true
}

// Get returns the secret stored under key, or empty when absent.
func (s *KeyringStore) Get(key string) (string, error) {
	value, err := keyring.Get(keyringService, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to load secret %q from system keyring", key)
	}
	return value, nil
}

// Set stores value under key.
func (s *KeyringStore) Set(key, value string) error {
	if value == "" {
		return errors.New("cannot save empty secret to keyring")
	}
	if err := keyring.Set(keyringService, key, value); err != nil {
		return errors.Wrapf(err, "failed to save secret %q to system keyring", key)
	}
	s.logger.Debug("Secret saved to system keyring.", "key", key)
	return nil
}

// Delete removes the secret stored under key.
func (s *KeyringStore) Delete(key string) error {
	err := keyring.Delete(keyringService, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrapf(err, "failed to delete secret %q from system keyring", key)
	}
	return nil
}
