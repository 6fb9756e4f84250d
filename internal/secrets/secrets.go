// Package secrets stores provider credentials, preferring the OS keyring
// and falling back to a permission-restricted file when no keyring is
// available.
package secrets

// file: internal/secrets/secrets.go

import (
	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// Store defines the interface for storing and retrieving named secrets.
type Store interface {
	// Get returns the secret stored under key. A missing key returns an
	// empty string and no error.
	Get(key string) (string, error)

	// Set stores value under key, replacing any existing value.
	Set(key, value string) error

	// Delete removes the secret stored under key. Deleting a missing key
	// is not an error.
	Delete(key string) error
}

// NewStore creates the most appropriate secret store. It uses the OS
// keyring when available and falls back to file-based storage at
// fallbackPath otherwise.
func NewStore(fallbackPath string, logger logging.Logger) (Store, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	keyringStore := NewKeyringStore(logger)
	if keyringStore.IsAvailable() {
		logger.Info("Using OS keyring for secret storage.")
		return keyringStore, nil
	}

	logger.Info("OS keyring not available, falling back to file-based secret storage.", "path", fallbackPath)
	return NewFileStore(fallbackPath, logger)
}
