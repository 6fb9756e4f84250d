// Package secrets stores provider credentials.
package secrets

// file: internal/secrets/file.go

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// FileStore stores secrets as a JSON object in a 0600-permission file. It
// is the fallback for systems without a usable keyring; values are not
// encrypted, only permission-restricted.
type FileStore struct {
	path   string
	logger logging.Logger

	mu sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed secret store at path, creating parent
// directories as needed.
func NewFileStore(path string, logger logging.Logger) (*FileStore, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	if path == "" {
		return nil, errors.New("secret file path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrapf(err, "failed to create secret storage directory for %s", path)
	}
	return &FileStore{
		path:   path,
		logger: logger.WithField("component", "file_secrets"),
	}, nil
}

// Get returns the secret stored under key, or empty when absent.
func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set stores value under key.
func (s *FileStore) Set(key, value string) error {
	if value == "" {
		return errors.New("cannot save empty secret")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// Delete removes the secret stored under key.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, errors.Wrapf(err, "failed to read secret file %s", s.path)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "failed to parse secret file %s", s.path)
	}
	return values, nil
}

// save writes the full secret map through a temp file rename so a crash
// mid-write never truncates the store.
func (s *FileStore) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode secrets")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write secret file %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "failed to replace secret file %s", s.path)
	}
	s.logger.Debug("Secret file updated.", "path", s.path)
	return nil
}
