// Package keys resolves provider credentials from a keys.json file with an
// environment fallback.
package keys

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/tidwall/jsonc"
)

// DefaultFile is the credential file read when no path is configured.
const DefaultFile = "keys.json"

// ErrMissingKey is returned when a key is in neither the file nor the
// environment.
var ErrMissingKey = errors.New("key not found")

// Store looks keys up in a JSON object of name to value. Comments and
// trailing commas are allowed in the file. Values missing from the file,
// or empty there, are read from the environment.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	getenv func(string) string
}

// New returns a Store backed only by the environment.
func New() *Store {
	return &Store{values: map[string]string{}, getenv: os.Getenv}
}

// Load reads path into a new Store. A missing file is not an error: the
// store then falls back to the environment for every key.
func Load(path string) (*Store, error) {
	s := New()
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := s.parse(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// parse strips comments before decoding. Non-string values are rejected.
func (s *Store) parse(data []byte) error {
	var values map[string]string
	if err := json.Unmarshal(jsonc.ToJSON(data), &values); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

// Set stores a key in memory, taking precedence over the environment.
func (s *Store) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// GetKey returns the value for name.
func (s *Store) GetKey(name string) (string, error) {
	s.mu.RLock()
	v := s.values[name]
	s.mu.RUnlock()
	if v != "" {
		return v, nil
	}
	if v := s.getenv(name); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s: %w", name, ErrMissingKey)
}

// Has reports whether name resolves to a non-empty value.
func (s *Store) Has(name string) bool {
	_, err := s.GetKey(name)
	return err == nil
}
