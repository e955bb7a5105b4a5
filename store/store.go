// Package store persists the merchant's local state: the commerce API
// credential and the cached subscription list. Both live under fixed
// keys in one small JSON file with no schema versioning, mirroring
// the browser-local storage this replaces.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	keyAPIKey        = "coinbaseApiKey"
	keySubscriptions = "subscriptions"
)

// Subscription is a locally cached recurring-payment template.
type Subscription struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}

// Store is a file-backed key store. Safe for concurrent use from one
// process; all reads and writes go through the file so state survives
// restarts.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open prepares a store at path, creating parent directories as
// needed. The file itself is created lazily on first write.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	return &Store{path: path}, nil
}

// APIKey returns the persisted credential, if one is set.
func (s *Store) APIKey() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false
	}
	raw, ok := entries[keyAPIKey]
	if !ok {
		return "", false
	}
	var key string
	if err := json.Unmarshal(raw, &key); err != nil || key == "" {
		return "", false
	}
	return key, true
}

// SetAPIKey persists the credential.
func (s *Store) SetAPIKey(key string) error {
	if key == "" {
		return errors.New("store: api key is empty")
	}
	return s.set(keyAPIKey, key)
}

// Subscriptions returns the cached subscription list, empty when
// nothing has been cached yet.
func (s *Store) Subscriptions() ([]Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	raw, ok := entries[keySubscriptions]
	if !ok {
		return nil, nil
	}
	var subs []Subscription
	if err := json.Unmarshal(raw, &subs); err != nil {
		return nil, fmt.Errorf("store: decode subscriptions: %w", err)
	}
	return subs, nil
}

// SetSubscriptions replaces the cached subscription list.
func (s *Store) SetSubscriptions(subs []Subscription) error {
	return s.set(keySubscriptions, subs)
}

// Clear removes every persisted entry. Logout depends on this being
// all-or-nothing: the file is replaced in one rename so a crash can
// not leave a torn, partially-logged-out state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(map[string]json.RawMessage{})
}

func (s *Store) set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	entries[key] = encoded
	return s.save(entries)
}

func (s *Store) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read: %w", err)
	}

	entries := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("store: decode: %w", err)
		}
	}
	return entries, nil
}

func (s *Store) save(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("store: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: replace: %w", err)
	}
	return nil
}
