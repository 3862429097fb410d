package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Settings is the persisted configuration document. All fields live in a
// single namespaced JSON file so a partial write can never leave one
// setting updated and another stale.
type Settings struct {
	APIKey      string `json:"api_key"`
	APIKeyValid bool   `json:"api_key_valid"`
	Theme       string `json:"theme"`
	GridSnap    bool   `json:"grid_snap"`
	AutoSave    bool   `json:"auto_save"`
}

// DefaultSettings returns the document used when no file exists yet.
func DefaultSettings() Settings {
	return Settings{
		Theme:    "dark",
		GridSnap: true,
		AutoSave: true,
	}
}

// Store persists settings to a JSON file and keeps an in-memory copy.
// Reads are served from memory; every mutation writes the whole
// document back to disk before returning.
type Store struct {
	mu      sync.RWMutex
	path    string
	current Settings
}

// NewStore loads the settings file at path, creating it with defaults
// if it does not exist.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, current: DefaultSettings()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.persist(); err != nil {
				return nil, fmt.Errorf("failed to initialize settings file: %w", err)
			}
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(data, &s.current); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	return s, nil
}

// Get returns a copy of the current settings document.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to the current document and writes the result to
// disk. The in-memory copy is only replaced once the write succeeds.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	fn(&next)

	prev := s.current
	s.current = next
	if err := s.persist(); err != nil {
		s.current = prev
		return prev, err
	}
	return next, nil
}

// SetAPIKey stores the key and resets its validation flag. Validation
// happens on first use, not here.
func (s *Store) SetAPIKey(key string) (Settings, error) {
	return s.Update(func(doc *Settings) {
		doc.APIKey = key
		doc.APIKeyValid = false
	})
}

// MarkAPIKeyValid records the outcome of a validation attempt.
func (s *Store) MarkAPIKeyValid(valid bool) (Settings, error) {
	return s.Update(func(doc *Settings) {
		doc.APIKeyValid = valid
	})
}

func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
