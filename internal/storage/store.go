package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/voxshell/backend/internal/shared/types"
)

const stateFile = "shell-state.json"

// Store is a file-backed store for shell state.
type Store struct {
	mu    sync.Mutex
	path  string
	state shellState
}

type shellState struct {
	DeviceID  string              `json:"device_id"`
	PushToken string              `json:"push_token,omitempty"`
	ShellURL  string              `json:"shell_url,omitempty"`
	Dedup     []types.DedupRecord `json:"dedup,omitempty"`
}

// Open loads existing state from dir, creating the directory and a fresh
// device identifier on first run.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	s := &Store{path: filepath.Join(dir, stateFile)}

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.state); err != nil {
			return nil, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
		}
	case os.IsNotExist(err):
		// first run, nothing to load
	default:
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if s.state.DeviceID == "" {
		s.state.DeviceID = uuid.NewString()
		if err := s.save(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// DeviceID returns the stable device identifier.
func (s *Store) DeviceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DeviceID
}

// PushToken returns the registered push token, empty if none.
func (s *Store) PushToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PushToken
}

// SetPushToken persists a new push token.
func (s *Store) SetPushToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PushToken = token
	return s.save()
}

// ShellURL returns the last-used shell URL, empty if none was persisted.
func (s *Store) ShellURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ShellURL
}

// SetShellURL persists a new shell URL.
func (s *Store) SetShellURL(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ShellURL = url
	return s.save()
}

// DedupRecords returns a copy of the persisted dedup window.
func (s *Store) DedupRecords() []types.DedupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.DedupRecord, len(s.state.Dedup))
	copy(out, s.state.Dedup)
	return out
}

// SetDedupRecords replaces the persisted dedup window.
func (s *Store) SetDedupRecords(records []types.DedupRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Dedup = make([]types.DedupRecord, len(records))
	copy(s.state.Dedup, records)
	return s.save()
}

// save writes the state atomically. Callers must hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
