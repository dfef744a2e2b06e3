package sequencer

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go-arp/debug"
)

// Store persists sequencer state. Load returns nil with no error when
// nothing has been saved yet.
type Store interface {
	Load() (*State, error)
	Save(s State) error
	Reset() error
}

// DefaultStatePath returns ~/.config/go-arp/state.json
func DefaultStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-arp", "state.json"), nil
}

// FileStore keeps the state as a single JSON document
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the saved state
func (f *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	s := NewState()
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes s, replacing the previous document atomically
func (f *FileStore) Save(s State) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Reset deletes the saved state
func (f *FileStore) Reset() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LoadOrDefault loads from s, falling back to NewState on a missing or
// unreadable document. The result is normalized and stopped.
func LoadOrDefault(s Store) State {
	return Restore(s.Load())
}

// Restore turns the result of Store.Load into a usable state: defaults
// when loaded is nil or err is set, normalized and stopped either way.
func Restore(loaded *State, err error) State {
	var state State
	switch {
	case err != nil:
		debug.Log("store", "load failed, using defaults: %v", err)
		state = NewState()
	case loaded == nil:
		state = NewState()
	default:
		state = *loaded
	}

	state.Normalize()
	state.Playing = false
	return state
}
