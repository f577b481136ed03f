package config

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const debounceDelay = 500 * time.Millisecond

// JSONStore is an atomic JSON file store with debounced writes.
type JSONStore struct {
	mu      sync.Mutex
	path    string
	timer   *time.Timer
	pending *Config
}

// NewJSONStore creates a store backed by the given file path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the file path used by this store.
func (s *JSONStore) Path() string { return s.path }

// Load reads the configuration from disk. Missing or corrupt files fall
// back to defaults; the defaults are written out so the file exists for
// the user to edit.
func (s *JSONStore) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("config: no config file, creating default", "path", s.path)
			def := Default()
			if werr := s.writeAtomic(&def); werr != nil {
				slog.Warn("config: could not write default config", "path", s.path, "err", werr)
			}
			return &def, nil
		}
		return nil, err
	}

	// Unmarshal over defaults so keys absent from the file keep their
	// default values, matching a partial user-edited config.
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Warn("config: corrupt JSON config, using defaults", "path", s.path, "err", err)
		def := Default()
		return &def, nil
	}
	return &cfg, nil
}

// Save schedules a debounced write of the configuration to disk.
// The actual write happens after 500ms of no further Save calls.
func (s *JSONStore) Save(cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Take a copy so we don't hold a reference to the caller's config
	copy := *cfg
	s.pending = &copy

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(debounceDelay, func() {
		s.mu.Lock()
		c := s.pending
		s.mu.Unlock()
		if c != nil {
			if err := s.writeAtomic(c); err != nil {
				slog.Error("config: failed to write config", "path", s.path, "err", err)
			}
		}
	})
	return nil
}

// Flush forces an immediate write of any pending configuration.
func (s *JSONStore) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	c := s.pending
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	return s.writeAtomic(c)
}

func (s *JSONStore) writeAtomic(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	// Write to temp file, then rename (atomic on Linux)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}
