package config

import "sync"

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu  sync.Mutex
	cfg Config
}

// NewMemStore creates a MemStore seeded with defaults.
func NewMemStore() *MemStore {
	return &MemStore{cfg: Default()}
}

func (s *MemStore) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	return &cfg, nil
}

func (s *MemStore) Save(cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = *cfg
	return nil
}

func (s *MemStore) Flush() error { return nil }
