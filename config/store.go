package config

import "sync"

// Store holds the current Settings. Every Save replaces the whole snapshot;
// readers always see one complete Settings value.
type Store struct {
	mu         sync.RWMutex
	current    Settings
	configured bool
}

func NewStore() *Store {
	return &Store{}
}

// Save replaces the stored settings wholesale.
func (s *Store) Save(settings Settings) {
	snapshot := settings.Clone()
	s.mu.Lock()
	s.current = snapshot
	s.configured = true
	s.mu.Unlock()
}

// Snapshot returns a copy of the stored settings and whether any save has
// happened yet.
func (s *Store) Snapshot() (Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone(), s.configured
}

// Configured reports whether a save has happened.
func (s *Store) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configured
}
