package session

import "sync"

// State holds values the application itself wrote into session state,
// keyed by the same keys widgets use.  Widget-owned values live in the
// widget registry, not here.
type State struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewState returns an empty State.
func NewState() *State { return &State{values: make(map[string]any)} }

// Seed stores v under key.
func (s *State) Seed(key string, v any) {
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
}

// Seeded reports whether the application wrote key.
func (s *State) Seeded(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Get returns the value stored under key.
func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Delete removes key.
func (s *State) Delete(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}
