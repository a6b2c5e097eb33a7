package simulation

import (
	"sync"

	"github.com/couchcryptid/impact-simulator/internal/domain"
)

// Store owns the session snapshot. All changes go through domain.Reduce under
// a single lock, so readers always see a complete snapshot.
type Store struct {
	mu    sync.RWMutex
	state domain.State
}

// NewStore creates a store holding the initial snapshot.
func NewStore(initial domain.State) *Store {
	return &Store{state: initial}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies an event and returns the resulting state.
func (s *Store) Dispatch(e domain.Event) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.Reduce(s.state, e)
	return s.state
}

// TryStart applies RunStarted if the run guard allows it. The check and the
// transition happen under one lock. On rejection the state is unchanged.
func (s *Store) TryStart() (domain.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanRun() {
		return s.state, false
	}
	s.state = domain.Reduce(s.state, domain.RunStarted{})
	return s.state, true
}
