package session

import (
	"sync"

	"github.com/spec-kit/claims-console/internal/domain"
)

// Change describes an identity transition delivered to listeners.
type Change struct {
	// Identity is the new identity; zero when Cleared is true.
	Identity   domain.Identity
	Cleared    bool
	Generation uint64
}

// Listener is notified after every identity change. Listeners run outside the
// store lock, so a listener racing a newer write may observe its Change after that
// write landed; consumers that cache derived state must read Snapshot instead of
// trusting the payload.
type Listener func(Change)

// Store holds the current identity of one console session. It starts anonymous.
// Writers are the login, logout and refetch flows; everyone else reads snapshots.
type Store struct {
	mu         sync.RWMutex
	identity   *domain.Identity
	generation uint64

	listenersMu sync.Mutex
	listeners   []subscription
	nextID      uint64
	closed      bool
}

type subscription struct {
	id uint64
	fn Listener
}

// NewStore returns an anonymous store.
func NewStore() *Store {
	return &Store{}
}

// SetIdentity replaces the stored identity.
func (s *Store) SetIdentity(identity domain.Identity) {
	snapshot := identity.Clone()
	s.mu.Lock()
	s.identity = &snapshot
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.notify(Change{Identity: snapshot.Clone(), Generation: gen})
}

// ClearIdentity drops the stored identity. Clearing an anonymous store notifies
// nobody but still supersedes any refresh in flight.
func (s *Store) ClearIdentity() {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.identity == nil {
		s.mu.Unlock()
		return
	}
	s.identity = nil
	s.mu.Unlock()

	s.notify(Change{Cleared: true, Generation: gen})
}

// CurrentRoles returns the roles of the current identity, empty when anonymous.
func (s *Store) CurrentRoles() domain.RoleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return domain.RoleSet{}
	}
	roles := s.identity.Roles.Clone()
	if roles == nil {
		return domain.RoleSet{}
	}
	return roles
}

// Snapshot returns the current roles together with the generation they belong to.
func (s *Store) Snapshot() (domain.RoleSet, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roles := domain.RoleSet{}
	if s.identity != nil && s.identity.Roles != nil {
		roles = s.identity.Roles.Clone()
	}
	return roles, s.generation
}

// Identity returns a snapshot of the current identity.
func (s *Store) Identity() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return s.identity.Clone(), true
}

// Authenticated reports whether an identity is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Generation increments on every set or clear.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// setIfGeneration stores identity only when no write happened since gen was read.
func (s *Store) setIfGeneration(gen uint64, identity domain.Identity) bool {
	snapshot := identity.Clone()
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return false
	}
	s.identity = &snapshot
	s.generation++
	gen = s.generation
	s.mu.Unlock()

	s.notify(Change{Identity: snapshot.Clone(), Generation: gen})
	return true
}

// Subscribe registers fn for identity changes and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	if s.closed || fn == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

// Close drops every listener. The identity itself is left untouched.
func (s *Store) Close() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.closed = true
	s.listeners = nil
}

func (s *Store) unsubscribe(id uint64) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	for i, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Store) notify(change Change) {
	s.listenersMu.Lock()
	listeners := append([]subscription(nil), s.listeners...)
	s.listenersMu.Unlock()

	for _, sub := range listeners {
		sub.fn(change)
	}
}
