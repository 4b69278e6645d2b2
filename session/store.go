package session

import (
	"sync"
)

const watchBuffer = 8

// Store defines a public type used by authsess APIs.
//
// Store is the in-memory reactive session state. All methods are safe for
// concurrent use. Mutations are generation-guarded: callers sample a
// generation with Begin, and commits carrying a stale generation are
// discarded without error.
type Store struct {
	mu       sync.Mutex
	snap     Snapshot
	gen      uint64
	watchers map[uint64]chan Snapshot
	nextID   uint64
}

// NewStore creates an empty store in the unauthenticated state.
func NewStore() *Store {
	return &Store{
		watchers: make(map[uint64]chan Snapshot),
	}
}

// Begin returns the current generation. Operations that will commit later
// must capture it before their first suspension point.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Advance invalidates every in-flight commit and returns the new
// generation. Logout and teardown use it so that a slow operation resolving
// afterwards cannot resurrect a cleared session.
func (s *Store) Advance() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Valid reports whether gen is still the current generation. Operations
// whose side effects bypass the store (vault-only writes) use it to honor
// the same guard.
func (s *Store) Valid(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// SetLoading flips the loading flag. Returns false if gen is stale.
func (s *Store) SetLoading(gen uint64, loading bool) bool {
	return s.apply(gen, func(snap *Snapshot) {
		snap.Loading = loading
	})
}

// SetUser commits an authenticated user (or nil for "no user") and clears
// the loading flag and error. Returns false if gen is stale.
func (s *Store) SetUser(gen uint64, user *User) bool {
	return s.apply(gen, func(snap *Snapshot) {
		if user != nil {
			u := *user
			snap.User = &u
		} else {
			snap.User = nil
		}
		snap.Loading = false
		snap.Err = nil
	})
}

// SetError records a failure and drops to unauthenticated. Returns false if
// gen is stale.
func (s *Store) SetError(gen uint64, err error) bool {
	return s.apply(gen, func(snap *Snapshot) {
		snap.User = nil
		snap.Loading = false
		snap.Err = err
	})
}

// ClearError clears the error field only. It is not generation-guarded:
// dismissing a stale error message is always safe.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.snap.Err = nil
	snap := s.snap
	watchers := s.watcherList()
	s.mu.Unlock()
	notify(watchers, snap)
}

func (s *Store) apply(gen uint64, mutate func(*Snapshot)) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	mutate(&s.snap)
	snap := s.snap
	watchers := s.watcherList()
	s.mu.Unlock()
	notify(watchers, snap)
	return true
}

func (s *Store) watcherList() []chan Snapshot {
	out := make([]chan Snapshot, 0, len(s.watchers))
	for _, ch := range s.watchers {
		out = append(out, ch)
	}
	return out
}

func notify(watchers []chan Snapshot, snap Snapshot) {
	for _, ch := range watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap
	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	return snap
}

// User returns a copy of the current user, or nil when unauthenticated.
func (s *Store) User() *User {
	return s.Snapshot().User
}

// Authenticated reports whether a user is currently committed.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.User != nil
}

// Loading reports whether an operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Loading
}

// Err returns the last recorded error, or nil.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Err
}

// Watch subscribes to state changes. The returned channel receives a
// snapshot after every applied commit; slow receivers miss intermediate
// snapshots rather than blocking committers. The cancel func removes the
// subscription and closes the channel.
func (s *Store) Watch() (<-chan Snapshot, func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, watchBuffer)
	s.watchers[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}
