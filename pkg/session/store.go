// Package session projects the identity client's credential and user
// state into a reactive store consumed by UI bindings, and orchestrates
// the session lifecycle: initialization, login, logout and proactive token
// refresh.
package session

import (
	"sync"

	"github.com/harbourgate/identity-go/pkg/credstore"
	"github.com/harbourgate/identity-go/pkg/identity"
)

// State is a snapshot of the session. The role flags are computed from
// User.Role on demand and are never stored independently, so they cannot
// go stale.
type State struct {
	// User is the signed-in user, or nil.
	User *identity.User

	// AccessToken and RefreshToken mirror the credential store for UI
	// visibility. The credential store remains the owner.
	AccessToken  string
	RefreshToken string

	// Loading reports an in-flight lifecycle operation.
	Loading bool

	// Err holds the most recent operation error message, or "".
	Err string
}

// IsAuthenticated reports whether a user is signed in.
func (s State) IsAuthenticated() bool { return s.User != nil }

// IsAdmin reports whether the signed-in user is at least an admin.
func (s State) IsAdmin() bool {
	return s.User != nil && s.User.Role.AtLeast(identity.RoleAdmin)
}

// IsSuperAdmin reports whether the signed-in user is a super admin.
func (s State) IsSuperAdmin() bool {
	return s.User != nil && s.User.Role.AtLeast(identity.RoleSuperAdmin)
}

// Store is a reducer-style state container. Each transition is atomic:
// subscribers only ever observe complete states, in the order transitions
// were applied. Overlapping async operations resolve last-writer-wins.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
}

// NewStore returns a store in its initial state: loading, no user.
func NewStore() *Store {
	return &Store{
		state: State{Loading: true},
		subs:  make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called synchronously after every
// transition, starting with the current state. The returned function
// unsubscribes.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := s.state
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// SetLoading flips the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.apply(func(st *State) {
		st.Loading = loading
	})
}

// SetUser installs the signed-in user and the mirrored token pair, and
// clears the loading and error flags. A nil user with empty credentials
// is a valid logged-out assignment.
func (s *Store) SetUser(user *identity.User, creds credstore.Credentials) {
	s.apply(func(st *State) {
		st.User = user
		st.AccessToken = creds.AccessToken
		st.RefreshToken = creds.RefreshToken
		st.Loading = false
		st.Err = ""
	})
}

// SetError records an error message and clears the loading flag.
func (s *Store) SetError(msg string) {
	s.apply(func(st *State) {
		st.Err = msg
		st.Loading = false
	})
}

// ClearError clears the error message.
func (s *Store) ClearError() {
	s.apply(func(st *State) {
		st.Err = ""
	})
}

// Reset returns the store to the logged-out state with loading false.
func (s *Store) Reset() {
	s.apply(func(st *State) {
		*st = State{}
	})
}

// apply runs one transition and notifies subscribers with the resulting
// snapshot. Notification happens outside the lock so subscribers may read
// the store re-entrantly.
func (s *Store) apply(transition func(*State)) {
	s.mu.Lock()
	transition(&s.state)
	snapshot := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
