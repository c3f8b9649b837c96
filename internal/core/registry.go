package core

import (
	"sort"
	"sync"
)

// Registry maps a user to the set of live sessions bound to that user. A
// user appears as a key exactly while at least one session is registered;
// removing the last session removes the entry.
//
// The registry is the only mutable shared state in the realtime layer. It
// is mutated by the session lifecycle (via Hub.Attach/Detach) and read by
// the presence tracker and the message router.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]map[*Session]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[int64]map[*Session]struct{}),
	}
}

// Register adds the session to its user's set, creating the entry if
// needed. Registering the same session twice is a no-op. Returns true when
// the user transitioned from offline to online.
func (r *Registry) Register(s *Session) (wentOnline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sessions[s.UserID]
	if !ok {
		set = make(map[*Session]struct{})
		r.sessions[s.UserID] = set
	}
	if _, dup := set[s]; dup {
		return false
	}
	set[s] = struct{}{}
	return len(set) == 1
}

// Deregister removes the session from its user's set, dropping the entry
// when the set becomes empty. Deregistering an unknown session is a no-op;
// disconnects can race with process teardown. Returns true when the user
// transitioned from online to fully offline.
func (r *Registry) Deregister(s *Session) (wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sessions[s.UserID]
	if !ok {
		return false
	}
	if _, present := set[s]; !present {
		return false
	}
	delete(set, s)
	if len(set) == 0 {
		delete(r.sessions, s.UserID)
		return true
	}
	return false
}

// Lookup returns the user's current sessions, possibly none.
func (r *Registry) Lookup(userID int64) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.sessions[userID]
	out := make([]*Session, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

// IsOnline reports whether the user has at least one live session.
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID]) > 0
}

// OnlineUsers returns the sorted set of users with at least one session.
func (r *Registry) OnlineUsers() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]int64, 0, len(r.sessions))
	for id := range r.sessions {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// AllSessions returns every live session across all users.
func (r *Registry) AllSessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0)
	for _, set := range r.sessions {
		for s := range set {
			out = append(out, s)
		}
	}
	return out
}
