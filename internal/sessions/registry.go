package sessions

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Registry keeps track of all connected sessions and broadcasts their
// lifecycle to registered observers.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*Session
	observers []Observer
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create registers a new connected session and notifies observers.
func (r *Registry) Create(name string) *Session {
	s := newSession(name)

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	slog.Info("session created", "session", s.id, "name", name)

	for _, o := range r.snapshotObservers() {
		o.OnSessionCreated(s)
	}

	return s
}

// Destroy disconnects the session with the given id. Observers are notified
// after the session is unreachable and marked disconnected. Unknown ids are
// ignored.
func (r *Registry) Destroy(id uuid.UUID) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return false
	}

	s.broadcast.Lock()
	defer s.broadcast.Unlock()

	s.markDisconnected()

	slog.Info("session destroyed", "session", id)

	for _, o := range r.snapshotObservers() {
		o.OnSessionDestroyed(s)
	}

	return true
}

// DestroyAll disconnects every session, e.g. when the server shuts down.
func (r *Registry) DestroyAll() {
	for _, s := range r.Sessions() {
		r.Destroy(s.id)
	}
}

// Get returns the connected session with the given id.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]

	return s, ok
}

// Sessions returns all connected sessions in no particular order.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}

	return out
}

// AddObserver registers o. With replayHistory, OnSessionCreated is invoked for
// every session that is already connected.
func (r *Registry) AddObserver(o Observer, replayHistory bool) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()

	if !replayHistory {
		return
	}

	for _, s := range r.Sessions() {
		o.OnSessionCreated(s)
	}
}

func (r *Registry) RemoveObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = slices.DeleteFunc(r.observers, func(existing Observer) bool {
		return existing == o
	})
}

// NotifyLogin tells observers that a session finished loading its account.
// Nothing is sent for a session that has been destroyed, so observers never
// see OnLogin after OnSessionDestroyed. It reports whether observers ran.
func (r *Registry) NotifyLogin(event LoginEvent) bool {
	s := event.Session

	s.broadcast.Lock()
	defer s.broadcast.Unlock()

	if !s.IsConnected() {
		return false
	}

	for _, o := range r.snapshotObservers() {
		o.OnLogin(event)
	}

	return true
}

// NotifyNameChange tells observers that a session has a new name.
func (r *Registry) NotifyNameChange(s *Session) {
	for _, o := range r.snapshotObservers() {
		o.OnNameChange(s)
	}
}

func (r *Registry) snapshotObservers() []Observer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.observers)
}
