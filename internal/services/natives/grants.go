// Package natives holds money that still has to be handed to the game engine.
package natives

import (
	"sync"

	"github.com/fastprodman/playerledger/internal/sessions"
	"github.com/google/uuid"
)

// GrantQueue accumulates GivePlayerMoney deltas per session until the engine
// bridge drains them.
type GrantQueue struct {
	sessions.BaseObserver

	mu      sync.Mutex
	pending map[uuid.UUID]int64
}

func NewGrantQueue() *GrantQueue {
	return &GrantQueue{pending: make(map[uuid.UUID]int64)}
}

// GivePlayerMoney queues delta for the session. Money for a session that has
// disconnected is dropped: its entry was already cleared on teardown.
func (q *GrantQueue) GivePlayerMoney(s *sessions.Session, delta int64) {
	if delta == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	// Checked under q.mu: teardown marks the session disconnected before
	// OnSessionDestroyed takes q.mu, so a grant either sees the disconnect or
	// is drained by it.
	if !s.IsConnected() {
		return
	}

	q.pending[s.ID()] += delta
}

// Pending returns the undrained delta for the session.
func (q *GrantQueue) Pending(sessionID uuid.UUID) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.pending[sessionID]
}

// Drain returns the undrained delta for the session and resets it.
func (q *GrantQueue) Drain(sessionID uuid.UUID) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	delta := q.pending[sessionID]
	delete(q.pending, sessionID)

	return delta
}

// OnSessionDestroyed drops anything the engine never picked up.
func (q *GrantQueue) OnSessionDestroyed(s *sessions.Session) {
	q.Drain(s.ID())
}
