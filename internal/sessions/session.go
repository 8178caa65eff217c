package sessions

import (
	"sync"

	"github.com/fastprodman/playerledger/internal/account"
	"github.com/google/uuid"
)

// Session is a connected player. It is created and destroyed by the Registry.
type Session struct {
	id      uuid.UUID
	account *account.State

	mu        sync.RWMutex
	name      string
	connected bool

	// broadcast orders the destroy broadcast against other broadcasts about
	// this session. Held while observers run; mu is not.
	broadcast sync.Mutex
}

func newSession(name string) *Session {
	return &Session{
		id:        uuid.New(),
		account:   account.NewState(),
		name:      name,
		connected: true,
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

// Account returns the account state owned by this session.
func (s *Session) Account() *account.State { return s.account }

func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.name
}

func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = name
}

func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.connected
}

// IfConnected runs fn while holding the session's connection state, so the
// session cannot be torn down while fn runs. It reports whether fn ran.
func (s *Session) IfConnected(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return false
	}

	fn()

	return true
}

func (s *Session) markDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = false
}
