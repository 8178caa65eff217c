package account

import "sync"

// State is the account information attached to a single connected session.
// The zero value is an unidentified, unregistered account with an empty bank.
type State struct {
	mu sync.Mutex

	userID           uint64
	isRegistered     bool
	bankBalance      int64
	level            Level
	persistedLevel   Level
	levelIsTemporary bool
	isVip            bool
	gangID           uint64
}

// NewState returns the state of a session that has not identified yet.
func NewState() *State {
	return &State{}
}

// InitializeFromRecord populates the state from a loaded account record.
func (s *State) InitializeFromRecord(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = rec.UserID
	s.isRegistered = rec.IsRegistered
	s.bankBalance = rec.BankBalance
	s.level = rec.Level
	s.persistedLevel = rec.Level
	s.levelIsTemporary = false
	s.isVip = rec.IsVip
	s.gangID = rec.GangID
}

// Record serializes the state for persistence.
func (s *State) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Record{
		UserID:       s.userID,
		BankBalance:  s.bankBalance,
		IsRegistered: s.isRegistered,
		Level:        s.persistedLevel,
		IsVip:        s.isVip,
		GangID:       s.gangID,
	}
}

func (s *State) UserID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.userID
}

// IsIdentified reports whether the session has been bound to an account.
func (s *State) IsIdentified() bool {
	return s.UserID() != 0
}

func (s *State) IsRegistered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isRegistered
}

func (s *State) SetRegistered(registered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isRegistered = registered
}

func (s *State) BankBalance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bankBalance
}

// UpdateBankBalance calls fn with the current balance and stores its result
// unless fn returns an error. The read and the write happen under one lock.
func (s *State) UpdateBankBalance(fn func(current int64) (int64, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.bankBalance)
	if err != nil {
		return err
	}

	s.bankBalance = next

	return nil
}

func (s *State) Level() Level {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.level
}

func (s *State) LevelIsTemporary() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.levelIsTemporary
}

// SetLevel changes the level. Temporary levels last until disconnect and are
// never written back to storage.
func (s *State) SetLevel(level Level, temporary bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.level = level
	s.levelIsTemporary = temporary

	if !temporary {
		s.persistedLevel = level
	}
}

func (s *State) IsVip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isVip
}

func (s *State) GangID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gangID
}
