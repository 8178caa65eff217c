// Package accounts binds session lifecycle to account persistence: accounts
// are loaded when a session identifies and saved when it disconnects.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fastprodman/playerledger/internal/config"
	accountsrepo "github.com/fastprodman/playerledger/internal/repos/accounts"
	"github.com/fastprodman/playerledger/internal/sessions"
	"github.com/google/uuid"
)

var (
	ErrAlreadyIdentified = errors.New("session already identified")
	ErrLoginInProgress   = errors.New("account load already in progress")
)

const (
	defaultLoadTimeout = 5 * time.Second
	defaultSaveTimeout = 10 * time.Second
)

// Manager keeps account data of connected sessions in sync with storage.
// Loads and saves run on their own goroutines; gameplay never waits on them.
type Manager struct {
	sessions.BaseObserver

	registry *sessions.Registry
	repo     accountsrepo.Accounts

	loadTimeout time.Duration
	saveTimeout time.Duration

	mu      sync.Mutex
	loading map[uuid.UUID]struct{}

	inflight sync.WaitGroup
}

// New creates a Manager and subscribes it to the registry.
func New(registry *sessions.Registry, repo accountsrepo.Accounts, cfg config.AccountsConfig) *Manager {
	m := &Manager{
		registry:    registry,
		repo:        repo,
		loadTimeout: cfg.LoadTimeout,
		saveTimeout: cfg.SaveTimeout,
		loading:     make(map[uuid.UUID]struct{}),
	}

	if m.loadTimeout <= 0 {
		m.loadTimeout = defaultLoadTimeout
	}

	if m.saveTimeout <= 0 {
		m.saveTimeout = defaultSaveTimeout
	}

	registry.AddObserver(m, true)

	return m
}

// Close unsubscribes the manager from the registry.
func (m *Manager) Close() {
	m.registry.RemoveObserver(m)
}

// HandleLogin starts loading the account of userID for the session. Unknown
// sessions and a zero user id are ignored. A session identifies at most once
// while connected: further logins fail with ErrAlreadyIdentified, or with
// ErrLoginInProgress while the first load is outstanding. Once the account is
// loaded and the session is still connected, the session's account state is
// populated and the login is broadcast through the registry.
func (m *Manager) HandleLogin(sessionID uuid.UUID, userID uint64) error {
	s, ok := m.registry.Get(sessionID)
	if !ok || userID == 0 {
		return nil
	}

	m.mu.Lock()
	// The account is initialized before the loading mark is cleared, so both
	// checks under m.mu see every completed login.
	if _, loading := m.loading[sessionID]; loading {
		m.mu.Unlock()
		return fmt.Errorf("login %d: %w", userID, ErrLoginInProgress)
	}

	if s.Account().IsIdentified() {
		m.mu.Unlock()
		return fmt.Errorf("login %d: %w", userID, ErrAlreadyIdentified)
	}

	m.loading[sessionID] = struct{}{}
	m.mu.Unlock()

	m.inflight.Add(1)

	go func() {
		defer m.inflight.Done()
		defer m.doneLoading(sessionID)

		m.load(s, userID)
	}()

	return nil
}

func (m *Manager) load(s *sessions.Session, userID uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), m.loadTimeout)
	defer cancel()

	rec, err := m.repo.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, accountsrepo.ErrAccountNotFound) {
			slog.Warn("account not found", "session", s.ID(), "user_id", userID)
			return
		}

		slog.Error("load account data failed", "session", s.ID(), "user_id", userID, "error", err)

		return
	}

	rec.UserID = userID

	applied := s.IfConnected(func() {
		s.Account().InitializeFromRecord(rec)
	})
	if !applied {
		slog.Info("discarding account data of disconnected session", "session", s.ID(), "user_id", userID)
		return
	}

	if !m.registry.NotifyLogin(sessions.LoginEvent{Session: s, UserID: userID}) {
		slog.Info("session disconnected before login broadcast", "session", s.ID(), "user_id", userID)
		return
	}

	slog.Info("account loaded", "session", s.ID(), "user_id", userID)
}

func (m *Manager) doneLoading(sessionID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.loading, sessionID)
}

// IsLoading reports whether an account load for the session is outstanding.
func (m *Manager) IsLoading(sessionID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.loading[sessionID]

	return ok
}

// HandleGuestLogin renames a session that failed to identify and was let in
// as a guest. Its account stays unidentified.
func (m *Manager) HandleGuestLogin(sessionID uuid.UUID, newName string) {
	s, ok := m.registry.Get(sessionID)
	if !ok {
		return
	}

	if newName != "" {
		s.SetName(newName)
	}

	m.registry.NotifyNameChange(s)
}

// SetIsRegistered marks whether the session has to identify to an account
// before being able to play.
func (m *Manager) SetIsRegistered(sessionID uuid.UUID, registered bool) bool {
	s, ok := m.registry.Get(sessionID)
	if !ok {
		return false
	}

	s.Account().SetRegistered(registered)

	return true
}

// OnSessionDestroyed saves the account of identified sessions. The save is
// not awaited and not retried; failures are logged.
func (m *Manager) OnSessionDestroyed(s *sessions.Session) {
	if !s.Account().IsIdentified() {
		return
	}

	rec := s.Account().Record()

	m.inflight.Add(1)

	go func() {
		defer m.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.saveTimeout)
		defer cancel()

		err := m.repo.Save(ctx, rec)
		if err != nil {
			slog.Error("save account data failed", "session", s.ID(), "user_id", rec.UserID, "error", err)
			return
		}

		slog.Info("account saved", "session", s.ID(), "user_id", rec.UserID)
	}()
}

// Wait blocks until all outstanding loads and saves have finished or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		m.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for account operations: %w", ctx.Err())
	}
}
