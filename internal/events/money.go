// Package events carries notifications about player money and logins to
// whoever presents them.
package events

import (
	"time"

	"github.com/fastprodman/playerledger/internal/sessions"
	"github.com/google/uuid"
)

// CashChanged is published for every visible change to a session's cash.
type CashChanged struct {
	At        time.Time `json:"ts"`
	SessionID uuid.UUID `json:"sessionId"`
	Delta     int64     `json:"delta"`
}

// LoginCompleted is published once a session's account has been loaded.
type LoginCompleted struct {
	At        time.Time `json:"ts"`
	SessionID uuid.UUID `json:"sessionId"`
	UserID    uint64    `json:"userId"`
}

// MoneyIndicator publishes cash changes. It satisfies finance.Notifier.
type MoneyIndicator struct {
	b *Broadcaster[CashChanged]
}

func NewMoneyIndicator(b *Broadcaster[CashChanged]) *MoneyIndicator {
	return &MoneyIndicator{b: b}
}

func (m *MoneyIndicator) CashChanged(s *sessions.Session, delta int64) {
	m.b.Publish(CashChanged{At: time.Now(), SessionID: s.ID(), Delta: delta})
}

// LoginFeed republishes registry login broadcasts.
type LoginFeed struct {
	sessions.BaseObserver

	b *Broadcaster[LoginCompleted]
}

func NewLoginFeed(b *Broadcaster[LoginCompleted]) *LoginFeed {
	return &LoginFeed{b: b}
}

func (f *LoginFeed) OnLogin(event sessions.LoginEvent) {
	f.b.Publish(LoginCompleted{At: time.Now(), SessionID: event.Session.ID(), UserID: event.UserID})
}
