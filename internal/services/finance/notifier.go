package finance

import "github.com/fastprodman/playerledger/internal/sessions"

// Notifier is told about every visible change to a session's cash.
type Notifier interface {
	CashChanged(s *sessions.Session, delta int64)
}

// NativeCalls forwards cash changes to the game engine's own money counter.
type NativeCalls interface {
	GivePlayerMoney(s *sessions.Session, delta int64)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(s *sessions.Session, delta int64)

func (f NotifierFunc) CashChanged(s *sessions.Session, delta int64) { f(s, delta) }

// NativeCallsFunc adapts a function to NativeCalls.
type NativeCallsFunc func(s *sessions.Session, delta int64)

func (f NativeCallsFunc) GivePlayerMoney(s *sessions.Session, delta int64) { f(s, delta) }
