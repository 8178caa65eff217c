package sessions

// LoginEvent is broadcast once a session's account has been loaded.
type LoginEvent struct {
	Session *Session
	UserID  uint64
}

// Observer receives session lifecycle signals from the Registry.
type Observer interface {
	OnSessionCreated(s *Session)
	OnSessionDestroyed(s *Session)
	OnLogin(event LoginEvent)
	OnNameChange(s *Session)
}

// BaseObserver implements Observer with no-ops. Embed it and override the
// signals you care about.
type BaseObserver struct{}

func (BaseObserver) OnSessionCreated(*Session)   {}
func (BaseObserver) OnSessionDestroyed(*Session) {}
func (BaseObserver) OnLogin(LoginEvent)          {}
func (BaseObserver) OnNameChange(*Session)       {}
