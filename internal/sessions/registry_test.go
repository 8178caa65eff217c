package sessions

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	BaseObserver

	mu          sync.Mutex
	created     []uuid.UUID
	destroyed   []uuid.UUID
	logins      []LoginEvent
	nameChanges []string
}

func (o *recordingObserver) OnSessionCreated(s *Session) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.created = append(o.created, s.ID())
}

func (o *recordingObserver) OnSessionDestroyed(s *Session) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.destroyed = append(o.destroyed, s.ID())
}

func (o *recordingObserver) OnLogin(event LoginEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.logins = append(o.logins, event)
}

func (o *recordingObserver) OnNameChange(s *Session) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nameChanges = append(o.nameChanges, s.Name())
}

func TestRegistry_CreateGetDestroy(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	obs := &recordingObserver{}
	r.AddObserver(obs, false)

	s := r.Create("Gunther")
	require.True(t, s.IsConnected())
	require.Equal(t, "Gunther", s.Name())
	require.False(t, s.Account().IsIdentified())

	got, ok := r.Get(s.ID())
	require.True(t, ok)
	require.Same(t, s, got)
	require.Equal(t, []uuid.UUID{s.ID()}, obs.created)

	require.True(t, r.Destroy(s.ID()))
	require.False(t, s.IsConnected())
	require.Equal(t, []uuid.UUID{s.ID()}, obs.destroyed)

	_, ok = r.Get(s.ID())
	require.False(t, ok)

	require.False(t, r.Destroy(s.ID()), "second destroy is a no-op")
	require.Len(t, obs.destroyed, 1)
}

func TestRegistry_DestroyMarksDisconnectedBeforeObservers(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	var connectedDuringCallback bool

	r.AddObserver(&destroyProbe{fn: func(s *Session) {
		connectedDuringCallback = s.IsConnected()
	}}, false)

	s := r.Create("Russell")
	r.Destroy(s.ID())

	require.False(t, connectedDuringCallback)
}

type destroyProbe struct {
	BaseObserver
	fn func(s *Session)
}

func (p *destroyProbe) OnSessionDestroyed(s *Session) { p.fn(s) }

func TestRegistry_AddObserverReplaysHistory(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first := r.Create("one")
	second := r.Create("two")

	withReplay := &recordingObserver{}
	r.AddObserver(withReplay, true)
	require.ElementsMatch(t, []uuid.UUID{first.ID(), second.ID()}, withReplay.created)

	withoutReplay := &recordingObserver{}
	r.AddObserver(withoutReplay, false)
	require.Empty(t, withoutReplay.created)
}

func TestRegistry_RemoveObserver(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	obs := &recordingObserver{}
	r.AddObserver(obs, false)
	r.RemoveObserver(obs)

	r.Create("ghost")
	require.Empty(t, obs.created)
}

func TestRegistry_NotifyLoginAndNameChange(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	obs := &recordingObserver{}
	r.AddObserver(obs, false)

	s := r.Create("Player12")
	r.NotifyLogin(LoginEvent{Session: s, UserID: 42})

	s.SetName("Guest12")
	r.NotifyNameChange(s)

	require.Len(t, obs.logins, 1)
	require.Equal(t, uint64(42), obs.logins[0].UserID)
	require.Same(t, s, obs.logins[0].Session)
	require.Equal(t, []string{"Guest12"}, obs.nameChanges)
}

func TestRegistry_DestroyAll(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	obs := &recordingObserver{}
	r.AddObserver(obs, false)

	for range 3 {
		r.Create("p")
	}

	r.DestroyAll()

	require.Empty(t, r.Sessions())
	require.Len(t, obs.destroyed, 3)
}

func TestSession_IfConnected(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	s := r.Create("p")

	ran := s.IfConnected(func() {})
	require.True(t, ran)

	r.Destroy(s.ID())

	ran = s.IfConnected(func() { t.Fatal("must not run after disconnect") })
	require.False(t, ran)
}

func TestRegistry_NoLoginBroadcastAfterDestroy(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	obs := &recordingObserver{}
	r.AddObserver(obs, false)

	s := r.Create("p")
	r.Destroy(s.ID())

	sent := r.NotifyLogin(LoginEvent{Session: s, UserID: 42})
	require.False(t, sent)
	require.Empty(t, obs.logins)

	live := r.Create("q")
	require.True(t, r.NotifyLogin(LoginEvent{Session: live, UserID: 7}))
	require.Len(t, obs.logins, 1)
}
