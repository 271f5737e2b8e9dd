package stream

import (
	"context"
	"sync"
)

// Monitor keeps at most one Session open, for the server currently being
// watched.
type Monitor struct {
	dialer Dialer
	tokens TokenSource
	opts   []Option

	mu       sync.Mutex
	current  *Session
	serverID string
}

func NewMonitor(dialer Dialer, tokens TokenSource, opts ...Option) *Monitor {
	return &Monitor{dialer: dialer, tokens: tokens, opts: opts}
}

// Watch points the monitor at serverID. When the server changes, or
// autoRefresh is false, the current session is closed first. With
// autoRefresh a fresh session is opened and returned; nothing is carried
// over from the previous one. Watching the server that is already streaming
// returns the existing session unchanged.
//
// When Open fails the failed session is still returned so its state can be
// shown.
func (m *Monitor) Watch(ctx context.Context, serverID string, autoRefresh bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if autoRefresh && m.current != nil && m.serverID == serverID && m.current.State().Phase != PhaseFailed {
		return m.current, nil
	}

	m.closeCurrentLocked()
	m.serverID = serverID
	if !autoRefresh {
		return nil, nil
	}

	s := NewSession(serverID, m.dialer, m.tokens, m.opts...)
	if err := s.Open(ctx); err != nil {
		return s, err
	}
	m.current = s
	return s, nil
}

func (m *Monitor) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Stop closes the current session, if any.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCurrentLocked()
}

func (m *Monitor) closeCurrentLocked() {
	if m.current == nil {
		return
	}
	_ = m.current.Close()
	m.current = nil
}
