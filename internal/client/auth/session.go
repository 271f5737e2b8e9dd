package auth

import "sync"

// TokenPair is the credential issued by the identity provider.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session holds at most one current TokenPair. Only the Manager writes to
// it; any goroutine may read.
type Session struct {
	mu   sync.RWMutex
	pair *TokenPair
}

func NewSession() *Session {
	return &Session{}
}

// Snapshot returns a copy of the current pair; ok is false when there is no
// session.
func (s *Session) Snapshot() (pair TokenPair, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pair == nil {
		return TokenPair{}, false
	}
	return *s.pair, true
}

// AccessToken returns the current access token or "".
func (s *Session) AccessToken() string {
	p, _ := s.Snapshot()
	return p.AccessToken
}

func (s *Session) Active() bool {
	_, ok := s.Snapshot()
	return ok
}

func (s *Session) set(p TokenPair) {
	s.mu.Lock()
	s.pair = &p
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.pair = nil
	s.mu.Unlock()
}
