package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/logminer/internal/logging"
	"github.com/dmitrijs2005/logminer/internal/metrics"
)

const (
	DefaultRefreshMargin    = time.Minute
	DefaultFallbackInterval = time.Hour
)

type timer interface {
	Stop() bool
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// Manager is the token lifecycle manager. It is the only writer of its
// Session.
type Manager struct {
	session  *Session
	endpoint Endpoint
	store    Store
	log      logging.Logger
	refreshC metrics.Counter

	margin    time.Duration
	fallback  time.Duration
	onCleared func(cause error)

	now       func() time.Time
	afterFunc func(d time.Duration, f func()) timer
	newTicker func(d time.Duration) ticker

	// refreshMu serializes every session write.
	refreshMu sync.Mutex

	mu      sync.Mutex
	timer   timer
	gen     uint64
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Manager)

func WithRefreshMargin(d time.Duration) Option {
	return func(m *Manager) { m.margin = d }
}

func WithFallbackInterval(d time.Duration) Option {
	return func(m *Manager) { m.fallback = d }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithRefreshCounter records every refresh attempt labelled success or
// failure.
func WithRefreshCounter(c metrics.Counter) Option {
	return func(m *Manager) { m.refreshC = c }
}

// WithOnCleared registers a callback invoked after the session was cleared
// because a refresh failed. It runs on the refreshing goroutine.
func WithOnCleared(f func(cause error)) Option {
	return func(m *Manager) { m.onCleared = f }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(session *Session, endpoint Endpoint, store Store, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		session:  session,
		endpoint: endpoint,
		store:    store,
		log:      logging.Discard(),
		margin:   DefaultRefreshMargin,
		fallback: DefaultFallbackInterval,
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		newTicker: func(d time.Duration) ticker {
			return stdTicker{t: time.NewTicker(d)}
		},
		ctx:    ctx,
		cancel: cancel,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) Session() *Session {
	return m.session
}

// Login redeems an authorization code and establishes the resulting pair.
func (m *Manager) Login(ctx context.Context, code, verifier string) error {
	pair, err := m.endpoint.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return m.Establish(ctx, pair)
}

// Establish installs pair as the current session, persists it and re-arms
// the proactive refresh.
func (m *Manager) Establish(ctx context.Context, pair TokenPair) error {
	if pair.AccessToken == "" {
		return ErrEmptyToken
	}

	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	m.session.set(pair)
	m.schedule(ctx, pair.AccessToken)

	if err := m.store.Save(ctx, pair); err != nil {
		m.log.Error(ctx, "failed to persist tokens", "error", err)
		return err
	}
	return nil
}

// Restore loads a persisted pair. It returns ErrNoSession when nothing was
// stored. An already expired access token is refreshed right away.
func (m *Manager) Restore(ctx context.Context) error {
	pair, ok, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}

	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	m.session.set(pair)
	m.schedule(ctx, pair.AccessToken)
	m.log.Info(ctx, "session restored")
	return nil
}

// schedule replaces any pending proactive refresh with one for token.
func (m *Manager) schedule(ctx context.Context, token string) {
	exp, expErr := ExpiresAt(token)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	m.disarmLocked()

	if expErr != nil {
		m.log.Warn(ctx, "access token expiry unknown, relying on periodic refresh", "error", expErr)
		return
	}

	delay := RefreshDelay(exp, m.now(), m.margin)
	gen := m.gen
	m.timer = m.afterFunc(delay, func() { m.fire(gen) })
	m.log.Debug(ctx, "proactive refresh armed", "in", delay.String())
}

func (m *Manager) disarmLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

func (m *Manager) fire(gen uint64) {
	m.mu.Lock()
	if m.stopped || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.mu.Unlock()

	if err := m.Refresh(m.ctx); err != nil {
		m.log.Warn(m.ctx, "proactive refresh failed", "error", err)
	}
}

// Refresh exchanges the current refresh token for a new pair. On success
// the new pair replaces the old one atomically. Any failure clears the
// session and the persisted pair; cancellation of ctx does not. If only
// saving the new pair fails, the session stays active and the error wraps
// ErrNotPersisted.
func (m *Manager) Refresh(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	current, ok := m.session.Snapshot()
	if !ok {
		return ErrNoSession
	}
	if current.RefreshToken == "" {
		m.countRefresh("failure")
		m.clear(ctx, ErrNoRefreshToken)
		return ErrNoRefreshToken
	}

	next, err := m.endpoint.Refresh(ctx, current.RefreshToken)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return err
		}
		m.countRefresh("failure")
		m.clear(ctx, err)
		return fmt.Errorf("refresh tokens: %w", err)
	}
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}

	m.session.set(next)
	m.countRefresh("success")
	m.schedule(ctx, next.AccessToken)

	m.log.Info(ctx, "access token refreshed")

	if err := m.store.Save(ctx, next); err != nil {
		m.log.Error(ctx, "failed to persist refreshed tokens", "error", err)
		return fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return nil
}

// Run drives the fallback refresh until ctx is done or the manager stops.
func (m *Manager) Run(ctx context.Context) error {
	t := m.newTicker(m.fallback)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.ctx.Done():
			return nil
		case <-t.C():
			if !m.session.Active() {
				continue
			}
			if err := m.Refresh(ctx); err != nil {
				m.log.Warn(ctx, "periodic refresh failed", "error", err)
			}
		}
	}
}

// Logout drops the session and the persisted pair.
func (m *Manager) Logout(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	m.session.clear()
	m.mu.Lock()
	m.disarmLocked()
	m.mu.Unlock()

	return m.store.Clear(ctx)
}

// Stop disarms every timer and ends Run. It does not touch the session.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.disarmLocked()
	m.mu.Unlock()
	m.cancel()
}

func (m *Manager) clear(ctx context.Context, cause error) {
	m.session.clear()

	m.mu.Lock()
	m.disarmLocked()
	m.mu.Unlock()

	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.log.Error(ctx, "failed to clear persisted tokens", "error", err)
	}
	m.log.Warn(ctx, "session cleared", "cause", cause)

	if m.onCleared != nil {
		m.onCleared(cause)
	}
}

func (m *Manager) countRefresh(result string) {
	if m.refreshC != nil {
		m.refreshC.Inc(result)
	}
}
