package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/logminer/internal/logging"
	"github.com/dmitrijs2005/logminer/internal/metrics"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultReconnectBase     = time.Second
	DefaultReconnectMax      = 30 * time.Second
	DefaultReconnectAttempts = 5
)

type options struct {
	log         logging.Logger
	counters    *metrics.Counters
	maxRecords  int
	base        time.Duration
	max         time.Duration
	maxAttempts int
	onRecord    func(Record)
	onState     func(State)
}

type Option func(*options)

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithCounters(c *metrics.Counters) Option {
	return func(o *options) { o.counters = c }
}

// WithMaxRecords bounds how many records a session keeps.
func WithMaxRecords(n int) Option {
	return func(o *options) { o.maxRecords = n }
}

// WithReconnect sets the backoff policy: delays start at base, double up to
// max, and the session fails after attempts consecutive failed connects.
func WithReconnect(base, max time.Duration, attempts int) Option {
	return func(o *options) {
		o.base = base
		o.max = max
		o.maxAttempts = attempts
	}
}

// WithRecordHook is called after every appended record.
func WithRecordHook(f func(Record)) Option {
	return func(o *options) { o.onRecord = f }
}

// WithStateHook is called on every state change.
func WithStateHook(f func(State)) Option {
	return func(o *options) { o.onState = f }
}

func newOptions(opts []Option) options {
	o := options{
		log:         logging.Discard(),
		counters:    metrics.Nop(),
		maxRecords:  DefaultMaxRecords,
		base:        DefaultReconnectBase,
		max:         DefaultReconnectMax,
		maxAttempts: DefaultReconnectAttempts,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxAttempts < 1 {
		o.maxAttempts = 1
	}
	return o
}

// Session streams the records of one server.
type Session struct {
	serverID string
	dialer   Dialer
	tokens   TokenSource
	opts     options
	log      logging.Logger

	mu      sync.Mutex
	buf     *Buffer
	state   State
	opened  bool
	closed  bool
	cancel  context.CancelFunc
	dropped uint64

	wg sync.WaitGroup
}

func NewSession(serverID string, dialer Dialer, tokens TokenSource, opts ...Option) *Session {
	o := newOptions(opts)
	return &Session{
		serverID: serverID,
		dialer:   dialer,
		tokens:   tokens,
		opts:     o,
		log:      o.log.With("server_id", serverID),
		buf:      NewBuffer(o.maxRecords),
	}
}

func (s *Session) ServerID() string { return s.serverID }

// Open starts streaming in the background and returns immediately. Without
// an access token it returns ErrNoAccessToken, moves to Failed and makes no
// connection attempt. Opening twice is a no-op.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.opened {
		s.mu.Unlock()
		return nil
	}
	if s.tokens.AccessToken() == "" {
		s.mu.Unlock()
		s.log.Warn(ctx, "not opening stream without an access token")
		s.setState(State{Phase: PhaseFailed, Err: ErrNoAccessToken})
		return ErrNoAccessToken
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.opened = true
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(runCtx)
	return nil
}

// Close stops the stream and waits for the transport to be released. It is
// safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	idle := State{Phase: PhaseIdle}
	s.mu.Lock()
	s.state = idle
	s.mu.Unlock()
	if s.opts.onState != nil {
		s.opts.onState(idle)
	}
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Records returns a copy of the buffered records, oldest first.
func (s *Session) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Records()
}

func (s *Session) Tail(n int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Tail(n)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// Total counts every accepted record, including ones evicted from the
// buffer.
func (s *Session) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Total()
}

// Dropped counts payloads rejected by DecodeRecord.
func (s *Session) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = st
	s.mu.Unlock()

	if s.opts.onState != nil {
		s.opts.onState(st)
	}
}

func (s *Session) newBackoff() retry.Backoff {
	b := retry.NewExponential(s.opts.base)
	b = retry.WithCappedDuration(s.opts.max, b)
	return retry.WithMaxRetries(uint64(s.opts.maxAttempts-1), b)
}

func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()

	dialed := false
	for {
		attempt := 0
		err := retry.Do(ctx, s.newBackoff(), func(ctx context.Context) error {
			attempt++
			if dialed {
				s.opts.counters.StreamReconnects.Inc()
			}
			dialed = true
			s.setState(State{Phase: PhaseConnecting, Attempt: attempt})
			return s.connectAndPump(ctx, attempt)
		})

		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, errConnectionLost):
			s.log.Warn(ctx, "stream connection lost, reconnecting", "error", err)
			continue
		case err == nil:
			return
		}

		s.log.Error(ctx, "stream failed", "attempts", attempt, "error", err)
		s.setState(State{Phase: PhaseFailed, Attempt: attempt, Err: err})
		return
	}
}

// connectAndPump returns nil only when ctx is done. Connect failures are
// retryable, and so is a connection dropped within the base delay of being
// established. Losing a connection that stayed up longer returns
// errConnectionLost and starts a fresh backoff.
func (s *Session) connectAndPump(ctx context.Context, attempt int) error {
	token := s.tokens.AccessToken()
	if token == "" {
		return ErrNoAccessToken
	}

	conn, err := s.dialer.Dial(ctx, token)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.log.Warn(ctx, "stream connect failed", "attempt", attempt, "error", err)
		return retry.RetryableError(fmt.Errorf("connect: %w", err))
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.log.Debug(ctx, "closing stream connection", "error", err)
		}
	}()

	topic := Topic(s.serverID)
	sub, err := conn.Subscribe(topic)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.log.Warn(ctx, "subscribe failed", "topic", topic, "attempt", attempt, "error", err)
		return retry.RetryableError(fmt.Errorf("subscribe %s: %w", topic, err))
	}

	s.log.Info(ctx, "stream connected", "topic", topic)
	s.setState(State{Phase: PhaseConnected})
	connectedAt := time.Now()

	for {
		body, err := sub.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if up := time.Since(connectedAt); up < s.opts.base {
				s.log.Warn(ctx, "stream dropped right after connecting", "attempt", attempt, "up", up, "error", err)
				return retry.RetryableError(fmt.Errorf("dropped after connect: %w", err))
			}
			return fmt.Errorf("%w: %v", errConnectionLost, err)
		}
		s.deliver(ctx, body)
	}
}

func (s *Session) deliver(ctx context.Context, body []byte) {
	rec, err := DecodeRecord(body)
	if err != nil {
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		s.opts.counters.StreamDropped.Inc()
		s.log.Warn(ctx, "dropping malformed stream payload", "error", err, "bytes", len(body))
		return
	}
	rec.ServerID = s.serverID

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.buf.Append(rec)
	s.mu.Unlock()

	s.opts.counters.StreamRecords.Inc(rec.Level.String())
	if s.opts.onRecord != nil {
		s.opts.onRecord(rec)
	}
}
