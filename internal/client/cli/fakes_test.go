package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/logminer/internal/client/auth"
	"github.com/dmitrijs2005/logminer/internal/client/client"
	"github.com/dmitrijs2005/logminer/internal/client/stream"
	"github.com/dmitrijs2005/logminer/internal/client/view"
	"github.com/dmitrijs2005/logminer/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// capturePrint replaces printlnFn for the duration of the test.
type capturePrint struct {
	mu    sync.Mutex
	lines []string
	hook  func(line string)
}

func stubPrint(t *testing.T) *capturePrint {
	t.Helper()
	c := &capturePrint{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		line := strings.TrimSuffix(fmt.Sprintln(a...), "\n")
		c.mu.Lock()
		c.lines = append(c.lines, line)
		hook := c.hook
		c.mu.Unlock()
		if hook != nil {
			hook(line)
		}
		return len(line), nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return c
}

func (c *capturePrint) text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "\n")
}

type fakeTokens struct {
	code, verifier string
	loginErr       error
	logoutCalled   bool
	logoutErr      error
	restoreErr     error
	stopped        bool
}

func (f *fakeTokens) Login(_ context.Context, code, verifier string) error {
	f.code, f.verifier = code, verifier
	return f.loginErr
}
func (f *fakeTokens) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}
func (f *fakeTokens) Restore(context.Context) error { return f.restoreErr }
func (f *fakeTokens) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
func (f *fakeTokens) Stop() { f.stopped = true }

type fakeAPI struct {
	user    *client.User
	server  *client.ServerConfig
	err     error
	started []string
	stopped []string
}

func (f *fakeAPI) CurrentUser(context.Context) (*client.User, error) { return f.user, f.err }
func (f *fakeAPI) GetServer(_ context.Context, id string) (*client.ServerConfig, error) {
	return f.server, f.err
}
func (f *fakeAPI) StartTailing(_ context.Context, id string) error {
	f.started = append(f.started, id)
	return f.err
}
func (f *fakeAPI) StopTailing(_ context.Context, id string) error {
	f.stopped = append(f.stopped, id)
	return f.err
}

type fakeWatcher struct {
	serverID    string
	autoRefresh bool
	sess        *stream.Session
	err         error
	stops       int
}

func (f *fakeWatcher) Watch(_ context.Context, id string, auto bool) (*stream.Session, error) {
	f.serverID, f.autoRefresh = id, auto
	return f.sess, f.err
}
func (f *fakeWatcher) Stop() { f.stops++ }

type memStore struct{}

func (memStore) Save(context.Context, auth.TokenPair) error { return nil }
func (memStore) Load(context.Context) (auth.TokenPair, bool, error) {
	return auth.TokenPair{}, false, nil
}
func (memStore) Clear(context.Context) error { return nil }

// tokenFor builds an access token without exp so no refresh gets armed.
func tokenFor(t *testing.T, email string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"preferred_username": email,
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func loggedInSession(t *testing.T, email string) *auth.Session {
	t.Helper()
	s := auth.NewSession()
	m := auth.NewManager(s, nil, memStore{})
	t.Cleanup(m.Stop)
	require.NoError(t, m.Establish(context.Background(), auth.TokenPair{
		AccessToken:  tokenFor(t, email),
		RefreshToken: "refresh",
	}))
	return s
}

// newTestApp builds an App around fakes, rendering records into out.
func newTestApp(session *auth.Session, api client.Client, w streamWatcher, out io.Writer, in io.Reader) (*App, *fakeTokens) {
	ft := &fakeTokens{}
	if in == nil {
		in = strings.NewReader("")
	}
	return &App{
		log:     logging.Discard(),
		session: session,
		tokens:  ft,
		api:     api,
		monitor: w,
		render:  view.NewWithColor(out, false),
		scanner: bufio.NewScanner(in),
	}, ft
}

// lockedBuffer is written by stream hooks while the test reads it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// chanDialer hands out connections whose single subscription reads from ch.
type chanDialer struct {
	ch chan []byte
}

func (d *chanDialer) Dial(context.Context, string) (stream.Conn, error) {
	return &chanConn{ch: d.ch}, nil
}

type chanConn struct {
	ch chan []byte
}

func (c *chanConn) Subscribe(string) (stream.Subscription, error) { return c, nil }
func (c *chanConn) Close() error                                 { return nil }

func (c *chanConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case b := <-c.ch:
		return b, nil
	}
}
