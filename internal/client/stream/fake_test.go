package stream

import (
	"context"
	"errors"
	"sync"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

type fakeSub struct {
	msgs chan []byte
	errs chan error
}

func (f *fakeSub) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case b := <-f.msgs:
		return b, nil
	case err := <-f.errs:
		return nil, err
	}
}

type fakeConn struct {
	mu     sync.Mutex
	token  string
	topics []string
	sub    *fakeSub
	subErr error
	closes int
}

func (c *fakeConn) Subscribe(dest string) (Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, dest)
	if c.subErr != nil {
		return nil, c.subErr
	}
	return c.sub, nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// fakeDialer hands out a new fakeConn per Dial. dialErr, when set, makes
// every Dial fail. readErr, when set, is the first thing every new
// subscription reads.
type fakeDialer struct {
	mu      sync.Mutex
	conns   []*fakeConn
	dialErr error
	readErr error
	conned  chan *fakeConn
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{conned: make(chan *fakeConn, 16)}
}

func (d *fakeDialer) Dial(ctx context.Context, token string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialErr != nil {
		d.conns = append(d.conns, nil)
		return nil, d.dialErr
	}
	c := &fakeConn{
		token: token,
		sub:   &fakeSub{msgs: make(chan []byte, 64), errs: make(chan error, 1)},
	}
	if d.readErr != nil {
		c.sub.errs <- d.readErr
	}
	d.conns = append(d.conns, c)
	select {
	case d.conned <- c:
	default:
	}
	return c, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

var errRefused = errors.New("connection refused")
