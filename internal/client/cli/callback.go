package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
)

var (
	errStateMismatch = errors.New("login callback state mismatch")
	errMissingCode   = errors.New("login callback carries no code")
)

// callbackServer receives the browser redirect that completes the
// authorization code flow.
type callbackServer struct {
	e           *echo.Echo
	redirectURL string
	result      chan callbackResult
}

type callbackResult struct {
	code string
	err  error
}

// startCallbackServer listens on the host and port of redirectURL and
// accepts one redirect on its path carrying state.
func startCallbackServer(redirectURL, state string) (*callbackServer, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("parse redirect url: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("listen for login callback: %w", err)
	}

	// Port 0 picks a free port; report the one actually bound.
	port := ln.Addr().(*net.TCPAddr).Port
	u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Listener = ln

	s := &callbackServer{e: e, redirectURL: u.String(), result: make(chan callbackResult, 1)}
	e.GET(path, func(c echo.Context) error {
		res := parseCallback(c.QueryParams(), state)
		select {
		case s.result <- res:
		default:
		}
		if res.err != nil {
			return c.String(http.StatusBadRequest, "Login failed: "+res.err.Error())
		}
		return c.String(http.StatusOK, "Login complete, you can close this window.")
	})

	go func() {
		_ = e.Start("")
	}()
	return s, nil
}

func parseCallback(q url.Values, state string) callbackResult {
	if e := q.Get("error"); e != "" {
		return callbackResult{err: fmt.Errorf("authorization denied: %s: %s", e, q.Get("error_description"))}
	}
	if q.Get("state") != state {
		return callbackResult{err: errStateMismatch}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: errMissingCode}
	}
	return callbackResult{code: code}
}

// RedirectURL is the redirect URL with the bound port filled in.
func (s *callbackServer) RedirectURL() string {
	return s.redirectURL
}

// Wait blocks until the first redirect arrives or ctx is done.
func (s *callbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-s.result:
		return r.code, r.err
	}
}

func (s *callbackServer) Close(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
