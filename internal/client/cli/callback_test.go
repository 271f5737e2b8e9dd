package cli

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name    string
		q       url.Values
		code    string
		wantErr string
	}{
		{"ok", url.Values{"code": {"c1"}, "state": {"s"}}, "c1", ""},
		{"state mismatch", url.Values{"code": {"c1"}, "state": {"x"}}, "", "state mismatch"},
		{"no code", url.Values{"state": {"s"}}, "", "no code"},
		{"denied", url.Values{"error": {"access_denied"}, "error_description": {"user said no"}}, "", "access_denied: user said no"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseCallback(tt.q, "s")
			if tt.wantErr != "" {
				require.ErrorContains(t, res.err, tt.wantErr)
				return
			}
			require.NoError(t, res.err)
			assert.Equal(t, tt.code, res.code)
		})
	}
}

func TestCallbackServer_FirstRedirectWins(t *testing.T) {
	s, err := startCallbackServer("http://127.0.0.1:0/cb", "st")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	u, err := url.Parse(s.RedirectURL())
	require.NoError(t, err)
	assert.NotEqual(t, "0", u.Port())

	resp, err := http.Get(s.RedirectURL() + "?code=first&state=st")
	require.NoError(t, err)
	_ = resp.Body.Close()
	resp, err = http.Get(s.RedirectURL() + "?code=second&state=st")
	require.NoError(t, err)
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	code, err := s.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", code)
}

func TestCallbackServer_OtherPathIsNotFound(t *testing.T) {
	s, err := startCallbackServer("http://127.0.0.1:0/cb", "st")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	u, _ := url.Parse(s.RedirectURL())
	resp, err := http.Get("http://" + u.Host + "/elsewhere?code=x&state=st")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStartCallbackServer_BadURL(t *testing.T) {
	_, err := startCallbackServer("http://[::1", "st")
	require.Error(t, err)
}
