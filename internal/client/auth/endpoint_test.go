package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, h http.HandlerFunc) (*HTTPEndpoint, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	ep := NewHTTPEndpoint(OAuthConfig{
		TokenURL:    srv.URL + "/token",
		ClientID:    "client-1",
		RedirectURL: "http://127.0.0.1/callback",
		Scope:       "openid offline_access",
	}, srv.Client())
	return ep, srv
}

func TestHTTPEndpoint_ExchangeCode(t *testing.T) {
	ep, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "the-verifier", r.PostForm.Get("code_verifier"))
		assert.Equal(t, "http://127.0.0.1/callback", r.PostForm.Get("redirect_uri"))
		assert.Equal(t, "openid offline_access", r.PostForm.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"a1","refresh_token":"r1","expires_in":3600}`))
	})

	pair, err := ep.ExchangeCode(context.Background(), "the-code", "the-verifier")
	require.NoError(t, err)
	assert.Equal(t, TokenPair{AccessToken: "a1", RefreshToken: "r1"}, pair)
}

func TestHTTPEndpoint_Refresh(t *testing.T) {
	ep, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "r1", r.PostForm.Get("refresh_token"))
		assert.Empty(t, r.PostForm.Get("code"))
		_, _ = w.Write([]byte(`{"access_token":"a2"}`))
	})

	pair, err := ep.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, TokenPair{AccessToken: "a2"}, pair)
}

func TestHTTPEndpoint_Rejection(t *testing.T) {
	ep, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"refresh token expired"}`))
	})

	_, err := ep.Refresh(context.Background(), "stale")

	var oe *OAuthError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, http.StatusBadRequest, oe.StatusCode)
	assert.Equal(t, "invalid_grant", oe.Code)
	assert.Equal(t, "refresh token expired", oe.Description)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestHTTPEndpoint_NonJSONErrorBody(t *testing.T) {
	ep, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := ep.Refresh(context.Background(), "r")

	var oe *OAuthError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "Bad Gateway", oe.Code)
}

func TestHTTPEndpoint_MissingAccessToken(t *testing.T) {
	ep, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"refresh_token":"r2"}`))
	})

	_, err := ep.Refresh(context.Background(), "r")

	var oe *OAuthError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "invalid_response", oe.Code)
}

func TestHTTPEndpoint_MalformedSuccessBody(t *testing.T) {
	ep, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := ep.Refresh(context.Background(), "r")
	require.ErrorContains(t, err, "decode token response")
}

func TestHTTPEndpoint_TransportError(t *testing.T) {
	ep, srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := ep.Refresh(context.Background(), "r")
	require.ErrorContains(t, err, "token endpoint")
}
