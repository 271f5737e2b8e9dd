package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxTokenResponseBytes = 1 << 20

// Endpoint exchanges grants for token pairs.
type Endpoint interface {
	ExchangeCode(ctx context.Context, code, verifier string) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

// HTTPEndpoint talks to an OAuth 2.0 token endpoint with form-encoded POSTs.
type HTTPEndpoint struct {
	cfg    OAuthConfig
	client *http.Client
}

func NewHTTPEndpoint(cfg OAuthConfig, client *http.Client) *HTTPEndpoint {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPEndpoint{cfg: cfg, client: client}
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *HTTPEndpoint) ExchangeCode(ctx context.Context, code, verifier string) (TokenPair, error) {
	form := url.Values{}
	form.Set("client_id", e.cfg.ClientID)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("code_verifier", verifier)
	form.Set("redirect_uri", e.cfg.RedirectURL)
	if e.cfg.Scope != "" {
		form.Set("scope", e.cfg.Scope)
	}
	return e.post(ctx, form)
}

// Refresh redeems refreshToken. The returned pair has an empty RefreshToken
// when the provider did not rotate it.
func (e *HTTPEndpoint) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	form := url.Values{}
	form.Set("client_id", e.cfg.ClientID)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	if e.cfg.Scope != "" {
		form.Set("scope", e.cfg.Scope)
	}
	return e.post(ctx, form)
}

func (e *HTTPEndpoint) post(ctx context.Context, form url.Values) (TokenPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return TokenPair{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return TokenPair{}, fmt.Errorf("token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseBytes))
	if err != nil {
		return TokenPair{}, fmt.Errorf("read token response: %w", err)
	}

	var tr tokenResponse
	decodeErr := json.Unmarshal(body, &tr)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code := tr.Error
		if code == "" {
			code = http.StatusText(resp.StatusCode)
		}
		return TokenPair{}, &OAuthError{StatusCode: resp.StatusCode, Code: code, Description: tr.ErrorDescription}
	}
	if decodeErr != nil {
		return TokenPair{}, fmt.Errorf("decode token response: %w", decodeErr)
	}
	if tr.AccessToken == "" {
		return TokenPair{}, &OAuthError{StatusCode: resp.StatusCode, Code: "invalid_response", Description: "missing access_token"}
	}

	return TokenPair{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}, nil
}
