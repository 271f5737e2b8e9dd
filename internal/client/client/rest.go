package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/logminer/internal/common"
)

const defaultTimeout = 15 * time.Second

type RESTClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewRESTClient creates a client for the backend at baseURL. A nil
// httpClient gets one with a 15 second timeout.
func NewRESTClient(baseURL string, tokens TokenSource, httpClient *http.Client) *RESTClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

func (c *RESTClient) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/user/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *RESTClient) GetServer(ctx context.Context, id string) (*ServerConfig, error) {
	var s ServerConfig
	if err := c.do(ctx, http.MethodGet, "/server-config/get/"+url.PathEscape(id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *RESTClient) StartTailing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/server-config/start/"+url.PathEscape(id), nil)
}

func (c *RESTClient) StopTailing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/server-config/stop/"+url.PathEscape(id), nil)
}

func (c *RESTClient) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerToken(token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func mapStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return ErrUnavailable
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
