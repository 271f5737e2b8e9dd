package client

import "context"

type Client interface {
	CurrentUser(ctx context.Context) (*User, error)
	GetServer(ctx context.Context, id string) (*ServerConfig, error)
	StartTailing(ctx context.Context, id string) error
	StopTailing(ctx context.Context, id string) error
}

// TokenSource hands out the current access token, "" when logged out.
type TokenSource interface {
	AccessToken() string
}
