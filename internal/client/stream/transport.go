package stream

import "context"

// Subscription yields raw message bodies from one destination.
type Subscription interface {
	// Read blocks until a message arrives, the subscription ends or ctx is
	// done.
	Read(ctx context.Context) ([]byte, error)
}

// Conn is an authenticated broker connection. Close also drops every
// subscription made through it.
type Conn interface {
	Subscribe(destination string) (Subscription, error)
	Close() error
}

// Dialer opens broker connections authenticated with a bearer token.
type Dialer interface {
	Dial(ctx context.Context, accessToken string) (Conn, error)
}

// TokenSource hands out a point-in-time copy of the current access token.
type TokenSource interface {
	AccessToken() string
}

// Topic is the destination the backend publishes a server's records to.
func Topic(serverID string) string {
	return "/topic/logs/" + serverID
}
