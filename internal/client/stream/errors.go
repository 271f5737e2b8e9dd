package stream

import "errors"

var (
	// ErrNoAccessToken is returned by Open when there is no token to
	// authenticate with. No connection is attempted.
	ErrNoAccessToken      = errors.New("no access token")
	ErrMalformedRecord    = errors.New("malformed log record")
	ErrClosed             = errors.New("stream session closed")
	ErrSubscriptionClosed = errors.New("subscription closed")

	errConnectionLost = errors.New("connection lost")
)
