// Package client talks to the LogMiner REST backend.
//
// # Overview
//
// Client is the transport-agnostic contract the CLI depends on. RESTClient
// implements it with JSON over HTTP and attaches the current access token as
// a bearer credential on every request.
//
// # Error Handling
//
// HTTP statuses are mapped to sentinel errors that callers match with
// errors.Is: ErrUnauthorized for 401 and 403, ErrNotFound for 404 and
// ErrUnavailable for 5xx responses and transport failures.
package client
