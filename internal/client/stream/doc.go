// Package stream is the live log stream client.
//
// A Session follows one server: it dials the broker with the current access
// token, subscribes to /topic/logs/{serverId}, decodes every message into a
// Record and appends it, in arrival order, to a bounded buffer. Payloads
// that do not decode are dropped and counted; they never end the
// connection.
//
// Connection health is explicit. State moves through Idle, Connecting,
// Connected and Failed; a lost or refused connection is retried with capped
// exponential backoff and the session gives up with Failed after a bounded
// number of consecutive attempts.
//
// Close is synchronous. Once it returns the transport is closed and nothing
// more is appended. Hooks run on the session goroutine and must not call
// Close or Monitor methods.
//
// Monitor owns at most one Session and swaps it when the watched server or
// the auto-refresh flag changes.
package stream
