// Package auth keeps the client's OAuth session alive.
//
// # Overview
//
// A Manager owns the current TokenPair. It installs pairs obtained from the
// identity provider (authorization code + PKCE), persists them through a
// Store, and keeps the access token fresh with two mechanisms:
//
//  1. a one-shot proactive timer armed for exp minus the refresh margin of
//     the current access token;
//  2. a fallback ticker (Manager.Run) that refreshes unconditionally at a
//     fixed interval.
//
// Any refresh failure clears the session and the persisted pair; callers
// learn about it through the OnCleared hook and must log in again.
//
// Readers such as the stream client and the REST client only ever see a
// point-in-time copy of the access token via Session.AccessToken.
//
// # Errors
//
// ErrNoSession, ErrNoRefreshToken and ErrNoExpiry are sentinels matched with
// errors.Is. Rejections from the token endpoint surface as *OAuthError.
package auth
