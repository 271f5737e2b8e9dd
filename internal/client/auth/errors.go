package auth

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrNoExpiry       = errors.New("token has no exp claim")
	ErrEmptyToken     = errors.New("empty access token")
	ErrNotPersisted   = errors.New("refreshed tokens not persisted")
)

// OAuthError is a rejection from the token endpoint. Code and Description
// carry the standard error and error_description response fields.
type OAuthError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *OAuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("oauth: %s (status %d): %s", e.Code, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("oauth: %s (status %d)", e.Code, e.StatusCode)
}
