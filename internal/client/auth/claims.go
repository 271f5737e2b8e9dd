package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity-provider claims the client reads. Tokens are
// decoded without signature verification.
type Claims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	UPN               string `json:"upn,omitempty"`
}

func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim of token.
func ExpiresAt(token string) (time.Time, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// Email returns the user's address, preferring preferred_username, then
// email, then upn.
func Email(token string) (string, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return "", err
	}
	for _, v := range []string{claims.PreferredUsername, claims.Email, claims.UPN} {
		if v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("token carries no email claim")
}

// RefreshDelay is how long to wait before refreshing a token that expires at
// exp, so that the refresh happens margin ahead of expiry. It is never
// negative.
func RefreshDelay(exp, now time.Time, margin time.Duration) time.Duration {
	d := exp.Add(-margin).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
