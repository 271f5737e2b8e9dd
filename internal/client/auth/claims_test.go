package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestExpiresAt(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := ExpiresAt(makeToken(t, exp))
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
}

func TestExpiresAt_IgnoresSignatureAndExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour).Truncate(time.Second)

	got, err := ExpiresAt(makeToken(t, past))
	require.NoError(t, err)
	assert.True(t, got.Equal(past))
}

func TestExpiresAt_Errors(t *testing.T) {
	_, err := ExpiresAt("not-a-jwt")
	require.Error(t, err)

	_, err = ExpiresAt(signed(t, jwt.MapClaims{"sub": "x"}))
	require.ErrorIs(t, err, ErrNoExpiry)
}

func TestEmail_ClaimPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"preferred_username first", jwt.MapClaims{"preferred_username": "p@x", "email": "e@x", "upn": "u@x"}, "p@x"},
		{"email next", jwt.MapClaims{"email": "e@x", "upn": "u@x"}, "e@x"},
		{"upn last", jwt.MapClaims{"upn": "u@x"}, "u@x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Email(signed(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Email(signed(t, jwt.MapClaims{"sub": "x"}))
	require.Error(t, err)
}
