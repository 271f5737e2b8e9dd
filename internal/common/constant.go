// Package common contains constants shared by the REST client, the token
// endpoint client and the streaming transport.
package common

import "strings"

// AuthorizationHeaderName carries the bearer credential on HTTP requests
// and on the STOMP CONNECT frame.
const AuthorizationHeaderName = "Authorization"

const bearerPrefix = "Bearer "

// Keys under which the token pair is persisted in the metadata table.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// BearerToken formats token as an Authorization header value.
func BearerToken(token string) string {
	return bearerPrefix + token
}

// TokenFromBearer strips the bearer prefix; ok is false when the value is
// not a bearer credential.
func TokenFromBearer(value string) (token string, ok bool) {
	if len(value) < len(bearerPrefix) || !strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	return value[len(bearerPrefix):], true
}
