// Package common contains shared constants and sentinel errors used across
// devsync components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on REST and WebSocket requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token value in the Authorization header.
	BearerPrefix = "Bearer "
)
