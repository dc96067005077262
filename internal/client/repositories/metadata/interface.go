// Package metadata stores small key/value settings of the local cache:
// the session token, the signed-in username, the offline password verifier
// and the last remote total.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyRemoteTotal = "developers_online_size"
	KeyToken       = "token"
	KeyUsername    = "username"
	KeyVerifier    = "verifier"
)

// Repository is a byte-valued key/value store. Get returns (nil, nil) for
// a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
