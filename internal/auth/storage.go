package auth

import (
	"context"
	"errors"
)

// Storage keys for the bearer token pair.
const (
	AccessTokenKey  = "authToken"
	RefreshTokenKey = "refreshToken"
)

var (
	// ErrTokenNotFound is returned by TokenStorage.Get when the key is absent.
	ErrTokenNotFound = errors.New("token not found")

	// ErrNoSession is returned by SessionStorage when the request context
	// carries no session ID.
	ErrNoSession = errors.New("no session in context")
)

// TokenStorage persists token values by key. Implementations are selected
// at composition time; see FileStorage and SessionStorage.
type TokenStorage interface {
	// Get returns the value stored under key, or ErrTokenNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type sessionKey struct{}

// WithSessionID returns a context carrying the console session ID.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFromContext returns the session ID set by WithSessionID.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}
