package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"studio/internal/environment"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func tokenExpiringIn(t *testing.T, d time.Duration) string {
	t.Helper()
	return signedToken(t, jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(d).Unix()})
}

type staticBackend struct {
	backend environment.Backend
}

func (s staticBackend) Backend() environment.Backend { return s.backend }

func backendFor(t *testing.T, url string) staticBackend {
	t.Helper()
	b, err := environment.NewBackend(url)
	require.NoError(t, err)
	return staticBackend{backend: b}
}
