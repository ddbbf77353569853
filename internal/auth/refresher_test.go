package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRefreshFixture(t *testing.T, handler http.HandlerFunc) (*Refresher, *JwtAccessor, context.Context) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	storage := NewSessionStorage(time.Hour)
	t.Cleanup(storage.Stop)
	accessor := NewJwtAccessor(storage)

	ctx := WithSessionID(context.Background(), "s1")
	return NewRefresher(accessor, backendFor(t, srv.URL), srv.Client()), accessor, ctx
}

func TestRefresher_SignedOut(t *testing.T) {
	r, _, ctx := newRefreshFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("unexpected refresh call")
	})

	token, err := r.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = r.TokenSource(ctx).Token()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRefresher_FreshTokenUnchanged(t *testing.T) {
	r, accessor, ctx := newRefreshFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("unexpected refresh call")
	})

	fresh := tokenExpiringIn(t, time.Hour)
	require.NoError(t, accessor.WriteTokens(ctx, TokenPair{AccessToken: fresh, RefreshToken: "r"}))

	token, err := r.TokenSource(ctx).Token()
	require.NoError(t, err)
	assert.Equal(t, fresh, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
}

func TestRefresher_RefreshesExpiredTokenOnce(t *testing.T) {
	var calls atomic.Int32
	var newAccess string
	release := make(chan struct{})

	r, accessor, ctx := newRefreshFixture(t, func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/identity/refresh-token", req.URL.Path)

		var body refreshRequest
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "old-refresh", body.RefreshToken)

		<-release
		_ = json.NewEncoder(w).Encode(refreshResponse{AccessToken: newAccess, RefreshToken: "new-refresh"})
	})
	newAccess = tokenExpiringIn(t, time.Hour)

	require.NoError(t, accessor.WriteTokens(ctx, TokenPair{AccessToken: tokenExpiringIn(t, -time.Minute), RefreshToken: "old-refresh"}))

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := r.AccessToken(ctx)
			assert.NoError(t, err)
			results[i] = token
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, token := range results {
		assert.Equal(t, newAccess, token)
	}

	pair, err := accessor.ReadTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, newAccess, pair.AccessToken)
	assert.Equal(t, "new-refresh", pair.RefreshToken)
}

func TestRefresher_FailureClearsTokens(t *testing.T) {
	var calls atomic.Int32
	r, accessor, ctx := newRefreshFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	require.NoError(t, accessor.WriteTokens(ctx, TokenPair{AccessToken: tokenExpiringIn(t, -time.Minute), RefreshToken: "stale"}))

	_, err := r.AccessToken(ctx)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Equal(t, int32(1), calls.Load())

	pair, err := accessor.ReadTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, TokenPair{}, pair)
}

func TestRefresher_ExpiredWithoutRefreshToken(t *testing.T) {
	r, accessor, ctx := newRefreshFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("unexpected refresh call")
	})

	expired := tokenExpiringIn(t, -time.Minute)
	require.NoError(t, accessor.WriteTokens(ctx, TokenPair{AccessToken: expired}))

	token, err := r.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, expired, token)
}

func TestRefresher_CallerCancellationKeepsTokens(t *testing.T) {
	var newAccess string
	release := make(chan struct{})
	r, accessor, ctx := newRefreshFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_ = json.NewEncoder(w).Encode(refreshResponse{AccessToken: newAccess, RefreshToken: "new-refresh"})
	})
	newAccess = tokenExpiringIn(t, time.Hour)

	expired := tokenExpiringIn(t, -time.Minute)
	require.NoError(t, accessor.WriteTokens(ctx, TokenPair{AccessToken: expired, RefreshToken: "old-refresh"}))

	callCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err := r.AccessToken(callCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	pair, err := accessor.ReadTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, expired, pair.AccessToken)
	assert.Equal(t, "old-refresh", pair.RefreshToken)

	// The shared refresh carries on after the caller gave up.
	close(release)
	assert.Eventually(t, func() bool {
		pair, err := accessor.ReadTokens(ctx)
		return err == nil && pair.AccessToken == newAccess
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefresher_TransportFailureKeepsTokens(t *testing.T) {
	r, accessor, ctx := newRefreshFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !assert.True(t, ok) {
			return
		}
		conn, _, err := hj.Hijack()
		if assert.NoError(t, err) {
			_ = conn.Close()
		}
	})

	expired := tokenExpiringIn(t, -time.Minute)
	require.NoError(t, accessor.WriteTokens(ctx, TokenPair{AccessToken: expired, RefreshToken: "keep"}))

	_, err := r.AccessToken(ctx)
	assert.ErrorIs(t, err, ErrRefreshFailed)

	pair, err := accessor.ReadTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, TokenPair{AccessToken: expired, RefreshToken: "keep"}, pair)
}

// staleStorage answers the first read of each listed key with an old value,
// the way a caller sees the pair just before another refresh lands.
type staleStorage struct {
	TokenStorage

	mu    sync.Mutex
	stale map[string]string
}

func (s *staleStorage) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	v, ok := s.stale[key]
	delete(s.stale, key)
	s.mu.Unlock()
	if ok {
		return v, nil
	}
	return s.TokenStorage.Get(ctx, key)
}

func TestRefresher_SkipsRefreshWhenAnotherFlightLanded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	sessions := NewSessionStorage(time.Hour)
	t.Cleanup(sessions.Stop)
	ctx := WithSessionID(context.Background(), "s1")

	fresh := tokenExpiringIn(t, time.Hour)
	require.NoError(t, NewJwtAccessor(sessions).WriteTokens(ctx, TokenPair{AccessToken: fresh, RefreshToken: "rotated"}))

	storage := &staleStorage{TokenStorage: sessions, stale: map[string]string{
		AccessTokenKey:  tokenExpiringIn(t, -time.Minute),
		RefreshTokenKey: "already-used",
	}}
	accessor := NewJwtAccessor(storage)
	r := NewRefresher(accessor, backendFor(t, srv.URL), srv.Client())

	token, err := r.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, fresh, token)
	assert.Equal(t, int32(0), calls.Load())

	pair, err := accessor.ReadTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rotated", pair.RefreshToken)
}
