package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct{ err error }

func (f failingStorage) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStorage) Set(context.Context, string, string) error   { return f.err }
func (f failingStorage) Delete(context.Context, string) error        { return f.err }

func TestJwtAccessor_ReadBeforeWrite(t *testing.T) {
	for name, v := range storageVariants(t) {
		t.Run(name, func(t *testing.T) {
			a := NewJwtAccessor(v.storage)

			token, err := a.ReadToken(v.ctx, AccessTokenKey)
			require.NoError(t, err)
			assert.Empty(t, token)
		})
	}
}

func TestJwtAccessor_WriteReadClear(t *testing.T) {
	for name, v := range storageVariants(t) {
		t.Run(name, func(t *testing.T) {
			a := NewJwtAccessor(v.storage)

			require.NoError(t, a.WriteTokens(v.ctx, TokenPair{AccessToken: "access", RefreshToken: "refresh"}))

			pair, err := a.ReadTokens(v.ctx)
			require.NoError(t, err)
			assert.Equal(t, TokenPair{AccessToken: "access", RefreshToken: "refresh"}, pair)

			require.NoError(t, a.ClearTokens(v.ctx))
			pair, err = a.ReadTokens(v.ctx)
			require.NoError(t, err)
			assert.Equal(t, TokenPair{}, pair)
		})
	}
}

func TestJwtAccessor_StorageErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	a := NewJwtAccessor(failingStorage{err: boom})
	ctx := context.Background()

	_, err := a.ReadToken(ctx, AccessTokenKey)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, a.WriteTokens(ctx, TokenPair{AccessToken: "x"}), boom)
	assert.ErrorIs(t, a.ClearTokens(ctx), boom)
}

func TestTokenPair_StringRedacts(t *testing.T) {
	pair := TokenPair{AccessToken: "secret-access", RefreshToken: "secret-refresh"}
	for _, s := range []string{pair.String(), fmt.Sprintf("%v", pair), fmt.Sprintf("%#v", pair)} {
		assert.NotContains(t, s, "secret")
	}
}

func TestJwtAccessor_Status(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFileStorage(FileStorageConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	a := NewJwtAccessor(storage)

	st, err := a.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Authenticated)

	require.NoError(t, a.WriteTokens(ctx, TokenPair{AccessToken: tokenExpiringIn(t, time.Hour), RefreshToken: "r"}))
	st, err = a.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Equal(t, "alice", st.User)
	assert.False(t, st.Expired)
	assert.True(t, st.CanRefresh)

	require.NoError(t, a.WriteTokens(ctx, TokenPair{AccessToken: tokenExpiringIn(t, -time.Hour)}))
	st, err = a.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Expired)
	assert.False(t, st.Authenticated)
}
