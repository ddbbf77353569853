package environment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBackend(t *testing.T, raw string) Backend {
	t.Helper()
	b, err := NewBackend(raw)
	require.NoError(t, err)
	return b
}

func newTestAccessor(t *testing.T) (*Accessor, *Storage) {
	t.Helper()
	store := NewStorageWithPath(t.TempDir())
	require.NoError(t, store.Add(Environment{Name: "a", URL: "https://a.example.com/api"}))
	require.NoError(t, store.Add(Environment{Name: "b", URL: "https://b.example.com/api"}))
	return NewAccessor(mustBackend(t, "https://primary.example.com/api"), store), store
}

func TestAccessor_StartsOnPrimary(t *testing.T) {
	accessor, _ := newTestAccessor(t)

	assert.Equal(t, PrimaryName, accessor.Current().Name)
	assert.Equal(t, "https://primary.example.com/api", accessor.Backend().String())
}

func TestAccessor_SelectSequence(t *testing.T) {
	accessor, store := newTestAccessor(t)

	require.NoError(t, accessor.Select("a"))
	require.NoError(t, accessor.Select("b"))

	assert.Equal(t, "b", accessor.Current().Name)
	assert.Equal(t, "https://b.example.com/api", accessor.Backend().String())

	name, err := store.CurrentName()
	require.NoError(t, err)
	assert.Equal(t, "b", name)
}

func TestAccessor_SelectPrimaryClearsStore(t *testing.T) {
	accessor, store := newTestAccessor(t)

	require.NoError(t, accessor.Select("a"))
	require.NoError(t, accessor.Select(PrimaryName))

	assert.Equal(t, "https://primary.example.com/api", accessor.Backend().String())
	name, err := store.CurrentName()
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestAccessor_SelectUnknownKeepsCurrent(t *testing.T) {
	accessor, _ := newTestAccessor(t)
	require.NoError(t, accessor.Select("a"))

	err := accessor.Select("missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)
	assert.Equal(t, "a", accessor.Current().Name)
}

func TestAccessor_NilStore(t *testing.T) {
	accessor := NewAccessor(mustBackend(t, "https://primary.example.com"), nil)

	envs, err := accessor.Environments()
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, PrimaryName, envs[0].Name)

	assert.Error(t, accessor.Select("a"))
	assert.NoError(t, accessor.Reload())
}

func TestAccessor_EnvironmentsListsPrimaryFirst(t *testing.T) {
	accessor, _ := newTestAccessor(t)

	envs, err := accessor.Environments()
	require.NoError(t, err)
	require.Len(t, envs, 3)
	assert.Equal(t, []string{PrimaryName, "a", "b"}, []string{envs[0].Name, envs[1].Name, envs[2].Name})
}

func TestAccessor_OnChange(t *testing.T) {
	accessor, _ := newTestAccessor(t)

	var got []string
	accessor.OnChange(func(previous, current Selection) {
		got = append(got, previous.Name+"->"+current.Name)
	})

	require.NoError(t, accessor.Select("a"))
	accessor.Override("explicit", mustBackend(t, "http://localhost:9000"))

	assert.Equal(t, []string{"primary->a", "a->explicit"}, got)
	assert.Equal(t, "http://localhost:9000", accessor.Backend().String())
}

func TestAccessor_Reload(t *testing.T) {
	accessor, store := newTestAccessor(t)

	calls := 0
	accessor.OnChange(func(_, _ Selection) { calls++ })

	require.NoError(t, store.SetCurrent("b"))
	require.NoError(t, accessor.Reload())
	assert.Equal(t, "b", accessor.Current().Name)
	assert.Equal(t, 1, calls)

	// No change on disk, no notification.
	require.NoError(t, accessor.Reload())
	assert.Equal(t, 1, calls)

	require.NoError(t, store.Delete("b"))
	require.NoError(t, accessor.Reload())
	assert.Equal(t, PrimaryName, accessor.Current().Name)
	assert.Equal(t, 2, calls)
}

func TestAccessor_ReloadKeepsOverrideUntilCurrentChanges(t *testing.T) {
	accessor, store := newTestAccessor(t)
	accessor.Override("explicit", mustBackend(t, "http://localhost:9000"))

	// Unrelated edits leave the override alone.
	require.NoError(t, store.Add(Environment{Name: "staging", URL: "https://staging.example.com/api"}))
	require.NoError(t, accessor.Reload())
	require.NoError(t, store.Update(Environment{Name: "a", URL: "https://a2.example.com/api"}))
	require.NoError(t, accessor.Reload())
	assert.Equal(t, "explicit", accessor.Current().Name)
	assert.Equal(t, "http://localhost:9000", accessor.Backend().String())

	// Another process switching environments wins.
	require.NoError(t, store.SetCurrent("staging"))
	require.NoError(t, accessor.Reload())
	assert.Equal(t, "staging", accessor.Current().Name)
	assert.Equal(t, "https://staging.example.com/api", accessor.Backend().String())
}

func TestAccessor_ReloadKeepsOverrideOfPersistedSelection(t *testing.T) {
	store := NewStorageWithPath(t.TempDir())
	require.NoError(t, store.Add(Environment{Name: "a", URL: "https://a.example.com/api"}))
	require.NoError(t, store.SetCurrent("a"))

	accessor := NewAccessor(mustBackend(t, "https://primary.example.com/api"), store)
	accessor.Override("b-url", mustBackend(t, "https://b.example.com/api"))

	require.NoError(t, store.Add(Environment{Name: "c", URL: "https://c.example.com/api"}))
	require.NoError(t, accessor.Reload())
	assert.Equal(t, "b-url", accessor.Current().Name)
}

func TestAccessor_ReloadPicksUpEditedURL(t *testing.T) {
	accessor, store := newTestAccessor(t)
	require.NoError(t, accessor.Select("a"))

	require.NoError(t, store.Update(Environment{Name: "a", URL: "https://a2.example.com/api"}))
	require.NoError(t, accessor.Reload())
	assert.Equal(t, "a", accessor.Current().Name)
	assert.Equal(t, "https://a2.example.com/api", accessor.Backend().String())
}

func TestAccessor_ConcurrentReaders(t *testing.T) {
	accessor, _ := newTestAccessor(t)

	valid := map[string]bool{
		"https://primary.example.com/api": true,
		"https://a.example.com/api":       true,
		"https://b.example.com/api":       true,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				sel := accessor.Current()
				if !valid[sel.Backend.String()] {
					t.Errorf("observed unexpected backend %q", sel.Backend)
					return
				}
			}
		}()
	}

	for _, name := range []string{"a", "b", PrimaryName, "a"} {
		require.NoError(t, accessor.Select(name))
	}
	wg.Wait()

	assert.Equal(t, "a", accessor.Current().Name)
}
