package environments_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/auth"
	"studio/internal/environment"
	"studio/internal/features/environments"
	"studio/internal/registry"
	"studio/internal/server"
	"studio/internal/server/servertest"
	"studio/internal/ui"
)

func setup(t *testing.T) (*servertest.Harness, *environment.Accessor, *environment.Storage) {
	t.Helper()
	h := servertest.New(t)

	store := environment.NewStorageWithPath(t.TempDir())
	require.NoError(t, store.Add(environment.Environment{Name: "staging", URL: "https://staging.example.com/elsa/api"}))

	primary, err := environment.NewBackend("https://engine.example.com/elsa/api")
	require.NoError(t, err)
	accessor := environment.NewAccessor(primary, store)

	reg := h.Registry()
	require.NoError(t, registry.Register(reg, accessor))
	require.NoError(t, environments.New(reg).Initialize(context.Background()))

	// A page to render the app bar on.
	h.Server.Handle(http.MethodGet, "/page", func(w http.ResponseWriter, r *http.Request) {
		h.Server.RenderPage(w, r, server.Page{Title: "Page", Component: ui.ComponentError, Params: ui.ErrorParams{}})
	})
	h.SignIn(auth.TokenPair{})
	return h, accessor, store
}

func TestPickerInAppBar(t *testing.T) {
	h, _, _ := setup(t)

	body := h.Get("/page").Body.String()

	assert.Contains(t, body, `action="/environments/select"`)
	assert.Contains(t, body, `<option value="primary" selected>primary</option>`)
	assert.Contains(t, body, `<option value="staging">staging</option>`)
	assert.Contains(t, body, `name="redirect" value="/page"`)
}

func TestSelect(t *testing.T) {
	h, accessor, store := setup(t)

	rec := h.PostForm("/environments/select", url.Values{"environment": {"staging"}, "redirect": {"/workflows/definitions"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/workflows/definitions", rec.Header().Get("Location"))
	assert.Equal(t, "staging", accessor.Current().Name)
	assert.Equal(t, "https://staging.example.com/elsa/api", accessor.Backend().String())

	name, err := store.CurrentName()
	require.NoError(t, err)
	assert.Equal(t, "staging", name)

	body := h.Get("/page").Body.String()
	assert.Contains(t, body, `<option value="staging" selected>staging</option>`)
}

func TestSelect_Unknown(t *testing.T) {
	h, accessor, _ := setup(t)

	rec := h.PostForm("/environments/select", url.Values{"environment": {"nope"}})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, environment.PrimaryName, accessor.Current().Name)
}

func TestSelect_OffsiteRedirectIgnored(t *testing.T) {
	h, _, _ := setup(t)

	rec := h.PostForm("/environments/select", url.Values{"environment": {"primary"}, "redirect": {"https://evil.example.com"}})

	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSelect_RequiresSignIn(t *testing.T) {
	h, accessor, _ := setup(t)
	require.NoError(t, h.Tokens.ClearTokens(h.Context()))

	rec := h.PostForm("/environments/select", url.Values{"environment": {"staging"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login")
	assert.Equal(t, environment.PrimaryName, accessor.Current().Name)
}
