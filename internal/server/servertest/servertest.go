// Package servertest runs a console server in-process for handler tests.
package servertest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studio/internal/auth"
	"studio/internal/identity"
	"studio/internal/localization"
	"studio/internal/menu"
	"studio/internal/registry"
	"studio/internal/server"
	"studio/internal/ui"
)

// SessionID is the session every Harness request carries.
const SessionID = "1b4e28ba-2fa1-41d2-883f-0016d3cca427"

// Harness bundles a server with the services its pages use.
type Harness struct {
	T        *testing.T
	Server   *server.Server
	Menu     *menu.Registry
	Renderer *ui.Renderer
	Cultures *localization.Negotiator
	Storage  *auth.SessionStorage
	Tokens   *auth.JwtAccessor
}

// New creates a harness with session token storage and two cultures.
func New(t *testing.T) *Harness {
	t.Helper()

	renderer, err := ui.NewRenderer()
	require.NoError(t, err)

	cultures, err := localization.NewNegotiator([]string{"en-US", "de-DE"}, "en-US")
	require.NoError(t, err)

	storage := auth.NewSessionStorage(time.Hour)
	t.Cleanup(storage.Stop)

	h := &Harness{
		T:        t,
		Menu:     menu.NewRegistry(),
		Renderer: renderer,
		Cultures: cultures,
		Storage:  storage,
		Tokens:   auth.NewJwtAccessor(storage),
	}

	h.Server, err = server.New(server.Config{Host: "127.0.0.1", Port: 0}, server.Dependencies{
		Renderer: renderer,
		Menu:     h.Menu,
		Cultures: cultures,
		Tokens:   h.Tokens,
	})
	require.NoError(t, err)
	return h
}

// Registry returns a capability registry holding the harness services,
// ready for a feature module under test.
func (h *Harness) Registry() *registry.Registry {
	reg := registry.New()
	registry.MustRegister(reg, h.Server)
	registry.MustRegister(reg, h.Menu)
	registry.MustRegister(reg, h.Cultures)
	registry.MustRegister(reg, h.Tokens)
	registry.MustRegister[identity.Generator](reg, identity.NewGenerator())
	return reg
}

// Context returns a context bound to the harness session.
func (h *Harness) Context() context.Context {
	return ContextFor(SessionID)
}

// ContextFor returns a context bound to session id.
func ContextFor(id string) context.Context {
	return auth.WithSessionID(context.Background(), id)
}

// ResponseSession returns the session cookie value set on rec, or "".
func ResponseSession(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == server.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

// SignIn stores a token pair for the harness session.
func (h *Harness) SignIn(pair auth.TokenPair) {
	h.T.Helper()
	if pair.AccessToken == "" {
		pair.AccessToken = "access-token"
	}
	require.NoError(h.T, h.Tokens.WriteTokens(h.Context(), pair))
}

// Get performs a GET with the harness session cookie.
func (h *Harness) Get(path string) *httptest.ResponseRecorder {
	return h.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// PostForm performs a form POST with the harness session cookie.
func (h *Harness) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.Do(req)
}

// Do sends req through the full middleware chain.
func (h *Harness) Do(req *http.Request) *httptest.ResponseRecorder {
	if _, err := req.Cookie(server.SessionCookieName); err != nil {
		req.AddCookie(&http.Cookie{Name: server.SessionCookieName, Value: SessionID})
	}
	rec := httptest.NewRecorder()
	h.Server.Handler().ServeHTTP(rec, req)
	return rec
}
