// Package security adds sign-in, sign-out and the user menu.
package security

import (
	"context"
	"net/http"

	"studio/internal/auth"
	"studio/internal/environment"
	"studio/internal/menu"
	"studio/internal/registry"
	"studio/internal/server"
	"studio/internal/ui"
	"studio/pkg/logging"
)

// AppBarID identifies the user menu in the app bar.
const AppBarID = "user-menu"

// Module is the security feature.
type Module struct {
	registry *registry.Registry

	server    *server.Server
	validator auth.Validator
	tokens    *auth.JwtAccessor
	backend   *environment.Accessor
}

// New creates the security module.
func New(reg *registry.Registry) *Module {
	return &Module{registry: reg}
}

// Name implements module.Module.
func (m *Module) Name() string { return "security" }

// Initialize implements module.Module.
func (m *Module) Initialize(ctx context.Context) error {
	var err error
	if m.server, err = registry.Resolve[*server.Server](m.registry); err != nil {
		return err
	}
	if m.validator, err = registry.Resolve[auth.Validator](m.registry); err != nil {
		return err
	}
	if m.tokens, err = registry.Resolve[*auth.JwtAccessor](m.registry); err != nil {
		return err
	}
	if m.backend, err = registry.Resolve[*environment.Accessor](m.registry); err != nil {
		return err
	}
	menus, err := registry.Resolve[*menu.Registry](m.registry)
	if err != nil {
		return err
	}

	if err := menus.AddAppBarItems(menu.AppBarItem{
		ID:        AppBarID,
		Label:     "Account",
		Component: ui.ComponentUserMenu,
		Order:     100,
	}); err != nil {
		return err
	}
	if err := m.server.RegisterAppBar(AppBarID, m.userMenuParams); err != nil {
		return err
	}

	m.server.HandlePublic(http.MethodGet, "/login", m.handleLoginPage)
	m.server.HandlePublic(http.MethodPost, "/login", m.handleLogin)
	m.server.HandlePublic(http.MethodPost, "/logout", m.handleLogout)
	return nil
}

func (m *Module) userMenuParams(r *http.Request) (any, error) {
	status := server.AuthStatus(r.Context())
	return ui.UserMenuParams{Authenticated: status.Authenticated, User: status.User}, nil
}

func (m *Module) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	redirect := server.SafeRedirect(r.URL.Query().Get("redirect"), "/")
	if server.AuthStatus(r.Context()).Authenticated {
		server.Redirect(w, r, redirect)
		return
	}
	m.renderLogin(w, r, http.StatusOK, &ui.LoginFormParams{Redirect: redirect})
}

func (m *Module) renderLogin(w http.ResponseWriter, r *http.Request, status int, form *ui.LoginFormParams) {
	form.Password = ""
	form.Backend = m.backend.Backend().String()
	m.server.RenderPage(w, r, server.Page{Title: "Sign in", Component: ui.ComponentLogin, Params: form, Status: status})
}

func (m *Module) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		m.server.RenderError(w, r, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	form := &ui.LoginFormParams{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
		Redirect: server.SafeRedirect(r.PostForm.Get("redirect"), "/"),
	}
	if !form.Validate() {
		m.renderLogin(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	result := m.validator.ValidateCredentials(r.Context(), form.Username, form.Password)
	if !result.IsValid {
		form.Failed = true
		m.renderLogin(w, r, http.StatusUnauthorized, form)
		return
	}

	// Drop anything the old session held, then sign in under a fresh ID.
	if err := m.tokens.ClearTokens(r.Context()); err != nil {
		m.server.Fail(w, r, err)
		return
	}
	r = m.server.RenewSession(w, r)

	if err := m.tokens.WriteTokens(r.Context(), result.Pair()); err != nil {
		m.server.Fail(w, r, err)
		return
	}

	server.Redirect(w, r, form.Redirect)
}

func (m *Module) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := m.tokens.ClearTokens(r.Context()); err != nil {
		m.server.Fail(w, r, err)
		return
	}
	logging.Debug("Security", "Signed out")
	server.SetNotice(w, "You have been signed out.")
	server.Redirect(w, r, "/login")
}
