package server

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"studio/internal/api"
	"studio/internal/localization"
	"studio/internal/ui"
	"studio/pkg/logging"
)

// NoticeCookieName carries a one-shot status message across a redirect.
const NoticeCookieName = "studio_notice"

// Page is a module page rendered inside the shell.
type Page struct {
	Title     string
	Component string
	Params    any
	Status    int
}

// RenderPage renders page inside the shell with the navigation and app bar.
func (s *Server) RenderPage(w http.ResponseWriter, r *http.Request, page Page) {
	content, err := s.deps.Renderer.RenderHTML(page.Component, page.Params)
	if err != nil {
		logging.Error("Server", err, "Failed to render %s", page.Component)
		s.renderShell(w, r, http.StatusInternalServerError, "Error", s.errorContent(http.StatusInternalServerError, "Rendering failed", ""))
		return
	}

	status := page.Status
	if status == 0 {
		status = http.StatusOK
	}
	s.renderShell(w, r, status, page.Title, content)
}

// RenderError renders the error component inside the shell.
func (s *Server) RenderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	s.renderShell(w, r, status, title, s.errorContent(status, title, message))
}

// Fail maps err to a response. Engine 401/403 answers send the user back to
// the login page; missing resources render 404; other engine failures
// render 502.
func (s *Server) Fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case api.IsUnauthorized(err):
		logging.Warn("Server", "Engine rejected credentials for %s %s: %v", r.Method, r.URL.Path, err)
		if clearErr := s.deps.Tokens.ClearTokens(r.Context()); clearErr != nil {
			logging.Error("Server", clearErr, "Failed to clear rejected tokens")
		}
		SetNotice(w, "Your session has expired. Please sign in again.")
		Redirect(w, r, LoginURL(r.URL.RequestURI()))
	case api.IsNotFound(err):
		s.RenderError(w, r, http.StatusNotFound, "Not found", err.Error())
	case api.IsRemoteError(err):
		logging.Error("Server", err, "Engine request failed")
		s.RenderError(w, r, http.StatusBadGateway, "Workflow engine error", err.Error())
	default:
		logging.Error("Server", err, "Request failed: %s %s", r.Method, r.URL.Path)
		s.RenderError(w, r, http.StatusInternalServerError, "Something went wrong", err.Error())
	}
}

func (s *Server) errorContent(status int, title, message string) template.HTML {
	content, err := s.deps.Renderer.RenderHTML(ui.ComponentError, ui.ErrorParams{Status: status, Title: title, Message: message})
	if err != nil {
		logging.Error("Server", err, "Failed to render error page")
		return template.HTML("<h1>" + template.HTMLEscapeString(title) + "</h1>")
	}
	return content
}

func (s *Server) renderShell(w http.ResponseWriter, r *http.Request, status int, title string, content template.HTML) {
	culture := localization.FromContext(r.Context())
	if culture == "" {
		culture = s.deps.Cultures.Default()
	}

	params := ui.ShellParams{
		Title:    title,
		Sections: s.deps.Menu.Sections(),
		ActiveID: s.deps.Menu.Active(r.URL.Path),
		AppBar:   s.renderAppBar(r),
		Content:  content,
		Culture:  culture,
		Notice:   takeNotice(w, r),
	}

	var buf bytes.Buffer
	if err := s.deps.Renderer.Render(&buf, ui.ComponentShell, params); err != nil {
		logging.Error("Server", err, "Failed to render shell")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderAppBar(r *http.Request) []template.HTML {
	items := s.deps.Menu.AppBarItems()
	out := make([]template.HTML, 0, len(items))
	for _, item := range items {
		var params any
		if fn := s.appBarFunc(item.ID); fn != nil {
			p, err := fn(r)
			if err != nil {
				logging.Warn("Server", "Skipping app-bar item %s: %v", item.ID, err)
				continue
			}
			params = p
		}
		html, err := s.deps.Renderer.RenderHTML(item.Component, params)
		if err != nil {
			logging.Warn("Server", "Skipping app-bar item %s: %v", item.ID, err)
			continue
		}
		out = append(out, html)
	}
	return out
}

// SafeRedirect returns target when it is a local path and fallback
// otherwise, so redirect parameters cannot send users off-site.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return target
}

// Redirect sends a 303 so that form posts are followed by a GET.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SetNotice stores a message shown once on the next rendered page.
func SetNotice(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     NoticeCookieName,
		Value:    url.QueryEscape(message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeNotice(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(NoticeCookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: NoticeCookieName, Value: "", Path: "/", MaxAge: -1})
	message, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return message
}

// Response is the JSON envelope of the console's API endpoints.
type Response struct {
	Data  any        `json:"data,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Data: data}); err != nil {
		logging.Warn("Server", "Failed to encode response: %v", err)
	}
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: &ErrorInfo{Code: code, Message: message}})
}
