package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"studio/internal/auth"
	"studio/internal/identity"
	"studio/internal/localization"
	"studio/pkg/logging"
)

// SessionCookieName identifies the browser session. Token storage in
// session mode is keyed by its value.
const SessionCookieName = "studio_session"

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.Error("Server", fmt.Errorf("panic: %v", rec), "Recovered from panic in %s %s\n%s", r.Method, r.URL.Path, debug.Stack())
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		if r.URL.Path == "/healthz" {
			logging.Debug("HTTP", "%s %s %d %s", r.Method, r.URL.Path, wrapped.status, time.Since(start))
			return
		}
		logging.Info("HTTP", "%s %s %d %d %s", r.Method, r.URL.Path, wrapped.status, wrapped.size, time.Since(start))
	})
}

// session makes sure every request carries a session ID, issuing a new
// cookie when the browser sent none or an invalid one.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookieName); err == nil && identity.IsValid(c.Value) {
			id = c.Value
		} else {
			id = s.issueSession(w, r)
			logging.Debug("Server", "Issued session %s", logging.TruncateSessionID(id))
		}

		next.ServeHTTP(w, r.WithContext(auth.WithSessionID(r.Context(), id)))
	})
}

// RenewSession replaces the request's session ID with a fresh one and sets
// the new cookie. Call it when the privilege level changes, such as on
// sign-in, so an ID planted before sign-in never carries tokens.
func (s *Server) RenewSession(w http.ResponseWriter, r *http.Request) *http.Request {
	previous, _ := auth.SessionIDFromContext(r.Context())
	id := s.issueSession(w, r)
	logging.Debug("Server", "Renewed session %s as %s",
		logging.TruncateSessionID(previous), logging.TruncateSessionID(id))
	return r.WithContext(auth.WithSessionID(r.Context(), id))
}

func (s *Server) issueSession(w http.ResponseWriter, r *http.Request) string {
	id := s.deps.IDs.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) culture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		culture := s.deps.Cultures.FromRequest(r)
		next.ServeHTTP(w, r.WithContext(localization.WithCulture(r.Context(), culture)))
	})
}

// requireAuth resolves the sign-in state of every routed request and sends
// anonymous users to the login page unless the route is public.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return s.resolveAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if AuthStatus(r.Context()).Authenticated || s.isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}
		Redirect(w, r, LoginURL(r.URL.RequestURI()))
	}))
}

// resolveAuth puts the sign-in state into the request context.
func (s *Server) resolveAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, err := s.deps.Tokens.Status(r.Context())
		if err != nil {
			logging.Error("Server", err, "Failed to read token state")
			http.Error(w, "Token storage unavailable", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(withAuthStatus(r.Context(), status)))
	})
}

// LoginURL returns the login page URL that comes back to redirect after
// signing in.
func LoginURL(redirect string) string {
	if redirect == "" || redirect == "/" {
		return "/login"
	}
	return "/login?" + url.Values{"redirect": {redirect}}.Encode()
}

type authStatusKey struct{}

func withAuthStatus(ctx context.Context, status auth.Status) context.Context {
	return context.WithValue(ctx, authStatusKey{}, status)
}

// AuthStatus returns the sign-in state resolved for the request.
func AuthStatus(ctx context.Context) auth.Status {
	status, _ := ctx.Value(authStatusKey{}).(auth.Status)
	return status
}
