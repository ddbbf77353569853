package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"studio/internal/auth"
	"studio/internal/identity"
	"studio/internal/localization"
	"studio/internal/menu"
	"studio/internal/module"
	"studio/internal/ui"
	"studio/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultWriteTimeout is the default timeout for writing responses.
	DefaultWriteTimeout = 60 * time.Second
	// DefaultIdleTimeout is the default idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the listener settings.
type Config struct {
	Host string
	Port int
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Dependencies holds the services the server needs to render pages.
type Dependencies struct {
	Renderer *ui.Renderer
	Menu     *menu.Registry
	Cultures *localization.Negotiator
	Tokens   *auth.JwtAccessor
	IDs      identity.Generator
	// Modules is optional; when set /healthz reports module states.
	Modules *module.Initializer
}

// AppBarFunc builds the parameters of an app-bar component for a request.
type AppBarFunc func(r *http.Request) (any, error)

// Server is the console HTTP server. Feature modules add routes and
// app-bar providers during initialization, before Serve is called.
type Server struct {
	config Config
	deps   Dependencies
	router *mux.Router

	mu     sync.RWMutex
	public map[string]bool
	appBar map[string]AppBarFunc

	httpServer *http.Server
}

// New creates a server with the built-in routes registered.
func New(cfg Config, deps Dependencies) (*Server, error) {
	if deps.Renderer == nil || deps.Menu == nil || deps.Cultures == nil || deps.Tokens == nil {
		return nil, errors.New("server requires a renderer, menu registry, culture negotiator and token accessor")
	}
	if deps.IDs == nil {
		deps.IDs = identity.NewGenerator()
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		router: mux.NewRouter(),
		public: make(map[string]bool),
		appBar: make(map[string]AppBarFunc),
	}

	s.router.Use(s.requireAuth)
	// Router middleware does not run for unmatched requests.
	s.router.NotFoundHandler = s.resolveAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.RenderError(w, r, http.StatusNotFound, "Page not found", "The page you requested does not exist.")
	}))
	s.router.MethodNotAllowedHandler = s.resolveAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.RenderError(w, r, http.StatusMethodNotAllowed, "Method not allowed", "")
	}))

	s.HandlePublic(http.MethodGet, "/api/menu", s.handleMenu)
	s.HandlePublic(http.MethodGet, "/healthz", s.handleHealth)

	return s, nil
}

// Handle registers a route that requires a signed-in user.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.router.HandleFunc(path, h).Methods(method)
}

// HandlePublic registers a route that anonymous users may reach.
func (s *Server) HandlePublic(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	s.public[path] = true
	s.mu.Unlock()
	s.router.HandleFunc(path, h).Methods(method)
}

// RegisterAppBar sets the parameter provider for the app-bar item with id.
func (s *Server) RegisterAppBar(id string, fn AppBarFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.appBar[id]; exists {
		return fmt.Errorf("app-bar provider %q already registered", id)
	}
	s.appBar[id] = fn
	return nil
}

// Var returns a path variable of the matched route.
func Var(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// Handler returns the root handler with the middleware chain applied:
// recovery, access logging, session, culture, then the router (which
// enforces authentication per route).
func (s *Server) Handler() http.Handler {
	return s.recovery(s.logRequests(s.session(s.culture(s.router))))
}

// Listen opens the listening socket.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return ln, nil
}

// Serve handles requests on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Server", "Console listening on http://%s", ln.Addr())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("Server", "Shutting down console")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) isPublic(r *http.Request) bool {
	route := mux.CurrentRoute(r)
	if route == nil {
		return false
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.public[tpl]
}

func (s *Server) appBarFunc(id string) AppBarFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appBar[id]
}
