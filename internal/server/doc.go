// Package server serves the console over HTTP.
//
// The server owns the router, the middleware chain and the page shell.
// Feature modules register their routes with Handle or HandlePublic and
// their app-bar parameter providers with RegisterAppBar while they
// initialize; the server itself knows nothing about workflows, labels or
// environments.
//
// # Middleware
//
// Every request passes, in order:
//   - recovery: turns panics into a 500 response
//   - access logging: method, path, status, size and duration
//   - session: ensures a studio_session cookie and puts its value in the
//     request context for session token storage
//   - culture: negotiates the UI culture from the culture cookie and
//     Accept-Language
//   - authentication: resolves the sign-in state and redirects anonymous
//     users to /login unless the route is public
//
// # Built-in routes
//
//   - GET /api/menu returns the navigation and app-bar registry as JSON
//   - GET /healthz reports module initialization state
package server
