// Package client talks to the workflow engine's HTTP API.
//
// HTTPClient reads the current backend from a BackendProvider on every
// request, so switching environments takes effect on the next call without
// rebuilding the client. Bearer tokens come from a per-request
// oauth2.TokenSource, which lets session-scoped token storage resolve the
// right user from the request context.
//
// Non-2xx answers are mapped to the typed errors in internal/api:
//
//	def, err := c.GetDefinition(ctx, id, api.VersionLatest)
//	switch {
//	case api.IsNotFound(err):
//	    // 404
//	case api.IsUnauthorized(err):
//	    // 401, 403, or no token stored
//	}
package client
