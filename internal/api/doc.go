// Package api defines the payloads exchanged with the workflow engine's
// HTTP API and the typed errors the remote client returns.
//
// # Error Types
//
//   - NotFoundError: the engine answered 404
//   - UnauthorizedError: the engine answered 401 or 403
//   - RemoteError: any other non-2xx answer, with status and body
//
// Use IsNotFound, IsUnauthorized and IsRemoteError rather than type
// assertions so wrapped errors are recognized.
//
// # Payloads
//
// List endpoints return PagedList[T]. Definitions and instances come in a
// summary form for lists and a full form for detail views.
package api
