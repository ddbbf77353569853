// Package auth manages the bearer tokens the console uses against the
// workflow engine.
//
// # Storage
//
// Tokens live in a TokenStorage chosen at composition time:
//
//   - FileStorage: a 0600 JSON file per profile under
//     ~/.config/studio/tokens, used by the CLI
//   - SessionStorage: server memory keyed by the console session cookie,
//     used by `studio serve`
//
// The access token is stored under "authToken" and the refresh token under
// "refreshToken". JwtAccessor reads and writes the pair; a missing token
// reads as "".
//
// # Login and Refresh
//
// CredentialsValidator posts credentials to /identity/login and fails closed.
// Refresher renews an expired access token through /identity/refresh-token
// before outgoing calls; concurrent callers share one request, and a failed
// refresh clears the stored tokens.
//
// # Security
//
// Token values are never logged. Security-relevant events are written as
// SECURITY_AUDIT log lines through pkg/logging.
package auth
