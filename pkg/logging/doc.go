// Package logging provides subsystem-tagged structured logging for studio.
//
// It is a thin layer over log/slog. Every entry carries a subsystem
// attribute so output from the module initializer, the HTTP server and the
// remote API client can be filtered independently.
//
// # Initialization
//
//	logging.Init(logging.Options{
//	    Level:  logging.LevelInfo,
//	    Format: logging.ParseFormat(cfg.Logging.Format),
//	    Output: os.Stderr,
//	})
//
//	logging.Info("Bootstrap", "Loaded configuration from %s", path)
//	logging.Error("Client", err, "Request to %s failed", url)
//
// # Audit Logging
//
// Authentication events (login, refresh, logout, token writes) go through
// Audit, which emits a SECURITY_AUDIT line at INFO level. Token values are
// never logged; session identifiers are truncated.
package logging
