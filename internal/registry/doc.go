// Package registry is the composition boundary between internal/app and
// the feature modules.
//
// Capabilities are keyed by their Go type, usually an interface:
//
//	registry.MustRegister[auth.TokenStorage](reg, auth.NewSessionStorage())
//	storage := registry.MustResolve[auth.TokenStorage](reg)
//
// There is no global instance. The registry is filled before modules are
// constructed and only read afterwards.
package registry
