// Package config loads and validates studio's configuration.
//
// Configuration lives in a single directory, ~/.config/studio by default
// or the directory passed with --config-path:
//
//	server:
//	  host: localhost
//	  port: 8080
//	backend:
//	  url: https://localhost:5001/elsa/api
//	  timeout: 30s
//	auth:
//	  storage: session   # or "file"
//	localization:
//	  supportedCultures: [en-US, fr-FR]
//	  defaultCulture: en-US
//	logging:
//	  format: text       # or "json"
//
// Loading starts from GetDefaultConfig, overlays config.yaml and runs
// Validate. Problems are reported as a ConfigurationErrorCollection so a
// user sees every mistake at once.
//
// Named environments are not part of this file; they live in
// environments.yaml and are managed by the environment package.
package config
