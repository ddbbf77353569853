// Package environment tracks which workflow engine backend the console talks to.
//
// Users define named environments pointing at different engine API
// endpoints and switch between them, similar to kubectl contexts. The
// configured primary backend (backend.url in config.yaml) is always
// available under the name "primary".
//
// # Environments File
//
// Environments are stored in ~/.config/studio/environments.yaml:
//
//	current: staging
//	environments:
//	  - name: staging
//	    url: https://staging.example.com/elsa/api
//	  - name: production
//	    url: https://workflows.example.com/elsa/api
//	    description: Live tenant
//
// # Accessor
//
// Accessor holds the single active Backend. API clients call
// Accessor.Backend for every request instead of capturing it, because the
// user may switch environments between calls. Select persists the choice so
// the CLI and a running server agree; Watcher reloads a running server's
// accessor when the file is edited elsewhere.
//
// # Precedence
//
// When determining the initial backend, studio checks in this order:
//  1. --backend flag (highest priority)
//  2. --environment flag
//  3. STUDIO_ENVIRONMENT environment variable
//  4. current environment from environments.yaml
//  5. backend.url from config.yaml
//
// # Concurrency
//
// Storage and Accessor are safe for concurrent use within one process.
// Concurrent writers in separate processes are not coordinated; the last
// save wins. Saves are atomic renames, so readers never see a partial file.
package environment
