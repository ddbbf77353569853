// Package app is the composition root of the console server.
//
// NewApplication loads config.yaml, configures logging and calls
// InitializeServices, which selects the backend, builds the token storage
// named by auth.storage, the engine client, the renderer and the server,
// registers them in a capability registry and registers the feature
// modules with the module initializer.
//
// Application.Run initializes the modules in registration order, opens the
// listener, tells systemd the console is ready and then runs the HTTP
// server and the environments.yaml watcher in an errgroup until the
// context is cancelled or SIGINT/SIGTERM arrives.
package app
