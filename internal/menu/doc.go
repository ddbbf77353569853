// Package menu holds the navigation contributed by feature modules: sidebar
// items grouped into sections, and components shown in the app bar.
//
// Modules add entries from their Initialize hook. The registry only grows;
// the shell page and GET /api/menu read it on every request.
package menu
