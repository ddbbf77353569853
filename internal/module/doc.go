// Package module composes feature modules at startup.
//
// Each feature registers itself with an Initializer; InitializeModules then
// calls every Initialize hook exactly once, sequentially, in registration
// order. A failing module aborts startup. There is no rollback of modules
// that already ran, since their only side effects are registrations in
// process-local registries that die with the process.
package module
