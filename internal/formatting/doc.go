// Package formatting renders CLI command results as plain tables, JSON or
// YAML.
//
// Commands build a Table view of their result with one of the view
// constructors and hand both the raw payload and the view to a Printer.
// Structured formats encode the payload so scripts see the engine's field
// names; table formats render the view with go-pretty.
package formatting
