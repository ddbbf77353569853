// Package features holds the console's feature modules.
//
// Each subpackage exposes New(*registry.Registry) returning a module.Module.
// During Initialize a module resolves the capabilities it needs from the
// registry, registers its menu and app-bar entries, and adds its routes to
// the server. Modules never import each other.
package features
