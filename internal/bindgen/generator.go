package bindgen

import "context"

// Generator is the binding generator collaborator driven by the Runner.
type Generator interface {
	// Prepare runs once before any header is generated.
	Prepare(executionContext context.Context) error
	// Generate emits bindings for a single header.
	Generate(executionContext context.Context, headerPath string, mainPrefix string, dependencyPrefixes []string) error
}
