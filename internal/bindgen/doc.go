// Package bindgen drives an external binding generator over an ordered list of C headers.
// A Runner prepares the generator once and then asks it to generate bindings for each
// GenerationTask strictly in list order, stopping at the first failure.
package bindgen
