// Package taskrunner hosts the shared abstractions for executing bindgen
// generation runs. It exposes the `Executor` interface plus helpers (`Factory`,
// `Resolve`) so the CLI can build Dependencies once and obtain a runner, while
// unit tests can swap in fakes. Successful runs print a one-line summary.
package taskrunner
