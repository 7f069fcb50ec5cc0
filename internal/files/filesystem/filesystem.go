// Package filesystem abstracts the output tree so the router can be tested
// against an in-memory implementation and the idempotence of a run can be
// asserted byte-for-byte.
package filesystem

// Writer is the minimal surface the router needs to commit an output tree.
// All content is staged in memory by the caller and flushed in one pass, so
// implementations only provide simple primitives.
type Writer interface {
	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error

	// WriteFile writes content to path, replacing any existing file.
	WriteFile(path string, content []byte) error

	// RemoveAll removes path and everything under it. Removing a
	// non-existent path is not an error.
	RemoveAll(path string) error

	// Exists reports whether path exists.
	Exists(path string) bool
}
