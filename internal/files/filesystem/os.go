package filesystem

import (
	"os"
)

// OSWriter implements Writer against the real filesystem.
type OSWriter struct{}

// NewOSWriter creates a new OS filesystem writer.
func NewOSWriter() *OSWriter {
	return &OSWriter{}
}

func (w *OSWriter) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (w *OSWriter) WriteFile(path string, content []byte) error {
	return os.WriteFile(path, content, 0o644)
}

func (w *OSWriter) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (w *OSWriter) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
