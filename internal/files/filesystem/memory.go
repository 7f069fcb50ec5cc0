package filesystem

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// MemoryWriter implements Writer in memory, for tests.
// Paths are normalized to forward slashes (virtual filesystem convention).
type MemoryWriter struct {
	files map[string][]byte
	dirs  map[string]struct{}
}

// NewMemoryWriter creates an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{
		files: make(map[string][]byte),
		dirs:  make(map[string]struct{}),
	}
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

func (w *MemoryWriter) MkdirAll(p string) error {
	p = normalize(p)
	for p != "." && p != "/" {
		w.dirs[p] = struct{}{}
		p = path.Dir(p)
	}
	return nil
}

func (w *MemoryWriter) WriteFile(p string, content []byte) error {
	p = normalize(p)
	dir := path.Dir(p)
	if dir != "." && dir != "/" {
		if _, ok := w.dirs[dir]; !ok {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}
	buf := make([]byte, len(content))
	copy(buf, content)
	w.files[p] = buf
	return nil
}

func (w *MemoryWriter) RemoveAll(p string) error {
	p = normalize(p)
	for f := range w.files {
		if f == p || strings.HasPrefix(f, p+"/") {
			delete(w.files, f)
		}
	}
	for d := range w.dirs {
		if d == p || strings.HasPrefix(d, p+"/") {
			delete(w.dirs, d)
		}
	}
	return nil
}

func (w *MemoryWriter) Exists(p string) bool {
	p = normalize(p)
	if _, ok := w.files[p]; ok {
		return true
	}
	_, ok := w.dirs[p]
	return ok
}

// ReadFile returns the content written to path. Test helper.
func (w *MemoryWriter) ReadFile(p string) ([]byte, bool) {
	content, ok := w.files[normalize(p)]
	return content, ok
}

// Paths returns every written file path in sorted order. Test helper.
func (w *MemoryWriter) Paths() []string {
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
