// Package router maps classified statements to output files and accumulates
// their text until the end of the run. Nothing touches disk before Flush,
// which keeps an aborted run from leaving a partial tree behind.
package router

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/pgschema/pgsplit/internal/classifier"
	"github.com/pgschema/pgsplit/internal/files/filesystem"
	"github.com/pgschema/pgsplit/pkg/pgsplit"
)

// Router accumulates statement text per output file identity and commits
// the whole tree in one pass. Not safe for concurrent use; the pipeline
// owns exactly one instance per run.
type Router struct {
	root    string
	fs      filesystem.Writer
	buffers map[string]*strings.Builder
}

// NewRouter creates a Router that will commit under root using fs.
func NewRouter(root string, fs filesystem.Writer) *Router {
	return &Router{
		root:    root,
		fs:      fs,
		buffers: make(map[string]*strings.Builder),
	}
}

// Route appends the statement to its destination buffer and returns the
// destination path relative to the output root. The schema component falls
// back to the "others" bucket when no schema was resolved; the file name
// falls back to the kind's aggregate label when no object name is derivable.
// Statements for one destination keep their original relative order.
func (r *Router) Route(stmt classifier.ClassifiedStatement) string {
	schema := stmt.Schema
	if schema == "" {
		schema = pgsplit.OthersBucket
	}
	name := stmt.Name
	if name == "" {
		// Aggregate file for the kind.
		name = stmt.Kind.Dir()
	}

	dest := path.Join(sanitize(schema), stmt.Kind.Dir(), sanitize(name)+pgsplit.SQLFileExtension)

	buf, ok := r.buffers[dest]
	if !ok {
		buf = &strings.Builder{}
		r.buffers[dest] = buf
	}
	if buf.Len() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString(stmt.Statement.Text)
	buf.WriteString("\n")

	return dest
}

// FileCount returns the number of distinct destinations accumulated so far.
func (r *Router) FileCount() int {
	return len(r.buffers)
}

// Flush commits the accumulated tree. Any existing tree at the root is
// replaced, so re-running on identical input produces an identical tree.
// Called exactly once, after the full statement stream is exhausted.
func (r *Router) Flush() error {
	if r.fs.Exists(r.root) {
		if err := r.fs.RemoveAll(r.root); err != nil {
			return fmt.Errorf("failed to remove previous output tree: %w", err)
		}
	}
	if err := r.fs.MkdirAll(r.root); err != nil {
		return fmt.Errorf("failed to create output root: %w", err)
	}

	dests := make([]string, 0, len(r.buffers))
	for dest := range r.buffers {
		dests = append(dests, dest)
	}
	sort.Strings(dests)

	for _, dest := range dests {
		full := path.Join(r.root, dest)
		if err := r.fs.MkdirAll(path.Dir(full)); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", dest, err)
		}
		if err := r.fs.WriteFile(full, []byte(r.buffers[dest].String())); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
	}
	return nil
}

// sanitize makes an identifier safe as a single path component. Quoted
// identifiers can contain arbitrary characters, including separators.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "." || s == ".." {
		return "_"
	}
	return s
}
