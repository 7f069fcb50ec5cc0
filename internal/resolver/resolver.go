// Package resolver fills in missing schema attribution for statements that
// do not carry their own qualification, by tracking the most recently seen
// explicit declarations in the dump.
package resolver

import (
	"fmt"

	"github.com/pgschema/pgsplit/internal/classifier"
)

// WarningRecorder receives warnings for resolutions that are heuristic
// rather than textually explicit.
type WarningRecorder interface {
	Warning(line int, reason string)
}

// entry is the last-known affiliation of an object name.
type entry struct {
	schema   string
	kind     classifier.ObjectKind
	explicit bool
}

// Resolver is a sequential, stateful resolver over the statement stream.
// It must see statements in original dump order: later statements only make
// sense relative to earlier explicit declarations. Not safe for concurrent
// use; the pipeline owns exactly one instance per run.
type Resolver struct {
	context  map[string]entry
	recorder WarningRecorder
}

// NewResolver creates a Resolver with an empty affiliation context.
// The recorder receives a warning for every inferred resolution; it may be
// nil when warnings are not collected.
func NewResolver(recorder WarningRecorder) *Resolver {
	return &Resolver{
		context:  make(map[string]entry),
		recorder: recorder,
	}
}

// Resolve returns a possibly-updated copy of stmt with schema filled from
// context. Explicit statements update the context; implicit statements
// inherit from it. When the same bare name was declared in more than one
// schema, the most recently seen explicit declaration wins. That is a
// best-effort heuristic, not a correctness guarantee, so every inferred
// resolution is recorded as a warning.
func (r *Resolver) Resolve(stmt classifier.ClassifiedStatement) classifier.ClassifiedStatement {
	if stmt.Confidence == classifier.ConfidenceExplicit {
		r.define(stmt.Name, stmt.Schema, stmt.Kind, true)
		return stmt
	}
	if stmt.Schema != "" || stmt.Name == "" {
		return stmt
	}

	// A declared relationship ("OWNED BY schema.table", "ON schema.table")
	// carries the owning object's schema directly.
	if stmt.OwnerSchema != "" {
		return r.inherit(stmt, stmt.OwnerSchema,
			fmt.Sprintf("%s %q inherits schema %q from owning object %q", stmt.Kind, stmt.Name, stmt.OwnerSchema, stmt.OwnerName))
	}

	// An unqualified owning object may have been declared explicitly earlier.
	if stmt.OwnerName != "" {
		if e, ok := r.context[stmt.OwnerName]; ok {
			return r.inherit(stmt, e.schema,
				fmt.Sprintf("%s %q inherits schema %q from previously seen %q", stmt.Kind, stmt.Name, e.schema, stmt.OwnerName))
		}
	}

	// Finally, the object itself may have been declared explicitly earlier
	// (e.g. ALTER SEQUENCE s1 after CREATE SEQUENCE public.s1).
	if e, ok := r.context[stmt.Name]; ok {
		return r.inherit(stmt, e.schema,
			fmt.Sprintf("%s %q resolved to schema %q from earlier declaration", stmt.Kind, stmt.Name, e.schema))
	}

	return stmt
}

// inherit applies an inferred schema and emits the mandatory warning.
func (r *Resolver) inherit(stmt classifier.ClassifiedStatement, schema, reason string) classifier.ClassifiedStatement {
	stmt.Schema = schema
	stmt.Confidence = classifier.ConfidenceInferred
	if r.recorder != nil {
		r.recorder.Warning(stmt.Statement.StartLine, reason)
	}
	r.define(stmt.Name, schema, stmt.Kind, false)
	return stmt
}

// define records the affiliation of a name. Inferred affiliations never
// override an explicit one; explicit ones always win, most recent last.
func (r *Resolver) define(name, schema string, kind classifier.ObjectKind, explicit bool) {
	if name == "" || schema == "" {
		return
	}
	if prev, ok := r.context[name]; ok && prev.explicit && !explicit {
		return
	}
	r.context[name] = entry{schema: schema, kind: kind, explicit: explicit}
}
