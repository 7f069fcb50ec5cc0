// Package filter decides whether a classified statement is retained under
// the configured schema allow-list.
package filter

import (
	"github.com/pgschema/pgsplit/internal/classifier"
)

// SchemaFilter is a pure predicate over classified statements.
type SchemaFilter struct {
	allowed map[string]struct{}
}

// NewSchemaFilter creates a filter from an allow-list of schema names.
// An empty list means every statement is retained.
func NewSchemaFilter(allowedSchemas []string) *SchemaFilter {
	if len(allowedSchemas) == 0 {
		return &SchemaFilter{}
	}
	allowed := make(map[string]struct{}, len(allowedSchemas))
	for _, s := range allowedSchemas {
		allowed[s] = struct{}{}
	}
	return &SchemaFilter{allowed: allowed}
}

// IsRetained reports whether the statement survives the allow-list.
// Statements with an unknown schema are always retained: exclusion must
// never lose non-schema-qualified utility objects the user did not ask to
// filter. They are routed to the "others" bucket instead.
func (f *SchemaFilter) IsRetained(stmt classifier.ClassifiedStatement) bool {
	if f.allowed == nil {
		return true
	}
	if stmt.Schema == "" {
		return true
	}
	_, ok := f.allowed[stmt.Schema]
	return ok
}
