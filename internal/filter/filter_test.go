package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgschema/pgsplit/internal/classifier"
)

func stmt(schema string) classifier.ClassifiedStatement {
	return classifier.ClassifiedStatement{Kind: classifier.KindTable, Schema: schema, Name: "t1"}
}

func TestSchemaFilter_IsRetained(t *testing.T) {
	tests := []struct {
		name     string
		allowed  []string
		schema   string
		retained bool
	}{
		{
			name:     "No allow-list retains everything",
			allowed:  nil,
			schema:   "audit",
			retained: true,
		},
		{
			name:     "Empty allow-list retains everything",
			allowed:  []string{},
			schema:   "audit",
			retained: true,
		},
		{
			name:     "Allowed schema is retained",
			allowed:  []string{"public", "app"},
			schema:   "app",
			retained: true,
		},
		{
			name:     "Other schema is excluded",
			allowed:  []string{"public"},
			schema:   "audit",
			retained: false,
		},
		{
			name:     "Schema names are case sensitive",
			allowed:  []string{"Public"},
			schema:   "public",
			retained: false,
		},
		{
			name:     "Unknown schema is always retained",
			allowed:  []string{"public"},
			schema:   "",
			retained: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewSchemaFilter(tt.allowed)
			assert.Equal(t, tt.retained, f.IsRetained(stmt(tt.schema)))
		})
	}
}
