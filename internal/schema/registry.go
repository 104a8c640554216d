package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

var (
	ErrSchemaNameRequired = errors.New("schema: schema name required")
	ErrSchemaNotFound     = errors.New("schema: schema not found")
)

// Registry is the in-memory schema registry: schema name -> declared fields.
// It satisfies interfaces.SchemaRegistry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string][]interfaces.FieldDef
}

// NewRegistry constructs an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string][]interfaces.FieldDef),
	}
}

var _ interfaces.SchemaRegistry = (*Registry)(nil)

// Register records the declared fields for a schema name, replacing any
// previous declaration. Field definitions are validated structurally first.
func (r *Registry) Register(name string, fields []interfaces.FieldDef) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrSchemaNameRequired
	}
	if err := ValidateFieldDefs(fields); err != nil {
		return fmt.Errorf("schema %q: %w", trimmed, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[trimmed] = cloneFields(fields)
	return nil
}

// GetFields returns the declared fields of a schema, layout wrappers
// included.
func (r *Registry) GetFields(schemaName string) ([]interfaces.FieldDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fields, ok := r.entries[strings.TrimSpace(schemaName)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, schemaName)
	}
	return cloneFields(fields), nil
}

// Flatten expands layout wrappers (grids, tab groups) into the addressable
// leaf fields. Repeater sub-fields stay nested: the repeater itself is the
// addressable leaf.
func (r *Registry) Flatten(fields []interfaces.FieldDef) []interfaces.FieldDef {
	return Flatten(fields)
}

// TypeOf resolves a leaf field's declared type within a schema.
func (r *Registry) TypeOf(schemaName, fieldName string) (string, bool) {
	fields, err := r.GetFields(schemaName)
	if err != nil {
		return "", false
	}
	for _, field := range Flatten(fields) {
		if field.Name == fieldName {
			return field.Type, true
		}
	}
	return "", false
}

// Names lists the registered schema names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Flatten expands layout wrappers into leaf fields, depth first.
func Flatten(fields []interfaces.FieldDef) []interfaces.FieldDef {
	out := make([]interfaces.FieldDef, 0, len(fields))
	for _, field := range fields {
		if field.IsLayout() {
			out = append(out, Flatten(field.Fields)...)
			continue
		}
		out = append(out, field)
	}
	return out
}

func cloneFields(fields []interfaces.FieldDef) []interfaces.FieldDef {
	if fields == nil {
		return nil
	}
	out := make([]interfaces.FieldDef, len(fields))
	for i, field := range fields {
		field.Fields = cloneFields(field.Fields)
		if field.Options != nil {
			field.Options = append([]string(nil), field.Options...)
		}
		out[i] = field
	}
	return out
}
