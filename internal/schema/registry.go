package schema

import (
	"fmt"
	"slices"

	"github.com/roach88/linkview/internal/ir"
)

// Registry holds the compiled object schemas of one database.
type Registry struct {
	schemas map[string]ir.ObjectSchema
}

// NewRegistry builds a registry. Duplicate type names are an error.
func NewRegistry(schemas ...ir.ObjectSchema) (*Registry, error) {
	r := &Registry{schemas: make(map[string]ir.ObjectSchema, len(schemas))}
	for _, s := range schemas {
		if _, dup := r.schemas[s.Name]; dup {
			return nil, fmt.Errorf("duplicate object type %q", s.Name)
		}
		r.schemas[s.Name] = s
	}
	return r, nil
}

// Get returns the schema for an object type.
func (r *Registry) Get(name string) (ir.ObjectSchema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns every registered type name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Schemas returns every schema in name order.
func (r *Registry) Schemas() []ir.ObjectSchema {
	out := make([]ir.ObjectSchema, 0, len(r.schemas))
	for _, name := range r.Names() {
		out = append(out, r.schemas[name])
	}
	return out
}

// ListProperty returns the list property of an object type, checking that
// both exist and that the property is a list.
func (r *Registry) ListProperty(objectType, property string) (ir.Property, error) {
	s, ok := r.Get(objectType)
	if !ok {
		return ir.Property{}, fmt.Errorf("unknown object type %q", objectType)
	}
	prop, ok := s.Property(property)
	if !ok {
		return ir.Property{}, fmt.Errorf("%s has no property %q", objectType, property)
	}
	if prop.Type != ir.PropList {
		return ir.Property{}, fmt.Errorf("%s.%s is %s, not a list", objectType, property, prop.Type)
	}
	return prop, nil
}
