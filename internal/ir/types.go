package ir

import "fmt"

// PropertyType names the storage type of an object property.
type PropertyType string

const (
	PropString PropertyType = "string"
	PropInt    PropertyType = "int"
	PropBool   PropertyType = "bool"
	PropObject PropertyType = "object" // single link, stored as the target id
	PropList   PropertyType = "list"   // ordered links, stored in the links table
)

// ValidPropertyTypes lists the property types accepted in schemas.
var ValidPropertyTypes = map[PropertyType]bool{
	PropString: true,
	PropInt:    true,
	PropBool:   true,
	PropObject: true,
	PropList:   true,
}

// IsLink reports whether the property references other objects.
func (t PropertyType) IsLink() bool {
	return t == PropObject || t == PropList
}

// Property describes one field of an object type.
type Property struct {
	Name       string       `json:"name"`
	Type       PropertyType `json:"type"`
	ObjectType string       `json:"object_type,omitempty"` // target type for object and list
	Optional   bool         `json:"optional,omitempty"`
}

// ObjectSchema describes one persisted object type.
// Properties keep their declaration order.
type ObjectSchema struct {
	Name       string     `json:"name"`
	Properties []Property `json:"properties"`
}

// Property returns the named property and whether it exists.
func (s ObjectSchema) Property(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// ObjectRef identifies a persisted object. It never carries object data.
type ObjectRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// IsZero reports whether the reference is unset.
func (r ObjectRef) IsZero() bool {
	return r.ID == ""
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("%s(%s)", r.Type, r.ID)
}

// Reserved keys carried by decoded object values.
const (
	KeyID   = "_id"
	KeyType = "_type"
)
