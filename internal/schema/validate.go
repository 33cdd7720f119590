package schema

import (
	"fmt"
	"strings"

	"github.com/roach88/linkview/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrEmptyName           = "E201" // type or property name is empty
	ErrDuplicateName       = "E202" // duplicate type or property name
	ErrInvalidPropertyType = "E203" // unknown property type
	ErrLinkMissingTarget   = "E204" // object/list property without objectType
	ErrUnknownObjectType   = "E205" // link target is not a registered type
	ErrReservedName        = "E206" // property name starts with "_"
	ErrUnexpectedTarget    = "E207" // scalar property with objectType

	// Payload errors
	ErrMissingProperty  = "E210" // required property absent
	ErrUnknownProperty  = "E211" // payload key not in schema
	ErrPropertyMismatch = "E212" // value has the wrong kind
)

// ValidationError represents a schema or payload validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a set of schemas against each other.
// Returns all errors found (does not fail-fast).
func Validate(schemas []ir.ObjectSchema) []ValidationError {
	var errs []ValidationError

	types := make(map[string]bool, len(schemas))
	for i, s := range schemas {
		field := fmt.Sprintf("object[%d]", i)
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "object type name is required", Code: ErrEmptyName})
			continue
		}
		if types[s.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate object type: %q", s.Name),
				Code:    ErrDuplicateName,
			})
		}
		types[s.Name] = true
	}

	for _, s := range schemas {
		errs = append(errs, validateProperties(s, types)...)
	}
	return errs
}

func validateProperties(s ir.ObjectSchema, types map[string]bool) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(s.Properties))

	for _, p := range s.Properties {
		field := fmt.Sprintf("%s.%s", s.Name, p.Name)

		switch {
		case p.Name == "":
			errs = append(errs, ValidationError{Field: s.Name, Message: "property name is required", Code: ErrEmptyName})
			continue
		case strings.HasPrefix(p.Name, "_"):
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "property names starting with _ are reserved",
				Code:    ErrReservedName,
			})
		}

		if seen[p.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate property name: %q", p.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[p.Name] = true

		if !ir.ValidPropertyTypes[p.Type] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid property type %q", p.Type),
				Code:    ErrInvalidPropertyType,
			})
			continue
		}

		switch {
		case p.Type.IsLink() && p.ObjectType == "":
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s property requires an object type", p.Type),
				Code:    ErrLinkMissingTarget,
			})
		case p.Type.IsLink() && !types[p.ObjectType]:
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unknown object type %q", p.ObjectType),
				Code:    ErrUnknownObjectType,
			})
		case !p.Type.IsLink() && p.ObjectType != "":
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s property cannot have an object type", p.Type),
				Code:    ErrUnexpectedTarget,
			})
		}
	}
	return errs
}

// ValidatePayload checks the scalar properties of an object value against
// its schema. Link properties and the reserved "_id"/"_type" keys are
// skipped: callers resolve links separately.
func ValidatePayload(s ir.ObjectSchema, obj ir.IRObject) []ValidationError {
	var errs []ValidationError

	for _, p := range s.Properties {
		if p.Type.IsLink() {
			continue
		}
		field := fmt.Sprintf("%s.%s", s.Name, p.Name)

		v, ok := obj[p.Name]
		if !ok {
			if !p.Optional {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: "required property is missing",
					Code:    ErrMissingProperty,
				})
			}
			continue
		}
		if _, isNull := v.(ir.IRNull); isNull && p.Optional {
			continue
		}
		if !matchesKind(p.Type, v) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("expected %s, got %s", p.Type, ir.KindOf(v)),
				Code:    ErrPropertyMismatch,
			})
		}
	}

	for _, key := range obj.SortedKeys() {
		if key == ir.KeyID || key == ir.KeyType {
			continue
		}
		if _, ok := s.Property(key); !ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.%s", s.Name, key),
				Message: "unknown property",
				Code:    ErrUnknownProperty,
			})
		}
	}
	return errs
}

func matchesKind(t ir.PropertyType, v ir.IRValue) bool {
	switch t {
	case ir.PropString:
		_, ok := v.(ir.IRString)
		return ok
	case ir.PropInt:
		_, ok := v.(ir.IRInt)
		return ok
	case ir.PropBool:
		_, ok := v.(ir.IRBool)
		return ok
	default:
		return false
	}
}
