package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/linkview/internal/ir"
)

// CompileSchema parses a CUE value into an ObjectSchema.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The value should be the object struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`object: Dog: { name: string }`)
//	s, err := CompileSchema(v.LookupPath(cue.ParsePath("object.Dog")))
func CompileSchema(v cue.Value) (*ir.ObjectSchema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &ir.ObjectSchema{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		s.Name = labels[len(labels)-1].String()
	}

	iter, err := v.Fields(cue.Optional(true))
	if err != nil {
		return nil, &CompileError{
			Field:   "object",
			Message: "object schema must be a struct",
			Pos:     v.Pos(),
		}
	}

	for iter.Next() {
		prop, err := compileProperty(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		prop.Optional = iter.IsOptional()
		s.Properties = append(s.Properties, prop)
	}

	return s, nil
}

// compileProperty converts one CUE field into a Property.
func compileProperty(name string, v cue.Value) (ir.Property, error) {
	prop := ir.Property{Name: name}

	switch v.IncompleteKind() {
	case cue.StringKind:
		prop.Type = ir.PropString
	case cue.IntKind:
		prop.Type = ir.PropInt
	case cue.BoolKind:
		prop.Type = ir.PropBool
	case cue.StructKind:
		return compileLink(name, v)
	case cue.FloatKind, cue.NumberKind:
		return prop, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("property %q: float types are forbidden - use int instead", name),
			Pos:     v.Pos(),
		}
	default:
		return prop, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("property %q: unsupported type kind: %v", name, v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
	return prop, nil
}

// compileLink parses {list: "T"} or {object: "T"}.
func compileLink(name string, v cue.Value) (ir.Property, error) {
	prop := ir.Property{Name: name}

	listVal := v.LookupPath(cue.ParsePath("list"))
	objVal := v.LookupPath(cue.ParsePath("object"))

	var target cue.Value
	switch {
	case listVal.Exists() && objVal.Exists():
		return prop, &CompileError{
			Field:   "link",
			Message: fmt.Sprintf("property %q: declare either list or object, not both", name),
			Pos:     v.Pos(),
		}
	case listVal.Exists():
		prop.Type = ir.PropList
		target = listVal
	case objVal.Exists():
		prop.Type = ir.PropObject
		target = objVal
	default:
		return prop, &CompileError{
			Field:   "link",
			Message: fmt.Sprintf("property %q: struct properties must name a list or object target type", name),
			Pos:     v.Pos(),
		}
	}

	objectType, err := target.String()
	if err != nil {
		return prop, &CompileError{
			Field:   "link",
			Message: fmt.Sprintf("property %q: target type must be a concrete string", name),
			Pos:     target.Pos(),
		}
	}
	prop.ObjectType = objectType
	return prop, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
