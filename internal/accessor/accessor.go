package accessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/linkview/internal/ir"
	"github.com/roach88/linkview/internal/list"
	"github.com/roach88/linkview/internal/schema"
	"github.com/roach88/linkview/internal/store"
)

// Accessor resolves values against a store using a schema registry.
// It implements list.Codec.
type Accessor struct {
	store    *store.Store
	registry *schema.Registry
	logger   *slog.Logger
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithLogger sets the logger passed on to opened lists.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Accessor) {
		a.logger = logger
	}
}

// New creates an Accessor.
func New(st *store.Store, registry *schema.Registry, opts ...Option) *Accessor {
	a := &Accessor{
		store:    st,
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Registry returns the schema registry.
func (a *Accessor) Registry() *schema.Registry {
	return a.registry
}

// OpenList returns the list stored under property on the object ownerID.
// The property must be a list property of the owner's type.
func (a *Accessor) OpenList(ctx context.Context, ownerID, property string) (*list.List, error) {
	owner, err := a.store.ReadObject(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("open list: %w", err)
	}
	prop, err := a.registry.ListProperty(owner.Ref.Type, property)
	if err != nil {
		return nil, fmt.Errorf("open list: %w", err)
	}
	element, ok := a.registry.Get(prop.ObjectType)
	if !ok {
		return nil, fmt.Errorf("open list: unknown element type %q", prop.ObjectType)
	}

	links := a.store.ObjectLinkView(owner, property)
	return list.New(a.store, links, element, a, list.WithLogger(a.logger)), nil
}

// Create resolves value as an object of objectType, creating it when it is
// a literal. It is Encode with the schema looked up by name.
func (a *Accessor) Create(ctx context.Context, objectType string, value ir.IRValue) (ir.ObjectRef, error) {
	s, ok := a.registry.Get(objectType)
	if !ok {
		return ir.ObjectRef{}, fmt.Errorf("unknown object type %q", objectType)
	}
	return a.Encode(ctx, value, s)
}

// Encode implements list.Codec.
func (a *Accessor) Encode(ctx context.Context, v ir.IRValue, s ir.ObjectSchema) (ir.ObjectRef, error) {
	obj, ok := v.(ir.IRObject)
	if !ok {
		return ir.ObjectRef{}, &MismatchError{Expected: s.Name, Got: ir.KindOf(v)}
	}
	if isReference(obj) {
		return a.resolveExisting(ctx, obj, s)
	}
	return a.createObject(ctx, obj, s)
}

// isReference reports whether obj only addresses an object: {"_id"} with
// an optional "_type".
func isReference(obj ir.IRObject) bool {
	if _, ok := ir.IDOf(obj); !ok {
		return false
	}
	for k := range obj {
		if k != ir.KeyID && k != ir.KeyType {
			return false
		}
	}
	return true
}

func (a *Accessor) resolveExisting(ctx context.Context, obj ir.IRObject, s ir.ObjectSchema) (ir.ObjectRef, error) {
	id, _ := ir.IDOf(obj)
	if t, ok := obj[ir.KeyType].(ir.IRString); ok && string(t) != s.Name {
		return ir.ObjectRef{}, &MismatchError{Expected: s.Name, Got: string(t), Reason: fmt.Sprintf("object %s", id)}
	}

	stored, err := a.store.ReadObject(ctx, id)
	if errors.Is(err, store.ErrObjectNotFound) {
		return ir.ObjectRef{}, &MismatchError{Expected: s.Name, Got: "reference", Reason: fmt.Sprintf("object %s does not exist", id)}
	}
	if err != nil {
		return ir.ObjectRef{}, err
	}
	if stored.Ref.Type != s.Name {
		return ir.ObjectRef{}, &MismatchError{Expected: s.Name, Got: stored.Ref.Type, Reason: fmt.Sprintf("object %s", id)}
	}
	return stored.Ref, nil
}

// createObject validates a literal, resolves its link properties, and
// stores it. A literal carrying "_id" is inserted under that id.
func (a *Accessor) createObject(ctx context.Context, obj ir.IRObject, s ir.ObjectSchema) (ir.ObjectRef, error) {
	if t, ok := obj[ir.KeyType].(ir.IRString); ok && string(t) != s.Name {
		return ir.ObjectRef{}, &MismatchError{Expected: s.Name, Got: string(t)}
	}
	if errs := schema.ValidatePayload(s, obj); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return ir.ObjectRef{}, &MismatchError{Expected: s.Name, Got: "object", Reason: strings.Join(msgs, "; ")}
	}

	payload := ir.IRObject{}
	type pendingList struct {
		property string
		refs     []ir.ObjectRef
	}
	var lists []pendingList

	for _, p := range s.Properties {
		v, present := obj[p.Name]
		if !present {
			continue
		}
		switch p.Type {
		case ir.PropList:
			refs, err := a.encodeNestedList(ctx, p, v)
			if err != nil {
				return ir.ObjectRef{}, err
			}
			lists = append(lists, pendingList{property: p.Name, refs: refs})
		case ir.PropObject:
			if _, isNull := v.(ir.IRNull); isNull {
				payload[p.Name] = ir.IRNull{}
				continue
			}
			ref, err := a.encodeNested(ctx, p, v)
			if err != nil {
				return ir.ObjectRef{}, err
			}
			payload[p.Name] = ir.IRString(ref.ID)
		default:
			payload[p.Name] = v
		}
	}

	var (
		ref ir.ObjectRef
		err error
	)
	if id, ok := ir.IDOf(obj); ok {
		ref, err = a.store.InsertObject(ctx, s.Name, id, payload)
	} else {
		ref, err = a.store.CreateObject(ctx, s.Name, payload)
	}
	if err != nil {
		return ir.ObjectRef{}, err
	}

	for _, pl := range lists {
		view := a.store.LinkView(ref, pl.property)
		for _, target := range pl.refs {
			if err := view.Add(ctx, target); err != nil {
				return ir.ObjectRef{}, fmt.Errorf("link %s.%s: %w", ref, pl.property, err)
			}
		}
	}
	return ref, nil
}

func (a *Accessor) elementSchema(p ir.Property) (ir.ObjectSchema, error) {
	s, ok := a.registry.Get(p.ObjectType)
	if !ok {
		return ir.ObjectSchema{}, fmt.Errorf("property %s: unknown object type %q", p.Name, p.ObjectType)
	}
	return s, nil
}

func (a *Accessor) encodeNested(ctx context.Context, p ir.Property, v ir.IRValue) (ir.ObjectRef, error) {
	s, err := a.elementSchema(p)
	if err != nil {
		return ir.ObjectRef{}, err
	}
	ref, err := a.Encode(ctx, v, s)
	if err != nil {
		return ir.ObjectRef{}, fmt.Errorf("property %s: %w", p.Name, err)
	}
	return ref, nil
}

func (a *Accessor) encodeNestedList(ctx context.Context, p ir.Property, v ir.IRValue) ([]ir.ObjectRef, error) {
	arr, ok := v.(ir.IRArray)
	if !ok {
		return nil, &MismatchError{Expected: "list of " + p.ObjectType, Got: ir.KindOf(v), Reason: "property " + p.Name}
	}
	s, err := a.elementSchema(p)
	if err != nil {
		return nil, err
	}
	refs := make([]ir.ObjectRef, len(arr))
	for i, elem := range arr {
		ref, err := a.Encode(ctx, elem, s)
		if err != nil {
			return nil, fmt.Errorf("property %s[%d]: %w", p.Name, i, err)
		}
		refs[i] = ref
	}
	return refs, nil
}

// Decode implements list.Codec.
func (a *Accessor) Decode(ctx context.Context, ref ir.ObjectRef, s ir.ObjectSchema) (ir.IRValue, error) {
	stored, err := a.store.ReadObject(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	if stored.Ref.Type != s.Name {
		return nil, &MismatchError{Expected: s.Name, Got: stored.Ref.Type, Reason: fmt.Sprintf("object %s", ref.ID)}
	}

	out := ir.IRObject{
		ir.KeyID:   ir.IRString(stored.Ref.ID),
		ir.KeyType: ir.IRString(stored.Ref.Type),
	}
	for _, p := range s.Properties {
		v, ok := stored.Payload[p.Name]
		if !ok {
			continue
		}
		switch p.Type {
		case ir.PropList:
			// Lists are opened separately.
		case ir.PropObject:
			if id, ok := v.(ir.IRString); ok {
				out[p.Name] = ir.RefValue(string(id))
			} else {
				out[p.Name] = ir.IRNull{}
			}
		default:
			out[p.Name] = v
		}
	}
	return out, nil
}
