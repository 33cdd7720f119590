package list

import (
	"context"
	"fmt"
	"strconv"

	"github.com/roach88/linkview/internal/ir"
)

// Size returns the current number of elements.
func (l *List) Size(ctx context.Context) (int, error) {
	if err := l.verifyAttached(ctx, "size"); err != nil {
		return 0, err
	}
	return l.links.Size(ctx)
}

// Get reads a property by key.
//
//   - "length" returns the size as ir.IRInt
//   - an in-range index returns the decoded element
//   - an out-of-range index returns ir.IRNull with Absent
//   - any other key returns ir.IRNull with NotHandled
//
// Reads never require a write transaction.
func (l *List) Get(ctx context.Context, key string) (ir.IRValue, Outcome, error) {
	if err := l.verifyAttached(ctx, "get"); err != nil {
		return ir.IRNull{}, Handled, err
	}

	k := ResolveKey(key)
	if k.Kind == KeyNotIndex {
		return ir.IRNull{}, NotHandled, nil
	}

	size, err := l.links.Size(ctx)
	if err != nil {
		return ir.IRNull{}, Handled, fmt.Errorf("get: %w", err)
	}

	if k.Kind == KeyLength {
		return ir.IRInt(size), Handled, nil
	}
	if !k.InRange(size) {
		return ir.IRNull{}, Absent, nil
	}

	v, err := l.decodeAt(ctx, int(k.Index))
	if err != nil {
		return ir.IRNull{}, Handled, fmt.Errorf("get %s: %w", key, err)
	}
	return v, Handled, nil
}

// Set replaces the element at an index with the object value resolves to.
//
// The transaction check runs before the key is looked at, so writing
// "length" outside a transaction reports TRANSACTION_REQUIRED. Writing past
// the end is an error, never an append. Keys that are not indexes return
// NotHandled without error.
func (l *List) Set(ctx context.Context, key string, value ir.IRValue) (Outcome, error) {
	const op = "set"
	if err := l.verifyMutable(ctx, op); err != nil {
		return Handled, err
	}

	k := ResolveKey(key)
	switch k.Kind {
	case KeyNotIndex:
		return NotHandled, nil
	case KeyLength:
		return Handled, newReadOnlyError(op)
	}

	size, err := l.links.Size(ctx)
	if err != nil {
		return Handled, fmt.Errorf("set: %w", err)
	}
	if !k.InRange(size) {
		return Handled, newIndexOutOfRangeError(op, k.Index, size)
	}

	refs, err := l.encodeAll(ctx, op, []ir.IRValue{value}, 0)
	if err != nil {
		return Handled, err
	}
	if err := l.links.Set(ctx, int(k.Index), refs[0]); err != nil {
		return Handled, fmt.Errorf("set %s: %w", key, err)
	}

	l.logger.Debug("list set", "type", l.schema.Name, "index", k.Index, "object_id", refs[0].ID)
	return Handled, nil
}

// PropertyNames returns the index keys "0".."size-1" for the size observed
// now. The slice is a snapshot; later mutations do not change it.
func (l *List) PropertyNames(ctx context.Context) ([]string, error) {
	if err := l.verifyAttached(ctx, "property_names"); err != nil {
		return nil, err
	}
	size, err := l.links.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("property_names: %w", err)
	}

	names := make([]string, size)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names, nil
}

// Values decodes every element in order.
func (l *List) Values(ctx context.Context) (ir.IRArray, error) {
	if err := l.verifyAttached(ctx, "values"); err != nil {
		return nil, err
	}
	size, err := l.links.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}

	out := make(ir.IRArray, size)
	for i := range out {
		v, err := l.decodeAt(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Refs returns the stored references in order, without decoding.
func (l *List) Refs(ctx context.Context) ([]ir.ObjectRef, error) {
	if err := l.verifyAttached(ctx, "refs"); err != nil {
		return nil, err
	}
	size, err := l.links.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("refs: %w", err)
	}

	refs := make([]ir.ObjectRef, size)
	for i := range refs {
		ref, err := l.links.Get(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("refs[%d]: %w", i, err)
		}
		refs[i] = ref
	}
	return refs, nil
}
