package testutil

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/linkview/internal/ir"
)

// FakeSession is a session whose write-transaction state tests set directly.
type FakeSession struct {
	InWrite bool
}

// IsInWriteTransaction reports the InWrite field.
func (s *FakeSession) IsInWriteTransaction() bool {
	return s.InWrite
}

// MemoryLinks is an in-memory link collection.
//
// Set Detached to simulate a deleted owner, AttachErr to make the
// attachment check itself fail, and FailNext to make the next storage call
// fail. Mutations counts structural mutations so tests can assert
// that a failed operation changed nothing.
type MemoryLinks struct {
	Refs      []ir.ObjectRef
	Detached  bool
	AttachErr error
	FailNext  error
	Mutations int
}

// NewMemoryLinks creates a collection holding refs.
func NewMemoryLinks(refs ...ir.ObjectRef) *MemoryLinks {
	return &MemoryLinks{Refs: slices.Clone(refs)}
}

func (m *MemoryLinks) fail() error {
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}
	return nil
}

func (m *MemoryLinks) check(index, size int) error {
	if index < 0 || index >= size {
		return fmt.Errorf("memory links: index %d out of bounds [0,%d)", index, size)
	}
	return nil
}

func (m *MemoryLinks) IsAttached(ctx context.Context) (bool, error) {
	if m.AttachErr != nil {
		return false, m.AttachErr
	}
	return !m.Detached, nil
}

func (m *MemoryLinks) Size(ctx context.Context) (int, error) {
	if err := m.fail(); err != nil {
		return 0, err
	}
	return len(m.Refs), nil
}

func (m *MemoryLinks) Get(ctx context.Context, index int) (ir.ObjectRef, error) {
	if err := m.fail(); err != nil {
		return ir.ObjectRef{}, err
	}
	if err := m.check(index, len(m.Refs)); err != nil {
		return ir.ObjectRef{}, err
	}
	return m.Refs[index], nil
}

func (m *MemoryLinks) Set(ctx context.Context, index int, ref ir.ObjectRef) error {
	if err := m.fail(); err != nil {
		return err
	}
	if err := m.check(index, len(m.Refs)); err != nil {
		return err
	}
	m.Refs[index] = ref
	m.Mutations++
	return nil
}

func (m *MemoryLinks) Add(ctx context.Context, ref ir.ObjectRef) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.Refs = append(m.Refs, ref)
	m.Mutations++
	return nil
}

func (m *MemoryLinks) Insert(ctx context.Context, index int, ref ir.ObjectRef) error {
	if err := m.fail(); err != nil {
		return err
	}
	if err := m.check(index, len(m.Refs)+1); err != nil {
		return err
	}
	m.Refs = slices.Insert(m.Refs, index, ref)
	m.Mutations++
	return nil
}

func (m *MemoryLinks) Remove(ctx context.Context, index int) error {
	if err := m.fail(); err != nil {
		return err
	}
	if err := m.check(index, len(m.Refs)); err != nil {
		return err
	}
	m.Refs = slices.Delete(m.Refs, index, index+1)
	m.Mutations++
	return nil
}

// IDs returns the ids of the stored refs in order.
func (m *MemoryLinks) IDs() []string {
	ids := make([]string, len(m.Refs))
	for i, r := range m.Refs {
		ids[i] = r.ID
	}
	return ids
}

// StubCodec encodes {"_id": id} values and bare strings to refs of the
// requested type, and decodes refs back to {"_id": id, "_type": type}.
// Values whose id appears in Reject, or of any other shape, fail to encode.
type StubCodec struct {
	Reject  map[string]bool
	Encoded int
}

func (c *StubCodec) Encode(ctx context.Context, v ir.IRValue, schema ir.ObjectSchema) (ir.ObjectRef, error) {
	var id string
	switch val := v.(type) {
	case ir.IRString:
		id = string(val)
	default:
		var ok bool
		id, ok = ir.IDOf(v)
		if !ok {
			return ir.ObjectRef{}, fmt.Errorf("expected object of type %s, got %s", schema.Name, ir.KindOf(v))
		}
	}
	if c.Reject[id] {
		return ir.ObjectRef{}, fmt.Errorf("object %s is not of type %s", id, schema.Name)
	}
	c.Encoded++
	return ir.ObjectRef{ID: id, Type: schema.Name}, nil
}

func (c *StubCodec) Decode(ctx context.Context, ref ir.ObjectRef, schema ir.ObjectSchema) (ir.IRValue, error) {
	return ir.IRObject{ir.KeyID: ir.IRString(ref.ID), ir.KeyType: ir.IRString(ref.Type)}, nil
}

// Refs builds refs of one type from ids.
func Refs(objectType string, ids ...string) []ir.ObjectRef {
	refs := make([]ir.ObjectRef, len(ids))
	for i, id := range ids {
		refs[i] = ir.ObjectRef{ID: id, Type: objectType}
	}
	return refs
}
