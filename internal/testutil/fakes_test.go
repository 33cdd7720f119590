package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkview/internal/ir"
)

func TestMemoryLinks_InsertRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLinks(Refs("Dog", "a", "c")...)

	require.NoError(t, m.Insert(ctx, 1, ir.ObjectRef{ID: "b", Type: "Dog"}))
	require.NoError(t, m.Insert(ctx, 3, ir.ObjectRef{ID: "d", Type: "Dog"}))
	assert.Equal(t, []string{"a", "b", "c", "d"}, m.IDs())

	require.NoError(t, m.Remove(ctx, 0))
	assert.Equal(t, []string{"b", "c", "d"}, m.IDs())
	assert.Equal(t, 3, m.Mutations)

	assert.Error(t, m.Remove(ctx, 3))
	assert.Error(t, m.Insert(ctx, 5, ir.ObjectRef{ID: "x"}))
}

func TestMemoryLinks_FailNext(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLinks()
	m.FailNext = errors.New("disk full")

	_, err := m.Size(ctx)
	assert.EqualError(t, err, "disk full")

	size, err := m.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestStubCodec(t *testing.T) {
	ctx := context.Background()
	c := &StubCodec{Reject: map[string]bool{"cat": true}}
	dog := ir.ObjectSchema{Name: "Dog"}

	ref, err := c.Encode(ctx, ir.RefValue("rex"), dog)
	require.NoError(t, err)
	assert.Equal(t, ir.ObjectRef{ID: "rex", Type: "Dog"}, ref)

	_, err = c.Encode(ctx, ir.RefValue("cat"), dog)
	assert.Error(t, err)

	_, err = c.Encode(ctx, ir.IRInt(1), dog)
	assert.Error(t, err)

	v, err := c.Decode(ctx, ref, dog)
	require.NoError(t, err)
	assert.Equal(t, ir.IRObject{"_id": ir.IRString("rex"), "_type": ir.IRString("Dog")}, v)
}
