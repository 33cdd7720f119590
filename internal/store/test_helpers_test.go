package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/linkview/internal/ir"
	"github.com/roach88/linkview/internal/testutil"
)

// createTestStore creates a new store in a temp directory with sequential
// object ids ("obj-1", "obj-2", ...).
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequenceIDGenerator("")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// beginWrite opens a write transaction that is rolled back at cleanup if
// the test leaves it open.
func beginWrite(t *testing.T, s *Store) {
	t.Helper()
	if err := s.BeginWrite(context.Background()); err != nil {
		t.Fatalf("BeginWrite() failed: %v", err)
	}
	t.Cleanup(func() {
		if s.IsInWriteTransaction() {
			_ = s.Rollback()
		}
	})
}

// insertDogs inserts one Dog per id and returns their refs.
func insertDogs(t *testing.T, s *Store, ids ...string) []ir.ObjectRef {
	t.Helper()
	refs := make([]ir.ObjectRef, len(ids))
	for i, id := range ids {
		ref, err := s.InsertObject(context.Background(), "Dog", id, ir.IRObject{"name": ir.IRString(id)})
		if err != nil {
			t.Fatalf("InsertObject(%s) failed: %v", id, err)
		}
		refs[i] = ref
	}
	return refs
}

// linkIDs returns the target ids of a list in position order.
func linkIDs(t *testing.T, v *LinkView) []string {
	t.Helper()
	ctx := context.Background()
	size, err := v.Size(ctx)
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	ids := make([]string, size)
	for i := range ids {
		ref, err := v.Get(ctx, i)
		if err != nil {
			t.Fatalf("Get(%d) failed: %v", i, err)
		}
		ids[i] = ref.ID
	}
	return ids
}
