package list

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/linkview/internal/ir"
	"github.com/roach88/linkview/internal/testutil"
)

var dogSchema = ir.ObjectSchema{
	Name:       "Dog",
	Properties: []ir.Property{{Name: "name", Type: ir.PropString}},
}

type fixture struct {
	session *testutil.FakeSession
	links   *testutil.MemoryLinks
	codec   *testutil.StubCodec
	list    *List
}

// newFixture builds a list over ids with a write transaction active.
func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()
	f := &fixture{
		session: &testutil.FakeSession{InWrite: true},
		links:   testutil.NewMemoryLinks(testutil.Refs("Dog", ids...)...),
		codec:   &testutil.StubCodec{Reject: map[string]bool{}},
	}
	f.list = New(f.session, f.links, dogSchema, f.codec,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return f
}

func ref(id string) ir.IRValue {
	return ir.RefValue(id)
}

func decoded(id string) ir.IRValue {
	return ir.IRObject{ir.KeyID: ir.IRString(id), ir.KeyType: ir.IRString("Dog")}
}

// readIDs reads every index through Get and returns the decoded ids.
func readIDs(t *testing.T, l *List) []string {
	t.Helper()
	ctx := context.Background()
	size, err := l.Size(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, size)
	for _, name := range mustNames(t, l) {
		v, outcome, err := l.Get(ctx, name)
		require.NoError(t, err)
		require.Equal(t, Handled, outcome)
		id, ok := ir.IDOf(v)
		require.True(t, ok)
		ids = append(ids, id)
	}
	return ids
}

func mustNames(t *testing.T, l *List) []string {
	t.Helper()
	names, err := l.PropertyNames(context.Background())
	require.NoError(t, err)
	return names
}
