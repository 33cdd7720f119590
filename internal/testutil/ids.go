package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDGenerator produces predictable object ids: "<prefix>-1",
// "<prefix>-2", and so on. It satisfies store.IDGenerator so that objects
// created during a test or scenario get the same ids on every run.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDGenerator creates a generator. An empty prefix means "obj".
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	if prefix == "" {
		prefix = "obj"
	}
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
