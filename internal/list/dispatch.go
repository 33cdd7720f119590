package list

import (
	"context"

	"github.com/roach88/linkview/internal/ir"
)

// method is one entry of the function table a host runtime exposes on a
// list. Entries are method expressions, so the receiver comes first.
type method func(l *List, ctx context.Context, args []ir.IRValue) (ir.IRValue, Outcome, error)

var methods = map[string]method{
	"push":    (*List).callPush,
	"pop":     (*List).pop,
	"unshift": (*List).callUnshift,
	"shift":   (*List).shift,
	"splice":  (*List).callSplice,
}

func (l *List) callPush(ctx context.Context, args []ir.IRValue) (ir.IRValue, Outcome, error) {
	size, err := l.push(ctx, args)
	return ir.IRInt(size), Handled, err
}

func (l *List) callUnshift(ctx context.Context, args []ir.IRValue) (ir.IRValue, Outcome, error) {
	size, err := l.unshift(ctx, args)
	return ir.IRInt(size), Handled, err
}

func (l *List) callSplice(ctx context.Context, args []ir.IRValue) (ir.IRValue, Outcome, error) {
	removed, err := l.splice(ctx, args)
	if err != nil {
		return ir.IRNull{}, Handled, err
	}
	return removed, Handled, nil
}

// Methods returns the names Call accepts.
func Methods() []string {
	return []string{"push", "pop", "shift", "unshift", "splice"}
}

// Call invokes a list method by name with dynamically typed arguments, the
// way a scripting runtime dispatches a function call on the list. Argument
// counts are validated here rather than by the Go signature:
//
//   - push, unshift: at least 1
//   - pop, shift: exactly 0
//   - splice: at least 2
//
// Unknown names return NotHandled.
func (l *List) Call(ctx context.Context, name string, args ...ir.IRValue) (ir.IRValue, Outcome, error) {
	m, ok := methods[name]
	if !ok {
		return ir.IRNull{}, NotHandled, nil
	}
	v, outcome, err := m(l, ctx, args)
	if err != nil {
		return ir.IRNull{}, outcome, err
	}
	return v, outcome, nil
}
