package list

import (
	"context"
	"fmt"

	"github.com/roach88/linkview/internal/ir"
)

// Push appends values in argument order and returns the new size.
func (l *List) Push(ctx context.Context, values ...ir.IRValue) (int, error) {
	return l.push(ctx, values)
}

// Pop removes and returns the last element. On an empty list it returns
// ir.IRNull with Absent.
func (l *List) Pop(ctx context.Context) (ir.IRValue, Outcome, error) {
	return l.pop(ctx, nil)
}

// Unshift inserts values at the front, keeping their argument order, and
// returns the new size.
func (l *List) Unshift(ctx context.Context, values ...ir.IRValue) (int, error) {
	return l.unshift(ctx, values)
}

// Shift removes and returns the first element. On an empty list it returns
// ir.IRNull with Absent.
func (l *List) Shift(ctx context.Context) (ir.IRValue, Outcome, error) {
	return l.shift(ctx, nil)
}

// Splice removes up to deleteCount elements starting at start, inserts items
// in their place, and returns the removed elements in order.
//
// A negative start counts back from the end. Both start and deleteCount are
// clamped to the list, so Splice never fails on bounds.
func (l *List) Splice(ctx context.Context, start, deleteCount int64, items ...ir.IRValue) (ir.IRArray, error) {
	args := make([]ir.IRValue, 0, len(items)+2)
	args = append(args, ir.IRInt(start), ir.IRInt(deleteCount))
	args = append(args, items...)
	return l.splice(ctx, args)
}

func (l *List) push(ctx context.Context, args []ir.IRValue) (int, error) {
	const op = "push"
	if err := l.verifyMutable(ctx, op); err != nil {
		return 0, err
	}
	if len(args) < 1 {
		return 0, newMinArgsError(op, 1, len(args))
	}

	refs, err := l.encodeAll(ctx, op, args, 0)
	if err != nil {
		return 0, err
	}
	for _, ref := range refs {
		if err := l.links.Add(ctx, ref); err != nil {
			return 0, fmt.Errorf("push: %w", err)
		}
	}

	size, err := l.links.Size(ctx)
	if err != nil {
		return 0, fmt.Errorf("push: %w", err)
	}
	l.logger.Debug("list push", "type", l.schema.Name, "count", len(refs), "size", size)
	return size, nil
}

func (l *List) pop(ctx context.Context, args []ir.IRValue) (ir.IRValue, Outcome, error) {
	return l.removeEnd(ctx, "pop", args, func(size int) int { return size - 1 })
}

func (l *List) shift(ctx context.Context, args []ir.IRValue) (ir.IRValue, Outcome, error) {
	return l.removeEnd(ctx, "shift", args, func(int) int { return 0 })
}

// removeEnd implements pop and shift: decode the element at the chosen
// index, then remove it.
func (l *List) removeEnd(ctx context.Context, op string, args []ir.IRValue, pick func(size int) int) (ir.IRValue, Outcome, error) {
	if err := l.verifyMutable(ctx, op); err != nil {
		return ir.IRNull{}, Handled, err
	}
	if len(args) != 0 {
		return ir.IRNull{}, Handled, newExactArgsError(op, 0, len(args))
	}

	size, err := l.links.Size(ctx)
	if err != nil {
		return ir.IRNull{}, Handled, fmt.Errorf("%s: %w", op, err)
	}
	if size == 0 {
		return ir.IRNull{}, Absent, nil
	}

	index := pick(size)
	v, err := l.decodeAt(ctx, index)
	if err != nil {
		return ir.IRNull{}, Handled, fmt.Errorf("%s: %w", op, err)
	}
	if err := l.links.Remove(ctx, index); err != nil {
		return ir.IRNull{}, Handled, fmt.Errorf("%s: %w", op, err)
	}

	l.logger.Debug("list "+op, "type", l.schema.Name, "index", index, "size", size-1)
	return v, Handled, nil
}

func (l *List) unshift(ctx context.Context, args []ir.IRValue) (int, error) {
	const op = "unshift"
	if err := l.verifyMutable(ctx, op); err != nil {
		return 0, err
	}
	if len(args) < 1 {
		return 0, newMinArgsError(op, 1, len(args))
	}

	refs, err := l.encodeAll(ctx, op, args, 0)
	if err != nil {
		return 0, err
	}
	for i, ref := range refs {
		if err := l.links.Insert(ctx, i, ref); err != nil {
			return 0, fmt.Errorf("unshift: %w", err)
		}
	}

	size, err := l.links.Size(ctx)
	if err != nil {
		return 0, fmt.Errorf("unshift: %w", err)
	}
	l.logger.Debug("list unshift", "type", l.schema.Name, "count", len(refs), "size", size)
	return size, nil
}

func (l *List) splice(ctx context.Context, args []ir.IRValue) (ir.IRArray, error) {
	const op = "splice"
	if err := l.verifyMutable(ctx, op); err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, newMinArgsError(op, 2, len(args))
	}

	// Size is read once; the clamps below keep every index valid for the
	// whole call.
	size, err := l.links.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("splice: %w", err)
	}

	startArg, err := integerArg(op, args, 0)
	if err != nil {
		return nil, err
	}
	deleteArg, err := integerArg(op, args, 1)
	if err != nil {
		return nil, err
	}
	start, deleteCount := clampSplice(size, startArg, deleteArg)

	removed := make(ir.IRArray, deleteCount)
	for i := range removed {
		v, err := l.decodeAt(ctx, start+i)
		if err != nil {
			return nil, fmt.Errorf("splice: %w", err)
		}
		removed[i] = v
	}

	refs, err := l.encodeAll(ctx, op, args[2:], 2)
	if err != nil {
		return nil, err
	}

	for i := 0; i < deleteCount; i++ {
		if err := l.links.Remove(ctx, start); err != nil {
			return nil, fmt.Errorf("splice: %w", err)
		}
	}
	for i, ref := range refs {
		if err := l.links.Insert(ctx, start+i, ref); err != nil {
			return nil, fmt.Errorf("splice: %w", err)
		}
	}

	l.logger.Debug("list splice",
		"type", l.schema.Name,
		"start", start,
		"removed", deleteCount,
		"inserted", len(refs),
	)
	return removed, nil
}

// clampSplice resolves splice's start and delete count against size.
// A negative start counts back from the end and stops at 0; start never
// exceeds size; the delete count is between 0 and size-start.
func clampSplice(size int, start, deleteCount int64) (int, int) {
	n := int64(size)
	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)

	deleteCount = max(deleteCount, 0)
	deleteCount = min(deleteCount, n-start)
	return int(start), int(deleteCount)
}

// integerArg reads args[i] as an integer.
func integerArg(op string, args []ir.IRValue, i int) (int64, error) {
	n, ok := args[i].(ir.IRInt)
	if !ok {
		return 0, &Error{
			Code:    ErrCodeInvalidArgument,
			Op:      op,
			Message: fmt.Sprintf("argument %d must be an integer, got %s", i, ir.KindOf(args[i])),
		}
	}
	return int64(n), nil
}
