package harness

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/linkview/internal/ir"
	"github.com/roach88/linkview/internal/list"
	"github.com/roach88/linkview/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			line := fmt.Sprintf("  [%d] %s", event.Seq, event.Op)
			if event.Key != "" {
				line += " " + event.Key
			}
			if len(event.Args) > 0 {
				line += fmt.Sprintf(" %v", event.Args)
			}
			if event.Error != "" {
				line += " -> " + event.Error
			} else if event.Outcome != "" {
				line += " -> " + event.Outcome
			}
			fmt.Fprintln(&buf, line)
		}
	}

	return buf.String()
}

// AssertionContext gives state assertions access to the scenario's store
// and lists.
type AssertionContext struct {
	Ctx   context.Context
	Store *store.Store

	// Lists opens or returns a cached list.
	Lists func(ctx context.Context, ref ListRef) (*list.List, error)

	// List is the scenario's target list.
	List ListRef
}

// EvaluateAssertions runs every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result.Trace, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(trace, a)
	case AssertTraceCount:
		return assertTraceCount(trace, a)
	case AssertListIDs, AssertListSize, AssertDetached, AssertObjectCount:
		if actx == nil || actx.Store == nil {
			return fmt.Errorf("%s assertion requires a store", a.Type)
		}
		switch a.Type {
		case AssertListIDs:
			return assertListIDs(actx, a)
		case AssertListSize:
			return assertListSize(actx, a)
		case AssertDetached:
			return assertDetached(actx, a)
		default:
			return assertObjectCount(actx, a)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertTraceContains checks that the trace has a step with the op and,
// when given, the error code.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Op == a.Op && (a.Error == "" || event.Error == a.Error) {
			return nil
		}
	}

	expected := fmt.Sprintf("op %s", a.Op)
	if a.Error != "" {
		expected += " failing with " + a.Error
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that ops appear in the given order, not
// necessarily consecutively.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Ops) && event.Op == a.Ops[next] {
			next++
		}
	}
	if next == len(a.Ops) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("ops in order: %v", a.Ops),
		Actual:   fmt.Sprintf("no %s after %v", a.Ops[next], a.Ops[:next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that the op appears exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == a.Op {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertionList(actx *AssertionContext, a Assertion) ListRef {
	ref := actx.List
	if a.Owner != "" {
		ref.Owner = a.Owner
	}
	if a.Property != "" {
		ref.Property = a.Property
	}
	return ref
}

func readIDs(actx *AssertionContext, a Assertion) ([]string, error) {
	ref := assertionList(actx, a)
	l, err := actx.Lists(actx.Ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("open %s.%s: %w", ref.Owner, ref.Property, err)
	}
	refs, err := l.Refs(actx.Ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s.%s: %w", ref.Owner, ref.Property, err)
	}
	return refIDs(refs), nil
}

func assertListIDs(actx *AssertionContext, a Assertion) error {
	ids, err := readIDs(actx, a)
	if err != nil {
		return err
	}
	if !slices.Equal(ids, a.IDs) {
		return &AssertionError{
			Type:     AssertListIDs,
			Expected: fmt.Sprintf("%v", a.IDs),
			Actual:   fmt.Sprintf("%v", ids),
		}
	}
	return nil
}

func assertListSize(actx *AssertionContext, a Assertion) error {
	ids, err := readIDs(actx, a)
	if err != nil {
		return err
	}
	if len(ids) != a.Count {
		return &AssertionError{
			Type:     AssertListSize,
			Expected: fmt.Sprintf("size %d", a.Count),
			Actual:   fmt.Sprintf("size %d", len(ids)),
		}
	}
	return nil
}

// assertDetached checks that the list reports DETACHED. A list that was
// never opened counts as detached when its owner no longer exists.
func assertDetached(actx *AssertionContext, a Assertion) error {
	ref := assertionList(actx, a)
	l, err := actx.Lists(actx.Ctx, ref)
	if err != nil {
		return nil
	}
	if _, err := l.Size(actx.Ctx); list.IsDetached(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("read %s.%s: %w", ref.Owner, ref.Property, err)
	}
	return &AssertionError{
		Type:     AssertDetached,
		Expected: fmt.Sprintf("%s.%s detached", ref.Owner, ref.Property),
		Actual:   "list is attached",
	}
}

func assertObjectCount(actx *AssertionContext, a Assertion) error {
	objects, err := actx.Store.ObjectsOfType(actx.Ctx, a.ObjectType)
	if err != nil {
		return err
	}
	if len(objects) != a.Count {
		return &AssertionError{
			Type:     AssertObjectCount,
			Expected: fmt.Sprintf("%d objects of type %s", a.Count, a.ObjectType),
			Actual:   fmt.Sprintf("%d objects", len(objects)),
		}
	}
	return nil
}

// checkExpect validates a step against its expect clause. A step without
// one must not fail.
func checkExpect(step Step, event TraceEvent, value ir.IRValue, err error) []string {
	exp := step.Expect
	if exp == nil {
		if err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", err)}
		}
		return nil
	}

	var msgs []string
	switch {
	case exp.Error != "" && err == nil:
		msgs = append(msgs, fmt.Sprintf("expected error %s, got success", exp.Error))
	case exp.Error != "" && event.Error != exp.Error:
		msgs = append(msgs, fmt.Sprintf("expected error %s, got %s (%v)", exp.Error, event.Error, err))
	case exp.Error == "" && err != nil:
		msgs = append(msgs, fmt.Sprintf("unexpected error: %v", err))
	}

	if exp.Outcome != "" && event.Outcome != exp.Outcome {
		msgs = append(msgs, fmt.Sprintf("expected outcome %s, got %q", exp.Outcome, event.Outcome))
	}
	if exp.IDs != nil {
		if got := resultIDs(value); !slices.Equal(got, exp.IDs) {
			msgs = append(msgs, fmt.Sprintf("expected ids %v, got %v", exp.IDs, got))
		}
	}
	if exp.Value != nil && !matchValue(exp.Value, event.Result) {
		msgs = append(msgs, fmt.Sprintf("expected value %v, got %v", exp.Value, event.Result))
	}
	if exp.Size != nil {
		switch {
		case event.Detached:
			msgs = append(msgs, fmt.Sprintf("expected size %d, list is detached", *exp.Size))
		case event.Size != *exp.Size:
			msgs = append(msgs, fmt.Sprintf("expected size %d, got %d", *exp.Size, event.Size))
		}
	}
	return msgs
}

// resultIDs collects the object ids in a step result: every element of an
// array, or a single object.
func resultIDs(v ir.IRValue) []string {
	ids := []string{}
	switch val := v.(type) {
	case ir.IRArray:
		for _, elem := range val {
			if id, ok := ir.IDOf(elem); ok {
				ids = append(ids, id)
			}
		}
	case ir.IRObject:
		if id, ok := ir.IDOf(val); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// matchValue compares a YAML expectation with a traced result. Maps match
// as subsets; arrays must have the same length and match elementwise.
func matchValue(expected, actual any) bool {
	switch exp := expected.(type) {
	case nil:
		return actual == nil
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range exp {
			av, exists := act[k]
			if !exists || !matchValue(ev, av) {
				return false
			}
		}
		return true
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !matchValue(exp[i], act[i]) {
				return false
			}
		}
		return true
	case string:
		act, ok := actual.(string)
		return ok && act == exp
	case bool:
		act, ok := actual.(bool)
		return ok && act == exp
	default:
		en, ok := toInt64(expected)
		if !ok {
			return false
		}
		an, ok := toInt64(actual)
		return ok && en == an
	}
}

// toInt64 normalizes the integer types YAML and IR conversion produce.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
