package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/linkview/internal/accessor"
	"github.com/roach88/linkview/internal/ir"
	"github.com/roach88/linkview/internal/list"
	"github.com/roach88/linkview/internal/schema"
	"github.com/roach88/linkview/internal/store"
	"github.com/roach88/linkview/internal/testutil"
)

// Harness executes one scenario. It owns a fresh in-memory store and
// caches every list it opens, so a list keeps reporting itself detached
// after its owner is deleted.
type Harness struct {
	store    *store.Store
	accessor *accessor.Accessor
	clock    *testutil.DeterministicClock
	logger   *slog.Logger
	lists    map[ListRef]*list.List
	target   ListRef
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sends store, accessor and list logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Compile the scenario's object schemas
//  2. Open a fresh in-memory store with sequential object ids
//  3. Create the fixtures in one committed transaction
//  4. Open the target list and begin a write transaction
//  5. Execute steps, tracing each one and checking its expect clause
//  6. Evaluate assertions
//
// Step and assertion failures are reported in the result. An error is
// returned only when the scenario cannot be executed at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	registry, err := loadRegistry(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequenceIDGenerator("obj")),
		store.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		accessor: accessor.New(st, registry, accessor.WithLogger(cfg.logger)),
		clock:    testutil.NewDeterministicClock(),
		logger:   cfg.logger,
		lists:    make(map[ListRef]*list.List),
		target:   scenario.List,
	}

	ctx := context.Background()
	if err := h.setup(ctx, scenario.Objects); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	target, err := h.listFor(ctx, scenario.List)
	if err != nil {
		return nil, fmt.Errorf("failed to open list %s.%s: %w", scenario.List.Owner, scenario.List.Property, err)
	}
	if err := st.BeginWrite(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin write transaction: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	if refs, err := target.Refs(ctx); err == nil {
		result.FinalIDs = refIDs(refs)
	}

	actx := &AssertionContext{
		Ctx:   ctx,
		Store: st,
		Lists: h.listFor,
		List:  scenario.List,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished", "scenario", scenario.Name, "steps", len(scenario.Steps), "pass", result.Pass)
	return result, nil
}

// loadRegistry compiles the scenario's schemas from its directory or its
// inline CUE document.
func loadRegistry(s *Scenario) (*schema.Registry, error) {
	var schemas []ir.ObjectSchema
	if s.Schema != "" {
		value := cuecontext.New().CompileString(s.Schema)
		if err := value.Err(); err != nil {
			return nil, fmt.Errorf("failed to compile inline schema: %w", err)
		}
		compiled, errs := schema.CompileAll(value, schema.LoadModeFailFast)
		if len(errs) > 0 {
			return nil, fmt.Errorf("failed to compile inline schema: %w", errs[0])
		}
		schemas = compiled
	} else {
		loaded, errs := schema.LoadDir(s.Schemas, schema.LoadModeFailFast)
		if len(errs) > 0 {
			return nil, fmt.Errorf("failed to load schemas: %w", errs[0])
		}
		schemas = loaded.Schemas
	}

	if errs := schema.Validate(schemas); len(errs) > 0 {
		return nil, fmt.Errorf("invalid schemas: %w", errs[0])
	}
	return schema.NewRegistry(schemas...)
}

// setup creates the fixtures in order and commits them.
func (h *Harness) setup(ctx context.Context, fixtures []Fixture) error {
	return h.store.Write(ctx, func(ctx context.Context) error {
		for i, f := range fixtures {
			value, err := ir.FromAny(f.Value)
			if err != nil {
				return fmt.Errorf("objects[%d]: %w", i, err)
			}
			ref, err := h.accessor.Create(ctx, f.Type, value)
			if err != nil {
				return fmt.Errorf("objects[%d]: %w", i, err)
			}
			h.logger.Debug("fixture created", "index", i, "object", ref.String())
		}
		return nil
	})
}

// listFor returns the cached list for ref, opening it on first use.
func (h *Harness) listFor(ctx context.Context, ref ListRef) (*list.List, error) {
	if l, ok := h.lists[ref]; ok {
		return l, nil
	}
	l, err := h.accessor.OpenList(ctx, ref.Owner, ref.Property)
	if err != nil {
		return nil, err
	}
	h.lists[ref] = l
	return l, nil
}

// executeStep runs one step, records it in the trace and checks its
// expect clause.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	event := TraceEvent{
		Seq: h.clock.Next(),
		Op:  step.Op,
		Key: step.Key,
	}

	value, outcome, hasOutcome, err := h.perform(ctx, step, &event)
	switch {
	case err != nil:
		event.Error = accessor.ErrorCode(err)
	default:
		if hasOutcome {
			event.Outcome = outcome.String()
		}
		if value != nil {
			event.Result = ir.ToAny(value)
		}
	}

	h.snapshot(ctx, &event)
	result.AddTrace(event)

	h.logger.Debug("step executed",
		"step", index,
		"op", step.Op,
		"outcome", event.Outcome,
		"error", event.Error,
		"size", event.Size,
	)

	for _, msg := range checkExpect(step, event, value, err) {
		result.AddError(fmt.Sprintf("step %d (%s): %s", index, step.Op, msg))
	}
}

// perform dispatches a step. The returned value is nil when the step
// produces none.
func (h *Harness) perform(ctx context.Context, step Step, event *TraceEvent) (ir.IRValue, list.Outcome, bool, error) {
	switch step.Op {
	case OpBegin:
		return nil, 0, false, h.store.BeginWrite(ctx)
	case OpCommit:
		return nil, 0, false, h.store.Commit()
	case OpRollback:
		return nil, 0, false, h.store.Rollback()
	case OpDelete:
		event.Args = []any{step.Object}
		return nil, 0, false, h.store.DeleteObject(ctx, step.Object)
	case OpCreate:
		v, err := ir.FromAny(step.Value)
		if err != nil {
			return nil, 0, false, err
		}
		event.Args = []any{ir.ToAny(v)}
		ref, err := h.accessor.Create(ctx, step.Type, v)
		if err != nil {
			return nil, 0, false, err
		}
		return ir.IRObject{ir.KeyID: ir.IRString(ref.ID), ir.KeyType: ir.IRString(ref.Type)}, 0, false, nil
	}

	l, err := h.listFor(ctx, h.target)
	if err != nil {
		return nil, 0, false, err
	}

	switch step.Op {
	case OpGet:
		v, outcome, err := l.Get(ctx, step.Key)
		return nonNull(v), outcome, true, err
	case OpSet:
		v, err := ir.FromAny(step.Value)
		if err != nil {
			return nil, 0, false, err
		}
		event.Args = []any{ir.ToAny(v)}
		outcome, err := l.Set(ctx, step.Key, v)
		return nil, outcome, true, err
	case OpKeys:
		names, err := l.PropertyNames(ctx)
		if err != nil {
			return nil, 0, false, err
		}
		arr := make(ir.IRArray, len(names))
		for i, n := range names {
			arr[i] = ir.IRString(n)
		}
		return arr, list.Handled, true, nil
	default:
		args, err := convertArgs(step.Args)
		if err != nil {
			return nil, 0, false, err
		}
		event.Args = make([]any, len(args))
		for i, a := range args {
			event.Args[i] = ir.ToAny(a)
		}
		v, outcome, err := l.Call(ctx, step.Op, args...)
		return nonNull(v), outcome, true, err
	}
}

// snapshot records the target list's size and digest, or marks it
// detached.
func (h *Harness) snapshot(ctx context.Context, event *TraceEvent) {
	l, err := h.listFor(ctx, h.target)
	if err != nil {
		event.Detached = true
		return
	}
	refs, err := l.Refs(ctx)
	if err != nil {
		event.Detached = true
		return
	}
	event.Size = len(refs)
	event.Digest = ir.ListDigest(refs)
}

// convertArgs converts YAML step arguments to IR values.
func convertArgs(args []any) ([]ir.IRValue, error) {
	out := make([]ir.IRValue, len(args))
	for i, a := range args {
		v, err := ir.FromAny(a)
		if err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func nonNull(v ir.IRValue) ir.IRValue {
	if _, ok := v.(ir.IRNull); ok {
		return nil
	}
	return v
}

func refIDs(refs []ir.ObjectRef) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}
