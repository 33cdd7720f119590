package harness

// TraceEvent records one executed step and the state of the scenario list
// right after it.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Op      string `json:"op"`
	Key     string `json:"key,omitempty"`
	Args    []any  `json:"args,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`

	// Size and Digest describe the list after the step. Both are unset
	// when the list is detached.
	Size     int    `json:"size"`
	Digest   string `json:"digest,omitempty"`
	Detached bool   `json:"detached,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// FinalIDs is the scenario list's content after the last step, or nil
	// when it ended detached.
	FinalIDs []string `json:"final_ids,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
