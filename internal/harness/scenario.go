package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/linkview/internal/list"
)

// Scenario defines a conformance scenario for one persisted list.
// Fixtures are created and committed first; the steps then run inside a
// fresh write transaction against the target list.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schemas is a directory of CUE object schemas.
	// Relative paths are resolved against the scenario's base path.
	Schemas string `yaml:"schemas,omitempty"`

	// Schema is an inline CUE document, used instead of Schemas.
	Schema string `yaml:"schema,omitempty"`

	// Objects are created in order before the first step.
	Objects []Fixture `yaml:"objects"`

	// List selects the list the steps operate on.
	List ListRef `yaml:"list"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Fixture is an object created during setup.
type Fixture struct {
	Type  string         `yaml:"type"`
	Value map[string]any `yaml:"value"`
}

// ListRef names a list property on an owner object.
type ListRef struct {
	Owner    string `yaml:"owner"`
	Property string `yaml:"property"`
}

// Step is a single operation.
//
// List methods (push, pop, shift, unshift, splice) take Args. get and set
// take Key, set also takes Value. keys lists property names. begin, commit
// and rollback drive the write transaction. delete removes Object; create
// creates an object of Type from Value.
type Step struct {
	Op     string        `yaml:"op"`
	Key    string        `yaml:"key,omitempty"`
	Value  any           `yaml:"value,omitempty"`
	Args   []any         `yaml:"args,omitempty"`
	Object string        `yaml:"object,omitempty"`
	Type   string        `yaml:"type,omitempty"`
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected result of a step.
type ExpectClause struct {
	// Outcome is "handled", "absent" or "not_handled".
	Outcome string `yaml:"outcome,omitempty"`

	// Error is the expected error code. A step without one must succeed.
	Error string `yaml:"error,omitempty"`

	// Value is matched against the step result with subset semantics.
	Value any `yaml:"value,omitempty"`

	// IDs are the object ids the result must contain, in order.
	IDs []string `yaml:"ids,omitempty"`

	// Size is the list size after the step.
	Size *int `yaml:"size,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an op appears in the trace, optionally with an error code
	// - "trace_order": ops appear in the given order
	// - "trace_count": an op appears exactly Count times
	// - "list_ids": the list holds exactly IDs
	// - "list_size": the list holds Count elements
	// - "detached": the list reports itself detached
	// - "object_count": ObjectType has Count stored objects
	Type string `yaml:"type"`

	Op    string   `yaml:"op,omitempty"`
	Ops   []string `yaml:"ops,omitempty"`
	Error string   `yaml:"error,omitempty"`
	Count int      `yaml:"count,omitempty"`

	// Owner and Property override the scenario list for list assertions.
	Owner    string `yaml:"owner,omitempty"`
	Property string `yaml:"property,omitempty"`

	IDs        []string `yaml:"ids,omitempty"`
	ObjectType string   `yaml:"object_type,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertListIDs       = "list_ids"
	AssertListSize      = "list_size"
	AssertDetached      = "detached"
	AssertObjectCount   = "object_count"
)

// Step operations beyond the list methods.
const (
	OpGet      = "get"
	OpSet      = "set"
	OpKeys     = "keys"
	OpBegin    = "begin"
	OpCommit   = "commit"
	OpRollback = "rollback"
	OpDelete   = "delete"
	OpCreate   = "create"
)

// LoadScenario reads and parses a scenario YAML file. Relative schema
// directories are resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the schemas directory relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Schemas != "" && !filepath.IsAbs(scenario.Schemas) && basePath != "" {
		scenario.Schemas = filepath.Join(basePath, scenario.Schemas)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes a scenario document without validating it.
// Unknown fields are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Schemas == "" && s.Schema == "":
		return fmt.Errorf("one of schemas or schema is required")
	case s.Schemas != "" && s.Schema != "":
		return fmt.Errorf("schemas and schema are mutually exclusive")
	case s.Schemas != "":
		if _, err := os.Stat(s.Schemas); os.IsNotExist(err) {
			return fmt.Errorf("schemas directory not found: %s", s.Schemas)
		}
	}

	if s.List.Owner == "" || s.List.Property == "" {
		return fmt.Errorf("list owner and property are required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, f := range s.Objects {
		if f.Type == "" {
			return fmt.Errorf("objects[%d]: type is required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	switch step.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpGet:
		if step.Key == "" {
			return fmt.Errorf("steps[%d]: key is required for get", index)
		}
	case OpSet:
		if step.Key == "" {
			return fmt.Errorf("steps[%d]: key is required for set", index)
		}
	case OpDelete:
		if step.Object == "" {
			return fmt.Errorf("steps[%d]: object is required for delete", index)
		}
	case OpCreate:
		if step.Type == "" {
			return fmt.Errorf("steps[%d]: type is required for create", index)
		}
	case OpKeys, OpBegin, OpCommit, OpRollback:
	default:
		if !isListMethod(step.Op) {
			return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
		}
	}

	if step.Expect != nil && step.Expect.Outcome != "" {
		switch step.Expect.Outcome {
		case "handled", "absent", "not_handled":
		default:
			return fmt.Errorf("steps[%d].expect: unknown outcome %q", index, step.Expect.Outcome)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertListIDs:
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids is required for list_ids (use [] for empty)", index)
		}
	case AssertListSize:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for list_size", index)
		}
	case AssertDetached:
	case AssertObjectCount:
		if a.ObjectType == "" {
			return fmt.Errorf("assertions[%d]: object_type is required for object_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func isListMethod(op string) bool {
	for _, m := range list.Methods() {
		if m == op {
			return true
		}
	}
	return false
}
