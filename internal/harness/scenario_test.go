package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalSchema = `object: Dog: {
  name: string
}
object: Person: {
  name: string
  dogs: {list: "Dog"}
}
`

// writeScenario writes content to a scenario file in a temp directory that
// also holds a schemas directory.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	schemas := filepath.Join(dir, "schemas")
	require.NoError(t, os.MkdirAll(schemas, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(schemas, "schema.cue"), []byte("package schemas\n\n"+minimalSchema), 0644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validScenario = `
name: test_scenario
description: "Test scenario for validation"
schemas: schemas
objects:
  - type: Dog
    value: {_id: A, name: Rex}
  - type: Person
    value: {_id: alice, name: Alice, dogs: []}
list:
  owner: alice
  property: dogs
steps:
  - op: push
    args: [{_id: A}]
    expect:
      value: 1
assertions:
  - type: list_ids
    ids: [A]
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, validScenario)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "schemas"), scenario.Schemas)
	assert.Len(t, scenario.Objects, 2)
	assert.Equal(t, ListRef{Owner: "alice", Property: "dogs"}, scenario.List)
	require.Len(t, scenario.Steps, 1)
	assert.Equal(t, "push", scenario.Steps[0].Op)
	assert.Equal(t, map[string]any{"_id": "A"}, scenario.Steps[0].Args[0])
	require.NotNil(t, scenario.Steps[0].Expect)
	assert.Equal(t, 1, scenario.Steps[0].Expect.Value)
	assert.Equal(t, []string{"A"}, scenario.Assertions[0].IDs)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	path := writeScenario(t, "name: [unclosed")
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownFieldsRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "top level typo",
			content: validScenario + "assertion: []\n",
		},
		{
			name: "step typo",
			content: `
name: x
description: x
schemas: schemas
list: {owner: alice, property: dogs}
steps:
  - op: pop
    expct: {outcome: absent}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to parse YAML")
		})
	}
}

func TestLoadScenario_ValidationErrors(t *testing.T) {
	header := "name: x\ndescription: x\nschemas: schemas\nlist: {owner: alice, property: dogs}\n"
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing name", "description: x\nschemas: schemas\nlist: {owner: a, property: b}\nsteps: [{op: pop}]\n", "name is required"},
		{"missing description", "name: x\nschemas: schemas\nlist: {owner: a, property: b}\nsteps: [{op: pop}]\n", "description is required"},
		{"no schema", "name: x\ndescription: x\nlist: {owner: a, property: b}\nsteps: [{op: pop}]\n", "one of schemas or schema is required"},
		{"both schemas", "name: x\ndescription: x\nschemas: schemas\nschema: 'object: {}'\nlist: {owner: a, property: b}\nsteps: [{op: pop}]\n", "mutually exclusive"},
		{"missing schemas dir", "name: x\ndescription: x\nschemas: nowhere\nlist: {owner: a, property: b}\nsteps: [{op: pop}]\n", "schemas directory not found"},
		{"missing list", "name: x\ndescription: x\nschemas: schemas\nsteps: [{op: pop}]\n", "list owner and property are required"},
		{"no steps", header, "steps list is required"},
		{"fixture without type", header + "objects: [{value: {name: Rex}}]\nsteps: [{op: pop}]\n", "objects[0]: type is required"},
		{"step without op", header + "steps: [{key: '0'}]\n", "steps[0]: op is required"},
		{"unknown op", header + "steps: [{op: sort}]\n", `unknown op "sort"`},
		{"get without key", header + "steps: [{op: get}]\n", "key is required for get"},
		{"set without key", header + "steps: [{op: set, value: 1}]\n", "key is required for set"},
		{"delete without object", header + "steps: [{op: delete}]\n", "object is required for delete"},
		{"create without type", header + "steps: [{op: create, value: {}}]\n", "type is required for create"},
		{"bad outcome", header + "steps: [{op: pop, expect: {outcome: missing}}]\n", `unknown outcome "missing"`},
		{"assertion without type", header + "steps: [{op: pop}]\nassertions: [{op: pop}]\n", "type is required"},
		{"unknown assertion", header + "steps: [{op: pop}]\nassertions: [{type: final_state}]\n", `unknown assertion type "final_state"`},
		{"trace_contains without op", header + "steps: [{op: pop}]\nassertions: [{type: trace_contains}]\n", "op is required for trace_contains"},
		{"trace_order without ops", header + "steps: [{op: pop}]\nassertions: [{type: trace_order}]\n", "ops list is required"},
		{"negative trace_count", header + "steps: [{op: pop}]\nassertions: [{type: trace_count, op: pop, count: -1}]\n", "count must be non-negative"},
		{"list_ids without ids", header + "steps: [{op: pop}]\nassertions: [{type: list_ids}]\n", "ids is required"},
		{"object_count without type", header + "steps: [{op: pop}]\nassertions: [{type: object_count, count: 1}]\n", "object_type is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_EmptyIDsAllowed(t *testing.T) {
	header := "name: x\ndescription: x\nschemas: schemas\nlist: {owner: alice, property: dogs}\n"
	path := writeScenario(t, header+"steps: [{op: pop}]\nassertions: [{type: list_ids, ids: []}]\n")

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.NotNil(t, scenario.Assertions[0].IDs)
	assert.Empty(t, scenario.Assertions[0].IDs)
}

func TestLoadScenario_InlineSchema(t *testing.T) {
	content := `
name: inline
description: inline schema
schema: |
  object: Dog: {
    name: string
  }
list: {owner: alice, property: dogs}
steps: [{op: pop}]
`
	path := writeScenario(t, content)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Empty(t, scenario.Schemas)
	assert.Contains(t, scenario.Schema, "object: Dog")
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	path := writeScenario(t, validScenario)
	base := filepath.Dir(path)

	// The scenario lives in a different directory from its base path.
	moved := filepath.Join(t.TempDir(), "moved.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(moved, data, 0644))

	_, err = LoadScenario(moved)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schemas directory not found")

	scenario, err := LoadScenarioWithBasePath(moved, base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "schemas"), scenario.Schemas)
}

func TestLoadScenarioWithBasePath_AbsoluteSchemasPath(t *testing.T) {
	path := writeScenario(t, validScenario)
	abs := filepath.Join(filepath.Dir(path), "schemas")

	content := `
name: abs
description: absolute schemas path
schemas: ` + abs + `
list: {owner: alice, property: dogs}
steps: [{op: pop}]
`
	other := filepath.Join(t.TempDir(), "abs.yaml")
	require.NoError(t, os.WriteFile(other, []byte(content), 0644))

	scenario, err := LoadScenarioWithBasePath(other, "/somewhere/else")
	require.NoError(t, err)
	assert.Equal(t, abs, scenario.Schemas)
}

func TestAssertionConstants(t *testing.T) {
	assert.Equal(t, "trace_contains", AssertTraceContains)
	assert.Equal(t, "trace_order", AssertTraceOrder)
	assert.Equal(t, "trace_count", AssertTraceCount)
	assert.Equal(t, "list_ids", AssertListIDs)
	assert.Equal(t, "list_size", AssertListSize)
	assert.Equal(t, "detached", AssertDetached)
	assert.Equal(t, "object_count", AssertObjectCount)
}
