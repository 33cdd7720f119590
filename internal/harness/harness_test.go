package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dogsScenario(steps ...Step) *Scenario {
	return &Scenario{
		Name:        "dogs",
		Description: "operations on alice's dogs",
		Schema:      minimalSchema,
		Objects: []Fixture{
			{Type: "Dog", Value: map[string]any{"_id": "A", "name": "Rex"}},
			{Type: "Dog", Value: map[string]any{"_id": "B", "name": "Fido"}},
			{Type: "Person", Value: map[string]any{
				"_id":  "alice",
				"name": "Alice",
				"dogs": []any{map[string]any{"_id": "A"}},
			}},
		},
		List:  ListRef{Owner: "alice", Property: "dogs"},
		Steps: steps,
	}
}

func ref(id string) map[string]any {
	return map[string]any{"_id": id}
}

func intPtr(n int) *int { return &n }

func TestRun_MinimalScenario(t *testing.T) {
	scenario := dogsScenario(Step{Op: "push", Args: []any{ref("B")}})

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 1)

	event := result.Trace[0]
	assert.Equal(t, int64(1), event.Seq)
	assert.Equal(t, "push", event.Op)
	assert.Equal(t, "handled", event.Outcome)
	assert.Equal(t, int64(2), event.Result)
	assert.Equal(t, 2, event.Size)
	assert.NotEmpty(t, event.Digest)
	assert.Equal(t, []string{"A", "B"}, result.FinalIDs)
}

func TestRun_ExpectClausePass(t *testing.T) {
	scenario := dogsScenario(
		Step{Op: "get", Key: "0", Expect: &ExpectClause{
			Outcome: "handled",
			Value:   map[string]any{"_id": "A", "name": "Rex"},
			IDs:     []string{"A"},
			Size:    intPtr(1),
		}},
		Step{Op: "get", Key: "length", Expect: &ExpectClause{Value: 1}},
		Step{Op: "pop", Expect: &ExpectClause{IDs: []string{"A"}, Size: intPtr(0)}},
		Step{Op: "pop", Expect: &ExpectClause{Outcome: "absent"}},
	)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ExpectClauseMismatches(t *testing.T) {
	scenario := dogsScenario(
		Step{Op: "get", Key: "0", Expect: &ExpectClause{Outcome: "absent"}},
		Step{Op: "get", Key: "0", Expect: &ExpectClause{IDs: []string{"B"}}},
		Step{Op: "get", Key: "0", Expect: &ExpectClause{Value: map[string]any{"name": "Fido"}}},
		Step{Op: "get", Key: "0", Expect: &ExpectClause{Size: intPtr(3)}},
		Step{Op: "get", Key: "0", Expect: &ExpectClause{Error: "DETACHED"}},
	)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "step 0 (get): expected outcome absent")
	assert.Contains(t, result.Errors[1], "expected ids [B], got [A]")
	assert.Contains(t, result.Errors[2], "expected value")
	assert.Contains(t, result.Errors[3], "expected size 3, got 1")
	assert.Contains(t, result.Errors[4], "expected error DETACHED, got success")
}

func TestRun_UnexpectedErrorFailsStep(t *testing.T) {
	scenario := dogsScenario(Step{Op: "set", Key: "length", Value: 3})

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
	assert.Equal(t, "READ_ONLY_PROPERTY", result.Trace[0].Error)
	assert.Empty(t, result.Trace[0].Outcome)
}

func TestRun_WrongErrorCode(t *testing.T) {
	scenario := dogsScenario(Step{Op: "set", Key: "9", Value: ref("A"), Expect: &ExpectClause{Error: "READ_ONLY_PROPERTY"}})

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected error READ_ONLY_PROPERTY, got INDEX_OUT_OF_RANGE")
}

func TestRun_StoreErrorCodes(t *testing.T) {
	scenario := dogsScenario(
		Step{Op: "begin", Expect: &ExpectClause{Error: "TRANSACTION_ACTIVE"}},
		Step{Op: "delete", Object: "ghost", Expect: &ExpectClause{Error: "OBJECT_NOT_FOUND"}},
		Step{Op: "create", Type: "Dog", Value: map[string]any{"_id": "A", "name": "Again"}, Expect: &ExpectClause{Error: "OBJECT_EXISTS"}},
		Step{Op: "create", Type: "Dog", Value: map[string]any{"age": 3}, Expect: &ExpectClause{Error: "TYPE_MISMATCH"}},
		Step{Op: "rollback"},
		Step{Op: "rollback", Expect: &ExpectClause{Error: "NO_WRITE_TRANSACTION"}},
	)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_DetachedAfterOwnerDeleted(t *testing.T) {
	scenario := dogsScenario(
		Step{Op: "delete", Object: "alice"},
		Step{Op: "get", Key: "length", Expect: &ExpectClause{Error: "DETACHED"}},
	)
	scenario.Assertions = []Assertion{{Type: AssertDetached}}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	for _, event := range result.Trace {
		assert.True(t, event.Detached)
		assert.Empty(t, event.Digest)
	}
	assert.Nil(t, result.FinalIDs)
}

func TestRun_CreateStepUsesSequentialIDs(t *testing.T) {
	scenario := dogsScenario(
		Step{Op: "create", Type: "Dog", Value: map[string]any{"name": "Luna"}, Expect: &ExpectClause{IDs: []string{"obj-1"}}},
		Step{Op: "push", Args: []any{map[string]any{"name": "Milo"}}, Expect: &ExpectClause{Value: 2}},
		Step{Op: "get", Key: "1", Expect: &ExpectClause{IDs: []string{"obj-2"}}},
	)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, map[string]any{"_id": "obj-1", "_type": "Dog"}, result.Trace[0].Result)
}

func TestRun_Deterministic(t *testing.T) {
	scenario := dogsScenario(
		Step{Op: "push", Args: []any{map[string]any{"name": "Luna"}}},
		Step{Op: "splice", Args: []any{0, 1, ref("B")}},
	)

	result1, err := Run(scenario)
	require.NoError(t, err)
	result2, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, result1.Trace, result2.Trace)
	json1, err := MarshalTrace(scenario.Name, result1)
	require.NoError(t, err)
	json2, err := MarshalTrace(scenario.Name, result2)
	require.NoError(t, err)
	assert.Equal(t, json1, json2)
}

func TestRun_FreshDatabasePerRun(t *testing.T) {
	scenario := dogsScenario(Step{Op: "push", Args: []any{ref("B")}, Expect: &ExpectClause{Value: 2}})
	scenario.Steps = append(scenario.Steps, Step{Op: "commit"})

	for i := 0; i < 2; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d errors: %v", i, result.Errors)
	}
}

func TestRun_SetupFailures(t *testing.T) {
	t.Run("bad inline schema", func(t *testing.T) {
		scenario := dogsScenario(Step{Op: "pop"})
		scenario.Schema = "object: Dog: {"
		_, err := Run(scenario)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to compile inline schema")
	})

	t.Run("float property", func(t *testing.T) {
		scenario := dogsScenario(Step{Op: "pop"})
		scenario.Schema = "object: Dog: { weight: float }"
		_, err := Run(scenario)
		require.Error(t, err)
	})

	t.Run("invalid fixture", func(t *testing.T) {
		scenario := dogsScenario(Step{Op: "pop"})
		scenario.Objects = append(scenario.Objects, Fixture{Type: "Dog", Value: map[string]any{"age": 2}})
		_, err := Run(scenario)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute setup")
	})

	t.Run("missing owner", func(t *testing.T) {
		scenario := dogsScenario(Step{Op: "pop"})
		scenario.List.Owner = "nobody"
		_, err := Run(scenario)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open list nobody.dogs")
	})

	t.Run("fractional argument", func(t *testing.T) {
		scenario := dogsScenario(Step{Op: "splice", Args: []any{0.5, 1}, Expect: &ExpectClause{Error: "ERROR"}})
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
	})
}

func TestRun_KeysStep(t *testing.T) {
	scenario := dogsScenario(
		Step{Op: "push", Args: []any{ref("B")}},
		Step{Op: "keys", Expect: &ExpectClause{Value: []any{"0", "1"}}},
	)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []any{"0", "1"}, result.Trace[1].Result)
}

func TestResult_AddError(t *testing.T) {
	result := NewResult()
	assert.True(t, result.Pass)

	result.AddError("boom")
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"boom"}, result.Errors)
}

func TestResult_AddTrace(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{Seq: 1, Op: "push"})
	result.AddTrace(TraceEvent{Seq: 2, Op: "pop"})

	require.Len(t, result.Trace, 2)
	assert.Equal(t, "push", result.Trace[0].Op)
	assert.Equal(t, "pop", result.Trace[1].Op)
}
