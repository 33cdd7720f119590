package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenariosDir holds the scenarios shared with the CLI's test command.
func scenariosDir(t *testing.T) string {
	t.Helper()
	// From internal/harness/, go up two levels to the module root.
	dir, err := filepath.Abs("../../testdata/scenarios")
	require.NoError(t, err)
	return dir
}

func scenarioPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(scenariosDir(t), name+".yaml")
}

// TestDemoScenarios runs every checked-in scenario and requires it to pass.
func TestDemoScenarios(t *testing.T) {
	entries, err := os.ReadDir(scenariosDir(t))
	require.NoError(t, err)

	ran := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(scenarioPath(t, name))
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name should match file name")
			assert.NotEmpty(t, scenario.Description)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario should pass: errors=%v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Steps))
		})
		ran++
	}
	assert.GreaterOrEqual(t, ran, 6)
}

// TestDemoScenariosReplay runs a scenario twice and compares the traces.
func TestDemoScenariosReplay(t *testing.T) {
	scenario, err := LoadScenario(scenarioPath(t, "set_and_errors"))
	require.NoError(t, err)

	result1, err := Run(scenario)
	require.NoError(t, err)
	result2, err := Run(scenario)
	require.NoError(t, err)

	require.Equal(t, len(result1.Trace), len(result2.Trace))
	for i := range result1.Trace {
		assert.Equal(t, result1.Trace[i], result2.Trace[i], "trace[%d] mismatch", i)
	}
}

func TestDemoScenarioSeqIncreases(t *testing.T) {
	scenario, err := LoadScenario(scenarioPath(t, "push_pop_shift"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	for i := range result.Trace {
		assert.Equal(t, int64(i+1), result.Trace[i].Seq)
	}
}

func TestDemoScenarioDigestsTrackContent(t *testing.T) {
	scenario, err := LoadScenario(scenarioPath(t, "push_pop_shift"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	// Reads leave the list alone; steps 5 to 9 all see [A, B].
	for i := 5; i < 9; i++ {
		assert.Equal(t, result.Trace[4].Digest, result.Trace[i].Digest, "trace[%d]", i)
	}
	// The list is empty after step 11 and stays empty.
	assert.Equal(t, result.Trace[10].Digest, result.Trace[12].Digest)
	assert.NotEqual(t, result.Trace[0].Digest, result.Trace[1].Digest)
}
