package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkview/internal/ir"
)

func TestCompileValidSchemas(t *testing.T) {
	out, _, err := runCmd(t, NewCompileCommand(&RootOptions{Format: "text"}), schemasDir)
	require.NoError(t, err)

	assert.Contains(t, out, markPass+" Compiled 3 object type(s)")
	assert.Contains(t, out, "Dog: name string, age int?")
	assert.Contains(t, out, "Person: name string, dogs list<Dog>, cats list<Cat>, best object<Dog>?")
}

func TestCompileValidSchemasJSON(t *testing.T) {
	out, _, err := runCmd(t, NewCompileCommand(&RootOptions{Format: "json"}), schemasDir)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Objects, 3)

	var names []string
	for _, s := range resp.Data.Objects {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"Dog", "Cat", "Person"}, names)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "schemas.json")

	out, _, err := runCmd(t, NewCompileCommand(&RootOptions{Format: "text"}), schemasDir, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote schemas to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Objects, 3)

	for _, s := range result.Objects {
		if s.Name == "Person" {
			dogs, ok := s.Property("dogs")
			require.True(t, ok)
			assert.Equal(t, ir.PropList, dogs.Type)
			assert.Equal(t, "Dog", dogs.ObjectType)
		}
	}
}

func TestCompileNonExistentDirectory(t *testing.T) {
	out, _, err := runCmd(t, NewCompileCommand(&RootOptions{Format: "text"}), "/nonexistent/schemas")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestCompileReportsAllErrors(t *testing.T) {
	dir := writeSchemaDir(t, `
object: A: {
	score: float
}
object: B: {
	ratio: float
}
`)
	out, _, err := runCmd(t, NewCompileCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "compilation failed with 2 error(s)")
	assert.Contains(t, out, markFail+" Compilation failed")
}

func TestCompileErrorsJSON(t *testing.T) {
	dir := writeSchemaDir(t, `
object: A: {
	score: float
}
`)
	out, _, err := runCmd(t, NewCompileCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E104", resp.Error.Code)
}

func TestDescribeProperties(t *testing.T) {
	s := ir.ObjectSchema{
		Name: "Person",
		Properties: []ir.Property{
			{Name: "name", Type: ir.PropString},
			{Name: "dogs", Type: ir.PropList, ObjectType: "Dog"},
			{Name: "nick", Type: ir.PropString, Optional: true},
		},
	}
	assert.Equal(t, "name string, dogs list<Dog>, nick string?", describeProperties(s))
}
