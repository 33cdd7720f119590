package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkview/internal/schema"
)

func TestValidateValidSchemas(t *testing.T) {
	out, _, err := runCmd(t, NewValidateCommand(&RootOptions{Format: "text"}), schemasDir)
	require.NoError(t, err)
	assert.Contains(t, out, markPass+" All schemas valid (3 object type(s))")
}

func TestValidateValidSchemasJSON(t *testing.T) {
	out, _, err := runCmd(t, NewValidateCommand(&RootOptions{Format: "json"}), schemasDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.ElementsMatch(t, []string{"Dog", "Cat", "Person"}, resp.Data.Types)
}

func TestValidateVerboseGoesToStderr(t *testing.T) {
	out, errOut, err := runCmd(t, NewValidateCommand(&RootOptions{Format: "json", Verbose: true}), schemasDir)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Validating object: Person")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, _, err := runCmd(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), schema.ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, _, err := runCmd(t, NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), schema.ErrCodeNoFiles)
}

func TestValidateUnknownTarget(t *testing.T) {
	dir := writeSchemaDir(t, `
object: Person: {
	name: string
	dogs: {list: "Dog"}
}
`)
	out, _, err := runCmd(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 1 error(s)")
	assert.Contains(t, out, markFail+" Validation failed")
	assert.Contains(t, out, "Person.dogs")
	assert.Contains(t, out, schema.ErrUnknownObjectType)
}

func TestValidateCollectsCompileAndSetErrors(t *testing.T) {
	dir := writeSchemaDir(t, `
object: Scale: {
	weight: float
}
object: Person: {
	cats: {list: "Cat"}
}
`)
	out, _, err := runCmd(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 2)

	codes := []string{resp.Data.Errors[0].Code, resp.Data.Errors[1].Code}
	assert.ElementsMatch(t, []string{schema.ErrCodeInvalidType, schema.ErrUnknownObjectType}, codes)
	assert.Equal(t, resp.Data.Errors[0].Code, resp.Error.Code)
}

func TestLoadErrorToValidation(t *testing.T) {
	v := loadErrorToValidation(&schema.LoadError{Code: schema.ErrCodeInvalidType, Message: "float"})
	assert.Equal(t, schema.ValidationError{Field: "load", Message: "float", Code: schema.ErrCodeInvalidType}, v)

	v = loadErrorToValidation(assert.AnError)
	assert.Equal(t, schema.ErrCodeGeneric, v.Code)
}
