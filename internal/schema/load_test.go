package schema

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkview/internal/ir"
)

func loadErrorCode(t *testing.T, err error) string {
	t.Helper()
	var le *LoadError
	require.True(t, errors.As(err, &le), "expected *LoadError, got %T", err)
	return le.Code
}

func TestLoadDir(t *testing.T) {
	result, errs := LoadDir(filepath.Join("testdata", "valid"), LoadModeCollectAll)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.FileCount)
	require.Len(t, result.Schemas, 2)
	assert.Empty(t, Validate(result.Schemas))

	reg, err := result.Registry()
	require.NoError(t, err)

	person, ok := reg.Get("Person")
	require.True(t, ok)
	dogs, ok := person.Property("dogs")
	require.True(t, ok)
	assert.Equal(t, ir.Property{Name: "dogs", Type: ir.PropList, ObjectType: "Dog"}, dogs)
}

func TestLoadDirFloat(t *testing.T) {
	_, errs := LoadDir(filepath.Join("testdata", "float"), LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeInvalidType, loadErrorCode(t, errs[0]))
}

func TestLoadDirNoObjects(t *testing.T) {
	_, errs := LoadDir(filepath.Join("testdata", "empty"), LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeNoObjects, loadErrorCode(t, errs[0]))
}

func TestLoadDirMissing(t *testing.T) {
	_, errs := LoadDir(filepath.Join("testdata", "missing"), LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeNotFound, loadErrorCode(t, errs[0]))
}

func TestLoadDirNoFiles(t *testing.T) {
	_, errs := LoadDir(t.TempDir(), LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeNoFiles, loadErrorCode(t, errs[0]))
}

func TestLoadErrorFormat(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found in x"}
	assert.Equal(t, "E003: no CUE files found in x", err.Error())
}
