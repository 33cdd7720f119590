package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

var (
	schemasDir   = filepath.Join("..", "..", "testdata", "schemas")
	scenariosDir = filepath.Join("..", "..", "testdata", "scenarios")
)

// runCmd runs cmd with args and returns stdout and stderr.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeSchemaDir writes a single CUE file of package schemas into a fresh
// directory.
func writeSchemaDir(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	src := "package schemas\n" + content
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.cue"), []byte(src), 0644))
	return dir
}

// seedKennel creates a database holding dogs rex, fido and max, and the
// person alice whose dogs list is [rex, fido].
func seedKennel(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "kennel.db")
	objects := []struct {
		objectType string
		value      string
	}{
		{"Dog", `{"_id":"rex","name":"Rex","age":3}`},
		{"Dog", `{"_id":"fido","name":"Fido"}`},
		{"Dog", `{"_id":"max","name":"Max"}`},
		{"Person", `{"_id":"alice","name":"Alice","dogs":[{"_id":"rex"},{"_id":"fido"}]}`},
	}
	for _, o := range objects {
		_, _, err := runCmd(t, NewCreateCommand(&RootOptions{Format: "text"}),
			"--db", db, schemasDir, o.objectType, o.value)
		require.NoError(t, err)
	}
	return db
}

// listArgs prefixes the flags addressing alice's dogs.
func listArgs(db string, args ...string) []string {
	return append([]string{"--db", db, "--owner", "alice", "--property", "dogs"}, args...)
}
