package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/linkview/internal/ir"
	"github.com/roach88/linkview/internal/schema"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled object schemas.
type CompilationResult struct {
	Objects []ir.ObjectSchema `json:"objects"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <schemas-dir>",
		Short: "Compile CUE object schemas to JSON",
		Long: `Compile the CUE object schemas in a directory.

Every field of the top-level "object" struct becomes one object type with
its properties in declaration order. All compile errors are reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, schemasDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, loadErrors := schema.LoadDir(schemasDir, schema.LoadModeCollectAll)
	if loaded == nil && len(loadErrors) > 0 {
		return fail(formatter, ExitCommandError, schemaErrorCode(loadErrors[0]), loadErrors[0])
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, schemasDir)

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := &CompilationResult{Objects: loaded.Schemas}
	for _, s := range result.Objects {
		formatter.VerboseLog("Compiled object: %s", s.Name)
	}

	if opts.Output != "" {
		if err := writeSchemasToFile(result, opts.Output); err != nil {
			return fail(formatter, ExitCommandError, schema.ErrCodeGeneric, err)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s Compiled %d object type(s)\n\n", markPass, len(result.Objects))
	for _, s := range result.Objects {
		fmt.Fprintf(w, "  %s: %s\n", s.Name, describeProperties(s))
	}
	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote schemas to %s\n", outputFile)
	}
	return nil
}

// describeProperties renders a schema's properties as "name type" pairs,
// with link targets in angle brackets.
func describeProperties(s ir.ObjectSchema) string {
	parts := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		desc := fmt.Sprintf("%s %s", p.Name, p.Type)
		if p.Type.IsLink() {
			desc += "<" + p.ObjectType + ">"
		}
		if p.Optional {
			desc += "?"
		}
		parts[i] = desc
	}
	return strings.Join(parts, ", ")
}

func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			cliErrors[i] = CLIError{Code: schemaErrorCode(err), Message: err.Error()}
		}
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintf(formatter.Writer, "%s Compilation failed\n\n", markFail)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", schemaErrorCode(err), err)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// writeSchemasToFile writes the compiled schemas as indented JSON.
func writeSchemasToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling schemas: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
