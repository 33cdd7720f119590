package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/linkview/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Types  []string                 `json:"types,omitempty"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schemas-dir>",
		Short: "Validate object schemas",
		Long: `Validate CUE object schemas without writing anything.

Compiles every object type, then checks the set as a whole: duplicate
names, link properties without a target, targets that are not declared,
and reserved property names.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, schemasDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, loadErrors := schema.LoadDir(schemasDir, schema.LoadModeCollectAll)
	if loaded == nil && len(loadErrors) > 0 {
		return fail(formatter, ExitCommandError, schemaErrorCode(loadErrors[0]), loadErrors[0])
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, schemasDir)

	var validationErrors []schema.ValidationError
	for _, err := range loadErrors {
		validationErrors = append(validationErrors, loadErrorToValidation(err))
	}
	for _, s := range loaded.Schemas {
		formatter.VerboseLog("Validating object: %s", s.Name)
	}
	validationErrors = append(validationErrors, schema.Validate(loaded.Schemas)...)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	types := make([]string, len(loaded.Schemas))
	for i, s := range loaded.Schemas {
		types[i] = s.Name
	}
	return outputValidateSuccess(formatter, types)
}

// loadErrorToValidation reports a compile error with its source position
// as the field.
func loadErrorToValidation(err error) schema.ValidationError {
	var loadErr *schema.LoadError
	if errors.As(err, &loadErr) {
		return schema.ValidationError{
			Field:   positionField(loadErr.Pos),
			Message: loadErr.Message,
			Code:    loadErr.Code,
		}
	}
	return schema.ValidationError{Field: "load", Message: err.Error(), Code: schema.ErrCodeGeneric}
}

func positionField(pos token.Pos) string {
	if !pos.IsValid() {
		return "load"
	}
	return fmt.Sprintf("%s:%d", pos.Filename(), pos.Line())
}

func outputValidateSuccess(formatter *OutputFormatter, types []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Types: types})
	}

	fmt.Fprintf(formatter.Writer, "%s All schemas valid (%d object type(s))\n", markPass, len(types))
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, errs []schema.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintf(formatter.Writer, "%s Validation failed\n\n", markFail)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "%s\n  %s: %s\n\n", err.Field, err.Code, err.Message)
	}
	return exitErr
}
