package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/linkview/internal/accessor"
	"github.com/roach88/linkview/internal/ir"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Database string
}

// CreateResult describes a created object.
type CreateResult struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Version int64  `json:"version"`
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <schemas-dir> <type> <json-value>",
		Short: "Create an object in its own write transaction",
		Long: `Create an object of a declared type from a JSON literal.

List properties may hold references ({"_id": "..."}) to existing objects
or nested literals, which are created too. An "_id" key sets the new
object's id; otherwise a UUIDv7 is generated.

Example:
  linkview create --db kennel.db ./schemas Dog '{"name":"Rex"}'
  linkview create --db kennel.db ./schemas Person '{"_id":"alice","name":"Alice","dogs":[{"_id":"rex"}]}'`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runCreate(opts *CreateOptions, schemasDir, objectType, rawValue string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	value, err := ir.UnmarshalIRValue([]byte(rawValue))
	if err != nil {
		return fail(formatter, ExitCommandError, "INVALID_JSON", fmt.Errorf("invalid value JSON: %w", err))
	}

	sess, err := openSession(opts.RootOptions, formatter, opts.Database, schemasDir, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := commandContext(cmd)
	var ref ir.ObjectRef
	err = sess.store.Write(ctx, func(ctx context.Context) error {
		ref, err = sess.accessor.Create(ctx, objectType, value)
		return err
	})
	if err != nil {
		return fail(formatter, ExitFailure, accessor.ErrorCode(err), err)
	}
	sess.logger.Info("object created", "object", ref.String())

	version, err := sess.store.Version(ctx)
	if err != nil {
		return fail(formatter, ExitCommandError, accessor.ErrorCode(err), err)
	}

	result := CreateResult{ID: ref.ID, Type: ref.Type, Version: version}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s Created %s\n", markPass, ref)
	return nil
}
