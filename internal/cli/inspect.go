package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/linkview/internal/accessor"
	"github.com/roach88/linkview/internal/ir"
)

// InspectResult describes the contents of one list.
type InspectResult struct {
	Owner       string   `json:"owner"`
	Property    string   `json:"property"`
	ElementType string   `json:"element_type"`
	Size        int      `json:"size"`
	IDs         []string `json:"ids"`
	Values      []any    `json:"values"`
	Digest      string   `json:"digest"`
	Version     int64    `json:"version"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <schemas-dir>",
		Short: "Show the elements of a stored list",
		Long: `Show the elements of a stored list without changing it.

Prints every element in order with its scalar properties, the list digest
and the store version. The digest only depends on the ordered element ids,
so two lists with the same digest hold the same objects in the same order.

Example:
  linkview inspect --db kennel.db --owner alice --property dogs ./schemas`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func runInspect(opts *ListOptions, schemasDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sess, err := openSession(opts.RootOptions, formatter, opts.Database, schemasDir, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := commandContext(cmd)
	l, err := sess.openList(ctx, formatter, opts)
	if err != nil {
		return err
	}

	refs, err := l.Refs(ctx)
	if err != nil {
		return fail(formatter, ExitFailure, accessor.ErrorCode(err), err)
	}
	values, err := l.Values(ctx)
	if err != nil {
		return fail(formatter, ExitFailure, accessor.ErrorCode(err), err)
	}
	version, err := sess.store.Version(ctx)
	if err != nil {
		return fail(formatter, ExitCommandError, accessor.ErrorCode(err), err)
	}

	result := InspectResult{
		Owner:       opts.Owner,
		Property:    opts.Property,
		ElementType: l.Schema().Name,
		Size:        len(refs),
		IDs:         make([]string, len(refs)),
		Values:      make([]any, len(values)),
		Digest:      ir.ListDigest(refs),
		Version:     version,
	}
	for i, r := range refs {
		result.IDs[i] = r.ID
	}
	for i, v := range values {
		result.Values[i] = ir.ToAny(v)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputInspectText(formatter, result, values)
}

func outputInspectText(formatter *OutputFormatter, result InspectResult, values ir.IRArray) error {
	w := formatter.Writer
	fmt.Fprintf(w, "%s.%s (%s, %d element(s))\n", result.Owner, result.Property, result.ElementType, result.Size)
	for i, v := range values {
		data, err := ir.MarshalIRValue(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  [%d] %s\n", i, data)
	}
	fmt.Fprintf(w, "digest:  %s\n", result.Digest)
	fmt.Fprintf(w, "version: %d\n", result.Version)
	return nil
}
