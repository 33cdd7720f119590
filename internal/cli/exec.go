package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/linkview/internal/accessor"
	"github.com/roach88/linkview/internal/ir"
	"github.com/roach88/linkview/internal/list"
)

// ExecResult describes one executed list operation.
type ExecResult struct {
	Op      string `json:"op"`
	Key     string `json:"key,omitempty"`
	Args    []any  `json:"args,omitempty"`
	Outcome string `json:"outcome"`
	Result  any    `json:"result,omitempty"`
	Size    int    `json:"size"`
	Digest  string `json:"digest"`
	Version int64  `json:"version"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <schemas-dir> <op> [args...]",
		Short: "Run one list operation",
		Long: fmt.Sprintf(`Run one operation on a stored list. Everything except get runs in its own
write transaction, committed when the operation succeeds.

Operations:
  %s   list methods; every argument is JSON
  get <key>                     read an index or "length"
  set <key> <json-value>        replace the element at an index

Elements are given as {"_id": "..."} references or as object literals,
which are created. The transaction is rolled back if the operation fails
or is not handled.

Example:
  linkview exec --db kennel.db --owner alice --property dogs ./schemas push '{"_id":"rex"}'
  linkview exec --db kennel.db --owner alice --property dogs ./schemas splice 0 1
  linkview exec --db kennel.db --owner alice --property dogs ./schemas get -1`,
			strings.Join(list.Methods(), ", ")),
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], args[1], args[2:], cmd)
		},
	}

	// Negative indices are operation arguments, not flags.
	cmd.Flags().SetInterspersed(false)
	opts.addFlags(cmd)

	return cmd
}

var errNotHandled = errors.New("operation not handled")

// execRequest is a parsed operation.
type execRequest struct {
	op   string
	key  string
	args []ir.IRValue
}

func parseExecRequest(op string, raw []string) (execRequest, error) {
	req := execRequest{op: op}
	switch {
	case op == "get":
		if len(raw) != 1 {
			return req, fmt.Errorf("get takes a key, got %d argument(s)", len(raw))
		}
		req.key = raw[0]
		return req, nil
	case op == "set":
		if len(raw) != 2 {
			return req, fmt.Errorf("set takes a key and a value, got %d argument(s)", len(raw))
		}
		req.key = raw[0]
		raw = raw[1:]
	case !slices.Contains(list.Methods(), op):
		return req, fmt.Errorf("unknown operation %q", op)
	}

	for i, r := range raw {
		v, err := ir.UnmarshalIRValue([]byte(r))
		if err != nil {
			return req, fmt.Errorf("argument %d: invalid JSON: %w", i, err)
		}
		req.args = append(req.args, v)
	}
	return req, nil
}

func runExec(opts *ListOptions, schemasDir, op string, rawArgs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	req, err := parseExecRequest(op, rawArgs)
	if err != nil {
		return fail(formatter, ExitCommandError, "INVALID_ARGUMENT", err)
	}

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

	result := ExecResult{Op: req.op, Key: req.key}
	for _, a := range req.args {
		result.Args = append(result.Args, ir.ToAny(a))
	}

	var value ir.IRValue
	var outcome list.Outcome
	run := func(ctx context.Context) error {
		var opErr error
		value, outcome, opErr = execute(ctx, l, req)
		if opErr != nil {
			return opErr
		}
		if outcome == list.NotHandled {
			return errNotHandled
		}
		return nil
	}
	if req.op == "get" {
		err = run(ctx)
	} else {
		err = sess.store.Write(ctx, run)
	}
	if outcome == list.NotHandled {
		return fail(formatter, ExitFailure, "NOT_HANDLED", fmt.Errorf("%s %s: not handled", req.op, req.key))
	}
	if err != nil {
		return fail(formatter, ExitFailure, accessor.ErrorCode(err), err)
	}
	sess.logger.Info("operation done", "op", req.op, "owner", opts.Owner, "property", opts.Property)

	result.Outcome = outcome.String()
	if _, isNull := value.(ir.IRNull); value != nil && !isNull {
		result.Result = ir.ToAny(value)
	}
	refs, err := l.Refs(ctx)
	if err != nil {
		return fail(formatter, ExitFailure, accessor.ErrorCode(err), err)
	}
	result.Size = len(refs)
	result.Digest = ir.ListDigest(refs)
	if result.Version, err = sess.store.Version(ctx); err != nil {
		return fail(formatter, ExitCommandError, accessor.ErrorCode(err), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputExecText(formatter, result, value)
}

// execute dispatches req on l.
func execute(ctx context.Context, l *list.List, req execRequest) (ir.IRValue, list.Outcome, error) {
	switch req.op {
	case "get":
		return l.Get(ctx, req.key)
	case "set":
		outcome, err := l.Set(ctx, req.key, req.args[0])
		return nil, outcome, err
	default:
		return l.Call(ctx, req.op, req.args...)
	}
}

func outputExecText(formatter *OutputFormatter, result ExecResult, value ir.IRValue) error {
	w := formatter.Writer
	line := fmt.Sprintf("%s %s", markPass, result.Op)
	if result.Key != "" {
		line += " " + result.Key
	}
	fmt.Fprintf(w, "%s -> %s\n", line, result.Outcome)
	if result.Result != nil {
		data, err := ir.MarshalIRValue(value)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "result:  %s\n", data)
	}
	fmt.Fprintf(w, "size:    %d\n", result.Size)
	fmt.Fprintf(w, "digest:  %s\n", result.Digest)
	fmt.Fprintf(w, "version: %d\n", result.Version)
	return nil
}
