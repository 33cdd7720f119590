package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/linkview/internal/accessor"
	"github.com/roach88/linkview/internal/list"
	"github.com/roach88/linkview/internal/schema"
	"github.com/roach88/linkview/internal/store"
)

// ListOptions holds the flags that address one stored list.
type ListOptions struct {
	*RootOptions
	Database string
	Owner    string
	Property string
}

func (o *ListOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&o.Owner, "owner", "", "id of the object owning the list (required)")
	cmd.Flags().StringVar(&o.Property, "property", "", "list property of the owner (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("property")
}

// session is an open database together with the accessor for its schemas.
type session struct {
	store    *store.Store
	accessor *accessor.Accessor
	logger   *slog.Logger
}

// loadRegistry loads, cross-validates and registers the schemas in dir.
func loadRegistry(dir string) (*schema.Registry, error) {
	loaded, errs := schema.LoadDir(dir, schema.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	if verrs := schema.Validate(loaded.Schemas); len(verrs) > 0 {
		return nil, verrs[0]
	}
	return loaded.Registry()
}

// schemaErrorCode returns the E-code of a schema load or validation error.
func schemaErrorCode(err error) string {
	var loadErr *schema.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	var validationErr schema.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code
	}
	return schema.ErrCodeGeneric
}

// openSession loads the schemas and opens the database, creating it if it
// does not exist. Failures are reported through f.
func openSession(opts *RootOptions, f *OutputFormatter, dbPath, schemasDir string, cmd *cobra.Command) (*session, error) {
	logger := newLogger(opts, cmd)

	reg, err := loadRegistry(schemasDir)
	if err != nil {
		return nil, fail(f, ExitCommandError, schemaErrorCode(err), err)
	}
	logger.Debug("schemas loaded", "dir", schemasDir, "types", reg.Names())

	st, err := store.Open(dbPath, store.WithLogger(logger))
	if err != nil {
		return nil, fail(f, ExitCommandError, schema.ErrCodeGeneric, fmt.Errorf("open database %s: %w", dbPath, err))
	}
	logger.Debug("database ready", "path", dbPath)

	return &session{
		store:    st,
		accessor: accessor.New(st, reg, accessor.WithLogger(logger)),
		logger:   logger,
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// openList opens the list addressed by opts.
func (s *session) openList(ctx context.Context, f *OutputFormatter, opts *ListOptions) (*list.List, error) {
	l, err := s.accessor.OpenList(ctx, opts.Owner, opts.Property)
	if err != nil {
		return nil, fail(f, ExitCommandError, accessor.ErrorCode(err), err)
	}
	return l, nil
}

// commandContext returns the command's context, or Background when the
// command runs without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// fail reports err under code and returns it with the exit code attached.
func fail(f *OutputFormatter, exitCode int, code string, err error) error {
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(exitCode, code, err)
}
