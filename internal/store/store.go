package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on links.target_id for object deletion
const currentSchemaVersion = 1

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a single storage session over a SQLite database.
//
// The connection pool is limited to one connection, so while a write
// transaction is open every read is routed through it.
type Store struct {
	db     *sql.DB
	ids    IDGenerator
	logger *slog.Logger

	mu     sync.Mutex
	tx     *sql.Tx
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the generator used by CreateObject.
// The default is UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// WithLogger sets the logger for transaction and deletion events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and the session's write
	// transaction must see every read.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:     db,
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close rolls back any open write transaction and closes the database.
// Lists viewing this store report themselves detached afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.db == nil {
		return nil
	}
	s.closed = true
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
		s.logger.Debug("write transaction rolled back on close")
	}
	return s.db.Close()
}

// IsClosed reports whether Close has been called.
func (s *Store) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// BeginWrite opens the session's write transaction.
func (s *Store) BeginWrite(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.tx != nil {
		return ErrTransactionActive
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	s.tx = tx
	s.logger.Debug("write transaction begun")
	return nil
}

// Commit commits the write transaction and bumps the store version.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return ErrNoWriteTransaction
	}
	tx := s.tx
	s.tx = nil

	if _, err := tx.Exec(`UPDATE store_meta SET value = value + 1 WHERE key = 'version'`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("commit: bump version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("write transaction committed")
	return nil
}

// Rollback discards the write transaction.
func (s *Store) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return ErrNoWriteTransaction
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	s.logger.Debug("write transaction rolled back")
	return nil
}

// IsInWriteTransaction reports whether a write transaction is open.
func (s *Store) IsInWriteTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx != nil
}

// Write runs fn inside a write transaction. The transaction is committed if
// fn returns nil and rolled back otherwise; fn's error is returned as is.
func (s *Store) Write(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := s.BeginWrite(ctx); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			s.logger.Warn("rollback after failed write", "error", rbErr)
		}
		return err
	}
	return s.Commit()
}

// Version returns the number of committed write transactions.
func (s *Store) Version(ctx context.Context) (int64, error) {
	q, err := s.reader()
	if err != nil {
		return 0, err
	}
	var v int64
	if err := q.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = 'version'`).Scan(&v); err != nil {
		return 0, fmt.Errorf("version: %w", err)
	}
	return v, nil
}

// reader returns the open transaction if there is one, else the database.
func (s *Store) reader() (querier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	return s.db, nil
}

// writer returns the open transaction or ErrNoWriteTransaction.
func (s *Store) writer() (*sql.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.tx == nil {
		return nil, ErrNoWriteTransaction
	}
	return s.tx, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes links by target so DeleteObject can find every list
// that refers to an object without a table scan.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_id)`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
