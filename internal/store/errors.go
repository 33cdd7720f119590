package store

import "errors"

var (
	// ErrNoWriteTransaction is returned by mutations made outside BeginWrite/Commit.
	ErrNoWriteTransaction = errors.New("store: no write transaction")

	// ErrTransactionActive is returned by BeginWrite when a transaction is already open.
	ErrTransactionActive = errors.New("store: write transaction already active")

	// ErrClosed is returned by every operation on a closed store.
	ErrClosed = errors.New("store: closed")

	// ErrObjectNotFound is returned when an object id does not exist.
	ErrObjectNotFound = errors.New("store: object not found")

	// ErrObjectExists is returned by InsertObject for a duplicate id.
	ErrObjectExists = errors.New("store: object already exists")
)
