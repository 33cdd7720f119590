package accessor

import (
	"errors"
	"fmt"

	"github.com/roach88/linkview/internal/list"
	"github.com/roach88/linkview/internal/store"
)

// MismatchError reports a value that cannot be resolved to an object of
// the expected type.
type MismatchError struct {
	Expected string
	Got      string
	Reason   string
}

func (e *MismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("expected %s, got %s: %s", e.Expected, e.Got, e.Reason)
	}
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
}

// IsMismatch reports whether err is or wraps a MismatchError.
func IsMismatch(err error) bool {
	var me *MismatchError
	return errors.As(err, &me)
}

// Error codes for failures outside the list package.
const (
	CodeNoWriteTransaction = "NO_WRITE_TRANSACTION"
	CodeTransactionActive  = "TRANSACTION_ACTIVE"
	CodeObjectNotFound     = "OBJECT_NOT_FOUND"
	CodeObjectExists       = "OBJECT_EXISTS"
	CodeClosed             = "CLOSED"
	CodeTypeMismatch       = "TYPE_MISMATCH"
	CodeUnknown            = "ERROR"
)

// ErrorCode names err for traces and command output. List errors keep
// their own code; store sentinels and mismatches get the codes above.
func ErrorCode(err error) string {
	if code := list.CodeOf(err); code != "" {
		return string(code)
	}
	switch {
	case errors.Is(err, store.ErrNoWriteTransaction):
		return CodeNoWriteTransaction
	case errors.Is(err, store.ErrTransactionActive):
		return CodeTransactionActive
	case errors.Is(err, store.ErrObjectNotFound):
		return CodeObjectNotFound
	case errors.Is(err, store.ErrObjectExists):
		return CodeObjectExists
	case errors.Is(err, store.ErrClosed):
		return CodeClosed
	case IsMismatch(err):
		return CodeTypeMismatch
	default:
		return CodeUnknown
	}
}
