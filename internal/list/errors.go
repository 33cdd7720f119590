package list

import (
	"errors"
	"fmt"
)

// Error is a definite failure of a list operation.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Op is the operation that failed ("get", "push", ...).
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any (encode failures).
	Err error
}

// ErrorCode categorizes list errors.
type ErrorCode string

const (
	// ErrCodeDetached means the list's backing storage is no longer live.
	ErrCodeDetached ErrorCode = "DETACHED"

	// ErrCodeTransactionRequired means a mutation ran without a write transaction.
	ErrCodeTransactionRequired ErrorCode = "TRANSACTION_REQUIRED"

	// ErrCodeReadOnlyProperty means a write targeted the length key.
	ErrCodeReadOnlyProperty ErrorCode = "READ_ONLY_PROPERTY"

	// ErrCodeIndexOutOfRange means a write targeted an index at or past the end.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrCodeArgumentCount means a method got the wrong number of arguments.
	ErrCodeArgumentCount ErrorCode = "ARGUMENT_COUNT"

	// ErrCodeInvalidArgument means a numeric argument was not an integer.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeEncode means a value could not be resolved to an object of the
	// list's element type.
	ErrCodeEncode ErrorCode = "ENCODE_FAILED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there
// is none.
func CodeOf(err error) ErrorCode {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsDetached reports whether err is a detached-list error.
func IsDetached(err error) bool { return CodeOf(err) == ErrCodeDetached }

// IsTransactionRequired reports whether err is a missing-transaction error.
func IsTransactionRequired(err error) bool { return CodeOf(err) == ErrCodeTransactionRequired }

// IsReadOnlyProperty reports whether err is a write to the length key.
func IsReadOnlyProperty(err error) bool { return CodeOf(err) == ErrCodeReadOnlyProperty }

// IsIndexOutOfRange reports whether err is an out-of-range write.
func IsIndexOutOfRange(err error) bool { return CodeOf(err) == ErrCodeIndexOutOfRange }

// IsArgumentCount reports whether err is an argument count error.
func IsArgumentCount(err error) bool { return CodeOf(err) == ErrCodeArgumentCount }

// IsEncode reports whether err is an encode failure.
func IsEncode(err error) bool { return CodeOf(err) == ErrCodeEncode }

func newDetachedError(op string) *Error {
	return &Error{Code: ErrCodeDetached, Op: op, Message: "list no longer valid"}
}

func newTransactionRequiredError(op string) *Error {
	return &Error{
		Code:    ErrCodeTransactionRequired,
		Op:      op,
		Message: "mutation attempted outside a write transaction",
	}
}

func newReadOnlyError(op string) *Error {
	return &Error{Code: ErrCodeReadOnlyProperty, Op: op, Message: "length is read-only"}
}

func newIndexOutOfRangeError(op string, index int64, size int) *Error {
	return &Error{
		Code:    ErrCodeIndexOutOfRange,
		Op:      op,
		Message: fmt.Sprintf("index %d out of range for list of size %d", index, size),
	}
}

func newExactArgsError(op string, want, got int) *Error {
	return &Error{
		Code:    ErrCodeArgumentCount,
		Op:      op,
		Message: fmt.Sprintf("expected %d arguments, got %d", want, got),
	}
}

func newMinArgsError(op string, least, got int) *Error {
	return &Error{
		Code:    ErrCodeArgumentCount,
		Op:      op,
		Message: fmt.Sprintf("expected at least %d arguments, got %d", least, got),
	}
}

func newEncodeError(op string, position int, err error) *Error {
	return &Error{
		Code:    ErrCodeEncode,
		Op:      op,
		Message: fmt.Sprintf("value %d", position),
		Err:     err,
	}
}
