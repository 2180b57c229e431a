// Package apperrors defines the settlement engine's error taxonomy.
// Every failure surfaced to a caller carries a machine-readable code;
// handlers and the sync replayer map codes to transport semantics.
package apperrors

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeForbidden           Code = "FORBIDDEN"
	CodeAlreadyFinalized    Code = "ALREADY_FINALIZED"
	CodeInvalidRequest      Code = "INVALID_REQUEST"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeOverCollection      Code = "OVER_COLLECTION"
	CodeLedgerConflict      Code = "LEDGER_CONFLICT"
	CodeInvalidLedgerState  Code = "INVALID_LEDGER_STATE"
	CodeTransactionConflict Code = "TRANSACTION_CONFLICT"
	CodePersistenceFailure  Code = "PERSISTENCE_FAILURE"
)

// Error is a coded error. Wrap with %w so errors.Is/As keep working
// through service layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from any error in the chain.
// Unknown errors are treated as persistence failures: the transaction
// rolled back and nothing was partially applied.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodePersistenceFailure
}

// Retriable reports whether the caller may safely retry the same request.
func Retriable(err error) bool {
	return CodeOf(err) == CodeTransactionConflict
}
