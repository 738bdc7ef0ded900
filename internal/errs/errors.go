// Package errs provides the unified error type used across rowcursor.
//
// Cursors, statements and every engine adapter (sqlite, mysql, postgres)
// return *errs.Error. Native driver errors are translated into one of the
// kinds below so callers can branch without importing driver packages.
//
// Usage:
//
//	// In an adapter, wrap the native error:
//	return errs.Wrap(errs.ErrKindConstraint, "insert rejected", sqliteErr)
//
//	// In a caller, check the kind:
//	if errs.IsConstraint(err) {
//	    // report the rejected row
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing engine-specific codes.
type ErrKind int

const (
	ErrKindUnknown           ErrKind = iota
	ErrKindNotFound                  // scalar read over an empty result
	ErrKindConnectionFailed          // cannot open or reach the engine
	ErrKindTimeout                   // context deadline / cancellation, busy engine
	ErrKindQueryFailed               // engine execution error
	ErrKindInvalidInput              // bad arguments or configuration
	ErrKindPermissionDenied          // access denied / read-only database
	ErrKindDecode                    // unrecognised storage class code
	ErrKindBounds                    // column or parameter index out of range
	ErrKindNullAccess                // typed accessor on a NULL cell
	ErrKindState                     // operation invalid in the current lifecycle state
	ErrKindConstraint                // engine rejected a write
	ErrKindFormat                    // malformed statement text
	ErrKindBindingIncomplete         // executed with unbound parameters
	ErrKindTypeMismatch              // typed accessor on an incompatible cell
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindDecode:
		return "decode"
	case ErrKindBounds:
		return "bounds"
	case ErrKindNullAccess:
		return "null_access"
	case ErrKindState:
		return "state"
	case ErrKindConstraint:
		return "constraint"
	case ErrKindFormat:
		return "format"
	case ErrKindBindingIncomplete:
		return "binding_incomplete"
	case ErrKindTypeMismatch:
		return "type_mismatch"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by every rowcursor package.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original engine error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a formatted message.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind ErrKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsNotFound reports whether err represents an empty scalar result.
func IsNotFound(err error) bool { return Is(err, ErrKindNotFound) }

// IsTimeout reports whether err was caused by a deadline, cancellation or a busy engine.
func IsTimeout(err error) bool { return Is(err, ErrKindTimeout) }

// IsConnectionFailed reports whether err is a connectivity or open failure.
func IsConnectionFailed(err error) bool { return Is(err, ErrKindConnectionFailed) }

// IsQueryFailed reports whether err is an engine execution failure.
func IsQueryFailed(err error) bool { return Is(err, ErrKindQueryFailed) }

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool { return Is(err, ErrKindInvalidInput) }

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool { return Is(err, ErrKindPermissionDenied) }

// IsDecode reports whether err is an unrecognised storage class.
func IsDecode(err error) bool { return Is(err, ErrKindDecode) }

// IsBounds reports whether err is an out-of-range column or parameter index.
func IsBounds(err error) bool { return Is(err, ErrKindBounds) }

// IsNullAccess reports whether err is a typed read of a NULL cell.
func IsNullAccess(err error) bool { return Is(err, ErrKindNullAccess) }

// IsState reports whether err is a lifecycle violation.
func IsState(err error) bool { return Is(err, ErrKindState) }

// IsConstraint reports whether the engine rejected a write.
func IsConstraint(err error) bool { return Is(err, ErrKindConstraint) }

// IsFormat reports whether err is malformed statement text.
func IsFormat(err error) bool { return Is(err, ErrKindFormat) }

// IsBindingIncomplete reports whether a statement ran with unbound parameters.
func IsBindingIncomplete(err error) bool { return Is(err, ErrKindBindingIncomplete) }

// IsTypeMismatch reports whether a typed accessor hit an incompatible cell.
func IsTypeMismatch(err error) bool { return Is(err, ErrKindTypeMismatch) }
