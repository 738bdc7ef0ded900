package database

import (
	"context"
	"errors"

	"github.com/koustreak/rowcursor/internal/errs"
)

// ContextErr maps a cancelled or expired context to ErrKindTimeout.
// The bool is false when err is not a context error.
func ContextErr(err error, msg string) (*errs.Error, bool) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err), true
	}
	return nil, false
}

// Passthrough returns err unchanged when it already carries a kind.
func Passthrough(err error) (*errs.Error, bool) {
	var e *errs.Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// AsFormat reclassifies a generic query failure raised while compiling a
// statement as malformed SQL.
func AsFormat(err error) error {
	var e *errs.Error
	if errors.As(err, &e) && e.Kind == errs.ErrKindQueryFailed {
		return errs.Wrap(errs.ErrKindFormat, e.Message, e.Cause)
	}
	return err
}
