package sqlite

import (
	"errors"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/koustreak/rowcursor/internal/errs"
)

// mapError translates *sqlite.Error result codes into *errs.Error.
// Extended codes are folded onto their primary code.
func mapError(err error, msg string) error {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return nil
	}
	return errs.Wrap(classifyCode(se.Code()), msg, err)
}

func classifyCode(code int) errs.ErrKind {
	switch code & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return errs.ErrKindConstraint
	case sqlite3.SQLITE_RANGE:
		return errs.ErrKindBounds
	case sqlite3.SQLITE_MISMATCH:
		return errs.ErrKindTypeMismatch
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_INTERRUPT:
		return errs.ErrKindTimeout
	case sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH, sqlite3.SQLITE_READONLY:
		return errs.ErrKindPermissionDenied
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
		return errs.ErrKindConnectionFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
