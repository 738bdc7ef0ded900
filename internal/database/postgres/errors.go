package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/errs"
)

// PostgreSQL SQLSTATE error codes
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrSyntaxError           = "42601"
	pgErrInsufficientPrivilege = "42501"
	pgErrDatatypeMismatch      = "42804"
	pgErrInvalidTextRepr       = "22P02"
	pgErrNumericOutOfRange     = "22003"
	pgErrQueryCanceled         = "57014"
	pgErrLockNotAvailable      = "55P03"

	pgClassConstraint = "23"
	pgClassConnection = "08"
	pgClassAuth       = "28"
)

// mapError translates pgx / pgconn native errors into *errs.Error. fallback
// is used for errors that carry no better classification.
func mapError(err error, msg string, fallback errs.ErrKind) error {
	if err == nil {
		return nil
	}
	if e, ok := database.Passthrough(err); ok {
		return e
	}
	if e, ok := database.ContextErr(err, msg); ok {
		return e
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// Postgres server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(
			classifySQLState(pgErr.Code),
			fmt.Sprintf("%s: %s", msg, pgErr.Message),
			err,
		)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}
	if pgconn.Timeout(err) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	return errs.Wrap(fallback, msg, err)
}

func classifySQLState(code string) errs.ErrKind {
	switch code {
	case pgErrSyntaxError:
		return errs.ErrKindFormat
	case pgErrInsufficientPrivilege:
		return errs.ErrKindPermissionDenied
	case pgErrDatatypeMismatch, pgErrInvalidTextRepr:
		return errs.ErrKindTypeMismatch
	case pgErrNumericOutOfRange:
		return errs.ErrKindBounds
	case pgErrQueryCanceled, pgErrLockNotAvailable:
		return errs.ErrKindTimeout
	}

	if len(code) < 2 {
		return errs.ErrKindQueryFailed
	}
	switch code[:2] {
	case pgClassConstraint:
		return errs.ErrKindConstraint
	case pgClassConnection, pgClassAuth:
		return errs.ErrKindConnectionFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
