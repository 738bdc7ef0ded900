package mysql

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/koustreak/rowcursor/internal/errs"
)

// MySQL error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDBAccessDenied   = 1044
	errAccessDenied     = 1045
	errTooManyConns     = 1040
	errBadNull          = 1048
	errUnknownDatabase  = 1049
	errDuplicateEntry   = 1062
	errParse            = 1064
	errTableAccess      = 1142
	errSyntax           = 1149
	errLockWaitTimeout  = 1205
	errNoDefault        = 1364
	errRowIsReferenced  = 1451
	errNoReferencedRow  = 1452
	errCheckConstraint  = 3819
	errConnRefused      = 2003
	errQueryInterrupted = 1317
)

// mapError translates go-sql-driver/mysql errors into *errs.Error.
func mapError(err error, msg string) error {
	if errors.Is(err, mysql.ErrInvalidConn) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(
			classifyMySQLCode(mysqlErr.Number),
			fmt.Sprintf("%s: %s", msg, mysqlErr.Message),
			err,
		)
	}
	return nil
}

// classifyMySQLCode maps MySQL error numbers to ErrKind.
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case errBadNull, errDuplicateEntry, errNoDefault, errRowIsReferenced, errNoReferencedRow, errCheckConstraint:
		return errs.ErrKindConstraint
	case errParse, errSyntax:
		return errs.ErrKindFormat
	case errDBAccessDenied, errAccessDenied, errTableAccess:
		return errs.ErrKindPermissionDenied
	case errTooManyConns, errUnknownDatabase, errConnRefused:
		return errs.ErrKindConnectionFailed
	case errLockWaitTimeout, errQueryInterrupted:
		return errs.ErrKindTimeout
	default:
		return errs.ErrKindQueryFailed
	}
}
