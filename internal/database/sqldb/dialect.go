// Package sqldb implements database.Connection over a single database/sql
// connection. Engine packages supply a Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"strings"
)

// Dialect adapts a database/sql driver to the Connection contract.
type Dialect interface {
	// DriverName is the name the driver registered with database/sql.
	DriverName() string

	// GooseDialect names the goose dialect used for migrations.
	GooseDialect() string

	// Validate rejects malformed SQL before it is prepared. params is the
	// number of bind slots in query.
	Validate(ctx context.Context, conn *sql.Conn, query string, params int) error

	// MapError translates a native driver error into an *errs.Error. It
	// returns nil for errors it does not recognise.
	MapError(err error, msg string) error

	// TextType reports whether a column of the given database type holds
	// text. []byte values of such columns decode as TEXT, not BLOB.
	TextType(dbType string) bool
}

// Rewriter is implemented by dialects that prepare a different text than
// the one the caller wrote. Statement.SQL still reports the caller's query
// and params is unchanged.
type Rewriter interface {
	Rewrite(ctx context.Context, conn *sql.Conn, query string, params int) (string, error)
}

var textTypes = []string{"CHAR", "TEXT", "CLOB", "JSON", "ENUM", "SET", "DATE", "TIME", "DECIMAL", "NUMERIC"}

// TextualType is the TextType rule shared by the stock dialects: the
// declared type mentions a character, temporal or exact-numeric type.
func TextualType(dbType string) bool {
	up := strings.ToUpper(dbType)
	for _, t := range textTypes {
		if strings.Contains(up, t) {
			return true
		}
	}
	return false
}
