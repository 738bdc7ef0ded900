// Package database defines the statement and connection contracts the
// engine adapters implement, plus helpers shared by all of them.
//
// Callers depend on this package only; the sqlite, mysql and postgres
// packages are chosen once at open time (see package connect).
//
// Usage:
//
//	err := database.WithStatement(ctx, conn, "INSERT INTO test(num, str) VALUES (?, ?)",
//	    func(stmt database.Statement) error {
//	        if err := stmt.BindInt64(1, 21); err != nil {
//	            return err
//	        }
//	        if err := stmt.BindText(2, "asdf"); err != nil {
//	            return err
//	        }
//	        _, err := stmt.ExecuteInsert(ctx)
//	        return err
//	    })
package database

import (
	"context"

	"github.com/koustreak/rowcursor/internal/cursor"
)

// Statement is a prepared, parameterised SQL command.
//
// Parameters are 1-based. Every Execute*/Query call consumes the current
// bindings: afterwards all slots are unbound again, as after Reset, and the
// next execution needs a full set of binds.
type Statement interface {
	// SQL returns the statement text.
	SQL() string

	// ParameterCount returns the number of bind slots.
	ParameterCount() int

	BindInt64(index int, v int64) error
	BindFloat64(index int, v float64) error
	BindText(index int, v string) error
	// BindTextOrNull binds NULL for a nil pointer.
	BindTextOrNull(index int, v *string) error
	// BindBlob binds NULL for a nil slice.
	BindBlob(index int, v []byte) error
	BindNull(index int) error

	// Execute runs a statement that returns no rows.
	Execute(ctx context.Context) error

	// ExecuteInsert runs an insert and returns the new row's identifier.
	ExecuteInsert(ctx context.Context) (int64, error)

	// ExecuteUpdateDelete runs an update or delete and returns the number of
	// affected rows.
	ExecuteUpdateDelete(ctx context.Context) (int64, error)

	// Query runs the statement and returns a cursor over its rows. The cursor
	// is closed by the next execution, Reset or Close of the statement.
	Query(ctx context.Context) (cursor.Cursor, error)

	// Reset closes the open cursor, if any, and clears all bindings.
	Reset() error

	// Close finalizes the statement. It is idempotent.
	Close() error
}

// Connection owns exactly one engine connection.
// It is not safe for concurrent use.
type Connection interface {
	// CreateStatement prepares query. Malformed SQL fails with ErrKindFormat.
	CreateStatement(ctx context.Context, query string) (Statement, error)

	// Exec runs an unparameterised script such as DDL.
	Exec(ctx context.Context, query string) error

	// Begin starts a transaction. Nested transactions fail with ErrKindState.
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	InTransaction() bool

	// Close rolls back an open transaction and releases the connection.
	// It is idempotent.
	Close() error
}
