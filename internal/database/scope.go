package database

import (
	"context"
	"errors"
)

// WithStatement prepares query, hands it to fn and always closes it.
func WithStatement(ctx context.Context, conn Connection, query string, fn func(Statement) error) (err error) {
	stmt, err := conn.CreateStatement(ctx, query)
	if err != nil {
		return err
	}
	defer func() { err = closeJoin(err, stmt.Close) }()
	return fn(stmt)
}

// WithTransaction runs fn inside a transaction. It commits when fn returns
// nil and rolls back otherwise, including when fn panics; the panic is
// re-raised after the rollback.
func WithTransaction(ctx context.Context, conn Connection, fn func() error) (err error) {
	if err := conn.Begin(ctx); err != nil {
		return err
	}
	committed := false
	defer func() {
		if committed || !conn.InTransaction() {
			return
		}
		if rerr := conn.Rollback(ctx); rerr != nil && err != nil {
			err = errors.Join(err, rerr)
		}
	}()

	if err := fn(); err != nil {
		return err
	}
	if err := conn.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

// WithConnection opens a connection, runs fn and closes it.
func WithConnection(open func() (Connection, error), fn func(Connection) error) (err error) {
	conn, err := open()
	if err != nil {
		return err
	}
	defer func() { err = closeJoin(err, conn.Close) }()
	return fn(conn)
}
