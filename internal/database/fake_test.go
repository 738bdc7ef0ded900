package database_test

import (
	"context"

	"github.com/koustreak/rowcursor/internal/cursor"
	"github.com/koustreak/rowcursor/internal/cursor/cursortest"
	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/errs"
)

// fakeConn records calls made through the scoped helpers.
type fakeConn struct {
	inTx      bool
	begins    int
	commits   int
	rollbacks int
	closes    int
	commitErr error
	createErr error
	stmts     []*fakeStmt
	source    *cursortest.Source
}

func (c *fakeConn) CreateStatement(_ context.Context, query string) (database.Statement, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	s := &fakeStmt{Bindings: database.NewBindings(database.CountParams(query)), sql: query, source: c.source}
	c.stmts = append(c.stmts, s)
	return s, nil
}

func (c *fakeConn) Exec(context.Context, string) error { return nil }

func (c *fakeConn) Begin(context.Context) error {
	if c.inTx {
		return errs.New(errs.ErrKindState, "already in a transaction")
	}
	c.inTx = true
	c.begins++
	return nil
}

func (c *fakeConn) Commit(context.Context) error {
	if c.commitErr != nil {
		return c.commitErr
	}
	c.inTx = false
	c.commits++
	return nil
}

func (c *fakeConn) Rollback(context.Context) error {
	c.inTx = false
	c.rollbacks++
	return nil
}

func (c *fakeConn) InTransaction() bool { return c.inTx }

func (c *fakeConn) Close() error {
	c.closes++
	return nil
}

type fakeStmt struct {
	database.Bindings
	sql    string
	source *cursortest.Source
	args   []any
	closed int
}

func (s *fakeStmt) SQL() string { return s.sql }

func (s *fakeStmt) run() error {
	defer s.Clear()
	args, err := s.Args()
	if err != nil {
		return err
	}
	s.args = args
	return nil
}

func (s *fakeStmt) Execute(context.Context) error { return s.run() }

func (s *fakeStmt) ExecuteInsert(context.Context) (int64, error) { return 1, s.run() }

func (s *fakeStmt) ExecuteUpdateDelete(context.Context) (int64, error) { return 0, s.run() }

func (s *fakeStmt) Query(context.Context) (cursor.Cursor, error) {
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.source.Cursor(), nil
}

func (s *fakeStmt) Reset() error {
	s.Clear()
	return nil
}

func (s *fakeStmt) Close() error {
	s.closed++
	return nil
}
