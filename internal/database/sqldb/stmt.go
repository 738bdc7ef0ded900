package sqldb

import (
	"context"
	"database/sql"

	"github.com/koustreak/rowcursor/internal/cursor"
	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/errs"
)

type stmt struct {
	database.Bindings

	c      *Conn
	query  string
	ps     *sql.Stmt
	cur    cursor.Cursor
	closed bool
}

var _ database.Statement = (*stmt)(nil)

func (s *stmt) SQL() string { return s.query }

// take closes the open cursor and consumes the current bindings.
func (s *stmt) take() ([]any, error) {
	defer s.Clear()
	if s.closed {
		return nil, errs.New(errs.ErrKindState, "statement is closed")
	}
	if s.c.closed {
		return nil, errs.New(errs.ErrKindState, "connection is closed")
	}
	if err := s.closeCursor(); err != nil {
		return nil, err
	}
	return s.Args()
}

func (s *stmt) exec(ctx context.Context) (sql.Result, error) {
	args, err := s.take()
	if err != nil {
		return nil, err
	}
	res, err := s.ps.ExecContext(ctx, args...)
	if err != nil {
		return nil, s.c.fail(s.c.mapError(err, "execute failed", errs.ErrKindQueryFailed), s.query)
	}
	return res, nil
}

func (s *stmt) Execute(ctx context.Context) error {
	_, err := s.exec(ctx)
	return err
}

func (s *stmt) ExecuteInsert(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.c.mapError(err, "last insert id unavailable", errs.ErrKindQueryFailed)
	}
	return id, nil
}

func (s *stmt) ExecuteUpdateDelete(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.c.mapError(err, "rows affected unavailable", errs.ErrKindQueryFailed)
	}
	return n, nil
}

func (s *stmt) Query(ctx context.Context) (cursor.Cursor, error) {
	args, err := s.take()
	if err != nil {
		return nil, err
	}
	rs, err := s.ps.QueryContext(ctx, args...)
	if err != nil {
		return nil, s.c.fail(s.c.mapError(err, "query failed", errs.ErrKindQueryFailed), s.query)
	}
	src, err := newRows(s.c, rs, s.query)
	if err != nil {
		_ = rs.Close()
		return nil, err
	}
	s.cur = cursor.New(src)
	return s.cur, nil
}

func (s *stmt) Reset() error {
	s.Clear()
	return s.closeCursor()
}

func (s *stmt) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.Clear()
	delete(s.c.stmts, s)

	cerr := s.closeCursor()
	if err := s.ps.Close(); err != nil {
		return s.c.mapError(err, "failed to finalize statement", errs.ErrKindQueryFailed)
	}
	return cerr
}

func (s *stmt) closeCursor() error {
	if s.cur == nil {
		return nil
	}
	cur := s.cur
	s.cur = nil
	return cur.Close()
}
