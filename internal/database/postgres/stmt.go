package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/rowcursor/internal/cursor"
	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/errs"
)

type stmt struct {
	database.Bindings

	c      *Conn
	query  string
	name   string
	desc   *pgconn.StatementDescription
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

func (s *stmt) exec(ctx context.Context) (pgconn.CommandTag, error) {
	args, err := s.take()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	tag, err := s.c.conn.Exec(ctx, s.name, args...)
	if err != nil {
		return pgconn.CommandTag{}, s.c.fail(mapError(err, "execute failed", errs.ErrKindQueryFailed), s.query)
	}
	return tag, nil
}

func (s *stmt) Execute(ctx context.Context) error {
	_, err := s.exec(ctx)
	return err
}

func (s *stmt) ExecuteUpdateDelete(ctx context.Context) (int64, error) {
	tag, err := s.exec(ctx)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ExecuteInsert returns the integer in the first RETURNING column.
// PostgreSQL has no implicit row id, so statements without RETURNING are
// rejected before they run.
func (s *stmt) ExecuteInsert(ctx context.Context) (int64, error) {
	args, err := s.take()
	if err != nil {
		return 0, err
	}
	if len(s.desc.Fields) == 0 {
		return 0, errs.New(errs.ErrKindInvalidInput, "insert id requires a RETURNING column")
	}

	rs, err := s.c.conn.Query(ctx, s.name, args...)
	if err != nil {
		return 0, s.c.fail(mapError(err, "execute failed", errs.ErrKindQueryFailed), s.query)
	}
	defer rs.Close()

	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return 0, s.c.fail(mapError(err, "execute failed", errs.ErrKindQueryFailed), s.query)
		}
		return 0, errs.New(errs.ErrKindNotFound, "insert returned no row")
	}
	vals, err := rs.Values()
	if err != nil {
		return 0, mapError(err, "failed to read returned id", errs.ErrKindDecode)
	}
	cell, err := decode(vals[0])
	if err != nil {
		return 0, err
	}
	if cell.Type != cursor.FieldInteger {
		return 0, errs.Newf(errs.ErrKindTypeMismatch, "returned id is %s, not INTEGER", cell.Type)
	}

	rs.Close()
	if err := rs.Err(); err != nil {
		return 0, s.c.fail(mapError(err, "execute failed", errs.ErrKindQueryFailed), s.query)
	}
	return cell.Value.(int64), nil
}

func (s *stmt) Query(ctx context.Context) (cursor.Cursor, error) {
	args, err := s.take()
	if err != nil {
		return nil, err
	}
	rs, err := s.c.conn.Query(ctx, s.name, args...)
	if err != nil {
		return nil, s.c.fail(mapError(err, "query failed", errs.ErrKindQueryFailed), s.query)
	}
	s.cur = cursor.New(newRows(s, rs))
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
	if s.c.conn.IsClosed() {
		return cerr
	}
	if err := s.c.conn.Deallocate(context.Background(), s.name); err != nil {
		return mapError(err, "failed to deallocate statement", errs.ErrKindQueryFailed)
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
