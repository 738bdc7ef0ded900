package database

import (
	"context"
	"errors"

	"github.com/koustreak/rowcursor/internal/cursor"
)

// QueryRows prepares query, binds args in order, and materialises every row.
// The statement and its cursor are always closed.
// The returned slice is always non-nil (empty slice on zero rows).
func QueryRows(ctx context.Context, conn Connection, query string, args ...any) ([]string, []*cursor.Row, error) {
	var (
		names []string
		rows  = make([]*cursor.Row, 0)
	)
	err := WithStatement(ctx, conn, query, func(stmt Statement) error {
		if err := BindAll(stmt, args...); err != nil {
			return err
		}
		cur, err := stmt.Query(ctx)
		if err != nil {
			return err
		}
		defer cur.Close()

		names = columnNames(cur)
		it := cursor.NewIterator(cur)
		for it.HasNext() {
			row, err := it.Next()
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return it.Err()
	})
	if err != nil {
		return nil, nil, err
	}
	return names, rows, nil
}

// LongForQuery runs query with args and returns the integer in the first
// column of the first row.
func LongForQuery(ctx context.Context, conn Connection, query string, args ...any) (int64, error) {
	var v int64
	err := WithStatement(ctx, conn, query, func(stmt Statement) error {
		if err := BindAll(stmt, args...); err != nil {
			return err
		}
		cur, err := stmt.Query(ctx)
		if err != nil {
			return err
		}
		v, err = cursor.ScalarInt64(cur)
		return err
	})
	return v, err
}

func columnNames(cur cursor.Cursor) []string {
	names := make([]string, cur.ColumnCount())
	for i := range names {
		// in range by construction
		names[i], _ = cur.ColumnName(i)
	}
	return names
}

// closeJoin runs closeFn and joins its error onto err.
func closeJoin(err error, closeFn func() error) error {
	if cerr := closeFn(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}
