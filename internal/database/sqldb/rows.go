package sqldb

import (
	"bytes"
	"database/sql"
	"math"
	"time"

	"github.com/koustreak/rowcursor/internal/cursor"
	"github.com/koustreak/rowcursor/internal/errs"
)

// rows adapts *sql.Rows to cursor.Source.
type rows struct {
	c     *Conn
	rs    *sql.Rows
	query string
	names []string
	vals  []any
	ptrs  []any

	// textual is resolved on the first []byte value; some drivers only
	// report column types while the result set is open.
	textual []bool
}

func newRows(c *Conn, rs *sql.Rows, query string) (*rows, error) {
	names, err := rs.Columns()
	if err != nil {
		return nil, c.mapError(err, "failed to read column names", errs.ErrKindQueryFailed)
	}
	r := &rows{c: c, rs: rs, query: query, names: names, vals: make([]any, len(names)), ptrs: make([]any, len(names))}
	for i := range r.vals {
		r.ptrs[i] = &r.vals[i]
	}
	return r, nil
}

func (r *rows) Columns() []string { return r.names }

func (r *rows) Step(dest []cursor.Cell) (bool, error) {
	if !r.rs.Next() {
		if err := r.rs.Err(); err != nil {
			return false, r.c.fail(r.c.mapError(err, "step failed", errs.ErrKindQueryFailed), r.query)
		}
		return false, nil
	}
	if err := r.rs.Scan(r.ptrs...); err != nil {
		return false, r.c.mapError(err, "failed to scan row", errs.ErrKindDecode)
	}
	for i, v := range r.vals {
		cell, err := r.decode(i, v)
		if err != nil {
			return false, err
		}
		dest[i] = cell
	}
	return true, nil
}

func (r *rows) Close() error {
	if err := r.rs.Close(); err != nil {
		return r.c.mapError(err, "failed to close rows", errs.ErrKindQueryFailed)
	}
	return nil
}

func (r *rows) decode(i int, v any) (cursor.Cell, error) {
	if b, ok := v.([]byte); ok && r.isText(i) {
		v = string(b)
	}
	code, payload, ok := classify(v)
	if !ok {
		return cursor.Cell{}, errs.Newf(errs.ErrKindDecode, "column %q: unsupported value type %T", r.names[i], v)
	}
	return cursor.Decode(code, payload)
}

func (r *rows) isText(i int) bool {
	if r.textual == nil {
		r.textual = make([]bool, len(r.names))
		if types, err := r.rs.ColumnTypes(); err == nil {
			for j, ct := range types {
				r.textual[j] = r.c.dialect.TextType(ct.DatabaseTypeName())
			}
		}
	}
	return r.textual[i]
}

// classify maps a database/sql driver value onto a storage class code and
// the payload that class carries.
func classify(v any) (int, any, bool) {
	switch x := v.(type) {
	case nil:
		return cursor.FieldNull.Code(), nil, true
	case int64:
		return cursor.FieldInteger.Code(), x, true
	case int:
		return cursor.FieldInteger.Code(), int64(x), true
	case int32:
		return cursor.FieldInteger.Code(), int64(x), true
	case int16:
		return cursor.FieldInteger.Code(), int64(x), true
	case int8:
		return cursor.FieldInteger.Code(), int64(x), true
	case uint32:
		return cursor.FieldInteger.Code(), int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, nil, false
		}
		return cursor.FieldInteger.Code(), int64(x), true
	case bool:
		if x {
			return cursor.FieldInteger.Code(), int64(1), true
		}
		return cursor.FieldInteger.Code(), int64(0), true
	case float64:
		return cursor.FieldFloat.Code(), x, true
	case float32:
		return cursor.FieldFloat.Code(), float64(x), true
	case string:
		return cursor.FieldText.Code(), x, true
	case time.Time:
		return cursor.FieldText.Code(), x.Format(time.RFC3339Nano), true
	case []byte:
		return cursor.FieldBlob.Code(), bytes.Clone(x), true
	default:
		return 0, nil, false
	}
}
