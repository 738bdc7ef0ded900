package postgres

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/koustreak/rowcursor/internal/cursor"
	"github.com/koustreak/rowcursor/internal/errs"
)

// rows adapts pgx.Rows to cursor.Source.
type rows struct {
	s     *stmt
	rs    pgx.Rows
	names []string
}

func newRows(s *stmt, rs pgx.Rows) *rows {
	names := make([]string, len(s.desc.Fields))
	for i, f := range s.desc.Fields {
		names[i] = f.Name
	}
	return &rows{s: s, rs: rs, names: names}
}

func (r *rows) Columns() []string { return r.names }

func (r *rows) Step(dest []cursor.Cell) (bool, error) {
	if !r.rs.Next() {
		if err := r.rs.Err(); err != nil {
			return false, r.s.c.fail(mapError(err, "step failed", errs.ErrKindQueryFailed), r.s.query)
		}
		return false, nil
	}
	vals, err := r.rs.Values()
	if err != nil {
		return false, mapError(err, "failed to read row", errs.ErrKindDecode)
	}
	for i, v := range vals {
		cell, err := decode(v)
		if err != nil {
			return false, errs.Wrap(errs.ErrKindDecode, "column "+r.names[i], err)
		}
		dest[i] = cell
	}
	return true, nil
}

func (r *rows) Close() error {
	r.rs.Close()
	return nil
}

// decode maps a pgx value onto a typed cell.
func decode(v any) (cursor.Cell, error) {
	switch x := v.(type) {
	case nil:
		return cursor.NullCell(), nil
	case int16:
		return cursor.Int64Cell(int64(x)), nil
	case int32:
		return cursor.Int64Cell(int64(x)), nil
	case int64:
		return cursor.Int64Cell(x), nil
	case bool:
		if x {
			return cursor.Int64Cell(1), nil
		}
		return cursor.Int64Cell(0), nil
	case float32:
		return cursor.Float64Cell(float64(x)), nil
	case float64:
		return cursor.Float64Cell(x), nil
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil {
			return cursor.Cell{}, errs.Wrap(errs.ErrKindDecode, "numeric out of float range", err)
		}
		if !f.Valid {
			return cursor.NullCell(), nil
		}
		return cursor.Float64Cell(f.Float64), nil
	case string:
		return cursor.TextCell(x), nil
	case time.Time:
		return cursor.TextCell(x.Format(time.RFC3339Nano)), nil
	case [16]byte:
		return cursor.TextCell(uuid.UUID(x).String()), nil
	case []byte:
		return cursor.BlobCell(bytes.Clone(x)), nil
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return cursor.Cell{}, errs.Wrap(errs.ErrKindDecode, "failed to encode composite value", err)
		}
		return cursor.TextCell(string(b)), nil
	default:
		return cursor.Cell{}, errs.Newf(errs.ErrKindDecode, "unsupported value type %T", v)
	}
}
