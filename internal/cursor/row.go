package cursor

import (
	"bytes"
	"iter"

	"github.com/koustreak/rowcursor/internal/errs"
)

// Row is an owned snapshot of one result row. It stays valid after the
// cursor that produced it moves on or closes.
type Row struct {
	Values []Cell
}

// Len returns the number of cells.
func (r *Row) Len() int { return len(r.Values) }

// IsNull reports whether cell i is NULL. It panics if i is out of range.
func (r *Row) IsNull(i int) bool { return r.Values[i].Type == FieldNull }

// Get returns the payload of cell i, nil for NULL.
func (r *Row) Get(i int) any { return r.Values[i].Value }

// ReadRow materialises the cursor's current row, one typed read per column
// in column order.
func ReadRow(c Cursor) (*Row, error) {
	n := c.ColumnCount()
	row := &Row{Values: make([]Cell, 0, n)}

	for i := 0; i < n; i++ {
		t, err := c.Type(i)
		if err != nil {
			return nil, err
		}

		var v any
		switch t {
		case FieldBlob:
			b, rerr := c.Bytes(i)
			v, err = bytes.Clone(b), rerr
		case FieldFloat:
			v, err = c.Float64(i)
		case FieldInteger:
			v, err = c.Int64(i)
		case FieldNull:
			v = nil
		case FieldText:
			v, err = c.Text(i)
		default:
			err = errs.Newf(errs.ErrKindDecode, "unknown storage class code %d", int(t))
		}
		if err != nil {
			return nil, err
		}

		row.Values = append(row.Values, Cell{Type: t, Value: v})
	}
	return row, nil
}

// Iterator drives a Cursor one row ahead so that HasNext can answer without
// reading. NewIterator advances the cursor once; each Next materialises the
// current row and then advances again.
type Iterator struct {
	cur     Cursor
	hasNext bool
	err     error
}

// NewIterator wraps c and primes it with one call to c.Next.
func NewIterator(c Cursor) *Iterator {
	return &Iterator{cur: c, hasNext: c.Next()}
}

// HasNext reports whether Next will return a row.
func (it *Iterator) HasNext() bool { return it.hasNext }

// Next returns the current row and advances the cursor.
func (it *Iterator) Next() (*Row, error) {
	if !it.hasNext {
		return nil, errs.New(errs.ErrKindState, "iterator has no more rows")
	}
	row, err := ReadRow(it.cur)
	if err != nil {
		it.hasNext = false
		it.err = err
		return nil, err
	}
	it.hasNext = it.cur.Next()
	return row, nil
}

// Err returns the error that stopped iteration, if any.
func (it *Iterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.cur.Err()
}

// All ranges over the remaining rows of c. When iteration fails the last
// pair is (nil, err). All does not close c.
func All(c Cursor) iter.Seq2[*Row, error] {
	return func(yield func(*Row, error) bool) {
		it := NewIterator(c)
		for it.HasNext() {
			row, err := it.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
		if err := it.cur.Err(); err != nil {
			yield(nil, err)
		}
	}
}
