// Package cursor implements forward-only typed row traversal.
//
// An engine adapter supplies a Source, the stepping primitive that fills one
// row of typed cells at a time. New wraps a Source into a Cursor with
// position checks, typed accessors and a cached column-name lookup. Row and
// Iterator turn cursor positions into owned snapshots.
//
// Usage:
//
//	c, err := stmt.Query(ctx)
//	if err != nil { ... }
//	defer c.Close()
//
//	for row, err := range cursor.All(c) {
//	    if err != nil { ... }
//	    fmt.Println(row.Values)
//	}
package cursor

import (
	"github.com/koustreak/rowcursor/internal/errs"
)

// Source is the engine stepping primitive behind a Cursor.
type Source interface {
	// Columns returns the declared column names in statement order.
	Columns() []string

	// Step fills dest with the next row. It returns false at the end of the
	// result set. len(dest) == len(Columns()).
	Step(dest []Cell) (bool, error)

	// Close releases the engine resources held by the result set.
	Close() error
}

// Cursor is a forward-only handle over a query's result rows.
// A Cursor is owned by a single goroutine.
type Cursor interface {
	// Next advances to the next row. It returns false once the rows are
	// exhausted, the cursor is closed, or stepping failed; that state is sticky.
	Next() bool

	// Err returns the error that ended iteration, if any.
	Err() error

	IsNull(index int) (bool, error)
	Int64(index int) (int64, error)
	Float64(index int) (float64, error)
	Text(index int) (string, error)
	Bytes(index int) ([]byte, error)

	// Type returns the storage class of the cell at the current row.
	Type(index int) (FieldType, error)

	// ColumnCount is fixed and valid before the first row.
	ColumnCount() int
	ColumnName(index int) (string, error)

	// ColumnNames maps each column name to its index. Built once; when names
	// repeat the first declared index wins.
	ColumnNames() map[string]int

	// Close releases the source. It is idempotent.
	Close() error
}

type position int

const (
	beforeFirst position = iota
	onRow
	exhausted
	closed
)

type cursor struct {
	src     Source
	columns []string
	row     []Cell
	pos     position
	err     error
	names   map[string]int
}

// New returns a Cursor positioned before the first row of src.
func New(src Source) Cursor {
	cols := src.Columns()
	return &cursor{
		src:     src,
		columns: cols,
		row:     make([]Cell, len(cols)),
	}
}

func (c *cursor) Next() bool {
	if c.pos == exhausted || c.pos == closed {
		return false
	}
	ok, err := c.src.Step(c.row)
	if err != nil {
		c.err = err
		c.pos = exhausted
		return false
	}
	if !ok {
		c.pos = exhausted
		return false
	}
	c.pos = onRow
	return true
}

func (c *cursor) Err() error { return c.err }

func (c *cursor) ColumnCount() int { return len(c.columns) }

func (c *cursor) ColumnName(index int) (string, error) {
	if err := c.checkIndex(index); err != nil {
		return "", err
	}
	return c.columns[index], nil
}

func (c *cursor) ColumnNames() map[string]int {
	if c.names == nil {
		names := make(map[string]int, len(c.columns))
		for i, name := range c.columns {
			if _, seen := names[name]; !seen {
				names[name] = i
			}
		}
		c.names = names
	}
	return c.names
}

func (c *cursor) Close() error {
	if c.pos == closed {
		return nil
	}
	c.pos = closed
	c.row = nil
	return c.src.Close()
}

func (c *cursor) checkIndex(index int) error {
	if index < 0 || index >= len(c.columns) {
		return errs.Newf(errs.ErrKindBounds, "column index %d out of range [0,%d)", index, len(c.columns))
	}
	return nil
}

// cell returns the validated cell at index for the current row.
func (c *cursor) cell(index int) (Cell, error) {
	if err := c.checkIndex(index); err != nil {
		return Cell{}, err
	}
	switch c.pos {
	case beforeFirst:
		return Cell{}, errs.New(errs.ErrKindState, "cursor is positioned before the first row")
	case exhausted:
		return Cell{}, errs.New(errs.ErrKindState, "cursor is exhausted")
	case closed:
		return Cell{}, errs.New(errs.ErrKindState, "cursor is closed")
	}
	cell := c.row[index]
	if err := cell.check(); err != nil {
		return Cell{}, err
	}
	return cell, nil
}

// typed returns the cell at index if its storage class is one of accept.
func (c *cursor) typed(index int, want string, accept ...FieldType) (Cell, error) {
	cell, err := c.cell(index)
	if err != nil {
		return Cell{}, err
	}
	if cell.Type == FieldNull {
		return Cell{}, errs.Newf(errs.ErrKindNullAccess, "column %d (%s) is NULL", index, c.columns[index])
	}
	for _, t := range accept {
		if cell.Type == t {
			return cell, nil
		}
	}
	return Cell{}, errs.Newf(errs.ErrKindTypeMismatch, "column %d (%s) is %s, not %s",
		index, c.columns[index], cell.Type, want)
}

func (c *cursor) IsNull(index int) (bool, error) {
	cell, err := c.cell(index)
	if err != nil {
		return false, err
	}
	return cell.Type == FieldNull, nil
}

func (c *cursor) Type(index int) (FieldType, error) {
	cell, err := c.cell(index)
	if err != nil {
		return 0, err
	}
	return cell.Type, nil
}

func (c *cursor) Int64(index int) (int64, error) {
	cell, err := c.typed(index, "int64", FieldInteger)
	if err != nil {
		return 0, err
	}
	return cell.Value.(int64), nil
}

// Float64 also accepts INTEGER cells.
func (c *cursor) Float64(index int) (float64, error) {
	cell, err := c.typed(index, "float64", FieldFloat, FieldInteger)
	if err != nil {
		return 0, err
	}
	if cell.Type == FieldInteger {
		return float64(cell.Value.(int64)), nil
	}
	return cell.Value.(float64), nil
}

func (c *cursor) Text(index int) (string, error) {
	cell, err := c.typed(index, "text", FieldText)
	if err != nil {
		return "", err
	}
	return cell.Value.(string), nil
}

// Bytes also accepts TEXT cells and returns their UTF-8 bytes. The slice is
// only valid until the next call to Next.
func (c *cursor) Bytes(index int) ([]byte, error) {
	cell, err := c.typed(index, "bytes", FieldBlob, FieldText)
	if err != nil {
		return nil, err
	}
	if cell.Type == FieldText {
		return []byte(cell.Value.(string)), nil
	}
	return cell.Value.([]byte), nil
}
