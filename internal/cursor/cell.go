package cursor

import (
	"fmt"

	"github.com/koustreak/rowcursor/internal/errs"
)

// Cell is one typed value: the storage class plus its payload.
// Value is nil for FieldNull, otherwise int64, float64, string or []byte.
type Cell struct {
	Type  FieldType
	Value any
}

func Int64Cell(v int64) Cell     { return Cell{Type: FieldInteger, Value: v} }
func Float64Cell(v float64) Cell { return Cell{Type: FieldFloat, Value: v} }
func TextCell(v string) Cell     { return Cell{Type: FieldText, Value: v} }
func NullCell() Cell             { return Cell{Type: FieldNull} }

// BlobCell returns a BLOB cell, or a NULL cell for a nil slice.
func BlobCell(v []byte) Cell {
	if v == nil {
		return NullCell()
	}
	return Cell{Type: FieldBlob, Value: v}
}

// Decode builds a Cell from an engine type code and its payload. The payload
// must have the Go type that belongs to the decoded storage class.
func Decode(code int, payload any) (Cell, error) {
	t, err := ForCode(code)
	if err != nil {
		return Cell{}, err
	}
	c := Cell{Type: t, Value: payload}
	if err := c.check(); err != nil {
		return Cell{}, err
	}
	return c, nil
}

// check verifies that Value carries the Go type its storage class requires.
func (c Cell) check() error {
	ok := false
	switch c.Type {
	case FieldInteger:
		_, ok = c.Value.(int64)
	case FieldFloat:
		_, ok = c.Value.(float64)
	case FieldText:
		_, ok = c.Value.(string)
	case FieldBlob:
		_, ok = c.Value.([]byte)
	case FieldNull:
		ok = c.Value == nil
	default:
		return errs.Newf(errs.ErrKindDecode, "unknown storage class code %d", int(c.Type))
	}
	if !ok {
		return errs.Newf(errs.ErrKindDecode, "%s cell carries a %T payload", c.Type, c.Value)
	}
	return nil
}

func (c Cell) String() string {
	switch c.Type {
	case FieldNull:
		return "NULL"
	case FieldBlob:
		b, _ := c.Value.([]byte)
		return fmt.Sprintf("x'%x'", b)
	default:
		return fmt.Sprint(c.Value)
	}
}
