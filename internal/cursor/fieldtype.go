package cursor

import (
	"fmt"

	"github.com/koustreak/rowcursor/internal/errs"
)

// FieldType is the dynamic storage class of a single cell. The numeric
// values are the engine wire codes and match sqlite3_column_type.
type FieldType int

const (
	FieldInteger FieldType = 1
	FieldFloat   FieldType = 2
	FieldText    FieldType = 3
	FieldBlob    FieldType = 4
	FieldNull    FieldType = 5
)

var fieldNames = map[FieldType]string{
	FieldInteger: "INTEGER",
	FieldFloat:   "FLOAT",
	FieldText:    "TEXT",
	FieldBlob:    "BLOB",
	FieldNull:    "NULL",
}

// ForCode decodes an engine type code. Unknown codes are a decode error.
func ForCode(code int) (FieldType, error) {
	t := FieldType(code)
	if _, ok := fieldNames[t]; !ok {
		return 0, errs.Newf(errs.ErrKindDecode, "unknown storage class code %d", code)
	}
	return t, nil
}

// Code returns the wire code of t.
func (t FieldType) Code() int { return int(t) }

func (t FieldType) String() string {
	if name, ok := fieldNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}
