package cursor

import (
	"errors"

	"github.com/koustreak/rowcursor/internal/errs"
)

// orNull checks IsNull once and delegates to read only for non-NULL cells.
func orNull[T any](c Cursor, index int, read func(int) (T, error)) (*T, error) {
	null, err := c.IsNull(index)
	if err != nil || null {
		return nil, err
	}
	v, err := read(index)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Int64OrNull returns nil for a NULL cell.
func Int64OrNull(c Cursor, index int) (*int64, error) {
	return orNull(c, index, c.Int64)
}

// Float64OrNull returns nil for a NULL cell.
func Float64OrNull(c Cursor, index int) (*float64, error) {
	return orNull(c, index, c.Float64)
}

// TextOrNull returns nil for a NULL cell.
func TextOrNull(c Cursor, index int) (*string, error) {
	return orNull(c, index, c.Text)
}

// BytesOrNull returns a nil slice for a NULL cell.
func BytesOrNull(c Cursor, index int) ([]byte, error) {
	null, err := c.IsNull(index)
	if err != nil || null {
		return nil, err
	}
	return c.Bytes(index)
}

// ScalarInt64 reads column 0 of the first row and closes c on every path.
// It is meant for single-value queries such as SELECT COUNT(*).
func ScalarInt64(c Cursor) (v int64, err error) {
	defer func() {
		if cerr := c.Close(); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				err = errors.Join(err, cerr)
			}
		}
	}()

	if !c.Next() {
		if stepErr := c.Err(); stepErr != nil {
			return 0, stepErr
		}
		return 0, errs.New(errs.ErrKindNotFound, "scalar query returned no rows")
	}
	return c.Int64(0)
}
