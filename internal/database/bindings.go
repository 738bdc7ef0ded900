package database

import (
	"bytes"

	"github.com/koustreak/rowcursor/internal/errs"
)

// Bindings holds the 1-based parameter slots of a statement. Engine
// statements embed it to get the Bind* methods of Statement.
type Bindings struct {
	values []any
	bound  []bool
}

// NewBindings returns n unbound slots.
func NewBindings(n int) Bindings {
	return Bindings{values: make([]any, n), bound: make([]bool, n)}
}

// Len returns the number of slots.
func (b *Bindings) Len() int { return len(b.values) }

// ParameterCount is Len under the Statement method name.
func (b *Bindings) ParameterCount() int { return b.Len() }

// Set stores v in slot index. Out-of-range indexes leave every slot untouched.
func (b *Bindings) Set(index int, v any) error {
	if index < 1 || index > len(b.values) {
		return errs.Newf(errs.ErrKindBounds, "parameter index %d out of range [1,%d]", index, len(b.values))
	}
	b.values[index-1] = v
	b.bound[index-1] = true
	return nil
}

// Bound reports whether slot index holds a value.
func (b *Bindings) Bound(index int) bool {
	return index >= 1 && index <= len(b.bound) && b.bound[index-1]
}

func (b *Bindings) BindInt64(index int, v int64) error     { return b.Set(index, v) }
func (b *Bindings) BindFloat64(index int, v float64) error { return b.Set(index, v) }
func (b *Bindings) BindText(index int, v string) error     { return b.Set(index, v) }
func (b *Bindings) BindNull(index int) error               { return b.Set(index, nil) }

func (b *Bindings) BindTextOrNull(index int, v *string) error {
	if v == nil {
		return b.Set(index, nil)
	}
	return b.Set(index, *v)
}

// BindBlob copies v; a nil slice binds NULL.
func (b *Bindings) BindBlob(index int, v []byte) error {
	if v == nil {
		return b.Set(index, nil)
	}
	return b.Set(index, bytes.Clone(v))
}

// Args returns the bound values in slot order, or ErrKindBindingIncomplete
// naming the first unbound slot.
func (b *Bindings) Args() ([]any, error) {
	for i, ok := range b.bound {
		if !ok {
			return nil, errs.Newf(errs.ErrKindBindingIncomplete, "parameter %d of %d is not bound", i+1, len(b.bound))
		}
	}
	args := make([]any, len(b.values))
	copy(args, b.values)
	return args, nil
}

// Clear unbinds every slot.
func (b *Bindings) Clear() {
	clear(b.values)
	clear(b.bound)
}

// Bind dispatches v to the typed Bind* method of stmt that matches its Go
// type. Unsupported types fail with ErrKindInvalidInput.
func Bind(stmt Statement, index int, v any) error {
	switch x := v.(type) {
	case nil:
		return stmt.BindNull(index)
	case int:
		return stmt.BindInt64(index, int64(x))
	case int32:
		return stmt.BindInt64(index, int64(x))
	case int64:
		return stmt.BindInt64(index, x)
	case bool:
		if x {
			return stmt.BindInt64(index, 1)
		}
		return stmt.BindInt64(index, 0)
	case float32:
		return stmt.BindFloat64(index, float64(x))
	case float64:
		return stmt.BindFloat64(index, x)
	case string:
		return stmt.BindText(index, x)
	case *string:
		return stmt.BindTextOrNull(index, x)
	case []byte:
		return stmt.BindBlob(index, x)
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "cannot bind %T to parameter %d", v, index)
	}
}

// BindAll binds args to slots 1..len(args).
func BindAll(stmt Statement, args ...any) error {
	for i, v := range args {
		if err := Bind(stmt, i+1, v); err != nil {
			return err
		}
	}
	return nil
}
