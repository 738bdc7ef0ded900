package cursor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/rowcursor/internal/cursor"
	"github.com/koustreak/rowcursor/internal/cursor/cursortest"
	"github.com/koustreak/rowcursor/internal/errs"
)

func sampleSource(n int) *cursortest.Source {
	src := cursortest.New([]string{"id", "name", "note", "score", "data"})
	for i := 0; i < n; i++ {
		note := cursor.TextCell("note")
		if i%2 == 0 {
			note = cursor.NullCell()
		}
		src.Rows = append(src.Rows, cursortest.Row(
			cursor.Int64Cell(int64(i)),
			cursor.TextCell("row"),
			note,
			cursor.Float64Cell(float64(i)/2),
			cursor.BlobCell([]byte{byte(i)}),
		))
	}
	return src
}

func TestForCode(t *testing.T) {
	tests := []struct {
		code int
		want cursor.FieldType
	}{
		{1, cursor.FieldInteger},
		{2, cursor.FieldFloat},
		{3, cursor.FieldText},
		{4, cursor.FieldBlob},
		{5, cursor.FieldNull},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := cursor.ForCode(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.code, got.Code())
		})
	}

	for _, code := range []int{0, 6, -1, 42} {
		_, err := cursor.ForCode(code)
		require.Error(t, err)
		assert.True(t, errs.IsDecode(err))
	}

	_, err := cursor.ForCode(9)
	assert.Contains(t, err.Error(), "9")
}

func TestDecode(t *testing.T) {
	c, err := cursor.Decode(1, int64(7))
	require.NoError(t, err)
	assert.Equal(t, cursor.Int64Cell(7), c)

	_, err = cursor.Decode(3, int64(7))
	assert.True(t, errs.IsDecode(err))

	_, err = cursor.Decode(5, "x")
	assert.True(t, errs.IsDecode(err))

	_, err = cursor.Decode(8, nil)
	assert.True(t, errs.IsDecode(err))
}

func TestCursor_NextCountsRows(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		c := sampleSource(n).Cursor()
		count := 0
		for c.Next() {
			count++
		}
		assert.Equal(t, n, count)
		for i := 0; i < 3; i++ {
			assert.False(t, c.Next(), "exhaustion must be sticky")
		}
		assert.NoError(t, c.Err())
		require.NoError(t, c.Close())
	}
}

func TestCursor_StepErrorIsSticky(t *testing.T) {
	src := sampleSource(3)
	src.FailAt = 1
	src.StepErr = errs.New(errs.ErrKindQueryFailed, "disk I/O error")
	c := src.Cursor()

	assert.True(t, c.Next())
	assert.False(t, c.Next())
	assert.False(t, c.Next())
	assert.True(t, errs.IsQueryFailed(c.Err()))
	assert.Equal(t, 2, src.Steps, "no step after failure")
}

func TestCursor_AccessorsBeforeFirstRow(t *testing.T) {
	c := sampleSource(1).Cursor()

	assert.Equal(t, 5, c.ColumnCount())
	name, err := c.ColumnName(1)
	require.NoError(t, err)
	assert.Equal(t, "name", name)

	_, err = c.Int64(0)
	assert.True(t, errs.IsState(err))
	_, err = c.IsNull(0)
	assert.True(t, errs.IsState(err))
	_, err = c.Type(0)
	assert.True(t, errs.IsState(err))
}

func TestCursor_AccessorsAfterExhaustionAndClose(t *testing.T) {
	c := sampleSource(1).Cursor()
	require.True(t, c.Next())
	require.False(t, c.Next())

	_, err := c.Text(1)
	assert.True(t, errs.IsState(err))

	require.NoError(t, c.Close())
	_, err = c.Text(1)
	assert.True(t, errs.IsState(err))
	assert.False(t, c.Next())
}

func TestCursor_Bounds(t *testing.T) {
	c := sampleSource(1).Cursor()
	require.True(t, c.Next())

	for _, idx := range []int{-1, 5, 100} {
		_, err := c.IsNull(idx)
		assert.True(t, errs.IsBounds(err), "IsNull(%d)", idx)
		_, err = c.Int64(idx)
		assert.True(t, errs.IsBounds(err), "Int64(%d)", idx)
		_, err = c.ColumnName(idx)
		assert.True(t, errs.IsBounds(err), "ColumnName(%d)", idx)
	}
}

func TestCursor_TypedAccessors(t *testing.T) {
	c := sampleSource(2).Cursor()
	require.True(t, c.Next())
	require.True(t, c.Next())

	id, err := c.Int64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	name, err := c.Text(1)
	require.NoError(t, err)
	assert.Equal(t, "row", name)

	score, err := c.Float64(3)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)

	data, err := c.Bytes(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)

	typ, err := c.Type(2)
	require.NoError(t, err)
	assert.Equal(t, cursor.FieldText, typ)
}

func TestCursor_Widening(t *testing.T) {
	c := sampleSource(2).Cursor()
	require.True(t, c.Next())
	require.True(t, c.Next())

	f, err := c.Float64(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)

	b, err := c.Bytes(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("row"), b)
}

func TestCursor_TypeMismatch(t *testing.T) {
	c := sampleSource(1).Cursor()
	require.True(t, c.Next())

	tests := []struct {
		name string
		read func() error
	}{
		{"text from integer", func() error { _, err := c.Text(0); return err }},
		{"int64 from text", func() error { _, err := c.Int64(1); return err }},
		{"int64 from float", func() error { _, err := c.Int64(3); return err }},
		{"float64 from blob", func() error { _, err := c.Float64(4); return err }},
		{"text from blob", func() error { _, err := c.Text(4); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errs.IsTypeMismatch(tt.read()))
		})
	}
}

func TestCursor_NullAccess(t *testing.T) {
	c := sampleSource(1).Cursor()
	require.True(t, c.Next())

	null, err := c.IsNull(2)
	require.NoError(t, err)
	assert.True(t, null)

	_, err = c.Text(2)
	assert.True(t, errs.IsNullAccess(err))
	_, err = c.Bytes(2)
	assert.True(t, errs.IsNullAccess(err))

	typ, err := c.Type(2)
	require.NoError(t, err)
	assert.Equal(t, cursor.FieldNull, typ)
}

func TestCursor_CorruptCellIsDecodeError(t *testing.T) {
	src := cursortest.New([]string{"a", "b"},
		cursortest.Row(cursor.Cell{Type: cursor.FieldInteger, Value: "nope"}, cursor.Cell{Type: 9}))
	c := src.Cursor()
	require.True(t, c.Next())

	_, err := c.Int64(0)
	assert.True(t, errs.IsDecode(err))
	_, err = c.Type(1)
	assert.True(t, errs.IsDecode(err))
}

func TestCursor_ColumnNames(t *testing.T) {
	src := cursortest.New([]string{"id", "str", "id", "num"}, cursortest.Row(
		cursor.Int64Cell(1), cursor.TextCell("a"), cursor.Int64Cell(2), cursor.Int64Cell(3)))
	c := src.Cursor()

	names := c.ColumnNames()
	assert.Equal(t, map[string]int{"id": 0, "str": 1, "num": 3}, names)

	require.True(t, c.Next())
	for name, idx := range c.ColumnNames() {
		got, err := c.ColumnName(idx)
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}

	names["str"] = 99
	assert.Equal(t, 99, c.ColumnNames()["str"], "map is cached, not rebuilt")
}

func TestCursor_CloseIdempotent(t *testing.T) {
	src := sampleSource(3)
	src.CloseErr = errors.New("finalize failed")
	c := src.Cursor()
	require.True(t, c.Next())

	assert.Error(t, c.Close())
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.Equal(t, 1, src.Closes)
}
