// Package cursortest provides an in-memory cursor.Source for tests.
package cursortest

import (
	"github.com/koustreak/rowcursor/internal/cursor"
)

// Source replays fixed rows. Set FailAt to make Step return StepErr when it
// reaches that row index.
type Source struct {
	Names    []string
	Rows     [][]cursor.Cell
	FailAt   int
	StepErr  error
	CloseErr error

	pos    int
	Steps  int
	Closes int
}

// New returns a Source with the given column names and rows.
func New(names []string, rows ...[]cursor.Cell) *Source {
	return &Source{Names: names, Rows: rows, FailAt: -1}
}

// Cursor wraps s in a cursor.Cursor.
func (s *Source) Cursor() cursor.Cursor { return cursor.New(s) }

func (s *Source) Columns() []string { return s.Names }

func (s *Source) Step(dest []cursor.Cell) (bool, error) {
	s.Steps++
	if s.StepErr != nil && s.pos == s.FailAt {
		return false, s.StepErr
	}
	if s.pos >= len(s.Rows) {
		return false, nil
	}
	copy(dest, s.Rows[s.pos])
	s.pos++
	return true, nil
}

func (s *Source) Close() error {
	s.Closes++
	return s.CloseErr
}

// Row is shorthand for a row literal.
func Row(cells ...cursor.Cell) []cursor.Cell { return cells }
