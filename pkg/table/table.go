// Package table holds spreadsheet-like data in memory: a header of column
// names and ordered rows of text cells. Readers fill it, writers persist it,
// and commands pick columns out of it by name.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Table is one sheet of data. Rows may be shorter than the header; missing
// cells read as "".
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given header.
func New(name string, columns []string) *Table {
	return &Table{Name: name, Columns: append([]string(nil), columns...)}
}

// ColumnError reports a column that could not be found.
type ColumnError struct {
	Table  string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("table %q has no column %q", e.Table, e.Column)
}

// CellError reports a cell whose content could not be used.
type CellError struct {
	Column string
	Row    int // 1-based data row, header excluded
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("column %q row %d: invalid value %q: %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index finds a column by name. An exact match wins; otherwise names are
// compared case-insensitively with surrounding space trimmed.
func (t *Table) Index(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for i, c := range t.Columns {
		if strings.ToLower(strings.TrimSpace(c)) == want {
			return i, nil
		}
	}
	return -1, &ColumnError{Table: t.Name, Column: name}
}

// Cell returns the cell at (row, col) or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Strings returns column col as text.
func (t *Table) Strings(col int) []string {
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Cell(i, col)
	}
	return out
}

// Floats parses column col. Empty cells become NaN so they stay in place
// without matching anything.
func (t *Table) Floats(col int) ([]float64, error) {
	name := ""
	if col >= 0 && col < len(t.Columns) {
		name = t.Columns[col]
	}
	out := make([]float64, len(t.Rows))
	for i := range t.Rows {
		v, err := ParseFloat(t.Cell(i, col))
		if err != nil {
			return nil, &CellError{Column: name, Row: i + 1, Value: t.Cell(i, col), Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// FloatsByName is Floats for a named column.
func (t *Table) FloatsByName(name string) ([]float64, error) {
	col, err := t.Index(name)
	if err != nil {
		return nil, err
	}
	return t.Floats(col)
}

// AppendRow adds a data row.
func (t *Table) AppendRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// AppendColumn adds a column; values must have one entry per row.
func (t *Table) AppendColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	col := len(t.Columns)
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		for len(t.Rows[i]) < col {
			t.Rows[i] = append(t.Rows[i], "")
		}
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// AppendFloatColumn adds a numeric column, rendering NaN as an empty cell.
func (t *Table) AppendFloatColumn(name string, values []float64) error {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = FormatFloat(v)
	}
	return t.AppendColumn(name, cells)
}

// Clone returns a deep copy under a new name.
func (t *Table) Clone(name string) *Table {
	c := New(name, t.Columns)
	c.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		c.Rows[i] = append([]string(nil), r...)
	}
	return c
}

// ParseFloat parses a numeric cell; "" (after trimming) is NaN.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// FormatFloat renders a numeric cell; NaN is "".
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
