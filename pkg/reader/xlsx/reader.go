// Package xlsx provides streaming readers for Excel workbooks
package xlsx

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/msidat/pkg/table"
)

// Reader provides row-by-row access to one sheet of a workbook. The first
// row of the sheet is the header.
type Reader struct {
	file   *excelize.File
	rows   *excelize.Rows
	sheet  string
	header []string
	row    []string
	rowNum int
	err    error
}

// NewReader opens a workbook and positions the reader after the header of
// sheet. An empty sheet name selects the first sheet.
func NewReader(r io.Reader, sheet string) (*Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	rd := &Reader{file: f, rows: rows, sheet: sheet}
	if !rows.Next() {
		rd.Close()
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	rd.header, err = rows.Columns()
	if err != nil {
		rd.Close()
		return nil, fmt.Errorf("sheet %q header: %w", sheet, err)
	}
	rd.rowNum = 1
	return rd, nil
}

// Sheet returns the name of the sheet being read.
func (r *Reader) Sheet() string {
	return r.sheet
}

// Header returns the column names.
func (r *Reader) Header() []string {
	return r.header
}

// Next advances to the next data row. Returns false when no more rows or error.
func (r *Reader) Next() bool {
	r.row = nil
	if r.err != nil || !r.rows.Next() {
		if r.err == nil {
			r.err = r.rows.Error()
		}
		return false
	}
	r.rowNum++
	cols, err := r.rows.Columns()
	if err != nil {
		r.err = fmt.Errorf("row %d: %w", r.rowNum, err)
		return false
	}
	r.row = cols
	return true
}

// Row returns the current row. Trailing empty cells may be omitted.
func (r *Reader) Row() []string {
	return r.row
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// Close releases the workbook.
func (r *Reader) Close() error {
	if r.rows != nil {
		r.rows.Close()
	}
	return r.file.Close()
}

// ReadAll drains the reader into a table named after the sheet.
func ReadAll(r *Reader) (*table.Table, error) {
	t := table.New(r.sheet, r.header)
	for r.Next() {
		t.AppendRow(r.Row()...)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadTable reads one sheet of the workbook at path.
func ReadTable(path, sheet string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	r, err := NewReader(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer r.Close()

	return ReadAll(r)
}
