// Package xlsx writes result tables to Excel workbooks, one sheet per table.
package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/msidat/pkg/table"
)

const defaultSheet = "Sheet1"

// Writer collects tables into a workbook that is saved by Finalize.
type Writer struct {
	file        *excelize.File
	outputPath  string
	headerStyle int
	sheets      int
	names       map[string]bool
}

// NewWriter creates a new workbook writer
func NewWriter(outputPath string) (*Writer, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &Writer{file: f, outputPath: outputPath, headerStyle: style, names: make(map[string]bool)}, nil
}

// WriteTable adds t as a new sheet named after the table. Numeric cells are
// stored as numbers, empty cells are left blank.
func (w *Writer) WriteTable(t *table.Table) error {
	name := sheetName(t.Name, w.sheets)
	for base, i := name, 2; w.names[strings.ToLower(name)]; i++ {
		name = sheetName(fmt.Sprintf("%.26s_%d", base, i), w.sheets)
	}
	w.names[strings.ToLower(name)] = true
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	if w.sheets == 0 {
		idx, err := w.file.GetSheetIndex(name)
		if err == nil {
			w.file.SetActiveSheet(idx)
		}
	}
	w.sheets++

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := w.file.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if len(t.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		w.file.SetCellStyle(name, "A1", last, w.headerStyle)
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(name, cell, &cells); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", name, i+1, err)
		}
	}
	return nil
}

func cellValue(v string) interface{} {
	if v == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !strings.ContainsAny(v, "xXnN") {
		return f
	}
	return v
}

// sheetName makes a valid sheet name: at most 31 characters and none of
// the characters Excel forbids.
func sheetName(name string, n int) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = fmt.Sprintf("Sheet%d", n+1)
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// Finalize saves the workbook and releases it.
func (w *Writer) Finalize() error {
	if w.sheets > 0 && !w.names[strings.ToLower(defaultSheet)] {
		if idx, err := w.file.GetSheetIndex(defaultSheet); err == nil && idx >= 0 {
			if err := w.file.DeleteSheet(defaultSheet); err != nil {
				return fmt.Errorf("failed to remove default sheet: %w", err)
			}
		}
	}
	if err := w.file.SaveAs(w.outputPath); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return w.file.Close()
}

// Close is an alias for Finalize
func (w *Writer) Close() error {
	return w.Finalize()
}
