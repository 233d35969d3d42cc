// Package writer opens result writers by output file extension.
package writer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/msidat/pkg/table"
	"github.com/ChrisMcGann/msidat/pkg/writer/delimited"
	"github.com/ChrisMcGann/msidat/pkg/writer/sqlite"
	"github.com/ChrisMcGann/msidat/pkg/writer/xlsx"
)

// TableWriter persists result tables. Finalize must be called once after the
// last table; nothing is guaranteed to be on disk before that.
type TableWriter interface {
	WriteTable(t *table.Table) error
	Finalize() error
}

// Open picks the writer for path: .xlsx workbooks, .csv/.tsv/.txt files,
// or .db/.sqlite/.sqlite3 databases. description is recorded where the
// format has room for it.
func Open(path, description string) (TableWriter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return xlsx.NewWriter(path)
	case ".csv", ".tsv", ".txt":
		return delimited.NewWriter(path), nil
	case ".db", ".sqlite", ".sqlite3":
		return sqlite.NewWriter(path, description)
	}
	return nil, fmt.Errorf("unsupported output format %q", filepath.Ext(path))
}

// WriteAll writes every table and finalizes the writer.
func WriteAll(path, description string, tables ...*table.Table) error {
	w, err := Open(path, description)
	if err != nil {
		return err
	}
	return writeTables(w, tables)
}

// writeTables finalizes w even when a table fails, keeping both errors.
func writeTables(w TableWriter, tables []*table.Table) error {
	for _, t := range tables {
		if err := w.WriteTable(t); err != nil {
			return errors.Join(err, w.Finalize())
		}
	}
	return w.Finalize()
}
