// Package delimited writes result tables as CSV or TSV files.
package delimited

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/msidat/pkg/table"
)

// Writer writes the first table to the output path and every further table
// next to it as "<stem>_<table name><ext>".
type Writer struct {
	outputPath string
	comma      rune
	paths      []string
}

// NewWriter creates a writer; .tsv and .txt outputs are tab separated.
func NewWriter(outputPath string) *Writer {
	comma := ','
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".tsv", ".txt":
		comma = '\t'
	}
	return &Writer{outputPath: outputPath, comma: comma}
}

// Paths returns the files written so far.
func (w *Writer) Paths() []string {
	return append([]string(nil), w.paths...)
}

// WriteTable writes t to its own file.
func (w *Writer) WriteTable(t *table.Table) error {
	path := w.outputPath
	if len(w.paths) > 0 {
		ext := filepath.Ext(w.outputPath)
		path = strings.TrimSuffix(w.outputPath, ext) + "_" + fileSafe(t.Name) + ext
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	cw := csv.NewWriter(f)
	cw.Comma = w.comma
	if err := cw.Write(t.Columns); err != nil {
		f.Close()
		return fmt.Errorf("%s: failed to write header: %w", path, err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	w.paths = append(w.paths, path)
	return nil
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>| `, r) {
			return '_'
		}
		return r
	}, name)
}

// Finalize is a no-op; every table is flushed by WriteTable.
func (w *Writer) Finalize() error {
	return nil
}
