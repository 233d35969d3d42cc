// Package delimited provides streaming readers for CSV and TSV tables
package delimited

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/msidat/pkg/table"
)

// Reader provides row-by-row access to a delimited file. The first record
// is the header.
type Reader struct {
	csv    *csv.Reader
	header []string
	row    []string
	err    error
}

// NewReader creates a reader using comma as the field separator.
func NewReader(r io.Reader, comma rune) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("file is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	// Spreadsheet exports often start with a UTF-8 byte order mark.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	return &Reader{csv: cr, header: header}, nil
}

// Header returns the column names.
func (r *Reader) Header() []string {
	return r.header
}

// Next advances to the next record. Returns false when no more records or error.
func (r *Reader) Next() bool {
	r.row = nil
	if r.err != nil {
		return false
	}
	rec, err := r.csv.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			r.err = err
		}
		return false
	}
	r.row = rec
	return true
}

// Row returns the current record.
func (r *Reader) Row() []string {
	return r.row
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// Comma returns the separator conventionally used for a file name:
// tab for .tsv and .txt, comma otherwise.
func Comma(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		return '\t'
	}
	return ','
}

// ReadTable reads the delimited file at path. The table is named after the
// file without its extension.
func ReadTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	r, err := NewReader(f, Comma(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t := table.New(name, r.Header())
	for r.Next() {
		t.AppendRow(r.Row()...)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
