// Package reader opens tabular input files by extension.
package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/msidat/pkg/reader/delimited"
	"github.com/ChrisMcGann/msidat/pkg/reader/xlsx"
	"github.com/ChrisMcGann/msidat/pkg/table"
)

// ReadTable loads path as a table. Workbooks (.xlsx, .xlsm) honor sheet;
// delimited files (.csv, .tsv, .txt) ignore it.
func ReadTable(path, sheet string) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsx.ReadTable(path, sheet)
	case ".csv", ".tsv", ".txt":
		return delimited.ReadTable(path)
	}
	return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
}
