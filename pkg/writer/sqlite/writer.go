// Package sqlite provides SQLite database writing for result tables
package sqlite

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/msidat/pkg/table"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Date format for MaintenanceTable
	maintenanceDateFormat = "2006 01 02"

	schemaVersion = 1
)

// Writer handles writing result tables to SQLite database files. Each table
// becomes a database table named after it; columns whose cells are all
// numeric are declared REAL, the rest TEXT, and empty cells are stored as NULL.
type Writer struct {
	db          *sql.DB
	outputPath  string
	description string
	rowsWritten int
	tables      map[string]bool
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath, description string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:          db,
		outputPath:  outputPath,
		description: description,
		tables:      make(map[string]bool),
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the bookkeeping schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		Description TEXT,
		TableNames TEXT
	);

	CREATE TABLE IF NOT EXISTS MaintenanceTable (
		CreationDate TEXT,
		NoofRowsWritten INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// WriteTable creates (or replaces) a table and inserts every row in one
// transaction.
func (w *Writer) WriteTable(t *table.Table) error {
	name := t.Name
	if name == "" {
		name = fmt.Sprintf("Table%d", len(w.tables)+1)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", name)
	}
	if strings.EqualFold(name, "HeaderTable") || strings.EqualFold(name, "MaintenanceTable") {
		return fmt.Errorf("table name %q is reserved", name)
	}

	numeric := numericColumns(t)
	defs := make([]string, len(t.Columns))
	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range uniqueColumns(t.Columns) {
		typ := "TEXT"
		if numeric[i] {
			typ = "REAL"
		}
		cols[i] = quoteIdent(c)
		defs[i] = cols[i] + " " + typ
		marks[i] = "?"
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(name)); err != nil {
		return fmt.Errorf("failed to drop table %q: %w", name, err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (RowId INTEGER PRIMARY KEY, %s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("failed to create table %q: %w", name, err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (RowId, %s) VALUES (?, %s)",
		quoteIdent(name), strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %q: %w", name, err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(t.Columns)+1)
	for i := range t.Rows {
		args[0] = i + 1
		for j := range t.Columns {
			args[j+1] = cellValue(t.Cell(i, j), numeric[j])
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert row %d into %q: %w", i+1, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %q: %w", name, err)
	}
	w.tables[name] = true
	w.rowsWritten += len(t.Rows)
	return nil
}

// numericColumns reports, per column, whether every non-empty cell parses
// as a number. A column of only empty cells is TEXT.
func numericColumns(t *table.Table) []bool {
	out := make([]bool, len(t.Columns))
	for j := range t.Columns {
		seen := false
		numeric := true
		for i := range t.Rows {
			v := strings.TrimSpace(t.Cell(i, j))
			if v == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
				break
			}
		}
		out[j] = seen && numeric
	}
	return out
}

func cellValue(v string, numeric bool) interface{} {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if numeric {
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return v
}

// uniqueColumns renames duplicate (case-insensitive) column names, which
// SQLite rejects, by appending a counter.
func uniqueColumns(columns []string) []string {
	used := map[string]bool{"rowid": true}
	out := make([]string, len(columns))
	for i, c := range columns {
		if c == "" {
			c = fmt.Sprintf("Column%d", i+1)
		}
		name := c
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", c, n)
		}
		used[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Finalize writes the header and maintenance tables and closes the database
func (w *Writer) Finalize() error {
	names := make([]string, 0, len(w.tables))
	for n := range w.tables {
		names = append(names, n)
	}
	sort.Strings(names)

	now := time.Now()
	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, LastModifiedDate, Description, TableNames)
		VALUES (?, ?, ?, ?, ?)
	`, schemaVersion, now.Format(headerDateFormat), now.Format(headerDateFormat), w.description, strings.Join(names, ","))
	if err != nil {
		w.db.Close()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	_, err = w.db.Exec(`
		INSERT INTO MaintenanceTable (CreationDate, NoofRowsWritten, Description)
		VALUES (?, ?, ?)
	`, now.Format(maintenanceDateFormat), w.rowsWritten, w.description)
	if err != nil {
		w.db.Close()
		return fmt.Errorf("failed to insert maintenance: %w", err)
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
