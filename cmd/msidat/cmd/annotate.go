package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/msidat/pkg/config"
	"github.com/ChrisMcGann/msidat/pkg/core"
	"github.com/ChrisMcGann/msidat/pkg/match"
	"github.com/ChrisMcGann/msidat/pkg/table"
)

// ColumnTotal holds the combined annotation string.
const ColumnTotal = "total"

var (
	annotateMSI           string
	annotateDatabase      string
	annotateOutput        string
	annotateMSISheet      string
	annotateDatabaseSheet string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate measured m/z values against a compound database",
	Long: `Match every value of the first column of the measured table against every
reference column of the database (from --first-ref-column on) within the
[--ppm-low, --ppm-high] window. Each output row holds the measured value, one
cell per reference column listing the matching compounds (";"-separated), and
a "total" column combining all hits as "<m/z>;<column>" joined by "/".

Examples:
  msidat annotate --msi msi.xlsx --database database.xlsx --database-sheet positive --out annotated.xlsx
  msidat annotate --msi msi.csv --database database.csv --out annotated.csv --ppm-low -5 --ppm-high 5`,
	RunE: runAnnotate,
}

func init() {
	flags := annotateCmd.Flags()
	flags.StringVar(&annotateMSI, "msi", "", "Measured table; the first column holds m/z (required)")
	flags.StringVar(&annotateDatabase, "database", "", "Compound database table (required)")
	flags.StringVarP(&annotateOutput, "out", "o", "", "Output file (.xlsx, .csv, .db) (required)")
	flags.StringVar(&annotateMSISheet, "msi-sheet", "", "Measured sheet (default: first sheet)")
	flags.StringVar(&annotateDatabaseSheet, "database-sheet", "", "Database sheet (default: first sheet)")
	flags.Float64("ppm-low", -10, "Lower relative difference bound in ppm (exclusive)")
	flags.Float64("ppm-high", 10, "Upper relative difference bound in ppm (exclusive)")
	flags.String("convention", "candidate-minus-measured", "Relative difference sign: candidate-minus-measured or measured-minus-candidate")
	flags.Int("label-column", 0, "Database column (0-based) holding the compound label")
	flags.Int("first-ref-column", 4, "First database column (0-based) holding reference m/z values")

	annotateCmd.MarkFlagRequired("msi")
	annotateCmd.MarkFlagRequired("database")
	annotateCmd.MarkFlagRequired("out")

	bindFlags(flags.Lookup, map[string]string{
		config.KeyPPMLow:         "ppm-low",
		config.KeyPPMHigh:        "ppm-high",
		config.KeyConvention:     "convention",
		config.KeyLabelColumn:    "label-column",
		config.KeyFirstRefColumn: "first-ref-column",
	})
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	msi, err := readInput(annotateMSI, annotateMSISheet)
	if err != nil {
		return err
	}
	db, err := readInput(annotateDatabase, annotateDatabaseSheet)
	if err != nil {
		return err
	}

	if len(msi.Columns) == 0 {
		return fmt.Errorf("%s: no columns", annotateMSI)
	}
	measured, err := msi.Floats(0)
	if err != nil {
		return fmt.Errorf("%s: %w", annotateMSI, err)
	}
	columns, err := referenceColumns(db, cfg.AnnotateColumns)
	if err != nil {
		return fmt.Errorf("%s: %w", annotateDatabase, err)
	}

	annotations, err := match.Annotate(cmd.Context(), measured, columns, cfg.Annotate, log)
	if err != nil {
		return err
	}
	return writeOutput(annotateOutput, "annotation", annotationTable(msi, columns, annotations))
}

// referenceColumns turns every database column from FirstRefColumn on into a
// reference column labelled by LabelColumn.
func referenceColumns(db *table.Table, cols config.AnnotateColumns) ([]match.ReferenceColumn, error) {
	if cols.LabelColumn >= len(db.Columns) {
		return nil, fmt.Errorf("label column %d out of range (%d columns)", cols.LabelColumn, len(db.Columns))
	}
	if cols.FirstRefColumn >= len(db.Columns) {
		return nil, fmt.Errorf("no reference columns from column %d on (%d columns)", cols.FirstRefColumn, len(db.Columns))
	}

	labels := db.Strings(cols.LabelColumn)
	var out []match.ReferenceColumn
	for j := cols.FirstRefColumn; j < len(db.Columns); j++ {
		values, err := db.Floats(j)
		if err != nil {
			return nil, err
		}
		targets := make([]core.Target, len(values))
		for i, v := range values {
			targets[i] = core.Target{MZ: v, Label: labels[i]}
		}
		out = append(out, match.ReferenceColumn{Label: db.Columns[j], Targets: targets})
	}
	return out, nil
}

// annotationTable lays out the first measured column, one column per
// reference column and the combined column.
func annotationTable(msi *table.Table, columns []match.ReferenceColumn, annotations []match.Annotation) *table.Table {
	header := make([]string, 0, len(columns)+2)
	header = append(header, msi.Columns[0])
	for _, c := range columns {
		header = append(header, c.Label)
	}
	header = append(header, ColumnTotal)

	out := table.New("annotation", header)
	for i, a := range annotations {
		row := make([]string, 0, len(header))
		row = append(row, msi.Cell(i, 0))
		for _, c := range a.Columns {
			row = append(row, c.Cell())
		}
		row = append(row, a.Combined)
		out.AppendRow(row...)
	}
	return out
}
