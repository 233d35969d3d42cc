package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/msidat/pkg/config"
	"github.com/ChrisMcGann/msidat/pkg/core"
	"github.com/ChrisMcGann/msidat/pkg/table"
)

// Output columns added to the compound table.
const (
	ColumnMass = "Monoisotopic Molecular Weight"
	ColumnID   = "ID"
)

var (
	massInput     string
	massOutput    string
	massPrecision int
	massWatch     bool
)

var massCmd = &cobra.Command{
	Use:   "mass",
	Short: "Build a compound database with adduct ion masses",
	Long: `Read a table of compounds, compute the monoisotopic mass of each formula
and append one m/z column per selected adduct. Positive and negative adducts go
to separate "positive" and "negative" sheets (xlsx), tables (sqlite) or files
(csv). Without any adduct selection a single "compounds" table is written.

Examples:
  msidat mass --in compounds.xlsx --out database.xlsx --all
  msidat mass --in compounds.csv --out database.db --positive M+H,M+Na --negative M-H
  msidat mass --in compounds.xlsx --out database.xlsx --all --elements ele_mass.json --watch`,
	RunE: runMass,
}

func init() {
	flags := massCmd.Flags()
	flags.StringVarP(&massInput, "in", "i", "", "Input compound table (.xlsx, .csv, .tsv) (required)")
	flags.StringVarP(&massOutput, "out", "o", "", "Output file (.xlsx, .csv, .db) (required)")
	flags.String("sheet", "", "Input sheet (default: first sheet)")
	flags.String("column", "Formula", "Formula column name")
	flags.StringSlice("positive", nil, "Positive adducts, e.g. M+H,M+Na")
	flags.StringSlice("negative", nil, "Negative adducts, e.g. M-H")
	flags.Bool("all", false, "Use every adduct of the adduct table")
	flags.IntVar(&massPrecision, "precision", -1, "Round masses to this many decimals (-1 = no rounding)")
	flags.BoolVar(&massWatch, "watch", false, "Rebuild whenever the element or adduct table file changes")

	massCmd.MarkFlagRequired("in")
	massCmd.MarkFlagRequired("out")

	bindFlags(flags.Lookup, map[string]string{
		config.KeyDatabaseSheet:    "sheet",
		config.KeyDatabaseColumn:   "column",
		config.KeyDatabasePositive: "positive",
		config.KeyDatabaseNegative: "negative",
		config.KeyDatabaseAll:      "all",
	})
	rootCmd.AddCommand(massCmd)
}

func runMass(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	build := func() error {
		input, err := readInput(massInput, cfg.Database.Sheet)
		if err != nil {
			return err
		}
		out, err := buildDatabase(input, store.Resolver(), store.Adducts(), cfg.Database, massPrecision)
		if err != nil {
			return fmt.Errorf("%s: %w", massInput, err)
		}
		return writeOutput(massOutput, "compound database", out...)
	}

	if err := build(); err != nil {
		return err
	}
	if !massWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return store.Watch(ctx, cfg.Tables.Debounce, func() {
		if err := build(); err != nil {
			log.Error("Rebuild failed", "error", err)
		}
	})
}

// buildDatabase resolves the formula column of input and derives the
// per-polarity tables. Every table keeps the input columns, then the mass,
// the ID and the adduct columns in selection order.
func buildDatabase(input *table.Table, resolver *core.Resolver, adducts *core.AdductTable, db config.DatabaseConfig, precision int) ([]*table.Table, error) {
	col, err := input.Index(db.FormulaColumn)
	if err != nil {
		return nil, err
	}

	positive, negative := db.Positive, db.Negative
	if db.All {
		positive = adducts.Labels(core.Positive)
		negative = adducts.Labels(core.Negative)
	}
	if err := adducts.ValidateSelection(positive, negative); err != nil {
		return nil, err
	}
	log.Info("Building compound database",
		"rows", input.Len(),
		"positive", positive,
		"negative", negative)

	compounds, err := resolver.ResolveAll(input.Strings(col))
	if err != nil {
		return nil, err
	}

	round := func(v float64) float64 {
		if precision < 0 {
			return v
		}
		return core.RoundFloat(v, precision)
	}

	base := input.Clone("compounds")
	masses := make([]float64, len(compounds))
	ids := make([]string, len(compounds))
	for i, c := range compounds {
		masses[i] = round(c.Mass)
		ids[i] = strconv.Itoa(c.ID)
	}
	if err := base.AppendFloatColumn(ColumnMass, masses); err != nil {
		return nil, err
	}
	if err := base.AppendColumn(ColumnID, ids); err != nil {
		return nil, err
	}

	// Ions come back positive first, each polarity in selection order, so
	// ion k of every compound belongs to the same output column.
	ionMZ := make([][]float64, len(positive)+len(negative))
	for k := range ionMZ {
		ionMZ[k] = make([]float64, len(compounds))
	}
	for i, c := range compounds {
		ions, err := core.GenerateAdducts(c.Mass, adducts, positive, negative)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		for k, ion := range ions {
			ionMZ[k][i] = round(ion.MZ)
		}
	}

	var out []*table.Table
	for _, part := range []struct {
		polarity core.Polarity
		from, to int
	}{
		{core.Positive, 0, len(positive)},
		{core.Negative, len(positive), len(positive) + len(negative)},
	} {
		if part.from == part.to {
			continue
		}
		t := base.Clone(part.polarity.String())
		for k := part.from; k < part.to; k++ {
			name := core.ColumnName(labelAt(positive, negative, k), part.polarity)
			if err := t.AppendFloatColumn(name, ionMZ[k]); err != nil {
				return nil, err
			}
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		out = append(out, base)
	}

	log.Info("Molar mass calculation completed", "rows", len(compounds), "tables", len(out))
	return out, nil
}

func labelAt(positive, negative []string, k int) string {
	if k < len(positive) {
		return positive[k]
	}
	return negative[k-len(positive)]
}
