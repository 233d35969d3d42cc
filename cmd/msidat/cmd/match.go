package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/msidat/pkg/config"
	"github.com/ChrisMcGann/msidat/pkg/core"
	"github.com/ChrisMcGann/msidat/pkg/match"
	"github.com/ChrisMcGann/msidat/pkg/table"
)

// Output columns added to the target table.
const (
	ColumnMeasuredMZ        = "measured m/z"
	ColumnRelativeError     = "Relative Error(ppm)"
	ColumnMeasuredIntensity = "measured Intensity"
)

var (
	matchSource        string
	matchTarget        string
	matchOutput        string
	matchSourceSheet   string
	matchTargetSheet   string
	matchWithIntensity bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Evaluate calibration shift against theoretical targets",
	Long: `For every theoretical m/z in the target table, find the closest measured
peak in the source table. The peak is accepted when its relative distance is
below the tolerance and its intensity is above the threshold. The target table
is written back with the measured m/z and the relative error in ppm; summary
statistics over the accepted matches are logged and written as a second table.

Examples:
  msidat match --source peaks.xlsx --target standards.xlsx --out shift.xlsx
  msidat match --source peaks.csv --target standards.csv --out shift.csv --tolerance 10 --intensity-threshold 500`,
	RunE: runMatch,
}

func init() {
	flags := matchCmd.Flags()
	flags.StringVarP(&matchSource, "source", "s", "", "Measured peak table (required)")
	flags.StringVarP(&matchTarget, "target", "t", "", "Theoretical target table (required)")
	flags.StringVarP(&matchOutput, "out", "o", "", "Output file (.xlsx, .csv, .db) (required)")
	flags.StringVar(&matchSourceSheet, "source-sheet", "", "Source sheet (default: first sheet)")
	flags.StringVar(&matchTargetSheet, "target-sheet", "", "Target sheet (default: first sheet)")
	flags.String("source-mz", "m/z", "Source m/z column")
	flags.String("source-intensity", "Intensity", "Source intensity column")
	flags.String("target-mz", "Theoretical m/z", "Target m/z column")
	flags.Float64("tolerance", 20, "Tolerance in ppm")
	flags.Float64("intensity-threshold", 1000, "Minimum peak intensity (exclusive)")
	flags.BoolVar(&matchWithIntensity, "with-intensity", false, "Also write the intensity of the matched peak")

	matchCmd.MarkFlagRequired("source")
	matchCmd.MarkFlagRequired("target")
	matchCmd.MarkFlagRequired("out")

	bindFlags(flags.Lookup, map[string]string{
		config.KeySourceMZ:           "source-mz",
		config.KeySourceIntensity:    "source-intensity",
		config.KeyTargetMZ:           "target-mz",
		config.KeyTolerance:          "tolerance",
		config.KeyIntensityThreshold: "intensity-threshold",
	})
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	source, err := readInput(matchSource, matchSourceSheet)
	if err != nil {
		return err
	}
	target, err := readInput(matchTarget, matchTargetSheet)
	if err != nil {
		return err
	}

	peaks, err := peaksFromTable(source, cfg.MatchColumns)
	if err != nil {
		return fmt.Errorf("%s: %w", matchSource, err)
	}
	targets, err := targetsFromTable(target, cfg.MatchColumns.TargetMZ)
	if err != nil {
		return fmt.Errorf("%s: %w", matchTarget, err)
	}

	results, err := match.EvaluateShift(cmd.Context(), peaks, targets, cfg.Shift, log)
	if err != nil {
		return err
	}

	summary := match.Summarize(results)
	log.Info("Relative error summary",
		"matched", summary.N,
		"targets", len(results),
		"mean_ppm", summary.Mean,
		"min_ppm", summary.Min,
		"max_ppm", summary.Max,
		"std_ppm", summary.StdDev)
	printSummary(cmd.OutOrStdout(), summary, len(results))

	out, err := shiftTable(target, results, matchWithIntensity)
	if err != nil {
		return err
	}
	return writeOutput(matchOutput, "shift evaluation", out, summaryTable(summary))
}

func peaksFromTable(t *table.Table, cols config.MatchColumns) ([]core.Peak, error) {
	mz, err := t.FloatsByName(cols.SourceMZ)
	if err != nil {
		return nil, err
	}
	intensity, err := t.FloatsByName(cols.SourceIntensity)
	if err != nil {
		return nil, err
	}
	peaks, err := core.PeaksFromColumns(mz, intensity)
	if err != nil {
		return nil, err
	}
	// An empty intensity cell next to a measured m/z cannot be compared
	// against the threshold; treat it as no signal.
	for i := range peaks {
		if math.IsNaN(peaks[i].Intensity) {
			peaks[i].Intensity = 0
		}
	}
	if err := core.ValidatePeaks(peaks); err != nil {
		return nil, err
	}
	return peaks, nil
}

// targetsFromTable labels each target with the first cell of its row.
func targetsFromTable(t *table.Table, column string) ([]core.Target, error) {
	mz, err := t.FloatsByName(column)
	if err != nil {
		return nil, err
	}
	targets := make([]core.Target, len(mz))
	for i, v := range mz {
		label := t.Cell(i, 0)
		if label == "" {
			label = fmt.Sprintf("row %d", i+1)
		}
		targets[i] = core.Target{MZ: v, Label: label}
	}
	if err := core.ValidateTargets(targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// shiftTable is the target table with the match columns appended. Absent
// matches leave the cells empty.
func shiftTable(target *table.Table, results []match.Result, withIntensity bool) (*table.Table, error) {
	out := target.Clone("match")
	measured := make([]float64, len(results))
	errs := make([]float64, len(results))
	intensity := make([]float64, len(results))
	for i, r := range results {
		measured[i] = r.MatchedMZ
		errs[i] = r.ErrorPPM
		intensity[i] = r.Intensity
	}
	if err := out.AppendFloatColumn(ColumnMeasuredMZ, measured); err != nil {
		return nil, err
	}
	if err := out.AppendFloatColumn(ColumnRelativeError, errs); err != nil {
		return nil, err
	}
	if withIntensity {
		if err := out.AppendFloatColumn(ColumnMeasuredIntensity, intensity); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func summaryTable(s match.Summary) *table.Table {
	t := table.New("summary", []string{"statistic", "value"})
	t.AppendRow("matched", fmt.Sprint(s.N))
	for _, row := range []struct {
		name  string
		value float64
	}{
		{"mean (ppm)", s.Mean},
		{"max (ppm)", s.Max},
		{"min (ppm)", s.Min},
		{"std (ppm)", s.StdDev},
	} {
		v := "n/a"
		if s.Defined() {
			v = table.FormatFloat(row.value)
		}
		t.AppendRow(row.name, v)
	}
	return t
}

func printSummary(w io.Writer, s match.Summary, targets int) {
	fmt.Fprintf(w, "Matched %d of %d targets\n", s.N, targets)
	fmt.Fprintf(w, "Relative error (ppm): %s\n", s)
}
