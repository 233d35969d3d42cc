package match

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/msidat/pkg/core"
	"github.com/ChrisMcGann/msidat/pkg/logger"
)

// ReferenceColumn is one column of a reference database, e.g. all "[M+H]+"
// ion masses. Each target carries the row label (compound name or formula).
type ReferenceColumn struct {
	Label   string
	Targets []core.Target
}

// ColumnHits are the hits of one measured value within one reference column.
type ColumnHits struct {
	Column string
	Hits   []Hit
}

// Cell renders the matching row labels joined by ";", or "" for no hits.
func (c ColumnHits) Cell() string {
	labels := make([]string, len(c.Hits))
	for i, h := range c.Hits {
		labels[i] = h.Label
	}
	return strings.Join(labels, ";")
}

// Annotation is the multi-match outcome for one measured value.
type Annotation struct {
	MZ       float64
	Columns  []ColumnHits // same order as the reference columns
	Combined string       // the "total" column
}

// HitCount returns the number of hits across all columns.
func (a Annotation) HitCount() int {
	n := 0
	for _, c := range a.Columns {
		n += len(c.Hits)
	}
	return n
}

// Annotate matches every measured value against every reference column.
// Rows are processed in parallel; the output keeps the measured order.
func Annotate(ctx context.Context, measured []float64, columns []ReferenceColumn, cfg AnnotateConfig, log logger.Logger) ([]Annotation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	log.Info("Annotating",
		"measured", len(measured),
		"columns", len(columns),
		"ppm_low", cfg.PPMLow,
		"ppm_high", cfg.PPMHigh,
		"convention", cfg.Convention.String())

	out := make([]Annotation, len(measured))
	err := forEach(ctx, len(measured), cfg.Workers, func(i int) error {
		a, err := annotateOne(measured[i], columns, cfg)
		if err != nil {
			return fmt.Errorf("measured row %d (m/z %v): %w", i+1, measured[i], err)
		}
		out[i] = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	annotated := 0
	for _, a := range out {
		if a.Combined != "" {
			annotated++
		}
	}
	log.Info("Annotation complete", "rows", len(out), "annotated", annotated)
	return out, nil
}

func annotateOne(mz float64, columns []ReferenceColumn, cfg AnnotateConfig) (Annotation, error) {
	a := Annotation{MZ: mz, Columns: make([]ColumnHits, len(columns))}
	var fragments []string
	for j, col := range columns {
		hits, err := MatchAll(mz, col.Targets, cfg)
		if err != nil {
			return Annotation{}, fmt.Errorf("column %q: %w", col.Label, err)
		}
		a.Columns[j] = ColumnHits{Column: col.Label, Hits: hits}
		for _, h := range hits {
			fragments = append(fragments, FormatMass(h.MZ)+";"+col.Label)
		}
	}
	a.Combined = strings.Join(fragments, "/")
	return a, nil
}

// FormatMass renders a mass with the shortest exact decimal representation,
// always keeping a decimal point ("100.0", "180.06339").
func FormatMass(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
