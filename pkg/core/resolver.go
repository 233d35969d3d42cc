package core

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/msidat/pkg/logger"
)

// Resolver turns formula strings into monoisotopic masses using a mass table.
type Resolver struct {
	table *MassTable
	log   logger.Logger
}

// NewResolver creates a resolver. A nil logger disables debug events.
func NewResolver(table *MassTable, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{table: table, log: log}
}

// Table returns the mass table the resolver was built with.
func (r *Resolver) Table() *MassTable {
	return r.table
}

// Resolve computes the monoisotopic mass of a formula string. The string may
// hold several compounds separated by spaces, commas or semicolons (for example
// "H2O NaCl"); their masses are summed. Charged species carry an electron
// correction taken from the "e+" / "e-" entries of the table.
func (r *Resolver) Resolve(formula string) (float64, error) {
	if r == nil || r.table.Len() == 0 {
		return 0, ErrMassTableNotLoaded
	}

	parts := SplitCompounds(formula)
	if len(parts) == 0 {
		return 0, &MalformedFormulaError{Formula: formula, Reason: "no compounds"}
	}

	var mass float64
	for _, part := range parts {
		tokens, err := ParseFormula(part)
		if err != nil {
			return 0, err
		}
		m, err := r.sum(tokens)
		if err != nil {
			return 0, err
		}
		mass += m
	}
	r.log.Debug("Resolved formula", "formula", formula, "compounds", len(parts), "mass", mass)
	return mass, nil
}

// ResolveParsed sums the masses of already parsed tokens.
func (r *Resolver) ResolveParsed(tokens ParsedFormula) (float64, error) {
	if r == nil || r.table.Len() == 0 {
		return 0, ErrMassTableNotLoaded
	}
	return r.sum(tokens)
}

// sum adds mass*count per token. Electron tokens carry only the correction;
// the ion's own neutral atom is already its own token.
func (r *Resolver) sum(tokens ParsedFormula) (float64, error) {
	var mass float64
	for _, tok := range tokens {
		m, ok := r.table.Mass(tok.Symbol)
		if !ok {
			return 0, &UnknownElementError{Symbol: tok.Symbol}
		}
		mass += m * float64(tok.Count)
	}
	return mass, nil
}

// ResolveAll resolves one formula per row and assigns 1-based IDs in row
// order. The first failing row aborts the batch.
func (r *Resolver) ResolveAll(formulas []string) ([]Compound, error) {
	compounds := make([]Compound, 0, len(formulas))
	for i, f := range formulas {
		mass, err := r.Resolve(f)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		compounds = append(compounds, Compound{Formula: f, Mass: mass, ID: i + 1})
	}
	return compounds, nil
}

// SplitCompounds strips one enclosing pair of square brackets and splits on
// spaces, commas and semicolons. Empty fragments are dropped.
func SplitCompounds(formula string) []string {
	s := stripBrackets(strings.TrimSpace(formula))
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '\t'
	})
}

// Compound is a formula with its resolved monoisotopic mass.
type Compound struct {
	Formula string
	Mass    float64
	ID      int
}
