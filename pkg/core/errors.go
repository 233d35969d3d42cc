package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMassTableNotLoaded is returned when a mass is requested before an
	// element mass table has been loaded.
	ErrMassTableNotLoaded = errors.New("element mass table not loaded")

	// ErrMissingMassTable is the same condition seen from the loader side.
	ErrMissingMassTable = ErrMassTableNotLoaded

	// ErrMissingAdductTable is returned when adducts are requested without a table.
	ErrMissingAdductTable = errors.New("adduct table not loaded")
)

// MalformedFormulaError reports a formula string that cannot be tokenized.
type MalformedFormulaError struct {
	Formula string
	Reason  string
}

func (e *MalformedFormulaError) Error() string {
	return fmt.Sprintf("malformed formula %q: %s", e.Formula, e.Reason)
}

// UnknownElementError reports a symbol missing from the element mass table.
type UnknownElementError struct {
	Symbol string
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("unknown element %q", e.Symbol)
}

// UnknownAdductError reports a selected adduct label missing from the adduct table.
type UnknownAdductError struct {
	Label    string
	Polarity Polarity
}

func (e *UnknownAdductError) Error() string {
	return fmt.Sprintf("unknown %s adduct %q", e.Polarity, e.Label)
}
