// Package core provides formula parsing, monoisotopic mass resolution and adduct
// ion generation for compound identification.
package core

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"go.yaml.in/yaml/v3"
)

// Atomic masses (monoisotopic)
const (
	MassH  = 1.0078250321
	MassC  = 12.0000000000
	MassN  = 14.0030740052
	MassO  = 15.9949146221
	MassS  = 31.9720706900
	MassP  = 30.9737615100
	MassNa = 22.9897692809
	MassK  = 38.9637066900
	MassCl = 34.9688527100

	// Proton mass for charge calculations
	ProtonMass = 1.00727646688

	// ElectronMass is the rest mass of an electron in Da.
	ElectronMass = 0.00054857990946
)

// Electron pseudo-symbols. "e+" is the correction applied for a positive
// charge (an electron removed), "e-" for a negative charge.
const (
	SymbolElectronLost   = "e+"
	SymbolElectronGained = "e-"
)

// MassTable maps element symbols (and the electron pseudo-symbols) to masses.
// A table is never modified after it has been built.
type MassTable struct {
	masses map[string]float64
}

// NewMassTable validates masses and returns an immutable table.
func NewMassTable(masses map[string]float64) (*MassTable, error) {
	if len(masses) == 0 {
		return nil, ErrMissingMassTable
	}
	t := &MassTable{masses: make(map[string]float64, len(masses))}
	for symbol, mass := range masses {
		if symbol == "" {
			return nil, fmt.Errorf("mass table: empty symbol")
		}
		if math.IsNaN(mass) || math.IsInf(mass, 0) {
			return nil, fmt.Errorf("mass table: invalid mass for %q", symbol)
		}
		if !isElectronSymbol(symbol) && mass <= 0 {
			return nil, fmt.Errorf("mass table: mass for %q must be positive, got %v", symbol, mass)
		}
		t.masses[symbol] = mass
	}
	return t, nil
}

func isElectronSymbol(symbol string) bool {
	return symbol == SymbolElectronLost || symbol == SymbolElectronGained
}

// Mass returns the mass for a symbol.
func (t *MassTable) Mass(symbol string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	m, ok := t.masses[symbol]
	return m, ok
}

// Len returns the number of symbols in the table.
func (t *MassTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.masses)
}

// Symbols returns the table's symbols in sorted order.
func (t *MassTable) Symbols() []string {
	if t == nil {
		return nil
	}
	symbols := make([]string, 0, len(t.masses))
	for s := range t.masses {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// massTableFile is the on-disk layout: {"ele_mass": {"H": 1.0078...}}.
type massTableFile struct {
	EleMass map[string]float64 `json:"ele_mass" yaml:"ele_mass"`
}

// LoadMassTableJSON reads an element mass table from JSON. Both the wrapped
// {"ele_mass": {...}} layout and a bare symbol map are accepted.
func LoadMassTableJSON(r io.Reader) (*MassTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read mass table: %w", err)
	}
	var wrapped massTableFile
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.EleMass) > 0 {
		return NewMassTable(wrapped.EleMass)
	}
	var bare map[string]float64
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("mass table format is incorrect: %w", err)
	}
	return NewMassTable(bare)
}

// LoadMassTableYAML reads an element mass table from YAML, same layouts as JSON.
func LoadMassTableYAML(r io.Reader) (*MassTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read mass table: %w", err)
	}
	var wrapped massTableFile
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.EleMass) > 0 {
		return NewMassTable(wrapped.EleMass)
	}
	var bare map[string]float64
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("mass table format is incorrect: %w", err)
	}
	return NewMassTable(bare)
}

// DefaultMassTable returns a table with the common organic elements, alkali
// metals, halogens and the electron corrections.
func DefaultMassTable() *MassTable {
	t, _ := NewMassTable(map[string]float64{
		"H":  MassH,
		"C":  MassC,
		"N":  MassN,
		"O":  MassO,
		"S":  MassS,
		"P":  MassP,
		"Na": MassNa,
		"K":  MassK,
		"Cl": MassCl,
		"F":  18.9984031627,
		"Br": 78.9183376,
		"I":  126.9044719,
		"Li": 7.0160034366,
		"Mg": 23.985041697,
		"Ca": 39.962590863,
		"Fe": 55.9349363,
		"Si": 27.9769265346,
		"Se": 79.9165218,

		SymbolElectronLost:   -ElectronMass,
		SymbolElectronGained: ElectronMass,
	})
	return t
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
