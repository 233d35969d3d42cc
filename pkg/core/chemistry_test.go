package core

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewMassTable(t *testing.T) {
	tests := []struct {
		name    string
		masses  map[string]float64
		wantErr bool
	}{
		{"valid", map[string]float64{"H": MassH, "e+": -ElectronMass}, false},
		{"empty", map[string]float64{}, true},
		{"zero element mass", map[string]float64{"H": 0}, true},
		{"negative element mass", map[string]float64{"H": -1}, true},
		{"NaN", map[string]float64{"H": math.NaN()}, true},
		{"infinite electron", map[string]float64{"e-": math.Inf(1)}, true},
		{"empty symbol", map[string]float64{"": 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMassTable(tt.masses)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMassTable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := NewMassTable(nil); !errors.Is(err, ErrMissingMassTable) {
		t.Errorf("NewMassTable(nil) error = %v, want ErrMissingMassTable", err)
	}
}

func TestLoadMassTableJSON(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"wrapped", `{"ele_mass": {"H": 1.0078250319, "O": 15.9949146221, "e+": -0.00054858}}`},
		{"bare", `{"H": 1.0078250319, "O": 15.9949146221, "e+": -0.00054858}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := LoadMassTableJSON(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("LoadMassTableJSON() error = %v", err)
			}
			if table.Len() != 3 {
				t.Errorf("Len() = %d, want 3", table.Len())
			}
			if m, ok := table.Mass("O"); !ok || m != 15.9949146221 {
				t.Errorf("Mass(O) = %v, %v", m, ok)
			}
		})
	}

	if _, err := LoadMassTableJSON(strings.NewReader(`{"ele_mass": "nope"}`)); err == nil {
		t.Error("expected error for malformed table")
	}
}

func TestLoadMassTableYAML(t *testing.T) {
	doc := "ele_mass:\n  H: 1.0078250319\n  O: 15.9949146221\n  e-: 0.00054858\n"
	table, err := LoadMassTableYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadMassTableYAML() error = %v", err)
	}
	if got := table.Symbols(); strings.Join(got, ",") != "H,O,e-" {
		t.Errorf("Symbols() = %v", got)
	}
}

func TestDefaultMassTable(t *testing.T) {
	table := DefaultMassTable()
	for _, symbol := range []string{"H", "C", "N", "O", "S", "P", "Na", "K", "Cl", "e+", "e-"} {
		if _, ok := table.Mass(symbol); !ok {
			t.Errorf("default table missing %s", symbol)
		}
	}
	mass, err := NewResolver(table, nil).Resolve("H")
	if err != nil {
		t.Fatal(err)
	}
	// A hydrogen atom minus one electron is a proton.
	cation, _ := NewResolver(table, nil).Resolve("H+")
	if math.Abs(cation-ProtonMass) > 1e-7 || math.Abs(mass-MassH) > 1e-12 {
		t.Errorf("H = %.10f, H+ = %.10f", mass, cation)
	}
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name      string
		val       float64
		precision int
		want      float64
	}{
		{"round to 2 decimals", 3.14159, 2, 3.14},
		{"round to 4 decimals", 3.14159, 4, 3.1416},
		{"round to 0 decimals", 3.6, 0, 4.0},
		{"round negative", -3.14159, 2, -3.14},
		{"round mass to 5 decimals", 181.0706, 5, 181.0706},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundFloat(tt.val, tt.precision)
			if got != tt.want {
				t.Errorf("RoundFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}
