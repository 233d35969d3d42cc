package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseFormula(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    ParsedFormula
	}{
		{
			name:    "counts default to one",
			formula: "CH4O",
			want: ParsedFormula{
				{Symbol: "C", Count: 1},
				{Symbol: "H", Count: 4},
				{Symbol: "O", Count: 1},
			},
		},
		{
			name:    "two letter symbols",
			formula: "NaCl",
			want: ParsedFormula{
				{Symbol: "Na", Count: 1},
				{Symbol: "Cl", Count: 1},
			},
		},
		{
			name:    "enclosing brackets are stripped",
			formula: "[C6H12O6]",
			want: ParsedFormula{
				{Symbol: "C", Count: 6},
				{Symbol: "H", Count: 12},
				{Symbol: "O", Count: 6},
			},
		},
		{
			name:    "group repeated",
			formula: "(NaCl)2",
			want: ParsedFormula{
				{Symbol: "Na", Count: 1},
				{Symbol: "Cl", Count: 1},
				{Symbol: "Na", Count: 1},
				{Symbol: "Cl", Count: 1},
			},
		},
		{
			name:    "charged group is not repeated",
			formula: "(NaCl)2+",
			want: ParsedFormula{
				{Symbol: "Na", Count: 1},
				{Symbol: "Cl", Count: 1},
				{Symbol: "e+", Count: 1, Charge: ChargePositive},
			},
		},
		{
			name:    "charged group without count",
			formula: "(SO4)-",
			want: ParsedFormula{
				{Symbol: "S", Count: 1},
				{Symbol: "O", Count: 4},
				{Symbol: "e-", Count: 1, Charge: ChargeNegative},
			},
		},
		{
			name:    "remainder tokens come before groups",
			formula: "(NH4)2SO4",
			want: ParsedFormula{
				{Symbol: "S", Count: 1},
				{Symbol: "O", Count: 4},
				{Symbol: "N", Count: 1},
				{Symbol: "H", Count: 4},
				{Symbol: "N", Count: 1},
				{Symbol: "H", Count: 4},
			},
		},
		{
			name:    "cation with charge count",
			formula: "Fe2+",
			want: ParsedFormula{
				{Symbol: "Fe", Count: 1, Charge: ChargePositive},
				{Symbol: "e+", Count: 2, Charge: ChargePositive},
			},
		},
		{
			name:    "anion",
			formula: "Cl-",
			want: ParsedFormula{
				{Symbol: "Cl", Count: 1, Charge: ChargeNegative},
				{Symbol: "e-", Count: 1, Charge: ChargeNegative},
			},
		},
		{
			name:    "each ionizable group gets its own electron token",
			formula: "(NH4)+(NO3)-",
			want: ParsedFormula{
				{Symbol: "N", Count: 1},
				{Symbol: "H", Count: 4},
				{Symbol: "e+", Count: 1, Charge: ChargePositive},
				{Symbol: "N", Count: 1},
				{Symbol: "O", Count: 3},
				{Symbol: "e-", Count: 1, Charge: ChargeNegative},
			},
		},
		{
			name:    "nested groups",
			formula: "((CH3)2N)2",
			want: ParsedFormula{
				{Symbol: "N", Count: 1},
				{Symbol: "C", Count: 1},
				{Symbol: "H", Count: 3},
				{Symbol: "C", Count: 1},
				{Symbol: "H", Count: 3},
				{Symbol: "N", Count: 1},
				{Symbol: "C", Count: 1},
				{Symbol: "H", Count: 3},
				{Symbol: "C", Count: 1},
				{Symbol: "H", Count: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormula(tt.formula)
			if err != nil {
				t.Fatalf("ParseFormula(%q) error = %v", tt.formula, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFormula(%q) = %+v, want %+v", tt.formula, got, tt.want)
			}
		})
	}
}

func TestParseFormulaDeterministic(t *testing.T) {
	first, err := ParseFormula("C2H5(OH)2(NH4)+")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := ParseFormula("C2H5(OH)2(NH4)+")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("ParseFormula not stable: %v vs %v", first, again)
		}
	}
}

func TestParseFormulaMalformed(t *testing.T) {
	tests := []struct {
		name    string
		formula string
	}{
		{"empty", ""},
		{"only brackets", "[]"},
		{"unbalanced close", "H2O)"},
		{"unbalanced open", "(H2O"},
		{"empty group", "()2"},
		{"invalid character", "C6H12O6#"},
		{"no element symbol", "h2o"},
		{"only digits", "123"},
		{"space inside", "H2 O"},
		{"count overflow", "H99999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFormula(tt.formula)
			var malformed *MalformedFormulaError
			if !errors.As(err, &malformed) {
				t.Fatalf("ParseFormula(%q) error = %v, want MalformedFormulaError", tt.formula, err)
			}
			if malformed.Formula != tt.formula {
				t.Errorf("error formula = %q, want %q", malformed.Formula, tt.formula)
			}
		})
	}
}

func TestParseFormulaSkipsStrayCharacters(t *testing.T) {
	tests := []struct {
		formula string
		want    ParsedFormula
	}{
		{"2H2O", ParsedFormula{{Symbol: "H", Count: 2}, {Symbol: "O", Count: 1}}},
		{"cH4", ParsedFormula{{Symbol: "H", Count: 4}}},
		{"Fe2+3", ParsedFormula{
			{Symbol: "Fe", Count: 1, Charge: ChargePositive},
			{Symbol: "e+", Count: 2, Charge: ChargePositive},
		}},
		{"H2O3+-", ParsedFormula{
			{Symbol: "H", Count: 2},
			{Symbol: "O", Count: 1, Charge: ChargePositive},
			{Symbol: "e+", Count: 3, Charge: ChargePositive},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got, err := ParseFormula(tt.formula)
			if err != nil {
				t.Fatalf("ParseFormula(%q) error = %v", tt.formula, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFormula(%q) = %+v, want %+v", tt.formula, got, tt.want)
			}
		})
	}
}

func TestParseFormulaLargeGroupCount(t *testing.T) {
	got, err := ParseFormula("(CH2)100000000")
	if err != nil {
		t.Fatal(err)
	}
	want := ParsedFormula{
		{Symbol: "C", Count: 100000000},
		{Symbol: "H", Count: 200000000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseFormula() = %+v, want %+v", got, want)
	}

	_, err = ParseFormula("(H4)4611686018427387904")
	var malformed *MalformedFormulaError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want MalformedFormulaError", err)
	}
}

func TestParsedFormulaCounts(t *testing.T) {
	parsed, err := ParseFormula("(NH4)2SO4")
	if err != nil {
		t.Fatal(err)
	}
	counts := parsed.Counts()
	want := map[string]int{"N": 2, "H": 8, "S": 1, "O": 4}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("Counts() = %v, want %v", counts, want)
	}
}

func TestElementTokenIsElectron(t *testing.T) {
	if !(ElementToken{Symbol: "e+"}).IsElectron() {
		t.Error("e+ should be an electron token")
	}
	if (ElementToken{Symbol: "Fe"}).IsElectron() {
		t.Error("Fe should not be an electron token")
	}
}
