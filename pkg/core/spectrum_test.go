package core

import (
	"math"
	"testing"
)

func TestValidatePeaks(t *testing.T) {
	tests := []struct {
		name    string
		peaks   []Peak
		wantErr bool
	}{
		{"valid", []Peak{{MZ: 100, Intensity: 1000}, {MZ: 90, Intensity: 0}}, false},
		{"empty cell m/z is allowed", []Peak{{MZ: math.NaN(), Intensity: 1}}, false},
		{"infinite m/z", []Peak{{MZ: math.Inf(1), Intensity: 1}}, true},
		{"NaN intensity", []Peak{{MZ: 100, Intensity: math.NaN()}}, true},
		{"negative m/z", []Peak{{MZ: -1, Intensity: 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePeaks(tt.peaks)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePeaks() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTargets(t *testing.T) {
	if err := ValidateTargets([]Target{{MZ: 100, Label: "A"}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTargets([]Target{{MZ: 0, Label: "zero"}}); err == nil {
		t.Error("expected error for zero target")
	}
}

func TestPeaksFromColumns(t *testing.T) {
	peaks, err := PeaksFromColumns([]float64{100, 200}, []float64{10, 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(peaks) != 2 || peaks[1].MZ != 200 || peaks[1].Intensity != 20 {
		t.Errorf("PeaksFromColumns() = %+v", peaks)
	}

	if _, err := PeaksFromColumns([]float64{1}, nil); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "Peaks", Message: "peak 0 has invalid m/z"}
	want := "validation error in Peaks: peak 0 has invalid m/z"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
