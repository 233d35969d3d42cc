package core

import (
	"fmt"
	"math"
	"strings"
)

// Peak represents a single measured m/z, intensity pair.
type Peak struct {
	MZ        float64
	Intensity float64
}

// Target is a theoretical m/z with the label it is reported under
// (an adduct column such as "[M+H]+" or a database entry).
type Target struct {
	MZ    float64
	Label string
}

// ValidationError represents an error found during input validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// ValidatePeaks checks measured peaks before matching. Peaks are never
// reordered; the error lists every offending index.
func ValidatePeaks(peaks []Peak) error {
	var errs []string

	for i, peak := range peaks {
		if math.IsInf(peak.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		}
		if math.IsNaN(peak.Intensity) || math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		}
		if peak.MZ < 0 {
			errs = append(errs, fmt.Sprintf("peak %d m/z must not be negative", i))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Peaks",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ValidateTargets checks theoretical targets. A zero m/z is rejected because
// relative errors are computed against it.
func ValidateTargets(targets []Target) error {
	var errs []string

	for i, t := range targets {
		switch {
		case math.IsInf(t.MZ, 0):
			errs = append(errs, fmt.Sprintf("target %d has invalid m/z", i))
		case t.MZ == 0:
			errs = append(errs, fmt.Sprintf("target %d m/z is zero", i))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Targets",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// PeaksFromColumns zips m/z and intensity columns into peaks.
func PeaksFromColumns(mz, intensity []float64) ([]Peak, error) {
	if len(mz) != len(intensity) {
		return nil, &ValidationError{
			Field:   "Peaks",
			Message: fmt.Sprintf("m/z column has %d values, intensity column has %d", len(mz), len(intensity)),
		}
	}
	peaks := make([]Peak, len(mz))
	for i := range mz {
		peaks[i] = Peak{MZ: mz[i], Intensity: intensity[i]}
	}
	return peaks, nil
}
