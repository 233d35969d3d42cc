// Package match compares measured m/z values with theoretical masses under a
// relative (ppm) tolerance.
//
// Two modes are provided. Best-match mode picks, for every theoretical target,
// the single closest measured peak and accepts it when it is within tolerance
// and intense enough; it is used to evaluate calibration shift. Multi-match
// mode collects, for every measured value, all reference masses it is
// compatible with; it is used to annotate imaging or profile data.
package match

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChrisMcGann/msidat/pkg/core"
)

// ErrDivisionByZeroTarget is returned when a relative difference would be
// computed against a zero mass.
var ErrDivisionByZeroTarget = errors.New("relative difference against zero mass")

// PPM is one part per million.
const PPM = 1e-6

// ShiftConfig controls best-match mode. Values are copied into each call;
// nothing is shared between invocations.
type ShiftConfig struct {
	TolerancePPM       float64 // symmetric tolerance, e.g. 20
	IntensityThreshold float64 // a peak must be strictly more intense
	Workers            int     // 0 uses GOMAXPROCS
}

// DefaultShiftConfig mirrors the defaults of the shift evaluation tool.
func DefaultShiftConfig() ShiftConfig {
	return ShiftConfig{TolerancePPM: 20, IntensityThreshold: 1000}
}

// Validate checks the configuration.
func (c ShiftConfig) Validate() error {
	if !(c.TolerancePPM > 0) || math.IsInf(c.TolerancePPM, 0) {
		return fmt.Errorf("tolerance must be a positive ppm value, got %v", c.TolerancePPM)
	}
	if math.IsNaN(c.IntensityThreshold) {
		return fmt.Errorf("intensity threshold must be a number")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Convention selects the sign convention of the annotation relative difference.
type Convention int

const (
	// CandidateMinusMeasured computes (candidate - measured) / candidate, the
	// convention annotation databases were built against.
	CandidateMinusMeasured Convention = iota
	// MeasuredMinusCandidate computes (measured - candidate) / candidate, the
	// same convention as shift evaluation.
	MeasuredMinusCandidate
)

func (c Convention) String() string {
	if c == MeasuredMinusCandidate {
		return "measured-minus-candidate"
	}
	return "candidate-minus-measured"
}

// ParseConvention accepts the String forms.
func ParseConvention(s string) (Convention, error) {
	switch s {
	case "", "candidate-minus-measured":
		return CandidateMinusMeasured, nil
	case "measured-minus-candidate":
		return MeasuredMinusCandidate, nil
	}
	return CandidateMinusMeasured, fmt.Errorf("invalid convention %q", s)
}

// AnnotateConfig controls multi-match mode. The bounds are independent and
// exclusive: PPMLow < diff < PPMHigh.
type AnnotateConfig struct {
	PPMLow     float64 // usually negative, e.g. -10
	PPMHigh    float64 // usually positive, e.g. 10
	Convention Convention
	Workers    int // 0 uses GOMAXPROCS
}

// DefaultAnnotateConfig returns the ±10 ppm window.
func DefaultAnnotateConfig() AnnotateConfig {
	return AnnotateConfig{PPMLow: -10, PPMHigh: 10}
}

// Validate checks the configuration.
func (c AnnotateConfig) Validate() error {
	if math.IsNaN(c.PPMLow) || math.IsNaN(c.PPMHigh) {
		return fmt.Errorf("ppm bounds must be numbers")
	}
	if c.PPMLow >= c.PPMHigh {
		return fmt.Errorf("ppm low bound %v must be below high bound %v", c.PPMLow, c.PPMHigh)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// RelativeErrorPPM returns (measured - target) / target in ppm.
func RelativeErrorPPM(measured, target float64) float64 {
	return (measured - target) / target / PPM
}

// BestMatch returns the m/z of the peak closest to target, measured as
// |mz - target| / target, when that peak is within tolerance and more intense
// than the threshold. Ties go to the earlier peak. One peak may be the best
// match for many targets; peaks are never modified.
func BestMatch(peaks []core.Peak, target float64, cfg ShiftConfig) (float64, bool, error) {
	i, ok, err := bestIndex(peaks, target, cfg)
	if err != nil || !ok {
		return math.NaN(), false, err
	}
	return peaks[i].MZ, true, nil
}

// bestIndex is BestMatch returning the winning index.
func bestIndex(peaks []core.Peak, target float64, cfg ShiftConfig) (int, bool, error) {
	if target == 0 {
		return -1, false, ErrDivisionByZeroTarget
	}
	if math.IsNaN(target) || len(peaks) == 0 {
		return -1, false, nil
	}

	best := -1
	bestDiff := math.Inf(1)
	for i, p := range peaks {
		diff := math.Abs((p.MZ - target) / target)
		if math.IsNaN(diff) {
			continue
		}
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		return -1, false, nil
	}
	if bestDiff < cfg.TolerancePPM*PPM && peaks[best].Intensity > cfg.IntensityThreshold {
		return best, true, nil
	}
	return -1, false, nil
}

// Hit is one reference mass a measured value was matched to.
type Hit struct {
	Label string
	MZ    float64
}

// MatchAll returns every candidate compatible with the measured value target.
// The relative difference is taken against the candidate mass. Candidates with
// an empty (NaN) mass are skipped. No hits is not an error.
func MatchAll(target float64, candidates []core.Target, cfg AnnotateConfig) ([]Hit, error) {
	if target == 0 {
		return nil, ErrDivisionByZeroTarget
	}
	if math.IsNaN(target) {
		return nil, nil
	}

	low, high := cfg.PPMLow*PPM, cfg.PPMHigh*PPM
	var hits []Hit
	for _, c := range candidates {
		if math.IsNaN(c.MZ) {
			continue
		}
		if c.MZ == 0 {
			return nil, fmt.Errorf("candidate %q: %w", c.Label, ErrDivisionByZeroTarget)
		}
		diff := (c.MZ - target) / c.MZ
		if cfg.Convention == MeasuredMinusCandidate {
			diff = -diff
		}
		if low < diff && diff < high {
			hits = append(hits, Hit{Label: c.Label, MZ: c.MZ})
		}
	}
	return hits, nil
}
