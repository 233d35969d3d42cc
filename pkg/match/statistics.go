package match

import (
	"fmt"
	"math"
)

// Summary holds descriptive statistics over relative errors in ppm. With no
// values every field is NaN and Defined reports false.
type Summary struct {
	N      int
	Mean   float64
	Min    float64
	Max    float64
	StdDev float64 // population standard deviation
}

// Defined reports whether at least one value contributed.
func (s Summary) Defined() bool {
	return s.N > 0
}

func (s Summary) String() string {
	if !s.Defined() {
		return "n=0 mean=n/a min=n/a max=n/a std=n/a"
	}
	return fmt.Sprintf("n=%d mean=%.4f min=%.4f max=%.4f std=%.4f", s.N, s.Mean, s.Min, s.Max, s.StdDev)
}

// Summarize computes statistics over the matched results only.
func Summarize(results []Result) Summary {
	errs := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Matched {
			errs = append(errs, r.ErrorPPM)
		}
	}
	return SummarizeErrors(errs)
}

// SummarizeErrors computes statistics over the non-NaN values.
func SummarizeErrors(values []float64) Summary {
	s := Summary{
		Mean:   math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
		StdDev: math.NaN(),
	}

	var sum float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if s.N == 0 {
			s.Min, s.Max = v, v
		}
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
		s.N++
	}
	if s.N == 0 {
		return s
	}
	s.Mean = sum / float64(s.N)

	var sq float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(s.N))
	return s
}
