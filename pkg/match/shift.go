package match

import (
	"context"
	"fmt"
	"math"

	"github.com/ChrisMcGann/msidat/pkg/core"
	"github.com/ChrisMcGann/msidat/pkg/logger"
)

// Result is the best-match outcome for one theoretical target. When Matched
// is false the measured fields are NaN.
type Result struct {
	Target    core.Target
	MatchedMZ float64
	Intensity float64
	ErrorPPM  float64
	Matched   bool
}

// EvaluateShift finds the best-matching peak for every target, in target order.
func EvaluateShift(ctx context.Context, peaks []core.Peak, targets []core.Target, cfg ShiftConfig, log logger.Logger) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	log.Info("Evaluating shift",
		"peaks", len(peaks),
		"targets", len(targets),
		"tolerance_ppm", cfg.TolerancePPM,
		"intensity_threshold", cfg.IntensityThreshold)

	results := make([]Result, len(targets))
	err := forEach(ctx, len(targets), cfg.Workers, func(i int) error {
		target := targets[i]
		idx, ok, err := bestIndex(peaks, target.MZ, cfg)
		if err != nil {
			return fmt.Errorf("target %d (%s): %w", i+1, target.Label, err)
		}
		results[i] = Result{Target: target, MatchedMZ: math.NaN(), Intensity: math.NaN(), ErrorPPM: math.NaN()}
		if ok {
			p := peaks[idx]
			results[i].MatchedMZ = p.MZ
			results[i].Intensity = p.Intensity
			results[i].ErrorPPM = RelativeErrorPPM(p.MZ, target.MZ)
			results[i].Matched = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	matched := 0
	for _, r := range results {
		if r.Matched {
			matched++
		}
	}
	log.Info("Shift evaluation complete", "matched", matched, "unmatched", len(results)-matched)
	return results, nil
}
