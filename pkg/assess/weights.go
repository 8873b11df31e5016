package assess

import (
	"math"

	"github.com/subnetscout/prescan/pkg/scout"
	"github.com/subnetscout/prescan/pkg/validation"
)

// ComputeWeights derives per-metric importance weights from the
// dispersion of each metric across the sampled devices. A metric that
// varies a lot across this subnet discriminates between its devices
// and earns more weight; a flat metric carries little decision value.
//
// For each metric the coefficient of variation (population standard
// deviation over mean, zero for a zero mean) is clamped into
// [clampMin, clampMax] and the clamped values are normalized to sum
// to 1. The normalization can push individual weights back outside
// the clamp bounds, so a final bounded redistribution settles every
// weight inside [clampMin, clampMax] while keeping the unit sum.
//
// At least one sample is required; callers must not invoke Tier 2
// weighting with an empty set.
func ComputeWeights(samples []scout.Metrics, clampMin, clampMax float64) (map[MetricKind]float64, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	n := len(MetricKinds)
	clamped := make([]float64, n)
	total := 0.0
	for i, kind := range MetricKinds {
		values := make([]float64, len(samples))
		for j, s := range samples {
			values[j] = MetricValue(s, kind)
		}
		clamped[i] = validation.ClampFloat(coefficientOfVariation(values), clampMin, clampMax)
		total += clamped[i]
	}

	weights := make([]float64, n)
	for i := range clamped {
		weights[i] = clamped[i] / total
	}
	redistribute(weights, clampMin, clampMax)

	out := make(map[MetricKind]float64, n)
	for i, kind := range MetricKinds {
		out[kind] = weights[i]
	}
	return out, nil
}

// coefficientOfVariation is the population standard deviation divided
// by the mean. A zero mean (all-zero metric, or a single silent
// device) is degenerate and yields zero rather than a division.
func coefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return math.Sqrt(variance) / mean
}

// redistribute settles weights inside [lo, hi] while preserving the
// unit sum. Each pass clamps every weight into the box and spreads the
// resulting deficit or surplus evenly over the weights that can still
// move in that direction. Feasibility (n*lo <= 1 <= n*hi) is
// guaranteed by config validation, so the loop converges in a handful
// of passes.
func redistribute(weights []float64, lo, hi float64) {
	const tolerance = 1e-12

	for pass := 0; pass < len(weights)+1; pass++ {
		sum := 0.0
		for i := range weights {
			weights[i] = validation.ClampFloat(weights[i], lo, hi)
			sum += weights[i]
		}

		diff := 1 - sum
		if math.Abs(diff) < tolerance {
			return
		}

		movable := 0
		for _, w := range weights {
			if (diff > 0 && w < hi-tolerance) || (diff < 0 && w > lo+tolerance) {
				movable++
			}
		}
		if movable == 0 {
			return
		}

		share := diff / float64(movable)
		for i, w := range weights {
			if (diff > 0 && w < hi-tolerance) || (diff < 0 && w > lo+tolerance) {
				weights[i] = w + share
			}
		}
	}
}
