package assess

import (
	"errors"
	"math"
	"testing"

	"github.com/subnetscout/prescan/pkg/scout"
)

func checkWeights(t *testing.T, weights map[MetricKind]float64, lo, hi float64) {
	t.Helper()

	sum := 0.0
	for kind, w := range weights {
		if w < lo-1e-9 || w > hi+1e-9 {
			t.Errorf("Weight %s = %f outside [%f, %f]", kind, w, lo, hi)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Weights sum to %f, want 1", sum)
	}
}

func TestComputeWeights_EmptySamples(t *testing.T) {
	_, err := ComputeWeights(nil, 0.1, 0.4)
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("Expected ErrNoSamples, got %v", err)
	}
}

func TestComputeWeights_UniformMetricsSplitEvenly(t *testing.T) {
	samples := []scout.Metrics{
		{POR: 0.3, PAR: 0.1, IER: 0.001, QDR: 0.002},
		{POR: 0.3, PAR: 0.1, IER: 0.001, QDR: 0.002},
		{POR: 0.3, PAR: 0.1, IER: 0.001, QDR: 0.002},
	}

	weights, err := ComputeWeights(samples, 0.1, 0.4)
	if err != nil {
		t.Fatalf("ComputeWeights failed: %v", err)
	}
	checkWeights(t, weights, 0.1, 0.4)

	for kind, w := range weights {
		if !approxEqual(w, 0.25) {
			t.Errorf("Flat metrics should weight evenly, %s = %f", kind, w)
		}
	}
}

func TestComputeWeights_DispersedMetricEarnsMaxWeight(t *testing.T) {
	// POR swings hard across devices; the other three are flat.
	samples := []scout.Metrics{
		{POR: 0.01, PAR: 0.2, IER: 0.001, QDR: 0.001},
		{POR: 0.90, PAR: 0.2, IER: 0.001, QDR: 0.001},
	}

	weights, err := ComputeWeights(samples, 0.1, 0.4)
	if err != nil {
		t.Fatalf("ComputeWeights failed: %v", err)
	}
	checkWeights(t, weights, 0.1, 0.4)

	if !approxEqual(weights[POR], 0.4) {
		t.Errorf("POR weight = %f, want clamp max 0.4", weights[POR])
	}
	for _, kind := range []MetricKind{PAR, IER, QDR} {
		if !approxEqual(weights[kind], 0.2) {
			t.Errorf("%s weight = %f, want 0.2", kind, weights[kind])
		}
	}
}

func TestComputeWeights_AllZeroMetrics(t *testing.T) {
	samples := []scout.Metrics{{}, {}, {}}

	weights, err := ComputeWeights(samples, 0.1, 0.4)
	if err != nil {
		t.Fatalf("ComputeWeights failed: %v", err)
	}
	checkWeights(t, weights, 0.1, 0.4)

	// Zero mean means zero CV for every metric; all clamp to the floor
	// and split evenly.
	for kind, w := range weights {
		if !approxEqual(w, 0.25) {
			t.Errorf("Zero-mean metrics should weight evenly, %s = %f", kind, w)
		}
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if got := coefficientOfVariation(nil); got != 0 {
		t.Errorf("CV of empty set = %f, want 0", got)
	}
	if got := coefficientOfVariation([]float64{0, 0, 0}); got != 0 {
		t.Errorf("CV of zero mean = %f, want 0", got)
	}
	if got := coefficientOfVariation([]float64{5, 5, 5}); got != 0 {
		t.Errorf("CV of constant values = %f, want 0", got)
	}

	// values {2, 4, 4, 4, 5, 5, 7, 9}: mean 5, population stddev 2
	got := coefficientOfVariation([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !approxEqual(got, 0.4) {
		t.Errorf("CV = %f, want 0.4", got)
	}
}

func TestRedistribute_SettlesInsideBounds(t *testing.T) {
	// Normalizing clamped values can push a weight back above the
	// ceiling; redistribution must pull it in without breaking the sum.
	weights := []float64{4.0 / 7, 1.0 / 7, 1.0 / 7, 1.0 / 7}
	redistribute(weights, 0.1, 0.4)

	sum := 0.0
	for i, w := range weights {
		if w < 0.1-1e-9 || w > 0.4+1e-9 {
			t.Errorf("weights[%d] = %f outside [0.1, 0.4]", i, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Redistributed weights sum to %f, want 1", sum)
	}
}
