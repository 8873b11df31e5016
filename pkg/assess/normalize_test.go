package assess

import (
	"math"
	"testing"

	"github.com/subnetscout/prescan/pkg/config"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalize_ZeroAndNegativeScoreFullHealth(t *testing.T) {
	anchors := config.Anchors{MostFreqPower: -2, MaxPower: 0}

	if got := Normalize(0, anchors); got != 100 {
		t.Errorf("Normalize(0) = %f, want 100", got)
	}
	if got := Normalize(-0.5, anchors); got != 100 {
		t.Errorf("Normalize(-0.5) = %f, want 100", got)
	}
}

func TestNormalize_BelowMostFrequentDecade(t *testing.T) {
	anchors := config.Anchors{MostFreqPower: -2, MaxPower: 0}

	for _, v := range []float64{0.001, 0.005, 0.05, 0.099} {
		if got := Normalize(v, anchors); got != 100 {
			t.Errorf("Normalize(%f) = %f, want 100", v, got)
		}
	}
}

func TestNormalize_LinearBetweenAnchors(t *testing.T) {
	anchors := config.Anchors{MostFreqPower: -2, MaxPower: 0}

	// magnitude -1: one decade of two above the healthy anchor
	if got := Normalize(0.5, anchors); !approxEqual(got, 50.5) {
		t.Errorf("Normalize(0.5) = %f, want 50.5", got)
	}
	// magnitude 0 reaches the saturation anchor
	if got := Normalize(1.5, anchors); !approxEqual(got, 1) {
		t.Errorf("Normalize(1.5) = %f, want 1", got)
	}
}

func TestNormalize_AboveMaxDecadeSaturates(t *testing.T) {
	anchors := config.Anchors{MostFreqPower: -2, MaxPower: 0}

	for _, v := range []float64{15, 1000, 1e9} {
		if got := Normalize(v, anchors); got != 1 {
			t.Errorf("Normalize(%f) = %f, want 1", v, got)
		}
	}
}

func TestNormalize_NonIncreasingAcrossDecades(t *testing.T) {
	anchors := config.Anchors{MostFreqPower: -4, MaxPower: -1}

	prev := 101.0
	for _, v := range []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 1e-1, 1} {
		score := Normalize(v, anchors)
		if score > prev {
			t.Errorf("Normalize(%g) = %f increased from %f", v, score, prev)
		}
		prev = score
	}
}

func TestNormalizeAll_UsesPerMetricAnchors(t *testing.T) {
	cfg := config.Default()

	raw := map[MetricKind]float64{
		POR: 0.05,  // within POR's healthy decade
		IER: 0.05,  // two decades above IER's healthy anchor
		QDR: 0.001, // at QDR's saturation band edge
	}
	out := NormalizeAll(raw, cfg)

	if out[POR] != 100 {
		t.Errorf("POR 0.05 = %f, want 100", out[POR])
	}
	if out[IER] >= 100 {
		t.Errorf("IER 0.05 = %f, want below 100", out[IER])
	}
	if out[QDR] >= out[POR] {
		t.Errorf("QDR %f should score below POR %f for the same order of magnitude shift", out[QDR], out[POR])
	}
}
