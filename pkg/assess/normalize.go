package assess

import (
	"math"

	"github.com/subnetscout/prescan/pkg/config"
)

// Normalize maps a raw metric value onto a [1,100] health score, lower
// raw values scoring higher. The score is driven by the value's order
// of magnitude rather than the value itself: a 10x jump in an error
// rate is qualitatively worse than a 10% jump, so decades are
// penalized linearly and intra-decade movement is ignored.
//
// Anchors: at or below 10^MostFreqPower is fully healthy (100); above
// 10^MaxPower is saturated (1); decades in between interpolate
// linearly. A zero or negative reading means no occupancy or no
// errors and scores 100.
func Normalize(value float64, anchors config.Anchors) float64 {
	if value <= 0 {
		return 100
	}

	magnitude := int(math.Floor(math.Log10(value)))

	var score float64
	switch {
	case magnitude <= anchors.MostFreqPower:
		score = 100
	case magnitude <= anchors.MaxPower:
		span := float64(anchors.MaxPower - anchors.MostFreqPower)
		score = 100 - 99*float64(magnitude-anchors.MostFreqPower)/span
	default:
		score = 1
	}

	return clampScore(score)
}

// NormalizeAll normalizes every metric of a snapshot using the
// per-metric anchors from the configuration.
func NormalizeAll(m map[MetricKind]float64, cfg config.Config) map[MetricKind]float64 {
	out := make(map[MetricKind]float64, len(m))
	for kind, value := range m {
		out[kind] = Normalize(value, cfg.AnchorsFor(string(kind)))
	}
	return out
}

func clampScore(s float64) float64 {
	if s < 1 {
		return 1
	}
	if s > 100 {
		return 100
	}
	return s
}
