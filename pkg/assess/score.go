package assess

import (
	"github.com/subnetscout/prescan/pkg/config"
	"github.com/subnetscout/prescan/pkg/scout"
)

// ScoreDevice computes a single device's weighted health score from
// its raw metric snapshot. Each metric is normalized onto [1,100] with
// its configured anchors, then combined with the subnet-derived
// weights. Weights sum to 1, so the result stays in [1,100].
//
// The normalized per-metric scores are returned alongside the weighted
// total so reports can show where a low score comes from.
func ScoreDevice(m scout.Metrics, weights map[MetricKind]float64, cfg config.Config) (float64, map[MetricKind]float64) {
	raw := make(map[MetricKind]float64, len(MetricKinds))
	for _, kind := range MetricKinds {
		raw[kind] = MetricValue(m, kind)
	}
	normalized := NormalizeAll(raw, cfg)

	score := 0.0
	for _, kind := range MetricKinds {
		score += weights[kind] * normalized[kind]
	}
	return clampScore(score), normalized
}

// ClassifyRisk maps a device score onto a risk tier using the
// configured boundaries.
func ClassifyRisk(score float64, risk config.RiskConfig) RiskLevel {
	switch {
	case score >= risk.LowMin:
		return RiskLow
	case score >= risk.MediumMin:
		return RiskMedium
	default:
		return RiskHigh
	}
}
