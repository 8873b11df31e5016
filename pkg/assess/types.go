// Package assess implements the two-tier subnet assessment engine:
// metric normalization, variance-driven weighting, device scoring,
// centrality-weighted aggregation, and the rate decision. All
// computation is pure; raw observations come from a scout.Prober.
package assess

import (
	"errors"
	"time"

	"github.com/subnetscout/prescan/pkg/scout"
)

// MetricKind identifies one of the four per-device health metrics.
type MetricKind string

const (
	POR MetricKind = "por" // port occupancy rate
	PAR MetricKind = "par" // port anomaly rate
	IER MetricKind = "ier" // interface error rate
	QDR MetricKind = "qdr" // queue discard rate
)

// MetricKinds lists the four metrics in canonical order.
var MetricKinds = []MetricKind{POR, PAR, IER, QDR}

// MetricValue extracts one metric from a sampled snapshot.
func MetricValue(m scout.Metrics, kind MetricKind) float64 {
	switch kind {
	case POR:
		return m.POR
	case PAR:
		return m.PAR
	case IER:
		return m.IER
	case QDR:
		return m.QDR
	default:
		return 0
	}
}

// RiskLevel classifies a device by its weighted score.
type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskUnknown RiskLevel = "UNKNOWN"
)

// Rate is a recommended scan rate band.
type Rate struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DeviceResult is the per-device outcome of an assessment run. Scored
// fields are populated exactly once per run; a Tier 1 fast-path run
// leaves them at their zero values with RiskUnknown.
type DeviceResult struct {
	Address     string                 `json:"address"`
	SNMPEnabled bool                   `json:"snmp_enabled"`
	Metrics     scout.Metrics          `json:"metrics"`
	Normalized  map[MetricKind]float64 `json:"normalized,omitempty"`
	Score       float64                `json:"score"`
	Risk        RiskLevel              `json:"risk_level"`
}

// AssessmentResult is the immutable output of one assessment run.
type AssessmentResult struct {
	RunID         string                 `json:"run_id"`
	Subnet        string                 `json:"subnet"`
	OverallScore  float64                `json:"overall_score"`
	Rate          Rate                   `json:"rate"`
	DeviceCount   int                    `json:"device_count"`
	Devices       []DeviceResult         `json:"devices"`
	Weights       map[MetricKind]float64 `json:"weights,omitempty"`
	Centrality    map[string]float64     `json:"betweenness_centrality,omitempty"`
	KeyNodes      []string               `json:"key_nodes,omitempty"`
	Message       string                 `json:"message"`
	FastPath      bool                   `json:"fast_path"`
	LowConfidence bool                   `json:"low_confidence"`
	Simulated     bool                   `json:"simulated"`
	Duration      time.Duration          `json:"duration_ns"`
	GeneratedAt   time.Time              `json:"generated_at"`
}

// Sentinel errors for degenerate inputs.
var (
	// ErrNoSamples means weighting was requested with zero valid
	// metric snapshots.
	ErrNoSamples = errors.New("no metric samples to weight")
)
