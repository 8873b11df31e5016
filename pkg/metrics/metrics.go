// Package metrics exposes Prometheus instrumentation for assessment
// runs. The CLI can serve it on an optional listener so long sweeps
// are observable from the outside.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the assessment tool
type Registry struct {
	// Assessment metrics
	AssessmentsTotal    *prometheus.CounterVec
	AssessmentDuration  *prometheus.HistogramVec
	SubnetScore         prometheus.Gauge
	FastPathAssessments prometheus.Counter

	// Collection metrics
	DevicesDiscovered       prometheus.Gauge
	DevicesScored           prometheus.Gauge
	CollectionFailuresTotal prometheus.Counter
	ProbeDuration           prometheus.Histogram

	// Topology metrics
	TopologyNodes prometheus.Gauge
	TopologyEdges prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates and registers all assessment metrics on a
// private Prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prescan_assessments_total",
			Help: "Completed assessments by tier and resulting rate level",
		}, []string{"tier", "rate_level"}),
		AssessmentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prescan_assessment_duration_seconds",
			Help:    "End-to-end assessment duration",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"tier"}),
		SubnetScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prescan_subnet_score",
			Help: "Overall subnet health score of the latest assessment (0-100)",
		}),
		FastPathAssessments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prescan_fast_path_assessments_total",
			Help: "Assessments resolved by the Tier 1 redundancy gate",
		}),
		DevicesDiscovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prescan_devices_discovered",
			Help: "Devices found by the latest discovery sweep",
		}),
		DevicesScored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prescan_devices_scored",
			Help: "Devices that contributed metrics to the latest assessment",
		}),
		CollectionFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prescan_collection_failures_total",
			Help: "Per-device metric collection failures",
		}),
		ProbeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "prescan_probe_duration_seconds",
			Help:    "Per-device metric acquisition duration",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		TopologyNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prescan_topology_nodes",
			Help: "Nodes in the latest topology graph",
		}),
		TopologyEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prescan_topology_edges",
			Help: "Directed edges in the latest topology graph",
		}),
		registry: prometheus.NewRegistry(),
	}

	r.registry.MustRegister(
		r.AssessmentsTotal,
		r.AssessmentDuration,
		r.SubnetScore,
		r.FastPathAssessments,
		r.DevicesDiscovered,
		r.DevicesScored,
		r.CollectionFailuresTotal,
		r.ProbeDuration,
		r.TopologyNodes,
		r.TopologyEdges,
	)
	return r
}

// RecordAssessment records one completed assessment
func (r *Registry) RecordAssessment(tier int, rateLevel string, score float64, duration time.Duration) {
	t := "2"
	if tier == 1 {
		t = "1"
		r.FastPathAssessments.Inc()
	}
	r.AssessmentsTotal.WithLabelValues(t, rateLevel).Inc()
	r.AssessmentDuration.WithLabelValues(t).Observe(duration.Seconds())
	r.SubnetScore.Set(score)
}

// RecordCollection records the outcome of the gather phase
func (r *Registry) RecordCollection(discovered, scored, failures int) {
	r.DevicesDiscovered.Set(float64(discovered))
	r.DevicesScored.Set(float64(scored))
	r.CollectionFailuresTotal.Add(float64(failures))
}

// RecordProbe records one per-device metric acquisition
func (r *Registry) RecordProbe(duration time.Duration) {
	r.ProbeDuration.Observe(duration.Seconds())
}

// RecordTopology records the size of the built topology graph
func (r *Registry) RecordTopology(nodes, edges int) {
	r.TopologyNodes.Set(float64(nodes))
	r.TopologyEdges.Set(float64(edges))
}

// Handler returns an HTTP handler serving the registry in Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
