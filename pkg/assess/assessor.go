package assess

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/subnetscout/prescan/pkg/config"
	"github.com/subnetscout/prescan/pkg/logging"
	"github.com/subnetscout/prescan/pkg/metrics"
	"github.com/subnetscout/prescan/pkg/parallel"
	"github.com/subnetscout/prescan/pkg/scout"
	"github.com/subnetscout/prescan/pkg/topology"
)

// Assessor runs the two-tier assessment pipeline over one subnet.
// Tier 1 is a cheap redundancy gate: if every reachable device has
// plenty of spare port capacity, the subnet tolerates the maximum scan
// rate and the full analysis is skipped. Tier 2 collects fresh
// samples, derives dispersion weights, scores each device, weights the
// aggregate by topology centrality, and picks a rate band.
type Assessor struct {
	cfg      config.Config
	prober   scout.Prober
	logger   logging.Logger
	registry *metrics.Registry
}

// New builds an Assessor. A nil registry disables instrumentation; a
// nil logger falls back to the process default.
func New(cfg config.Config, prober scout.Prober, logger logging.Logger, registry *metrics.Registry) *Assessor {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Assessor{cfg: cfg, prober: prober, logger: logger, registry: registry}
}

// Assess runs one full assessment of the subnet. Cancellation through
// ctx aborts the run with no partial result. Unreachable devices are
// excluded and logged rather than failing the run; only discovery
// failure or cancellation is fatal.
func (a *Assessor) Assess(ctx context.Context, subnet string) (*AssessmentResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := a.logger.With(logging.RunID(runID), logging.Subnet(subnet))

	logger.Info("assessment started")

	devices, err := a.prober.Discover(ctx, subnet)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", subnet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reachable := make([]scout.Device, 0, len(devices))
	for _, d := range devices {
		if d.SNMPEnabled {
			reachable = append(reachable, d)
		}
	}
	logger.Info("discovery complete",
		logging.Int("devices", len(devices)),
		logging.Int("snmp_enabled", len(reachable)))

	if len(reachable) == 0 {
		res := a.degenerateResult(runID, subnet, devices, start,
			"no SNMP-reachable devices; defaulting to the most conservative rate")
		a.record(1, res, 0, len(devices), 0)
		logger.Warn("no reachable devices", logging.Rate(res.Rate.Name))
		return res, nil
	}

	// Tier 1: one concurrent sample per device. The gate passes only
	// when every device answered and every occupancy reading sits below
	// the redundancy threshold.
	samples, errs := a.collect(ctx, reachable)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if tier1Pass(samples, errs, a.cfg.Redundancy.PORThreshold) {
		rate := FastPathRate(a.cfg.RateLevels)
		res := &AssessmentResult{
			RunID:        runID,
			Subnet:       subnet,
			OverallScore: 100,
			Rate:         rate,
			DeviceCount:  len(devices),
			Devices:      tier1Devices(devices, reachable, samples),
			Message:      fmt.Sprintf("all devices below %.0f%% port occupancy; subnet has ample redundancy", a.cfg.Redundancy.PORThreshold*100),
			FastPath:     true,
			Simulated:    a.prober.Simulated(),
			Duration:     time.Since(start),
			GeneratedAt:  time.Now().UTC(),
		}
		a.record(1, res, len(reachable), len(devices), 0)
		logger.Info("fast path taken",
			logging.Tier(1),
			logging.Rate(rate.Name),
			logging.Duration("elapsed", res.Duration))
		return res, nil
	}
	logger.Info("redundancy gate not met, running full analysis", logging.Tier(2))

	// Tier 2 works from a fresh sample set so the scored metrics are
	// not skewed toward whatever the gate happened to observe.
	samples, errs = a.collect(ctx, reachable)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := make([]scout.Device, 0, len(reachable))
	valid := make([]scout.Metrics, 0, len(reachable))
	failures := 0
	for i, d := range reachable {
		if errs[i] != nil {
			failures++
			logger.Warn("metric collection failed, excluding device",
				logging.Device(d.Address), logging.Error(errs[i]))
			continue
		}
		scored = append(scored, d)
		valid = append(valid, samples[i])
	}

	if len(valid) == 0 {
		res := a.degenerateResult(runID, subnet, devices, start,
			"metric collection failed on every device; defaulting to the most conservative rate")
		a.record(2, res, 0, len(devices), len(reachable))
		logger.Warn("all collections failed", logging.Rate(res.Rate.Name))
		return res, nil
	}

	weights, err := ComputeWeights(valid, a.cfg.Weights.ClampMin, a.cfg.Weights.ClampMax)
	if err != nil {
		return nil, fmt.Errorf("weighting: %w", err)
	}

	results := make([]DeviceResult, 0, len(devices))
	scores := make(map[string]float64, len(scored))
	for i, d := range scored {
		score, normalized := ScoreDevice(valid[i], weights, a.cfg)
		scores[d.Address] = score
		results = append(results, DeviceResult{
			Address:     d.Address,
			SNMPEnabled: true,
			Metrics:     valid[i],
			Normalized:  normalized,
			Score:       score,
			Risk:        ClassifyRisk(score, a.cfg.Risk),
		})
	}
	for _, d := range devices {
		if _, ok := scores[d.Address]; !ok {
			results = append(results, DeviceResult{
				Address:     d.Address,
				SNMPEnabled: d.SNMPEnabled,
				Risk:        RiskUnknown,
			})
		}
	}

	centrality, keyNodes, graph := a.mapTopology(ctx, subnet, scored, logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	overall := Aggregate(scores, centrality)
	rate := DecideRate(overall, a.cfg.RateLevels)

	res := &AssessmentResult{
		RunID:        runID,
		Subnet:       subnet,
		OverallScore: overall,
		Rate:         rate,
		DeviceCount:  len(devices),
		Devices:      results,
		Weights:      weights,
		Centrality:   centrality,
		KeyNodes:     keyNodes,
		Message:      fmt.Sprintf("overall score %.1f; recommending %s (%s)", overall, rate.Name, rate.Description),
		Simulated:    a.prober.Simulated(),
		Duration:     time.Since(start),
		GeneratedAt:  time.Now().UTC(),
	}
	a.record(2, res, len(scored), len(devices), failures)
	if a.registry != nil && graph != nil {
		a.registry.RecordTopology(graph.NodeCount(), graph.EdgeCount())
	}

	logger.Info("assessment complete",
		logging.Tier(2),
		logging.Score(overall),
		logging.Rate(rate.Name),
		logging.Int("scored", len(scored)),
		logging.Int("excluded", failures),
		logging.Duration("elapsed", res.Duration))
	return res, nil
}

// collect fans FetchMetrics out over the worker pool and gathers one
// sample (or one error) per device, index-aligned with the input.
func (a *Assessor) collect(ctx context.Context, devices []scout.Device) ([]scout.Metrics, []error) {
	samples := make([]scout.Metrics, len(devices))
	errs := make([]error, len(devices))

	workers := a.cfg.Probe.Workers
	if workers > len(devices) {
		workers = len(devices)
	}
	if err := parallel.ForEach(workers, len(devices), func(i int) {
		probeStart := time.Now()
		samples[i], errs[i] = a.prober.FetchMetrics(ctx, devices[i].Address)
		if a.registry != nil {
			a.registry.RecordProbe(time.Since(probeStart))
		}
	}); err != nil {
		// Pool construction only fails on a nonsensical width; fall back
		// to probing sequentially.
		for i := range devices {
			samples[i], errs[i] = a.prober.FetchMetrics(ctx, devices[i].Address)
		}
	}
	return samples, errs
}

// mapTopology fetches routing tables and computes betweenness
// centrality over the scored devices. Topology failure degrades to an
// unweighted aggregate rather than failing the assessment.
func (a *Assessor) mapTopology(ctx context.Context, subnet string, scored []scout.Device, logger logging.Logger) (map[string]float64, []string, *topology.Graph) {
	routes, err := a.prober.FetchRoutes(ctx, subnet)
	if err != nil {
		logger.Warn("route collection failed, scoring without topology", logging.Error(err))
		routes = nil
	}

	edges := make([]topology.Edge, 0, len(routes))
	for _, r := range routes {
		edges = append(edges, topology.Edge{Source: r.Source, NextHop: r.NextHop})
	}
	addrs := make([]string, len(scored))
	for i, d := range scored {
		addrs[i] = d.Address
	}

	graph := topology.Build(addrs, edges)
	centrality := topology.BetweennessCentrality(graph)
	keyNodes := topology.KeyNodes(centrality, a.cfg.Topology.KeyNodeThreshold)

	if len(keyNodes) > 0 {
		logger.Info("key nodes identified",
			logging.Int("count", len(keyNodes)),
			logging.Any("nodes", keyNodes))
	}
	return centrality, keyNodes, graph
}

// tier1Pass reports whether the redundancy gate is satisfied: at least
// one device answered, no device failed, and every occupancy reading is
// strictly below the threshold.
func tier1Pass(samples []scout.Metrics, errs []error, threshold float64) bool {
	if len(samples) == 0 {
		return false
	}
	for i, s := range samples {
		if errs[i] != nil || s.POR >= threshold {
			return false
		}
	}
	return true
}

// tier1Devices assembles the device list for a fast-path result. The
// gate samples are attached for visibility but no scores are assigned.
func tier1Devices(all, reachable []scout.Device, samples []scout.Metrics) []DeviceResult {
	byAddr := make(map[string]scout.Metrics, len(reachable))
	for i, d := range reachable {
		byAddr[d.Address] = samples[i]
	}

	out := make([]DeviceResult, 0, len(all))
	for _, d := range all {
		out = append(out, DeviceResult{
			Address:     d.Address,
			SNMPEnabled: d.SNMPEnabled,
			Metrics:     byAddr[d.Address],
			Risk:        RiskUnknown,
		})
	}
	return out
}

// degenerateResult is the conservative fallback when no device could
// be measured: lowest rate band, zero score, low confidence.
func (a *Assessor) degenerateResult(runID, subnet string, devices []scout.Device, start time.Time, msg string) *AssessmentResult {
	lowest := a.cfg.RateLevels[0]
	for _, band := range a.cfg.RateLevels[1:] {
		if band.Level < lowest.Level {
			lowest = band
		}
	}

	results := make([]DeviceResult, 0, len(devices))
	for _, d := range devices {
		results = append(results, DeviceResult{
			Address:     d.Address,
			SNMPEnabled: d.SNMPEnabled,
			Risk:        RiskUnknown,
		})
	}

	return &AssessmentResult{
		RunID:         runID,
		Subnet:        subnet,
		OverallScore:  0,
		Rate:          rateFromBand(lowest),
		DeviceCount:   len(devices),
		Devices:       results,
		Message:       msg,
		LowConfidence: true,
		Simulated:     a.prober.Simulated(),
		Duration:      time.Since(start),
		GeneratedAt:   time.Now().UTC(),
	}
}

func (a *Assessor) record(tier int, res *AssessmentResult, scored, discovered, failures int) {
	if a.registry == nil {
		return
	}
	a.registry.RecordAssessment(tier, res.Rate.Name, res.OverallScore, res.Duration)
	a.registry.RecordCollection(discovered, scored, failures)
}
