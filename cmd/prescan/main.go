// Command prescan assesses a subnet before a full scan and recommends
// a scan rate level. It discovers devices over SNMP (or simulates
// them), scores subnet health, weights the result by topology
// centrality, and prints a report to stdout.
//
// Exit codes: 0 when the subnet is healthy enough to scan at medium
// rate or above, 1 when it is not, 130 on interrupt.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/subnetscout/prescan/pkg/assess"
	"github.com/subnetscout/prescan/pkg/config"
	"github.com/subnetscout/prescan/pkg/logging"
	"github.com/subnetscout/prescan/pkg/metrics"
	"github.com/subnetscout/prescan/pkg/scout"
	"github.com/subnetscout/prescan/pkg/server"
	"github.com/subnetscout/prescan/pkg/validation"
)

const (
	exitHealthy     = 0
	exitConstrained = 1
	exitInterrupted = 130
)

// healthyScore is the overall score at or above which the subnet is
// considered scan-ready and the process exits zero.
const healthyScore = 60.0

func main() {
	os.Exit(run())
}

func run() int {
	var (
		target      = flag.String("target", "", "Subnet to assess in CIDR notation (required)")
		configPath  = flag.String("config", "", "Path to YAML configuration file")
		output      = flag.String("output", "text", "Report format: text or json")
		simulate    = flag.Bool("simulate", false, "Use simulated devices instead of live SNMP")
		seed        = flag.Int64("seed", 42, "Simulation seed")
		simDevices  = flag.Int("sim-devices", 12, "Number of simulated devices")
		simStressed = flag.Int("sim-stressed", 4, "Number of simulated devices under load")
		workers     = flag.Int("workers", 0, "Concurrent SNMP probes (0 uses the configured value)")
		metricsAddr = flag.String("metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	logger := logging.NewDefaultLogger()
	if *verbose {
		logger.SetLevel(logging.DebugLevel)
	}

	if *target == "" {
		fmt.Fprintln(os.Stderr, "prescan: -target is required")
		flag.Usage()
		return exitConstrained
	}
	if err := validation.ValidateCIDR(*target); err != nil {
		fmt.Fprintf(os.Stderr, "prescan: %v\n", err)
		return exitConstrained
	}
	if *output != "text" && *output != "json" {
		fmt.Fprintf(os.Stderr, "prescan: unknown output format %q\n", *output)
		return exitConstrained
	}

	cfg := config.Load(*configPath, logger)
	if *workers > 0 {
		cfg.Probe.Workers = *workers
	}

	registry := metrics.NewRegistry()

	var prober scout.Prober
	if *simulate {
		prober = scout.NewSimulator(*seed, *simDevices, *simStressed)
		logger.Info("running against simulated devices",
			logging.Int("devices", *simDevices),
			logging.Int("stressed", *simStressed))
	} else {
		prober = scout.NewSNMPProber(cfg.Probe, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		diag := server.NewDiagnostics(*metricsAddr, registry, logger)
		go func() { _ = diag.Run(ctx) }()
	}

	assessor := assess.New(cfg, prober, logger, registry)
	result, err := assessor.Assess(ctx, *target)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "prescan: interrupted")
			return exitInterrupted
		}
		logger.Error("assessment failed", logging.Error(err))
		fmt.Fprintf(os.Stderr, "prescan: %v\n", err)
		return exitConstrained
	}

	switch *output {
	case "json":
		if err := writeJSON(os.Stdout, result); err != nil {
			fmt.Fprintf(os.Stderr, "prescan: %v\n", err)
			return exitConstrained
		}
	default:
		writeText(os.Stdout, result)
	}

	if result.OverallScore >= healthyScore && !result.LowConfidence {
		return exitHealthy
	}
	return exitConstrained
}

func writeJSON(w *os.File, result *assess.AssessmentResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func writeText(w *os.File, result *assess.AssessmentResult) {
	fmt.Fprintf(w, "Subnet pre-scan assessment %s\n", result.Subnet)
	fmt.Fprintf(w, "Run %s at %s\n", result.RunID, result.GeneratedAt.Format(time.RFC3339))
	if result.Simulated {
		fmt.Fprintln(w, "NOTE: simulated observations")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Devices discovered: %d\n", result.DeviceCount)
	for _, d := range result.Devices {
		switch {
		case !d.SNMPEnabled:
			fmt.Fprintf(w, "  %-16s no SNMP\n", d.Address)
		case d.Risk == assess.RiskUnknown:
			fmt.Fprintf(w, "  %-16s por=%.3f par=%.3f ier=%.5f qdr=%.5f\n",
				d.Address, d.Metrics.POR, d.Metrics.PAR, d.Metrics.IER, d.Metrics.QDR)
		default:
			fmt.Fprintf(w, "  %-16s score=%6.2f risk=%-6s por=%.3f par=%.3f ier=%.5f qdr=%.5f\n",
				d.Address, d.Score, d.Risk, d.Metrics.POR, d.Metrics.PAR, d.Metrics.IER, d.Metrics.QDR)
		}
	}

	if len(result.Weights) > 0 {
		fmt.Fprintf(w, "\nMetric weights: por=%.3f par=%.3f ier=%.3f qdr=%.3f\n",
			result.Weights[assess.POR], result.Weights[assess.PAR],
			result.Weights[assess.IER], result.Weights[assess.QDR])
	}

	if len(result.Centrality) > 0 {
		fmt.Fprintln(w, "\nMost central devices:")
		for _, entry := range topCentral(result.Centrality, 5) {
			fmt.Fprintf(w, "  %-16s %.4f\n", entry.addr, entry.value)
		}
	}
	if len(result.KeyNodes) > 0 {
		fmt.Fprintf(w, "Key nodes: %v\n", result.KeyNodes)
	}

	fmt.Fprintln(w)
	if result.FastPath {
		fmt.Fprintln(w, "[FAST PATH] redundancy gate satisfied")
	}
	if result.LowConfidence {
		fmt.Fprintln(w, "[LOW CONFIDENCE] insufficient observations")
	}
	fmt.Fprintf(w, "Overall score: %.1f\n", result.OverallScore)
	fmt.Fprintf(w, "[DECISION] %s (%s): %s\n", result.Rate.Name, result.Rate.Description, result.Message)
	fmt.Fprintf(w, "Completed in %s\n", result.Duration.Round(time.Millisecond))
}

type centralityEntry struct {
	addr  string
	value float64
}

func topCentral(centrality map[string]float64, n int) []centralityEntry {
	entries := make([]centralityEntry, 0, len(centrality))
	for addr, v := range centrality {
		entries = append(entries, centralityEntry{addr, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value > entries[j].value
		}
		return entries[i].addr < entries[j].addr
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
