// Package config loads and validates the assessment configuration.
//
// Configuration is read once at process start. A missing or malformed
// file is not fatal: the built-in defaults are used and a warning is
// logged, so an operator can always run the tool with no setup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/subnetscout/prescan/pkg/logging"
	"github.com/subnetscout/prescan/pkg/validation"
)

// Anchors are the order-of-magnitude reference points for metric
// normalization. A value at or below 10^MostFreqPower scores 100; a
// value above 10^MaxPower scores 1; scores fall linearly in between.
type Anchors struct {
	MostFreqPower int `yaml:"most_freq_power"`
	MaxPower      int `yaml:"max_power"`
}

// NormalizationConfig holds per-metric normalization anchors.
// POR/PAR are ratios in [0,1]; IER/QDR are small fractional error
// rates, so their anchors sit several decades lower.
type NormalizationConfig struct {
	POR Anchors `yaml:"por"`
	PAR Anchors `yaml:"par"`
	IER Anchors `yaml:"ier"`
	QDR Anchors `yaml:"qdr"`
}

// WeightConfig bounds the dynamic metric weights derived from the
// coefficient of variation across devices.
type WeightConfig struct {
	ClampMin float64 `yaml:"clamp_min" validate:"gt=0,lt=1"`
	ClampMax float64 `yaml:"clamp_max" validate:"gt=0,lte=1"`
}

// RedundancyConfig controls the Tier 1 fast-path gate.
type RedundancyConfig struct {
	PORThreshold float64 `yaml:"por_threshold" validate:"gt=0,lte=1"`
}

// TopologyConfig controls centrality computation.
type TopologyConfig struct {
	// KeyNodeThreshold is the fraction of the maximum centrality above
	// which a node is reported as a key node.
	KeyNodeThreshold float64 `yaml:"key_node_threshold" validate:"gte=0,lte=1"`
}

// RateBand maps a minimum overall score to a recommended scan rate
// level. Bands are evaluated from highest MinScore to lowest; the
// first match wins.
type RateBand struct {
	Level       int     `yaml:"level" validate:"min=1,max=5"`
	MinScore    float64 `yaml:"min_score"`
	Description string  `yaml:"description"`
}

// RiskConfig holds the per-device risk tier boundaries over [1,100].
// Scores at or above LowMin classify LOW, at or above MediumMin
// classify MEDIUM, anything below classifies HIGH.
type RiskConfig struct {
	LowMin    float64 `yaml:"low_min"`
	MediumMin float64 `yaml:"medium_min"`
}

// ProbeConfig holds SNMP transport settings for the live prober.
type ProbeConfig struct {
	Community      string        `yaml:"community" validate:"required"`
	Port           uint16        `yaml:"port" validate:"min=1"`
	Timeout        time.Duration `yaml:"timeout"`
	SampleInterval time.Duration `yaml:"sample_interval"`
	Workers        int           `yaml:"workers" validate:"min=1,max=256"`
	// MaxPacketRate is the packet rate treated as full port occupancy
	// when converting sampled counter deltas to POR/PAR ratios.
	MaxPacketRate float64 `yaml:"max_packet_rate"`
}

// Config is the process-wide assessment configuration. Read-only after
// Load; passed by value into component constructors, never a hidden
// global.
type Config struct {
	Redundancy    RedundancyConfig    `yaml:"redundancy"`
	Normalization NormalizationConfig `yaml:"normalization"`
	Weights       WeightConfig        `yaml:"weights"`
	Topology      TopologyConfig      `yaml:"topology"`
	RateLevels    []RateBand          `yaml:"rate_levels" validate:"min=1"`
	Risk          RiskConfig          `yaml:"risk_levels"`
	Probe         ProbeConfig         `yaml:"probe"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Redundancy: RedundancyConfig{PORThreshold: 0.5},
		Normalization: NormalizationConfig{
			POR: Anchors{MostFreqPower: -2, MaxPower: 0},
			PAR: Anchors{MostFreqPower: -2, MaxPower: 0},
			IER: Anchors{MostFreqPower: -4, MaxPower: -1},
			QDR: Anchors{MostFreqPower: -4, MaxPower: -1},
		},
		Weights:  WeightConfig{ClampMin: 0.1, ClampMax: 0.4},
		Topology: TopologyConfig{KeyNodeThreshold: 0.1},
		RateLevels: []RateBand{
			{Level: 5, MinScore: 90, Description: "ultra-high"},
			{Level: 4, MinScore: 75, Description: "high"},
			{Level: 3, MinScore: 60, Description: "medium"},
			{Level: 2, MinScore: 40, Description: "low"},
			{Level: 1, MinScore: 0, Description: "ultra-low"},
		},
		Risk: RiskConfig{LowMin: 80, MediumMin: 60},
		Probe: ProbeConfig{
			Community:      "public",
			Port:           161,
			Timeout:        2 * time.Second,
			SampleInterval: time.Second,
			Workers:        8,
			MaxPacketRate:  10000,
		},
	}
}

// Load reads the configuration from path. An empty path, a missing
// file, unparseable YAML, or a config that fails validation all fall
// back to Default with a warning; the tool never refuses to run over
// its configuration.
func Load(path string, logger logging.Logger) Config {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("config file not readable, using defaults",
			logging.String("path", path), logging.Error(err))
		return Default()
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Warn("config file not parseable, using defaults",
			logging.String("path", path), logging.Error(err))
		return Default()
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		logger.Warn("config file invalid, using defaults",
			logging.String("path", path), logging.Error(err))
		return Default()
	}

	logger.Info("configuration loaded", logging.String("path", path))
	return cfg
}

// applyDefaults fills zero-valued fields a partial YAML file omitted.
func (c *Config) applyDefaults() {
	def := Default()

	c.Redundancy.PORThreshold = validation.DefaultOrFloat(c.Redundancy.PORThreshold, def.Redundancy.PORThreshold)
	c.Weights.ClampMin = validation.DefaultOrFloat(c.Weights.ClampMin, def.Weights.ClampMin)
	c.Weights.ClampMax = validation.DefaultOrFloat(c.Weights.ClampMax, def.Weights.ClampMax)
	if c.Topology.KeyNodeThreshold == 0 {
		c.Topology.KeyNodeThreshold = def.Topology.KeyNodeThreshold
	}
	if len(c.RateLevels) == 0 {
		c.RateLevels = def.RateLevels
	}
	c.Risk.LowMin = validation.DefaultOrFloat(c.Risk.LowMin, def.Risk.LowMin)
	c.Risk.MediumMin = validation.DefaultOrFloat(c.Risk.MediumMin, def.Risk.MediumMin)

	c.Probe.Community = validation.DefaultOr(c.Probe.Community, def.Probe.Community)
	if c.Probe.Port == 0 {
		c.Probe.Port = def.Probe.Port
	}
	if c.Probe.Timeout <= 0 {
		c.Probe.Timeout = def.Probe.Timeout
	}
	if c.Probe.SampleInterval <= 0 {
		c.Probe.SampleInterval = def.Probe.SampleInterval
	}
	c.Probe.Workers = validation.DefaultOrInt(c.Probe.Workers, def.Probe.Workers)
	c.Probe.MaxPacketRate = validation.DefaultOrFloat(c.Probe.MaxPacketRate, def.Probe.MaxPacketRate)

	fixAnchors := func(a *Anchors, d Anchors) {
		if a.MostFreqPower == 0 && a.MaxPower == 0 {
			*a = d
		}
	}
	fixAnchors(&c.Normalization.POR, def.Normalization.POR)
	fixAnchors(&c.Normalization.PAR, def.Normalization.PAR)
	fixAnchors(&c.Normalization.IER, def.Normalization.IER)
	fixAnchors(&c.Normalization.QDR, def.Normalization.QDR)
}

// Validate checks invariants the engine relies on: weight clamp bounds
// ordered, normalization anchors ordered, rate bands monotonic and
// exhaustive down to zero, risk boundaries monotonic.
func (c Config) Validate() error {
	if err := validation.Struct(&c); err != nil {
		return err
	}

	cv := validation.NewConfigValidator("Config")
	cv.LessThan("Weights.ClampMin", c.Weights.ClampMin, c.Weights.ClampMax)
	cv.LessThan("Risk.MediumMin", c.Risk.MediumMin, c.Risk.LowMin)
	// Four metric weights must be able to sum to 1 inside the clamp
	// bounds, or weight redistribution has no feasible solution.
	cv.Custom("Weights", func() error {
		if 4*c.Weights.ClampMin > 1 || 4*c.Weights.ClampMax < 1 {
			return fmt.Errorf("clamp bounds [%f, %f] cannot fit four weights summing to 1", c.Weights.ClampMin, c.Weights.ClampMax)
		}
		return nil
	})

	checkAnchors := func(field string, a Anchors) {
		cv.Custom(field, func() error {
			if a.MostFreqPower >= a.MaxPower {
				return fmt.Errorf("most_freq_power %d must be below max_power %d", a.MostFreqPower, a.MaxPower)
			}
			return nil
		})
	}
	checkAnchors("Normalization.POR", c.Normalization.POR)
	checkAnchors("Normalization.PAR", c.Normalization.PAR)
	checkAnchors("Normalization.IER", c.Normalization.IER)
	checkAnchors("Normalization.QDR", c.Normalization.QDR)

	bounds := make([]float64, len(c.RateLevels))
	for i, band := range c.RateLevels {
		bounds[i] = band.MinScore
	}
	cv.Descending("RateLevels", bounds)
	cv.Custom("RateLevels", func() error {
		last := c.RateLevels[len(c.RateLevels)-1]
		if last.MinScore != 0 {
			return fmt.Errorf("lowest band must start at 0, got %f", last.MinScore)
		}
		return nil
	})

	return cv.Validate()
}

// AnchorsFor returns the normalization anchors for a metric name.
// Unknown names fall back to the POR anchors; the engine only ever
// passes the four known kinds.
func (c Config) AnchorsFor(metric string) Anchors {
	switch metric {
	case "par":
		return c.Normalization.PAR
	case "ier":
		return c.Normalization.IER
	case "qdr":
		return c.Normalization.QDR
	default:
		return c.Normalization.POR
	}
}
