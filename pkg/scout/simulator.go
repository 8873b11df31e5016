package scout

import (
	"context"
	"fmt"
	"hash/fnv"
)

// Simulator is a Prober that synthesizes plausible observations
// without touching the network. All output is a pure function of the
// seed and the subnet, so runs are reproducible and safe to call
// concurrently. Every record it produces is flagged as simulated.
type Simulator struct {
	seed     int64
	devices  int
	stressed int
}

// NewSimulator creates a simulator that will report the given number
// of devices, the first `stressed` of which carry a POR above any
// sensible Tier 1 threshold.
func NewSimulator(seed int64, devices, stressed int) *Simulator {
	if devices < 0 {
		devices = 0
	}
	if stressed > devices {
		stressed = devices
	}
	return &Simulator{seed: seed, devices: devices, stressed: stressed}
}

// Simulated always reports true.
func (s *Simulator) Simulated() bool { return true }

// Discover returns the first N usable hosts of the subnet. Roughly one
// in eight devices is reported without SNMP capability to exercise the
// engine's exclusion path.
func (s *Simulator) Discover(ctx context.Context, subnet string) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hosts, err := SubnetHosts(subnet)
	if err != nil {
		return nil, err
	}
	if s.devices < len(hosts) {
		hosts = hosts[:s.devices]
	}

	devices := make([]Device, 0, len(hosts))
	for i, host := range hosts {
		snmp := true
		if i >= s.stressed && s.roll(host, "snmp")%8 == 0 {
			snmp = false
		}
		devices = append(devices, Device{Address: host, SNMPEnabled: snmp})
	}
	return devices, nil
}

// FetchMetrics synthesizes one measurement for a device. Values are
// stable per (seed, address) pair regardless of call order.
func (s *Simulator) FetchMetrics(ctx context.Context, address string) (Metrics, error) {
	if err := ctx.Err(); err != nil {
		return Metrics{}, err
	}

	if s.isStressed(address) {
		return Metrics{
			POR: 0.55 + 0.35*s.unit(address, "por"),
			PAR: 0.30 + 0.40*s.unit(address, "par"),
			IER: 0.005 + 0.04*s.unit(address, "ier"),
			QDR: 0.002 + 0.02*s.unit(address, "qdr"),
		}, nil
	}

	return Metrics{
		POR: 0.02 + 0.40*s.unit(address, "por"),
		PAR: 0.01 + 0.30*s.unit(address, "par"),
		IER: 0.0005 * s.unit(address, "ier"),
		QDR: 0.0002 * s.unit(address, "qdr"),
	}, nil
}

// FetchRoutes synthesizes a hub-and-chain topology: the first device
// is the gateway every other device routes through, consecutive
// devices are chained, and each device also carries a default route
// and a loopback entry the engine is expected to discard.
func (s *Simulator) FetchRoutes(ctx context.Context, subnet string) ([]RouteEntry, error) {
	devices, err := s.Discover(ctx, subnet)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, nil
	}

	hub := devices[0].Address
	var routes []RouteEntry
	for i, device := range devices {
		routes = append(routes,
			RouteEntry{Source: device.Address, Destination: "0.0.0.0", NextHop: "0.0.0.0"},
			RouteEntry{Source: device.Address, Destination: "127.0.0.0", NextHop: "127.0.0.1"},
		)
		if device.Address != hub {
			routes = append(routes, RouteEntry{
				Source:      device.Address,
				Destination: fmt.Sprintf("10.%d.0.0", i),
				NextHop:     hub,
			})
		}
		if i > 0 {
			routes = append(routes, RouteEntry{
				Source:      devices[i-1].Address,
				Destination: device.Address,
				NextHop:     device.Address,
			})
		}
	}
	return routes, nil
}

// isStressed reports whether the address is among the first
// `stressed` hosts the simulator hands out. Host addresses ascend, so
// the check is a stable order comparison via the discovery roll.
func (s *Simulator) isStressed(address string) bool {
	if s.stressed == 0 {
		return false
	}
	// The last octet of the i-th generated host is i+1 for the subnets
	// the simulator sweeps; cheap and deterministic.
	return hostOrdinal(address) <= s.stressed
}

func hostOrdinal(address string) int {
	var a, b, c, d int
	if _, err := fmt.Sscanf(address, "%d.%d.%d.%d", &a, &b, &c, &d); err != nil {
		return 0
	}
	return d
}

// roll derives a stable pseudo-random integer for an address and purpose.
func (s *Simulator) roll(address, purpose string) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d/%s/%s", s.seed, purpose, address)
	v := h.Sum64()
	// xorshift mix so nearby addresses don't correlate
	v ^= v << 13
	v ^= v >> 7
	v ^= v << 17
	return v
}

// unit derives a stable float in [0,1).
func (s *Simulator) unit(address, purpose string) float64 {
	return float64(s.roll(address, purpose)%1_000_000) / 1_000_000
}
