// Package scout supplies the assessment engine with raw observations:
// device inventory, per-device SNMP counter metrics, and routing-table
// edges. The engine depends only on the Prober interface; the live
// SNMP prober and the simulator are interchangeable implementations.
package scout

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Metrics is one double-sampled measurement of the four per-device
// health indicators. All four are "lower is better": POR and PAR are
// ratios in [0,1], IER and QDR are fractional error/drop rates.
type Metrics struct {
	POR float64 `json:"por"`
	PAR float64 `json:"par"`
	IER float64 `json:"ier"`
	QDR float64 `json:"qdr"`
}

// Device is one discovered host on the subnet.
type Device struct {
	Address     string `json:"address"`
	SNMPEnabled bool   `json:"snmp_enabled"`
}

// RouteEntry is a raw routing-table row from one device. The engine,
// not the prober, decides which entries denote real inter-device
// links.
type RouteEntry struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	NextHop     string `json:"next_hop"`
}

// Prober is the collaborator contract for everything the engine cannot
// compute itself. Implementations must be safe for concurrent
// FetchMetrics calls; the engine fans those out over a worker pool.
type Prober interface {
	// Discover returns the device inventory for a subnet.
	Discover(ctx context.Context, subnet string) ([]Device, error)
	// FetchMetrics takes one double-sampled measurement from a device.
	FetchMetrics(ctx context.Context, address string) (Metrics, error)
	// FetchRoutes returns raw routing-table edges for the subnet.
	FetchRoutes(ctx context.Context, subnet string) ([]RouteEntry, error)
	// Simulated reports whether observations are synthetic. The flag
	// is passed through to the assessment result untouched.
	Simulated() bool
}

// ErrSubnetTooLarge is returned when a sweep would cover more hosts
// than the prober is willing to touch in one run.
var ErrSubnetTooLarge = errors.New("subnet too large to sweep")

// MaxSweepHosts caps the number of addresses a discovery sweep will
// probe. A /20 fits; anything wider is refused rather than silently
// truncated.
const MaxSweepHosts = 4096

// SubnetHosts expands a CIDR into its usable IPv4 host addresses,
// excluding the network and broadcast addresses.
func SubnetHosts(subnet string) ([]string, error) {
	ip, ipNet, err := net.ParseCIDR(subnet)
	if err != nil {
		return nil, fmt.Errorf("invalid subnet %q: %w", subnet, err)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("subnet %q: only IPv4 sweeps are supported", subnet)
	}

	ones, bits := ipNet.Mask.Size()
	hostCount := 1 << (bits - ones)
	if hostCount > MaxSweepHosts {
		return nil, fmt.Errorf("%w: %s has %d addresses (max %d)", ErrSubnetTooLarge, subnet, hostCount, MaxSweepHosts)
	}

	// /31 and /32 have no network/broadcast split
	if hostCount <= 2 {
		hosts := make([]string, 0, hostCount)
		base := ipNet.IP.To4()
		for i := 0; i < hostCount; i++ {
			hosts = append(hosts, addOffset(base, uint32(i)).String())
		}
		return hosts, nil
	}

	hosts := make([]string, 0, hostCount-2)
	base := ipNet.IP.To4()
	for i := 1; i < hostCount-1; i++ {
		hosts = append(hosts, addOffset(base, uint32(i)).String())
	}
	return hosts, nil
}

func addOffset(base net.IP, offset uint32) net.IP {
	v := uint32(base[0])<<24 | uint32(base[1])<<16 | uint32(base[2])<<8 | uint32(base[3])
	v += offset
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
