package scout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/subnetscout/prescan/pkg/config"
	"github.com/subnetscout/prescan/pkg/logging"
	"github.com/subnetscout/prescan/pkg/parallel"
)

// IP-MIB and RFC1213 OIDs the prober reads.
const (
	oidSysDescr       = "1.3.6.1.2.1.1.1.0"
	oidIPInReceives   = "1.3.6.1.2.1.4.3.0"  // input packet total
	oidIPInHdrErrors  = "1.3.6.1.2.1.4.4.0"  // input header errors
	oidIPInAddrErrors = "1.3.6.1.2.1.4.5.0"  // input address errors
	oidIPInDiscards   = "1.3.6.1.2.1.4.8.0"  // input discards
	oidIPOutRequests  = "1.3.6.1.2.1.4.10.0" // output packet total
	oidIPRouteDest    = "1.3.6.1.2.1.4.21.1.1"
	oidIPRouteNextHop = "1.3.6.1.2.1.4.21.1.7"
)

var counterOIDs = []string{
	oidIPInReceives,
	oidIPInHdrErrors,
	oidIPInAddrErrors,
	oidIPInDiscards,
	oidIPOutRequests,
}

// SNMPProber probes live devices over SNMP v2c. Discovery is a
// bounded concurrent sysDescr sweep; metrics come from two counter
// samples spaced by the configured interval; topology comes from
// ipRouteTable walks. Each call opens its own session, so concurrent
// FetchMetrics calls are independent.
type SNMPProber struct {
	cfg    config.ProbeConfig
	logger logging.Logger
}

// NewSNMPProber creates a live prober with the given transport settings.
func NewSNMPProber(cfg config.ProbeConfig, logger logging.Logger) *SNMPProber {
	return &SNMPProber{
		cfg:    cfg,
		logger: logger.With(logging.Component("snmp-prober")),
	}
}

// Simulated always reports false for the live prober.
func (p *SNMPProber) Simulated() bool { return false }

// session builds an SNMP session for one target. The caller owns the
// connection and must close it.
func (p *SNMPProber) session(ctx context.Context, address string) (*gosnmp.GoSNMP, error) {
	client := &gosnmp.GoSNMP{
		Context:   ctx,
		Target:    address,
		Port:      p.cfg.Port,
		Community: p.cfg.Community,
		Version:   gosnmp.Version2c,
		Timeout:   p.cfg.Timeout,
		Retries:   1,
	}
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("snmp connect %s: %w", address, err)
	}
	return client, nil
}

// Discover sweeps the subnet with sysDescr probes. Hosts that answer
// SNMP are returned as SNMP-capable devices; silent hosts are not
// inventoried, they can contribute nothing to the assessment.
func (p *SNMPProber) Discover(ctx context.Context, subnet string) ([]Device, error) {
	hosts, err := SubnetHosts(subnet)
	if err != nil {
		return nil, err
	}

	timer := logging.StartTimer(p.logger, "discovery sweep finished",
		logging.Subnet(subnet), logging.Int("hosts", len(hosts)))

	var mu sync.Mutex
	var devices []Device

	err = parallel.ForEach(p.cfg.Workers, len(hosts), func(i int) {
		if ctx.Err() != nil {
			return
		}
		if p.respondsToSNMP(ctx, hosts[i]) {
			mu.Lock()
			devices = append(devices, Device{Address: hosts[i], SNMPEnabled: true})
			mu.Unlock()
		}
	})
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].Address < devices[j].Address })
	timer.End()
	return devices, nil
}

// respondsToSNMP checks a single host with a sysDescr get.
func (p *SNMPProber) respondsToSNMP(ctx context.Context, address string) bool {
	client, err := p.session(ctx, address)
	if err != nil {
		return false
	}
	defer client.Conn.Close()

	result, err := client.Get([]string{oidSysDescr})
	if err != nil || result.Error != gosnmp.NoError {
		return false
	}
	return len(result.Variables) > 0
}

// FetchMetrics reads the IP-MIB counters twice, spaced by the sample
// interval, and converts the deltas into the four health ratios. POR
// and PAR anchor the packet rates against the configured maximum; IER
// and QDR are error and discard counts over input packets, zero when
// the device saw no input traffic during the window.
func (p *SNMPProber) FetchMetrics(ctx context.Context, address string) (Metrics, error) {
	client, err := p.session(ctx, address)
	if err != nil {
		return Metrics{}, err
	}
	defer client.Conn.Close()

	t1, err := p.readCounters(client)
	if err != nil {
		return Metrics{}, fmt.Errorf("snmp unreachable %s: %w", address, err)
	}

	select {
	case <-ctx.Done():
		return Metrics{}, ctx.Err()
	case <-time.After(p.cfg.SampleInterval):
	}

	t2, err := p.readCounters(client)
	if err != nil {
		return Metrics{}, fmt.Errorf("snmp sample interrupted %s: %w", address, err)
	}

	interval := p.cfg.SampleInterval.Seconds()
	m := computeMetrics(t1, t2, interval, p.cfg.MaxPacketRate)
	p.logger.Debug("metrics sampled", logging.Device(address),
		logging.Float64("por", m.POR), logging.Float64("par", m.PAR),
		logging.Float64("ier", m.IER), logging.Float64("qdr", m.QDR))
	return m, nil
}

// counterSample holds one reading of the five IP-MIB counters.
type counterSample struct {
	inReceives   int64
	inHdrErrors  int64
	inAddrErrors int64
	inDiscards   int64
	outRequests  int64
}

func (p *SNMPProber) readCounters(client *gosnmp.GoSNMP) (counterSample, error) {
	result, err := client.Get(counterOIDs)
	if err != nil {
		return counterSample{}, err
	}
	if result.Error != gosnmp.NoError {
		return counterSample{}, fmt.Errorf("snmp error status %v", result.Error)
	}

	var sample counterSample
	for _, pdu := range result.Variables {
		value := gosnmp.ToBigInt(pdu.Value).Int64()
		switch strings.TrimPrefix(pdu.Name, ".") {
		case oidIPInReceives:
			sample.inReceives = value
		case oidIPInHdrErrors:
			sample.inHdrErrors = value
		case oidIPInAddrErrors:
			sample.inAddrErrors = value
		case oidIPInDiscards:
			sample.inDiscards = value
		case oidIPOutRequests:
			sample.outRequests = value
		}
	}
	return sample, nil
}

// computeMetrics turns two counter samples into the four ratios.
// Counter wrap or device resets can make deltas negative; those clamp
// to zero rather than producing nonsense rates.
func computeMetrics(t1, t2 counterSample, interval, maxRate float64) Metrics {
	if interval <= 0 {
		return Metrics{}
	}

	deltaOut := clampDelta(t2.outRequests - t1.outRequests)
	deltaIn := clampDelta(t2.inReceives - t1.inReceives)
	deltaErr := clampDelta((t2.inHdrErrors + t2.inAddrErrors) - (t1.inHdrErrors + t1.inAddrErrors))
	deltaDrop := clampDelta(t2.inDiscards - t1.inDiscards)

	m := Metrics{
		POR: capRatio((deltaOut / interval) / maxRate),
		PAR: capRatio((deltaIn / interval) / maxRate),
	}
	if deltaIn > 0 {
		m.IER = capRatio(deltaErr / deltaIn)
		m.QDR = capRatio(deltaDrop / deltaIn)
	}
	return m
}

func clampDelta(d int64) float64 {
	if d < 0 {
		return 0
	}
	return float64(d)
}

func capRatio(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

// FetchRoutes walks the ipRouteTable of every discovered device and
// joins destination and next-hop columns on the route index. Entries
// are returned raw; filtering of loopback and default routes is the
// engine's decision.
func (p *SNMPProber) FetchRoutes(ctx context.Context, subnet string) ([]RouteEntry, error) {
	devices, err := p.Discover(ctx, subnet)
	if err != nil {
		return nil, err
	}

	var routes []RouteEntry
	for _, device := range devices {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		entries, err := p.routesFor(ctx, device.Address)
		if err != nil {
			p.logger.Warn("route table walk failed",
				logging.Device(device.Address), logging.Error(err))
			continue
		}
		routes = append(routes, entries...)
	}

	p.logger.Info("route tables collected", logging.Subnet(subnet),
		logging.Int("routes", len(routes)))
	return routes, nil
}

func (p *SNMPProber) routesFor(ctx context.Context, address string) ([]RouteEntry, error) {
	client, err := p.session(ctx, address)
	if err != nil {
		return nil, err
	}
	defer client.Conn.Close()

	dests, err := walkColumn(client, oidIPRouteDest)
	if err != nil {
		return nil, err
	}
	nextHops, err := walkColumn(client, oidIPRouteNextHop)
	if err != nil {
		return nil, err
	}

	var entries []RouteEntry
	for index, dest := range dests {
		nextHop, ok := nextHops[index]
		if !ok {
			continue
		}
		entries = append(entries, RouteEntry{
			Source:      address,
			Destination: dest,
			NextHop:     nextHop,
		})
	}
	return entries, nil
}

// walkColumn walks one ipRouteTable column and keys rows by the OID
// suffix (the route index), so the two columns can be joined even if
// the agent returns them in different orders.
func walkColumn(client *gosnmp.GoSNMP, root string) (map[string]string, error) {
	pdus, err := client.WalkAll(root)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]string, len(pdus))
	for _, pdu := range pdus {
		name := strings.TrimPrefix(pdu.Name, ".")
		suffix := strings.TrimPrefix(strings.TrimPrefix(name, root), ".")
		switch v := pdu.Value.(type) {
		case string:
			rows[suffix] = v
		case []byte:
			rows[suffix] = string(v)
		}
	}
	return rows, nil
}
