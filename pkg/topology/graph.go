// Package topology builds a directed device graph from routing-table
// entries and computes betweenness centrality over it. The graph is
// built fresh for each assessment and is read-only once built.
package topology

import (
	"net"
	"sort"
)

// Edge is a directed next-hop relation between two device addresses.
type Edge struct {
	Source  string
	NextHop string
}

// Graph is an arena-style adjacency representation: addresses are
// interned to dense indices and edges are index lists. No pointer
// links between nodes, which keeps centrality computation simple and
// the structure trivially immutable after Build.
type Graph struct {
	index map[string]int
	addrs []string
	out   [][]int
}

// Build constructs the graph from known device addresses and raw
// routing edges. Entries whose next-hop is the unspecified address or
// a loopback address denote local or default routes, not inter-device
// links, and are skipped, as are self-loops. Devices with no
// qualifying edges remain as isolated nodes. Duplicate routing entries
// collapse to a single edge so shortest-path counts stay unbiased.
func Build(addresses []string, edges []Edge) *Graph {
	g := &Graph{index: make(map[string]int)}

	for _, addr := range addresses {
		g.intern(addr)
	}

	type pair struct{ from, to int }
	seen := make(map[pair]bool)

	for _, e := range edges {
		if !usableNextHop(e.NextHop) || e.Source == "" || e.Source == e.NextHop {
			continue
		}
		from := g.intern(e.Source)
		to := g.intern(e.NextHop)
		p := pair{from, to}
		if seen[p] {
			continue
		}
		seen[p] = true
		g.out[from] = append(g.out[from], to)
	}

	return g
}

// usableNextHop reports whether a next-hop address denotes a real
// inter-device link.
func usableNextHop(nextHop string) bool {
	if nextHop == "" {
		return false
	}
	ip := net.ParseIP(nextHop)
	if ip == nil {
		return false
	}
	return !ip.IsUnspecified() && !ip.IsLoopback()
}

func (g *Graph) intern(addr string) int {
	if i, ok := g.index[addr]; ok {
		return i
	}
	i := len(g.addrs)
	g.index[addr] = i
	g.addrs = append(g.addrs, addr)
	g.out = append(g.out, nil)
	return i
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.addrs)
}

// EdgeCount returns the number of distinct directed edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, adj := range g.out {
		n += len(adj)
	}
	return n
}

// Addresses returns the node addresses in insertion order.
func (g *Graph) Addresses() []string {
	out := make([]string, len(g.addrs))
	copy(out, g.addrs)
	return out
}

// Contains reports whether the address is a node in the graph.
func (g *Graph) Contains(addr string) bool {
	_, ok := g.index[addr]
	return ok
}

// KeyNodes returns the addresses whose centrality is at least
// threshold times the maximum centrality, sorted by centrality
// descending. An all-zero centrality map yields no key nodes.
func KeyNodes(centrality map[string]float64, threshold float64) []string {
	maxC := 0.0
	for _, c := range centrality {
		if c > maxC {
			maxC = c
		}
	}
	if maxC == 0 {
		return nil
	}

	cutoff := threshold * maxC
	var keys []string
	for addr, c := range centrality {
		if c >= cutoff {
			keys = append(keys, addr)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if centrality[keys[i]] != centrality[keys[j]] {
			return centrality[keys[i]] > centrality[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
