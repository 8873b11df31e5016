package topology

import (
	"math"
	"testing"
)

func buildGraph(t *testing.T, addresses []string, edges []Edge) *Graph {
	t.Helper()
	return Build(addresses, edges)
}

func TestBetweennessCentrality_EmptyGraph(t *testing.T) {
	g := buildGraph(t, nil, nil)

	result := BetweennessCentrality(g)
	if len(result) != 0 {
		t.Errorf("Expected no scores for empty graph, got %d", len(result))
	}
}

func TestBetweennessCentrality_FewerThanThreeNodes(t *testing.T) {
	g := buildGraph(t, []string{"10.0.0.1", "10.0.0.2"}, []Edge{
		{Source: "10.0.0.1", NextHop: "10.0.0.2"},
	})

	result := BetweennessCentrality(g)
	for addr, c := range result {
		if c != 0 {
			t.Errorf("Node %s should have centrality 0 in a 2-node graph, got %f", addr, c)
		}
	}
}

func TestBetweennessCentrality_LinearChain(t *testing.T) {
	// .1 -> .2 -> .3: the middle node is the sole intermediary for the
	// (.1, .3) pair.
	g := buildGraph(t, nil, []Edge{
		{Source: "10.0.0.1", NextHop: "10.0.0.2"},
		{Source: "10.0.0.2", NextHop: "10.0.0.3"},
	})

	result := BetweennessCentrality(g)

	// Raw betweenness of the middle node is 1 (the single .1 -> .3
	// path); normalized by (n-1)(n-2) = 2 for n = 3.
	if math.Abs(result["10.0.0.2"]-0.5) > 1e-9 {
		t.Errorf("Expected middle centrality 0.5, got %f", result["10.0.0.2"])
	}
	if result["10.0.0.1"] != 0 || result["10.0.0.3"] != 0 {
		t.Errorf("Endpoints should have centrality 0, got %f and %f",
			result["10.0.0.1"], result["10.0.0.3"])
	}
}

func TestBetweennessCentrality_DiamondSplitsCredit(t *testing.T) {
	// .1 -> .2 -> .4 and .1 -> .3 -> .4: two equal shortest paths, so
	// the intermediaries each carry half the (.1, .4) credit.
	g := buildGraph(t, nil, []Edge{
		{Source: "10.0.0.1", NextHop: "10.0.0.2"},
		{Source: "10.0.0.1", NextHop: "10.0.0.3"},
		{Source: "10.0.0.2", NextHop: "10.0.0.4"},
		{Source: "10.0.0.3", NextHop: "10.0.0.4"},
	})

	result := BetweennessCentrality(g)

	// Raw 0.5 each, normalized by (4-1)(4-2) = 6.
	want := 0.5 / 6.0
	if math.Abs(result["10.0.0.2"]-want) > 1e-9 {
		t.Errorf("Expected centrality %f, got %f", want, result["10.0.0.2"])
	}
	if math.Abs(result["10.0.0.2"]-result["10.0.0.3"]) > 1e-9 {
		t.Errorf("Symmetric intermediaries should tie: %f vs %f",
			result["10.0.0.2"], result["10.0.0.3"])
	}
}

func TestBetweennessCentrality_DisconnectedPairsContributeZero(t *testing.T) {
	// Two separate components; nodes in one never sit on paths of the
	// other.
	g := buildGraph(t, nil, []Edge{
		{Source: "10.0.0.1", NextHop: "10.0.0.2"},
		{Source: "10.0.0.2", NextHop: "10.0.0.3"},
		{Source: "10.0.1.1", NextHop: "10.0.1.2"},
	})

	result := BetweennessCentrality(g)

	if result["10.0.1.1"] != 0 || result["10.0.1.2"] != 0 {
		t.Errorf("Disconnected pair nodes should be 0, got %f and %f",
			result["10.0.1.1"], result["10.0.1.2"])
	}
	// The chain middle still carries the single .1 -> .3 path,
	// normalized by (5-1)(5-2) = 12.
	if math.Abs(result["10.0.0.2"]-1.0/12.0) > 1e-9 {
		t.Errorf("Expected centrality %f, got %f", 1.0/12.0, result["10.0.0.2"])
	}
}

func TestBetweennessCentrality_ValuesInUnitRange(t *testing.T) {
	// Several spokes routing through one hub.
	g := buildGraph(t, nil, []Edge{
		{Source: "10.0.0.1", NextHop: "10.0.0.9"},
		{Source: "10.0.0.2", NextHop: "10.0.0.9"},
		{Source: "10.0.0.3", NextHop: "10.0.0.9"},
		{Source: "10.0.0.9", NextHop: "10.0.0.4"},
		{Source: "10.0.0.9", NextHop: "10.0.0.5"},
		{Source: "10.0.0.4", NextHop: "10.0.0.1"},
	})

	result := BetweennessCentrality(g)
	for addr, c := range result {
		if c < 0 || c > 1 {
			t.Errorf("Centrality of %s out of [0,1]: %f", addr, c)
		}
	}
	if result["10.0.0.9"] == 0 {
		t.Error("Hub node should have non-zero centrality")
	}
}

func TestBetweennessCentrality_IsolatedNodeZero(t *testing.T) {
	g := buildGraph(t, []string{"10.0.2.1"}, []Edge{
		{Source: "10.0.0.1", NextHop: "10.0.0.2"},
		{Source: "10.0.0.2", NextHop: "10.0.0.3"},
	})

	result := BetweennessCentrality(g)
	if result["10.0.2.1"] != 0 {
		t.Errorf("Isolated node should have centrality 0, got %f", result["10.0.2.1"])
	}
}
