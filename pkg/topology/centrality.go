package topology

// BetweennessCentrality computes normalized betweenness centrality for
// every node: the fraction of shortest paths between other node pairs
// that pass through it, with ties among multiple shortest paths
// splitting credit proportionally. Paths are unweighted (edge count).
//
// Runs one Brandes pass per source: BFS accumulating path counts, then
// back-propagation of pair dependencies in reverse BFS order. Raw
// values are divided by (n-1)(n-2), the maximum for a directed graph,
// so every value lands in [0,1]. Graphs with fewer than three nodes
// have no non-trivial betweenness and return all zeros.
func BetweennessCentrality(g *Graph) map[string]float64 {
	n := g.NodeCount()
	betweenness := make([]float64, n)

	sigma := make([]float64, n)
	distance := make([]int, n)
	delta := make([]float64, n)
	predecessors := make([][]int, n)
	stack := make([]int, 0, n)
	queue := make([]int, 0, n)

	for source := 0; source < n; source++ {
		stack = stack[:0]
		queue = queue[:0]
		for i := 0; i < n; i++ {
			sigma[i] = 0
			distance[i] = -1
			delta[i] = 0
			predecessors[i] = predecessors[i][:0]
		}

		sigma[source] = 1
		distance[source] = 0
		queue = append(queue, source)

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)

			for _, w := range g.out[v] {
				if distance[w] < 0 {
					queue = append(queue, w)
					distance[w] = distance[v] + 1
				}
				if distance[w] == distance[v]+1 {
					sigma[w] += sigma[v]
					predecessors[w] = append(predecessors[w], v)
				}
			}
		}

		// Back-propagation of dependencies
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, pred := range predecessors[w] {
				delta[pred] += (sigma[pred] / sigma[w]) * (1.0 + delta[w])
			}
			if w != source {
				betweenness[w] += delta[w]
			}
		}
	}

	result := make(map[string]float64, n)
	if n > 2 {
		normFactor := 1.0 / float64((n-1)*(n-2))
		for i, addr := range g.addrs {
			result[addr] = betweenness[i] * normFactor
		}
	} else {
		for _, addr := range g.addrs {
			result[addr] = 0
		}
	}
	return result
}
