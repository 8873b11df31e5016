package assess

// Aggregate combines per-device scores into one subnet score, weighting
// each device by 1 minus its betweenness centrality. A structurally
// central device is exactly the one an aggressive scan would hurt most,
// so its individual health is allowed to pull the subnet score down
// less than a leaf's would pull it up: the subnet is only as scannable
// as its chokepoints permit.
//
// Devices absent from the centrality map count as leaves (centrality
// zero). If every device is maximally central the weight mass vanishes
// and the plain mean is used instead.
func Aggregate(scores map[string]float64, centrality map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	weighted := 0.0
	mass := 0.0
	for addr, score := range scores {
		w := 1 - centrality[addr]
		if w < 0 {
			w = 0
		}
		weighted += w * score
		mass += w
	}

	if mass == 0 {
		mean := 0.0
		for _, score := range scores {
			mean += score
		}
		return mean / float64(len(scores))
	}
	return weighted / mass
}
