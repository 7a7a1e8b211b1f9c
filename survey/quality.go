package survey

// AnalyzeTraverseQuality scores every shot that lies on a traverse between a
// pair of anchors. For each unordered anchor pair it finds a shortest
// connecting path (never passing through a third anchor), computes the
// misclosure between the summed measured deltas and the known anchor-to-
// anchor offset, and spreads that misclosure evenly over the path's shots. A
// shot on several anchor-pair traverses keeps its best (lowest) score.
//
// The result maps canonical shot keys (ShotKey) to meters-per-shot quality.
// Shots on no anchor-pair traverse are absent and fall back to distance-only
// weighting in the solvers.
func AnalyzeTraverseQuality(n *SurveyNetwork) map[string]float64 {
	quality := make(map[string]float64)
	anchors := n.AnchorNames()
	if len(anchors) < 2 {
		return quality
	}

	adjacency := n.Adjacency()
	neighbors := func(station string) []string {
		shots := adjacency[station]
		out := make([]string, len(shots))
		for i, s := range shots {
			out[i] = s.To
		}
		return out
	}
	deltas := n.edgeDeltas()

	for i := 0; i < len(anchors); i++ {
		for j := i + 1; j < len(anchors); j++ {
			a, b := anchors[i], anchors[j]

			// Paths through other anchors are credited to those pairs
			// instead, so block every anchor except the two endpoints.
			blocked := make(map[string]bool, len(anchors))
			for _, name := range anchors {
				if name != a && name != b {
					blocked[name] = true
				}
			}

			found := false
			parent := breadthFirst([]string{a}, blocked, neighbors,
				func(_, to string) bool {
					if to == b {
						found = true
						return false
					}
					return true
				})
			if !found {
				continue
			}
			path := pathFromParents(parent, map[string]bool{a: true}, b)
			if len(path) < 2 {
				continue
			}

			var sum Vector3D
			for k := 0; k+1 < len(path); k++ {
				sum = sum.Add(deltas[directedKey(path[k], path[k+1])])
			}
			misclosure := n.Stations[a].Add(sum).Sub(n.Stations[b])
			score := misclosure.Length() / float64(len(path)-1)

			for k := 0; k+1 < len(path); k++ {
				key := ShotKey(path[k], path[k+1])
				if current, ok := quality[key]; !ok || score < current {
					quality[key] = score
				}
			}
		}
	}
	return quality
}
