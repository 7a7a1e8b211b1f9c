package survey

import "sort"

// SurveyNetwork is the aggregate holding everything a solver needs: station
// positions (raw after propagation, or adjusted), the canonical forward shot
// list, and the set of anchor stations whose positions are externally fixed.
//
// The network is read-only after construction. Solvers never mutate it; they
// return a fresh position map. The adjacency index is derived lazily, built
// at most once, and is only invalidated by constructing a new network.
type SurveyNetwork struct {
	Stations map[string]Vector3D
	Shots    []NetworkShot
	Anchors  map[string]bool

	adjacency map[string][]NetworkShot
}

// NewSurveyNetwork builds a network from station positions, forward shots and
// the anchor set. Anchors not present in stations are dropped.
func NewSurveyNetwork(stations map[string]Vector3D, shots []NetworkShot, anchors map[string]bool) *SurveyNetwork {
	if stations == nil {
		stations = make(map[string]Vector3D)
	}
	effective := make(map[string]bool, len(anchors))
	for name := range anchors {
		if _, ok := stations[name]; ok {
			effective[name] = true
		}
	}
	return &SurveyNetwork{
		Stations: stations,
		Shots:    shots,
		Anchors:  effective,
	}
}

// IsAnchor reports whether name is an anchor station.
func (n *SurveyNetwork) IsAnchor(name string) bool {
	return n.Anchors[name]
}

// AnchorNames returns the anchor station names in sorted order.
func (n *SurveyNetwork) AnchorNames() []string {
	names := make([]string, 0, len(n.Anchors))
	for name := range n.Anchors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StationNames returns all station names in sorted order.
func (n *SurveyNetwork) StationNames() []string {
	names := make([]string, 0, len(n.Stations))
	for name := range n.Stations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AnchorCentroid returns the centroid of the anchor positions, or the zero
// vector when the network has no anchors. Weighted solvers subtract it from
// every coordinate before assembling their systems so that coefficients stay
// near zero even when the projected coordinates are on the order of 1e6.
func (n *SurveyNetwork) AnchorCentroid() Vector3D {
	if len(n.Anchors) == 0 {
		return Vector3D{}
	}
	var sum Vector3D
	for name := range n.Anchors {
		sum = sum.Add(n.Stations[name])
	}
	return sum.Scale(1.0 / float64(len(n.Anchors)))
}

// Adjacency returns the undirected adjacency index: station name to every
// shot incident on it, with reverse edges synthesized so each shot appears
// once per endpoint. Built on first use and cached for the lifetime of the
// network.
func (n *SurveyNetwork) Adjacency() map[string][]NetworkShot {
	if n.adjacency == nil {
		adj := make(map[string][]NetworkShot, len(n.Stations))
		for _, shot := range n.Shots {
			adj[shot.From] = append(adj[shot.From], shot)
			adj[shot.To] = append(adj[shot.To], shot.Reverse())
		}
		n.adjacency = adj
	}
	return n.adjacency
}

// CopyPositions returns a fresh copy of the station position map.
func (n *SurveyNetwork) CopyPositions() map[string]Vector3D {
	out := make(map[string]Vector3D, len(n.Stations))
	for name, pos := range n.Stations {
		out[name] = pos
	}
	return out
}

// edgeDeltas builds a bidirectional displacement lookup keyed by directed
// station pair, for O(1) delta lookup while walking a path. When parallel
// shots connect the same pair, the first one wins.
func (n *SurveyNetwork) edgeDeltas() map[string]Vector3D {
	deltas := make(map[string]Vector3D, 2*len(n.Shots))
	for _, shot := range n.Shots {
		fwd := directedKey(shot.From, shot.To)
		if _, ok := deltas[fwd]; !ok {
			deltas[fwd] = shot.Delta
			deltas[directedKey(shot.To, shot.From)] = shot.Delta.Neg()
		}
	}
	return deltas
}
