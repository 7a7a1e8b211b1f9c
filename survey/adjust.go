package survey

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solver adjusts the non-anchor station positions of a network to reconcile
// measurement error against the anchors. Implementations never mutate the
// input network and always return anchor positions identical to the input.
type Solver interface {
	// Name identifies the strategy in config files and diagnostics.
	Name() string

	// Adjust returns an adjusted position for every station in the network.
	Adjust(n *SurveyNetwork) (map[string]Vector3D, error)
}

const (
	// degenerateLengthFloor keeps near-zero measured lengths from blowing
	// up the 1/L weighting.
	degenerateLengthFloor = 0.1

	// qualityEpsilon is the threshold below which a traverse quality score
	// is treated as zero and excluded from inverse-square weighting.
	qualityEpsilon = 1e-9
)

// AdjustNetwork runs the selected solver with the shared preconditions
// applied once: a nil or empty network is a contract violation, and with
// fewer than two anchors no adjustment is geometrically meaningful, so the
// input positions are returned unchanged.
func AdjustNetwork(n *SurveyNetwork, s Solver) (map[string]Vector3D, error) {
	if n == nil {
		return nil, fmt.Errorf("adjust: nil network")
	}
	if len(n.Stations) == 0 {
		return nil, fmt.Errorf("adjust: network has no stations")
	}
	if len(n.Anchors) < 2 {
		log.Printf("Adjustment (%s) skipped: %d anchor(s), need at least 2", s.Name(), len(n.Anchors))
		return n.CopyPositions(), nil
	}
	return s.Adjust(n)
}

// solvableStations returns the free (non-anchor) stations that are connected
// to at least one anchor through the shot graph, in sorted order, together
// with their column indices. Stations outside this set keep their propagated
// positions; including them would make every weighted system singular.
func solvableStations(n *SurveyNetwork) ([]string, map[string]int) {
	adjacency := n.Adjacency()
	neighbors := func(station string) []string {
		shots := adjacency[station]
		out := make([]string, len(shots))
		for i, s := range shots {
			out[i] = s.To
		}
		return out
	}

	reachable := make(map[string]bool)
	breadthFirst(n.AnchorNames(), nil, neighbors, func(_, to string) bool {
		reachable[to] = true
		return true
	})

	var free []string
	for _, name := range n.StationNames() {
		if reachable[name] && !n.IsAnchor(name) {
			free = append(free, name)
		}
	}
	index := make(map[string]int, len(free))
	for i, name := range free {
		index[name] = i
	}
	return free, index
}

// adjustRow is one weighted observation equation. With both endpoints free it
// reads x[to] - x[from] = rhs per axis; with one endpoint anchored the
// anchored term is folded into rhs and the remaining column index is the only
// one >= 0.
type adjustRow struct {
	from   int // column of the from station, -1 when anchored
	to     int // column of the to station, -1 when anchored
	rhs    Vector3D
	weight float64
}

// buildRows classifies every shot and assembles the observation equations
// shared by all weighted strategies. shift is the anchor-centroid origin
// shift; anchor positions enter the right-hand sides already shifted.
// Anchor-to-anchor shots contribute nothing and are skipped, as are shots
// touching stations outside the solvable set.
func buildRows(n *SurveyNetwork, index map[string]int, shift Vector3D, weight func(NetworkShot) float64) []adjustRow {
	rows := make([]adjustRow, 0, len(n.Shots))
	for _, shot := range n.Shots {
		fromAnchor := n.IsAnchor(shot.From)
		toAnchor := n.IsAnchor(shot.To)
		if fromAnchor && toAnchor {
			continue
		}

		w := weight(shot)
		if w <= 0 {
			continue
		}

		switch {
		case fromAnchor:
			col, ok := index[shot.To]
			if !ok {
				continue
			}
			rows = append(rows, adjustRow{
				from:   -1,
				to:     col,
				rhs:    n.Stations[shot.From].Sub(shift).Add(shot.Delta),
				weight: w,
			})
		case toAnchor:
			col, ok := index[shot.From]
			if !ok {
				continue
			}
			rows = append(rows, adjustRow{
				from:   col,
				to:     -1,
				rhs:    n.Stations[shot.To].Sub(shift).Sub(shot.Delta),
				weight: w,
			})
		default:
			fromCol, okFrom := index[shot.From]
			toCol, okTo := index[shot.To]
			if !okFrom || !okTo {
				continue
			}
			rows = append(rows, adjustRow{from: fromCol, to: toCol, rhs: shot.Delta, weight: w})
		}
	}
	return rows
}

// axisComponent extracts one coordinate axis from a vector (0=x, 1=y, 2=z).
func axisComponent(v Vector3D, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// solveDense solves the weighted least-squares system over all three axes at
// once via QR, returning the solution matrix with one column per axis.
func solveDense(rows []adjustRow, nFree int) (*mat.Dense, error) {
	m := len(rows)
	if m == 0 || nFree == 0 {
		return nil, fmt.Errorf("empty system: %d rows, %d unknowns", m, nFree)
	}
	if m < nFree {
		return nil, fmt.Errorf("underdetermined system: %d rows, %d unknowns", m, nFree)
	}

	a := mat.NewDense(m, nFree, nil)
	b := mat.NewDense(m, 3, nil)
	for i, row := range rows {
		sw := math.Sqrt(row.weight)
		if row.from >= 0 && row.to >= 0 {
			a.Set(i, row.from, -sw)
			a.Set(i, row.to, sw)
		} else if row.to >= 0 {
			a.Set(i, row.to, sw)
		} else {
			a.Set(i, row.from, sw)
		}
		for axis := 0; axis < 3; axis++ {
			b.Set(i, axis, sw*axisComponent(row.rhs, axis))
		}
	}

	var qr mat.QR
	qr.Factorize(a)
	var x mat.Dense
	if err := qr.SolveTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("least-squares solve: %w", err)
	}
	return &x, nil
}

// applyDense translates a dense per-axis solution back out of the shifted
// frame onto a fresh position map. Stations outside free keep their input
// positions; anchors are untouched by construction.
func applyDense(n *SurveyNetwork, free []string, shift Vector3D, x *mat.Dense) map[string]Vector3D {
	adjusted := n.CopyPositions()
	for i, name := range free {
		adjusted[name] = Vector3D{
			X: x.At(i, 0),
			Y: x.At(i, 1),
			Z: x.At(i, 2),
		}.Add(shift)
	}
	return adjusted
}
