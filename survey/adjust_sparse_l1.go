package survey

import (
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// SparseL1Solver minimizes the sum of absolute weighted residuals (weight
// 1/L per shot) instead of their squares. The L1 objective leaves most shots
// essentially untouched and concentrates the misclosure in a few, which is
// the right behavior when blunders are suspected to be localized.
//
// Each axis is posed as a linear program in standard form: the free
// coordinates are split into nonnegative positive/negative parts and every
// observation row gets a nonnegative slack pair (sp, sn) so that
// A·x - sp + sn = b with objective sum of w·(sp + sn).
type SparseL1Solver struct{}

// Name implements Solver.
func (SparseL1Solver) Name() string { return "l1" }

// Adjust implements Solver.
func (SparseL1Solver) Adjust(n *SurveyNetwork) (map[string]Vector3D, error) {
	if len(n.Anchors) < 2 {
		return n.CopyPositions(), nil
	}

	free, index := solvableStations(n)
	if len(free) == 0 {
		return n.CopyPositions(), nil
	}

	shift := n.AnchorCentroid()
	rows := buildRows(n, index, shift, func(shot NetworkShot) float64 {
		return 1.0 / math.Max(shot.Distance, degenerateLengthFloor)
	})
	if len(rows) == 0 {
		return n.CopyPositions(), nil
	}

	nFree := len(free)
	m := len(rows)
	// Variable layout: [x+ (nFree), x- (nFree), sp (m), sn (m)].
	total := 2*nFree + 2*m

	a := mat.NewDense(m, total, nil)
	c := make([]float64, total)
	for i, row := range rows {
		if row.from >= 0 {
			a.Set(i, row.from, -1)
			a.Set(i, nFree+row.from, 1)
		}
		if row.to >= 0 {
			a.Set(i, row.to, 1)
			a.Set(i, nFree+row.to, -1)
		}
		a.Set(i, 2*nFree+i, -1)
		a.Set(i, 2*nFree+m+i, 1)
		c[2*nFree+i] = row.weight
		c[2*nFree+m+i] = row.weight
	}

	adjusted := n.CopyPositions()
	for axis := 0; axis < 3; axis++ {
		b := make([]float64, m)
		for i, row := range rows {
			b[i] = axisComponent(row.rhs, axis)
		}

		_, solution, err := lp.Simplex(c, a, b, 1e-10, nil)
		if err != nil {
			log.Printf("Warning: L1 adjustment failed for axis %d, keeping propagated values: %v", axis, err)
			continue
		}
		for k, name := range free {
			value := solution[k] - solution[nFree+k] + axisComponent(shift, axis)
			adjusted[name] = setAxis(adjusted[name], axis, value)
		}
	}
	return adjusted, nil
}

// setAxis returns v with one coordinate axis replaced (0=x, 1=y, 2=z).
func setAxis(v Vector3D, axis int, value float64) Vector3D {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}
