package survey

import (
	"errors"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
)

var errNotPositiveDefinite = errors.New("normal matrix is not positive definite")

// Defaults for the quality-weighted solver's iterative back-end.
const (
	DefaultCGMaxIterations = 1000
	DefaultCGTolerance     = 1e-9
	DefaultDenseThreshold  = 64
)

// QualityWeightedSolver weighs each shot by (1/L^2) * (1/q^2), where q is
// the shot's traverse quality from AnalyzeTraverseQuality. Shots on
// historically tight traverses are trusted and protected with a large
// weight; shots on sloppy traverses absorb more of the correction. Shots
// without a quality score, or with a near-zero one, fall back to distance
// weighting alone.
//
// Small networks are solved with a dense least-squares back-end. Larger ones
// assemble the weighted normal equations directly in sparse form (a weighted
// graph Laplacian plus anchor diagonal terms) and run conjugate gradient per
// axis, warm-started from the propagated positions, with a dense direct
// solve as fallback when the iteration fails to converge.
type QualityWeightedSolver struct {
	// Quality maps canonical shot keys to traverse quality scores.
	// A nil map degrades gracefully to pure distance weighting.
	Quality map[string]float64

	// MaxIterations bounds the conjugate gradient iteration per axis.
	MaxIterations int

	// Tolerance is the relative residual target for convergence.
	Tolerance float64

	// DenseThreshold is the largest free-station count solved with the
	// dense back-end.
	DenseThreshold int
}

// NewQualityWeightedSolver returns a quality-weighted solver with default
// iteration bounds.
func NewQualityWeightedSolver(quality map[string]float64) *QualityWeightedSolver {
	return &QualityWeightedSolver{
		Quality:        quality,
		MaxIterations:  DefaultCGMaxIterations,
		Tolerance:      DefaultCGTolerance,
		DenseThreshold: DefaultDenseThreshold,
	}
}

// Name implements Solver.
func (s *QualityWeightedSolver) Name() string { return "quality" }

func (s *QualityWeightedSolver) weight(shot NetworkShot) float64 {
	length := math.Max(shot.Distance, degenerateLengthFloor)
	w := 1.0 / (length * length)
	if q, ok := s.Quality[shot.Key()]; ok && q > qualityEpsilon {
		w /= q * q
	}
	return w
}

// Adjust implements Solver.
func (s *QualityWeightedSolver) Adjust(n *SurveyNetwork) (map[string]Vector3D, error) {
	if len(n.Anchors) < 2 {
		return n.CopyPositions(), nil
	}

	free, index := solvableStations(n)
	if len(free) == 0 {
		return n.CopyPositions(), nil
	}

	threshold := s.DenseThreshold
	if threshold <= 0 {
		threshold = DefaultDenseThreshold
	}
	shift := n.AnchorCentroid()

	if len(free) <= threshold {
		rows := buildRows(n, index, shift, s.weight)
		x, err := solveDense(rows, len(free))
		if err != nil {
			log.Printf("Warning: quality-weighted dense adjustment failed, keeping propagated positions: %v", err)
			return n.CopyPositions(), nil
		}
		return applyDense(n, free, shift, x), nil
	}
	return s.adjustSparse(n, free, index, shift), nil
}

// adjustSparse assembles the weighted normal equations A'WA x = A'Wb without
// ever materializing a design matrix: a free-free shot adds +w to both
// diagonal entries and -w to both off-diagonals, a free-anchor shot adds +w
// to the single diagonal entry and folds the shifted anchor position into
// the right-hand side. The result is symmetric positive definite once
// anchors pin the system, so conjugate gradient applies.
func (s *QualityWeightedSolver) adjustSparse(n *SurveyNetwork, free []string, index map[string]int, shift Vector3D) map[string]Vector3D {
	nFree := len(free)
	normal := newCOO(nFree)
	rhs := [3][]float64{
		make([]float64, nFree),
		make([]float64, nFree),
		make([]float64, nFree),
	}

	for _, row := range buildRows(n, index, shift, s.weight) {
		w := row.weight
		switch {
		case row.from >= 0 && row.to >= 0:
			normal.add(row.from, row.from, w)
			normal.add(row.to, row.to, w)
			normal.add(row.from, row.to, -w)
			normal.add(row.to, row.from, -w)
			for axis := 0; axis < 3; axis++ {
				d := axisComponent(row.rhs, axis)
				rhs[axis][row.from] -= w * d
				rhs[axis][row.to] += w * d
			}
		case row.to >= 0:
			normal.add(row.to, row.to, w)
			for axis := 0; axis < 3; axis++ {
				rhs[axis][row.to] += w * axisComponent(row.rhs, axis)
			}
		default:
			normal.add(row.from, row.from, w)
			for axis := 0; axis < 3; axis++ {
				rhs[axis][row.from] += w * axisComponent(row.rhs, axis)
			}
		}
	}
	a := normal.toCSR()

	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultCGMaxIterations
	}
	tol := s.Tolerance
	if tol <= 0 {
		tol = DefaultCGTolerance
	}

	adjusted := n.CopyPositions()
	for axis := 0; axis < 3; axis++ {
		// Warm start from the propagated positions in the shifted frame.
		x0 := make([]float64, nFree)
		for i, name := range free {
			x0[i] = axisComponent(n.Stations[name].Sub(shift), axis)
		}

		solution, iters, ok := conjugateGradient(a, rhs[axis], x0, maxIter, tol)
		if !ok {
			log.Printf("Warning: conjugate gradient did not converge for axis %d after %d iterations, trying direct solve", axis, iters)
			direct, err := solveNormalDirect(a, rhs[axis])
			if err != nil {
				log.Printf("Warning: direct solve failed for axis %d, keeping propagated values: %v", axis, err)
				continue
			}
			solution = direct
		}
		for i, name := range free {
			adjusted[name] = setAxis(adjusted[name], axis, solution[i]+axisComponent(shift, axis))
		}
	}
	return adjusted
}

// solveNormalDirect densifies the normal matrix and solves by Cholesky.
// Exact and cubic; only reached when the iterative path gives up.
func solveNormalDirect(a *csrMatrix, b []float64) ([]float64, error) {
	sym := mat.NewSymDense(a.n, nil)
	for i := 0; i < a.n; i++ {
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			j := a.colIdx[k]
			if j >= i {
				sym.SetSym(i, j, a.vals[k])
			}
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, errNotPositiveDefinite
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, mat.NewVecDense(len(b), b)); err != nil {
		return nil, err
	}
	out := make([]float64, a.n)
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return out, nil
}
