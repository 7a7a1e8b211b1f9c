package survey

import (
	"math"
	"sort"
)

// cooMatrix accumulates square-matrix entries in coordinate form. Duplicate
// entries are summed when converting to CSR, which lets the normal-equation
// assembly simply add Laplacian contributions shot by shot.
type cooMatrix struct {
	n    int
	rows []int
	cols []int
	vals []float64
}

func newCOO(n int) *cooMatrix {
	return &cooMatrix{n: n}
}

func (m *cooMatrix) add(row, col int, v float64) {
	m.rows = append(m.rows, row)
	m.cols = append(m.cols, col)
	m.vals = append(m.vals, v)
}

// csrMatrix is a compressed sparse row matrix supporting the matrix-vector
// product the conjugate gradient iteration needs.
type csrMatrix struct {
	n      int
	rowPtr []int
	colIdx []int
	vals   []float64
}

// toCSR sorts the triplets by row then column, merges duplicates, and packs
// the result into CSR form.
func (m *cooMatrix) toCSR() *csrMatrix {
	order := make([]int, len(m.vals))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if m.rows[ia] != m.rows[ib] {
			return m.rows[ia] < m.rows[ib]
		}
		return m.cols[ia] < m.cols[ib]
	})

	csr := &csrMatrix{n: m.n, rowPtr: make([]int, m.n+1)}
	lastRow, lastCol := -1, -1
	for _, idx := range order {
		row, col, v := m.rows[idx], m.cols[idx], m.vals[idx]
		if row == lastRow && col == lastCol {
			csr.vals[len(csr.vals)-1] += v
			continue
		}
		csr.colIdx = append(csr.colIdx, col)
		csr.vals = append(csr.vals, v)
		csr.rowPtr[row+1]++
		lastRow, lastCol = row, col
	}
	for i := 0; i < m.n; i++ {
		csr.rowPtr[i+1] += csr.rowPtr[i]
	}
	return csr
}

// mulVec computes dst = A*x. dst and x must both have length n.
func (a *csrMatrix) mulVec(dst, x []float64) {
	for i := 0; i < a.n; i++ {
		sum := 0.0
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			sum += a.vals[k] * x[a.colIdx[k]]
		}
		dst[i] = sum
	}
}

// at returns A[i,j] by scanning row i. Used only when densifying for the
// direct fallback, never in the iteration hot path.
func (a *csrMatrix) at(i, j int) float64 {
	for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
		if a.colIdx[k] == j {
			return a.vals[k]
		}
	}
	return 0
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// conjugateGradient solves A*x = b for a symmetric positive definite A,
// starting from x0. It returns the solution, the iterations used, and
// whether the residual dropped below tol relative to the norm of b within
// maxIter iterations. The iteration count is a hard bound; the routine
// terminates regardless of input pathology.
func conjugateGradient(a *csrMatrix, b, x0 []float64, maxIter int, tol float64) ([]float64, int, bool) {
	n := a.n
	x := make([]float64, n)
	copy(x, x0)

	r := make([]float64, n)
	a.mulVec(r, x)
	for i := range r {
		r[i] = b[i] - r[i]
	}
	p := make([]float64, n)
	copy(p, r)
	ap := make([]float64, n)

	bNorm := math.Sqrt(dot(b, b))
	if bNorm == 0 {
		bNorm = 1
	}
	rs := dot(r, r)

	for iter := 0; iter < maxIter; iter++ {
		if math.Sqrt(rs) <= tol*bNorm {
			return x, iter, true
		}
		a.mulVec(ap, p)
		pap := dot(p, ap)
		if pap <= 0 || math.IsNaN(pap) {
			// Matrix is not positive definite along p; bail out so the
			// caller can fall back to a direct solve.
			return x, iter, false
		}
		alpha := rs / pap
		for i := range x {
			x[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}
		rsNext := dot(r, r)
		beta := rsNext / rs
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
		rs = rsNext
	}
	return x, maxIter, math.Sqrt(rs) <= tol*bNorm
}
