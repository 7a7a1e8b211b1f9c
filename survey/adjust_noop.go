package survey

// NoopSolver returns the input positions verbatim. It is the default
// strategy and the baseline the weighted strategies are tested against.
type NoopSolver struct{}

// Name implements Solver.
func (NoopSolver) Name() string { return "none" }

// Adjust implements Solver.
func (NoopSolver) Adjust(n *SurveyNetwork) (map[string]Vector3D, error) {
	return n.CopyPositions(), nil
}
