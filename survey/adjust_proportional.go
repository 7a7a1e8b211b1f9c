package survey

import (
	"log"
	"math"
)

// Default clamp fractions for the proportional strategy. Heading change is
// expressed as a fraction of a half turn, so 0.15 allows 27 degrees.
const (
	DefaultMaxLengthChange  = 0.05
	DefaultMaxHeadingChange = 0.15
)

// ProportionalSolver distributes misclosure by dense weighted least squares
// with weight 1/L^2 per shot, which equalizes percentage change sensitivity
// across shots of different lengths. No traverse-quality information is used.
//
// With Clamp set, each free station's correction is scaled down (never
// redirected) until no incident shot's effective length or heading deviates
// from its measurement by more than the configured fractions, preventing a
// large misclosure from producing an implausible single-shot correction.
type ProportionalSolver struct {
	Clamp            bool
	MaxLengthChange  float64
	MaxHeadingChange float64
}

// NewProportionalSolver returns a proportional solver with clamping enabled
// at the default 5% length / 15% heading fractions.
func NewProportionalSolver() *ProportionalSolver {
	return &ProportionalSolver{
		Clamp:            true,
		MaxLengthChange:  DefaultMaxLengthChange,
		MaxHeadingChange: DefaultMaxHeadingChange,
	}
}

// Name implements Solver.
func (s *ProportionalSolver) Name() string { return "proportional" }

// Adjust implements Solver.
func (s *ProportionalSolver) Adjust(n *SurveyNetwork) (map[string]Vector3D, error) {
	if len(n.Anchors) < 2 {
		return n.CopyPositions(), nil
	}

	free, index := solvableStations(n)
	if len(free) == 0 {
		return n.CopyPositions(), nil
	}

	shift := n.AnchorCentroid()
	rows := buildRows(n, index, shift, func(shot NetworkShot) float64 {
		length := math.Max(shot.Distance, degenerateLengthFloor)
		return 1.0 / (length * length)
	})

	x, err := solveDense(rows, len(free))
	if err != nil {
		log.Printf("Warning: proportional adjustment failed, keeping propagated positions: %v", err)
		return n.CopyPositions(), nil
	}

	adjusted := applyDense(n, free, shift, x)
	if s.Clamp {
		adjusted = s.clampCorrections(n, adjusted)
	}
	return adjusted, nil
}

// clampCorrections scales each free station's correction vector by the
// smallest allowance among its incident shots so that no effective length or
// heading strays too far from the measurement. Scaling preserves the
// correction's direction; it only shrinks its magnitude.
func (s *ProportionalSolver) clampCorrections(n *SurveyNetwork, adjusted map[string]Vector3D) map[string]Vector3D {
	maxLen := s.MaxLengthChange
	if maxLen <= 0 {
		maxLen = DefaultMaxLengthChange
	}
	maxHead := s.MaxHeadingChange
	if maxHead <= 0 {
		maxHead = DefaultMaxHeadingChange
	}

	scales := make(map[string]float64)
	limit := func(name string, scale float64) {
		if n.IsAnchor(name) {
			return
		}
		if current, ok := scales[name]; !ok || scale < current {
			scales[name] = scale
		}
	}

	for _, shot := range n.Shots {
		measured := shot.Delta
		measuredLen := measured.Length()
		if measuredLen <= 0 {
			continue
		}
		effective := adjusted[shot.To].Sub(adjusted[shot.From])

		scale := 1.0
		if r := math.Abs(effective.Length()-measuredLen) / measuredLen; r > maxLen {
			scale = math.Min(scale, maxLen/r)
		}
		if r := headingChange(effective, measured) / math.Pi; r > maxHead {
			scale = math.Min(scale, maxHead/r)
		}
		if scale < 1.0 {
			limit(shot.From, scale)
			limit(shot.To, scale)
		}
	}
	if len(scales) == 0 {
		return adjusted
	}

	clamped := make(map[string]Vector3D, len(adjusted))
	for name, pos := range adjusted {
		if scale, ok := scales[name]; ok {
			correction := pos.Sub(n.Stations[name])
			clamped[name] = n.Stations[name].Add(correction.Scale(scale))
		} else {
			clamped[name] = pos
		}
	}
	return clamped
}

// headingChange returns the unsigned angle in radians between the horizontal
// projections of two displacement vectors. Vertical or near-vertical shots
// have no meaningful heading and report zero.
func headingChange(a, b Vector3D) float64 {
	ha, hb := a.HorizontalLength(), b.HorizontalLength()
	if ha < 1e-12 || hb < 1e-12 {
		return 0
	}
	cos := (a.X*b.X + a.Y*b.Y) / (ha * hb)
	cos = math.Max(-1.0, math.Min(1.0, cos))
	return math.Acos(cos)
}
