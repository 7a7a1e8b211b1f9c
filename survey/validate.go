package survey

import "math"

// DefaultMaxDeviation is the default allowed relative difference between a
// shot's measured length and its effective length after adjustment.
const DefaultMaxDeviation = 0.05

// ShotDeviation describes one shot whose effective length drifted beyond the
// allowed fraction of its measured length.
type ShotDeviation struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Measured  float64 `json:"measured"`
	Effective float64 `json:"effective"`
	Deviation float64 `json:"deviation"`
}

// ValidationReport summarizes how far an adjustment moved shots away from
// their measurements. It is advisory only; a report never rejects a result.
type ValidationReport struct {
	Checked    int             `json:"checked"`
	Violations int             `json:"violations"`
	Deviations []ShotDeviation `json:"deviations,omitempty"`
}

// ValidateAdjustment recomputes every shot's effective length from the
// adjusted endpoint positions and flags those whose relative deviation from
// the measured length exceeds maxDeviation. A maxDeviation of zero or below
// uses DefaultMaxDeviation. Measured lengths are taken from the corrected
// shot deltas so the comparison is unit-consistent.
func ValidateAdjustment(n *SurveyNetwork, adjusted map[string]Vector3D, maxDeviation float64) ValidationReport {
	if maxDeviation <= 0 {
		maxDeviation = DefaultMaxDeviation
	}

	report := ValidationReport{}
	for _, shot := range n.Shots {
		from, okFrom := adjusted[shot.From]
		to, okTo := adjusted[shot.To]
		if !okFrom || !okTo {
			continue
		}
		measured := shot.Delta.Length()
		if measured <= 0 {
			continue
		}
		report.Checked++

		effective := to.Sub(from).Length()
		deviation := math.Abs(effective-measured) / measured
		if deviation > maxDeviation {
			report.Violations++
			report.Deviations = append(report.Deviations, ShotDeviation{
				From:      shot.From,
				To:        shot.To,
				Measured:  measured,
				Effective: effective,
				Deviation: deviation,
			})
		}
	}
	return report
}
