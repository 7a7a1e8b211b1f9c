package survey

import (
	"fmt"
	"log"
	"math"
	"sort"
)

// DeclinationFunc supplies the magnetic declination in degrees (east
// positive) for a survey trip. The at position is a hint for geodetic
// lookups: an anchor position when one exists, otherwise the position of the
// station the propagation is currently standing on. The propagator calls it
// at most once per distinct trip.
type DeclinationFunc func(trip string, at Vector3D) float64

// Propagator assigns an initial 3-D position to every station reachable from
// at least one anchor, flooding outward from all anchors simultaneously and
// applying declination and convergence correction to each shot as it is
// traversed.
type Propagator struct {
	// Convergence is the project-wide grid convergence angle in degrees.
	Convergence float64

	// LengthFactor converts measured shot lengths to meters (1.0 when the
	// survey is already metric, 0.3048 for feet).
	LengthFactor float64

	// Declination supplies per-trip declination. A nil func means zero
	// declination everywhere.
	Declination DeclinationFunc

	// Origin is the assumed position of the first discovered station when
	// the network has no usable anchor at all.
	Origin Vector3D
}

// NewPropagator returns a propagator with metric lengths and no angular
// corrections.
func NewPropagator() *Propagator {
	return &Propagator{LengthFactor: 1.0}
}

// Propagate builds a SurveyNetwork from raw shots and fixed anchor
// positions. Shots flagged for exclusion are skipped. Anchors that appear in
// no shot are excluded from the network's anchor set with a warning, since
// every downstream solver assumes its anchors are reachable in the shot
// graph.
func (p *Propagator) Propagate(shots []ShotRecord, anchors map[string]Vector3D) (*SurveyNetwork, error) {
	usable := make([]ShotRecord, 0, len(shots))
	for _, s := range shots {
		if s.ExcludeProcessing || s.ExcludePlot {
			continue
		}
		if s.From == "" || s.To == "" {
			return nil, fmt.Errorf("shot with empty station name: %q -> %q", s.From, s.To)
		}
		usable = append(usable, s)
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("no usable shots to propagate")
	}

	// Adjacency over raw shots, both directions. The directed edge table
	// keeps the first measurement per direction for position assignment.
	adjacency := make(map[string][]string)
	edges := make(map[string]ShotRecord)
	for _, s := range usable {
		r := s.Reverse()
		if _, ok := edges[directedKey(s.From, s.To)]; !ok {
			edges[directedKey(s.From, s.To)] = s
			edges[directedKey(r.From, r.To)] = r
			adjacency[s.From] = append(adjacency[s.From], s.To)
			adjacency[s.To] = append(adjacency[s.To], s.From)
		}
	}

	// Seed from every anchor that participates in the shot graph.
	effective := make(map[string]bool)
	positions := make(map[string]Vector3D)
	anchorNames := make([]string, 0, len(anchors))
	for name := range anchors {
		anchorNames = append(anchorNames, name)
	}
	sort.Strings(anchorNames)

	var starts []string
	for _, name := range anchorNames {
		if len(adjacency[name]) == 0 {
			log.Printf("Warning: anchor %q appears in no shot; excluding it from adjustment", name)
			continue
		}
		effective[name] = true
		positions[name] = anchors[name]
		starts = append(starts, name)
	}

	anchorRef, haveAnchorRef := Vector3D{}, false
	if len(starts) > 0 {
		anchorRef, haveAnchorRef = anchors[starts[0]], true
	} else {
		// Fully relative network: pin the first recorded station to the
		// project origin so propagation can still run.
		log.Printf("Warning: no usable anchors; propagating relative to origin (%.1f, %.1f, %.1f)",
			p.Origin.X, p.Origin.Y, p.Origin.Z)
		first := usable[0].From
		positions[first] = p.Origin
		starts = append(starts, first)
	}

	declinations := make(map[string]float64)
	declinationFor := func(trip string, at Vector3D) float64 {
		if p.Declination == nil {
			return 0
		}
		if d, ok := declinations[trip]; ok {
			return d
		}
		ref := at
		if haveAnchorRef {
			ref = anchorRef
		}
		d := p.Declination(trip, ref)
		declinations[trip] = d
		return d
	}

	shotDelta := func(s ShotRecord, at Vector3D) Vector3D {
		decl := declinationFor(s.Trip, at)
		azimuth := (s.Azimuth + decl - p.Convergence) * math.Pi / 180.0
		inclination := s.Inclination * math.Pi / 180.0
		length := s.Length * p.LengthFactor
		horizontal := length * math.Cos(inclination)
		return Vector3D{
			X: horizontal * math.Sin(azimuth),
			Y: horizontal * math.Cos(azimuth),
			Z: length * math.Sin(inclination),
		}
	}

	breadthFirst(starts, nil,
		func(station string) []string { return adjacency[station] },
		func(from, to string) bool {
			edge := edges[directedKey(from, to)]
			positions[to] = positions[from].Add(shotDelta(edge, positions[from]))
			return true
		})

	// Canonical forward shot list, deduplicated by unordered pair. Shots
	// whose endpoints were both placed by other routes still enter the list
	// so the solvers can weigh them; they move no station here.
	seen := make(map[string]bool)
	networkShots := make([]NetworkShot, 0, len(usable))
	for _, s := range usable {
		from, okFrom := positions[s.From]
		_, okTo := positions[s.To]
		if !okFrom || !okTo {
			continue
		}
		key := ShotKey(s.From, s.To)
		if seen[key] {
			continue
		}
		seen[key] = true
		networkShots = append(networkShots, NetworkShot{
			From:     s.From,
			To:       s.To,
			Delta:    shotDelta(s, from),
			Distance: s.Length,
		})
	}

	if len(positions) == 0 {
		return nil, fmt.Errorf("propagation placed no stations")
	}
	return NewSurveyNetwork(positions, networkShots, effective), nil
}
