package survey

import (
	"encoding/json"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// BuildFeatureCollection renders an adjusted network as a GeoJSON feature
// collection in the survey's projected coordinate frame: one Point feature
// per station and one LineString feature per shot. Elevation is carried in a
// "z" property because most consumers ignore the third coordinate.
//
// The optional quality map annotates shots with their traverse quality; the
// optional report marks shots the validator flagged.
func BuildFeatureCollection(n *SurveyNetwork, adjusted map[string]Vector3D, quality map[string]float64, report *ValidationReport) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	violations := make(map[string]bool)
	if report != nil {
		for _, d := range report.Deviations {
			violations[ShotKey(d.From, d.To)] = true
		}
	}

	for _, name := range n.StationNames() {
		pos, ok := adjusted[name]
		if !ok {
			pos = n.Stations[name]
		}
		f := geojson.NewFeature(orb.Point{pos.X, pos.Y})
		f.ID = name
		f.Properties["name"] = name
		f.Properties["z"] = pos.Z
		f.Properties["anchor"] = n.IsAnchor(name)
		if raw := n.Stations[name]; raw != pos {
			f.Properties["correction"] = pos.Sub(raw).Length()
		}
		fc.Append(f)
	}

	for _, shot := range n.Shots {
		from, okFrom := adjusted[shot.From]
		if !okFrom {
			from = n.Stations[shot.From]
		}
		to, okTo := adjusted[shot.To]
		if !okTo {
			to = n.Stations[shot.To]
		}

		f := geojson.NewFeature(orb.LineString{
			orb.Point{from.X, from.Y},
			orb.Point{to.X, to.Y},
		})
		f.Properties["from"] = shot.From
		f.Properties["to"] = shot.To
		f.Properties["measured"] = shot.Delta.Length()
		effective := to.Sub(from).Length()
		f.Properties["effective"] = effective
		if m := shot.Delta.Length(); m > 0 {
			f.Properties["deviation"] = math.Abs(effective-m) / m
		}
		if q, ok := quality[shot.Key()]; ok {
			f.Properties["quality"] = q
		}
		if violations[shot.Key()] {
			f.Properties["violation"] = true
		}
		fc.Append(f)
	}
	return fc
}

// MarshalFeatureCollection is a convenience wrapper producing the GeoJSON
// bytes for an adjusted network.
func MarshalFeatureCollection(n *SurveyNetwork, adjusted map[string]Vector3D, quality map[string]float64, report *ValidationReport) ([]byte, error) {
	return json.Marshal(BuildFeatureCollection(n, adjusted, quality, report))
}
