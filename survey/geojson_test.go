package survey

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFeatureCollection(t *testing.T) {
	n := linearTraverse()
	adjusted := map[string]Vector3D{
		"A": {X: 0}, "B": {X: 8}, "C": {X: 16}, "D": {X: 30},
	}
	quality := map[string]float64{ShotKey("A", "B"): 2.0}
	report := &ValidationReport{
		Violations: 1,
		Deviations: []ShotDeviation{{From: "C", To: "D"}},
	}

	fc := BuildFeatureCollection(n, adjusted, quality, report)
	require.Len(t, fc.Features, 7, "4 stations + 3 shots")

	stations := make(map[string]bool)
	shots := 0
	for _, f := range fc.Features {
		switch f.Geometry.GeoJSONType() {
		case "Point":
			name, _ := f.Properties["name"].(string)
			stations[name] = true
			if name == "A" || name == "D" {
				assert.Equal(t, true, f.Properties["anchor"])
				_, moved := f.Properties["correction"]
				assert.False(t, moved, "anchor %s reported a correction", name)
			}
			if name == "B" {
				assert.InDelta(t, 2.0, f.Properties["correction"].(float64), 1e-9)
			}
		case "LineString":
			shots++
			from := f.Properties["from"].(string)
			to := f.Properties["to"].(string)
			if from == "A" && to == "B" {
				assert.InDelta(t, 2.0, f.Properties["quality"].(float64), 1e-9)
			}
			if from == "C" && to == "D" {
				assert.Equal(t, true, f.Properties["violation"])
			}
		}
	}
	assert.Len(t, stations, 4)
	assert.Equal(t, 3, shots)
}

func TestBuildFeatureCollectionFallsBackToRawPositions(t *testing.T) {
	n := linearTraverse()
	fc := BuildFeatureCollection(n, nil, nil, nil)
	require.Len(t, fc.Features, 7)

	for _, f := range fc.Features {
		if name, ok := f.Properties["name"].(string); ok && name == "B" {
			point, ok := f.Geometry.(orb.Point)
			require.True(t, ok)
			assert.InDelta(t, 10.0, point.X(), 1e-9)
		}
		_, moved := f.Properties["correction"]
		assert.False(t, moved)
	}
}

func TestMarshalFeatureCollectionIsValidGeoJSON(t *testing.T) {
	n := linearTraverse()
	data, err := MarshalFeatureCollection(n, nil, nil, nil)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc["type"])
	features, ok := doc["features"].([]any)
	require.True(t, ok)
	assert.Len(t, features, 7)
}
