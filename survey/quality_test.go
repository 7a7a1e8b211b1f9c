package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeTraverseQualitySpreadsMisclosure(t *testing.T) {
	// 6 m of misclosure over a three-shot traverse: 2 m per shot.
	quality := AnalyzeTraverseQuality(linearTraverse())

	assert.Len(t, quality, 3)
	assert.InDelta(t, 2.0, quality[ShotKey("A", "B")], 1e-9)
	assert.InDelta(t, 2.0, quality[ShotKey("B", "C")], 1e-9)
	assert.InDelta(t, 2.0, quality[ShotKey("C", "D")], 1e-9)
}

func TestAnalyzeTraverseQualityPerfectTraverse(t *testing.T) {
	stations := map[string]Vector3D{
		"A": {X: 0}, "B": {X: 10}, "C": {X: 20},
	}
	shots := []NetworkShot{
		{From: "A", To: "B", Delta: Vector3D{X: 10}, Distance: 10},
		{From: "B", To: "C", Delta: Vector3D{X: 10}, Distance: 10},
	}
	n := NewSurveyNetwork(stations, shots, map[string]bool{"A": true, "C": true})

	quality := AnalyzeTraverseQuality(n)
	assert.InDelta(t, 0.0, quality[ShotKey("A", "B")], 1e-9)
	assert.InDelta(t, 0.0, quality[ShotKey("B", "C")], 1e-9)
}

func TestAnalyzeTraverseQualityNeedsTwoAnchors(t *testing.T) {
	stations := map[string]Vector3D{"A": {}, "B": {X: 10}}
	shots := []NetworkShot{{From: "A", To: "B", Delta: Vector3D{X: 10}, Distance: 10}}

	n := NewSurveyNetwork(stations, shots, map[string]bool{"A": true})
	assert.Empty(t, AnalyzeTraverseQuality(n))
}

func TestAnalyzeTraverseQualityBlocksInteriorAnchors(t *testing.T) {
	// A, C and E are all anchors in a single chain. The (A,E) pair has no
	// path that avoids C, so its misclosure is never pooled across the whole
	// chain; each half is scored by its own adjacent pair.
	stations := map[string]Vector3D{
		"A": {X: 0}, "B": {X: 10}, "C": {X: 20}, "D": {X: 30}, "E": {X: 40},
	}
	shots := []NetworkShot{
		{From: "A", To: "B", Delta: Vector3D{X: 11}, Distance: 10},
		{From: "B", To: "C", Delta: Vector3D{X: 11}, Distance: 10},
		{From: "C", To: "D", Delta: Vector3D{X: 10}, Distance: 10},
		{From: "D", To: "E", Delta: Vector3D{X: 10}, Distance: 10},
	}
	n := NewSurveyNetwork(stations, shots,
		map[string]bool{"A": true, "C": true, "E": true})

	quality := AnalyzeTraverseQuality(n)
	assert.InDelta(t, 1.0, quality[ShotKey("A", "B")], 1e-9)
	assert.InDelta(t, 1.0, quality[ShotKey("B", "C")], 1e-9)
	assert.InDelta(t, 0.0, quality[ShotKey("C", "D")], 1e-9)
	assert.InDelta(t, 0.0, quality[ShotKey("D", "E")], 1e-9)
}

func TestAnalyzeTraverseQualityKeepsBestScore(t *testing.T) {
	// Y-shaped network with a shared hub: the A-H shot sits on both the
	// (A,C) traverse (2 m misclosure) and the (A,D) traverse (1 m), and must
	// keep the better score.
	stations := map[string]Vector3D{
		"A": {X: 0}, "H": {X: 10}, "C": {X: 20}, "D": {Y: 20},
	}
	shots := []NetworkShot{
		{From: "A", To: "H", Delta: Vector3D{X: 10}, Distance: 10},
		{From: "H", To: "C", Delta: Vector3D{X: 12}, Distance: 10},
		{From: "H", To: "D", Delta: Vector3D{X: -10, Y: 21}, Distance: 23},
	}
	n := NewSurveyNetwork(stations, shots,
		map[string]bool{"A": true, "C": true, "D": true})

	quality := AnalyzeTraverseQuality(n)
	assert.InDelta(t, 0.5, quality[ShotKey("A", "H")], 1e-9)
	assert.InDelta(t, 1.0, quality[ShotKey("C", "H")], 1e-9)
	assert.InDelta(t, 0.5, quality[ShotKey("D", "H")], 1e-9)
}

func TestAnalyzeTraverseQualitySkipsOffTraverseShots(t *testing.T) {
	n := linearTraverse()
	n.Shots = append(n.Shots, NetworkShot{
		From: "B", To: "SPUR", Delta: Vector3D{Y: 5}, Distance: 5,
	})
	n.Stations["SPUR"] = Vector3D{X: 10, Y: 5}

	quality := AnalyzeTraverseQuality(n)
	_, scored := quality[ShotKey("B", "SPUR")]
	assert.False(t, scored, "dead-end spur shot is on no anchor-pair traverse")
}
