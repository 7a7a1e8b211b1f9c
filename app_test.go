package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSurveyJSON = `{
	"name": "Pipeline Cave",
	"trips": [
		{
			"name": "trip1",
			"declination": 0,
			"shots": [
				{"from": "A", "to": "B", "length": 10, "azimuth": 90, "inclination": 0},
				{"from": "B", "to": "C", "length": 10, "azimuth": 90, "inclination": 0},
				{"from": "C", "to": "D", "length": 16, "azimuth": 90, "inclination": 0}
			]
		}
	]
}`

const testConfigYAML = `survey: %SURVEY%
anchors:
  - station: A
    x: 0
    y: 0
    z: 0
  - station: D
    x: 30
    y: 0
    z: 0
adjustment:
  strategy: proportional
  clamp: false
`

// writeProject lays out a survey file and a config pointing at it in a temp
// directory and returns the config path.
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	surveyPath := filepath.Join(dir, "cave.json")
	require.NoError(t, os.WriteFile(surveyPath, []byte(testSurveyJSON), 0644))

	configPath := filepath.Join(dir, "config.yaml")
	yaml := strings.ReplaceAll(testConfigYAML, "%SURVEY%", surveyPath)
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))
	return configPath
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app := NewApp()
	app.ApplyOptions(AppOptions{ConfigFile: writeProject(t)})
	require.NoError(t, app.Load())
	return app
}

func TestAppLoad(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, "Pipeline Cave", app.Survey.Name)
	assert.Equal(t, "proportional", app.Config.Adjustment.Strategy)
	assert.Len(t, app.Config.Anchors, 2)
}

func TestAppLoadMissingConfig(t *testing.T) {
	app := NewApp()
	app.ApplyOptions(AppOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, app.Load())
}

func TestAppStrategyOverride(t *testing.T) {
	app := NewApp()
	app.ApplyOptions(AppOptions{ConfigFile: writeProject(t), Strategy: "l1"})
	require.NoError(t, app.Load())
	assert.Equal(t, "l1", app.Config.Adjustment.Strategy)
}

func TestAppPropagate(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Propagate())

	require.Len(t, app.Network.Stations, 4)
	assert.True(t, app.Network.IsAnchor("A"))
	assert.True(t, app.Network.IsAnchor("D"))
	assert.InDelta(t, 10.0, app.Network.Stations["B"].X, 1e-9)
}

func TestAppAdjustPipeline(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Adjust())

	// The 6 m misclosure collapses evenly: B at 8 and C at 16.
	assert.InDelta(t, 8.0, app.Adjusted["B"].X, 1e-6)
	assert.InDelta(t, 16.0, app.Adjusted["C"].X, 1e-6)
	assert.Equal(t, app.Network.Stations["A"], app.Adjusted["A"])
	assert.Equal(t, app.Network.Stations["D"], app.Adjusted["D"])

	assert.Equal(t, 3, app.Report.Checked)
	assert.NotEmpty(t, app.Quality)
}
