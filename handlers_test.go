package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServedApp(t *testing.T) http.Handler {
	t.Helper()
	app := newTestApp(t)
	require.NoError(t, app.Adjust())
	return newHTTPServer(app)
}

func TestHealthEndpoint(t *testing.T) {
	handler := newServedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status struct {
		Status   string `json:"status"`
		Survey   string `json:"survey"`
		Stations int    `json:"stations"`
		Anchors  int    `json:"anchors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "Pipeline Cave", status.Survey)
	assert.Equal(t, 4, status.Stations)
	assert.Equal(t, 2, status.Anchors)
}

func TestNetworkGeoJSONEndpoint(t *testing.T) {
	handler := newServedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/network.geojson", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "FeatureCollection", doc["type"])
	features, ok := doc["features"].([]any)
	require.True(t, ok)
	assert.Len(t, features, 7, "4 stations + 3 shots")
}

func TestNetworkGeoJSONUnavailableBeforeLoad(t *testing.T) {
	handler := newHTTPServer(NewApp())

	req := httptest.NewRequest(http.MethodGet, "/network.geojson", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLinePlotSVGEndpoint(t *testing.T) {
	handler := newServedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/lineplot.svg", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestPlanPNGEndpoint(t *testing.T) {
	handler := newServedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/plan.png", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	// PNG signature
	body := rec.Body.Bytes()
	require.Greater(t, len(body), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, body[:4])
}

func TestReportEndpoint(t *testing.T) {
	handler := newServedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Checked    int `json:"checked"`
		Violations int `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Checked)
}
