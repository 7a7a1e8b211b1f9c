package main

import (
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kwv/cavemesh/survey"
)

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(app *App) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] /health request from %s", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			Survey    string    `json:"survey"`
			Stations  int       `json:"stations"`
			Anchors   int       `json:"anchors"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			Survey:    app.Survey.Name,
			Stations:  len(app.Network.Stations),
			Anchors:   len(app.Network.Anchors),
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	// Adjusted network as a GeoJSON feature collection
	mux.HandleFunc("/network.geojson", func(w http.ResponseWriter, r *http.Request) {
		if app.Network == nil {
			http.Error(w, "No survey loaded", http.StatusServiceUnavailable)
			return
		}
		data, err := survey.MarshalFeatureCollection(app.Network, app.Adjusted, app.Quality, &app.Report)
		if err != nil {
			log.Printf("Error encoding GeoJSON: %v", err)
			http.Error(w, "Encoding failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(data); err != nil {
			log.Printf("Error writing GeoJSON response: %v", err)
		}
	})

	// Plan-view line plot as SVG
	mux.HandleFunc("/lineplot.svg", func(w http.ResponseWriter, r *http.Request) {
		if app.Network == nil {
			http.Error(w, "No survey loaded", http.StatusServiceUnavailable)
			return
		}
		renderer := survey.NewLinePlotRenderer(app.Network, app.Adjusted)
		if app.Config.Render.GridSpacing > 0 {
			renderer.GridSpacing = app.Config.Render.GridSpacing
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderToSVG(w); err != nil {
			log.Printf("Error rendering SVG line plot: %v", err)
		}
	})

	// Labeled raster plan view
	mux.HandleFunc("/plan.png", func(w http.ResponseWriter, r *http.Request) {
		if app.Network == nil {
			http.Error(w, "No survey loaded", http.StatusServiceUnavailable)
			return
		}
		renderer := survey.NewPlanRenderer(app.Network, app.Adjusted)
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := png.Encode(w, renderer.Render()); err != nil {
			log.Printf("Error encoding plan PNG: %v", err)
		}
	})

	// Validator report
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(app.Report); err != nil {
			log.Printf("Error encoding report: %v", err)
		}
	})

	return mux
}

// RunServe runs the pipeline once and serves the results over HTTP until
// interrupted
func (a *App) RunServe() {
	if err := a.Load(); err != nil {
		log.Fatalf("Error loading project: %v", err)
	}
	if err := a.Adjust(); err != nil {
		log.Fatalf("Error adjusting: %v", err)
	}

	addr := fmt.Sprintf(":%d", a.HttpPort)
	server := &http.Server{Addr: addr, Handler: newHTTPServer(a)}

	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Println("Shutting down...")
	if err := server.Close(); err != nil {
		log.Printf("Error closing HTTP server: %v", err)
	}
}
