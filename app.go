package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kwv/cavemesh/survey"
)

// App encapsulates the application state and dependencies
type App struct {
	Config   *survey.Config
	Survey   *survey.SurveyFile
	Network  *survey.SurveyNetwork
	Quality  map[string]float64
	Adjusted map[string]survey.Vector3D
	Report   survey.ValidationReport

	// CLI Flags (effectively dependencies)
	ConfigFile  string
	SurveyFile  string
	Strategy    string
	OutputFile  string
	Format      string
	GridSpacing float64
	HttpPort    int
}

// AppOptions carries parsed CLI options into the App
type AppOptions struct {
	ConfigFile  string
	SurveyFile  string
	Strategy    string
	OutputFile  string
	Format      string
	GridSpacing float64
	HttpPort    int
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.SurveyFile = opts.SurveyFile
	a.Strategy = opts.Strategy
	a.OutputFile = opts.OutputFile
	a.Format = opts.Format
	a.GridSpacing = opts.GridSpacing
	a.HttpPort = opts.HttpPort
}

// Load reads the configuration and the survey data file. CLI flags override
// config file values.
func (a *App) Load() error {
	config, err := survey.LoadConfig(a.ConfigFile)
	if err != nil {
		return err
	}
	a.Config = config

	if a.SurveyFile != "" {
		config.Survey = a.SurveyFile
	}
	if a.Strategy != "" {
		config.Adjustment.Strategy = a.Strategy
	}
	if a.GridSpacing > 0 {
		config.Render.GridSpacing = a.GridSpacing
	}

	file, err := survey.ParseSurveyFile(config.Survey)
	if err != nil {
		return fmt.Errorf("loading survey %s: %w", config.Survey, err)
	}
	a.Survey = file
	return nil
}

// Propagate flood-fills initial station positions from the configured anchors
func (a *App) Propagate() error {
	propagator := survey.NewPropagator()
	propagator.Convergence = a.Config.Convergence
	propagator.LengthFactor = a.Survey.LengthFactor()
	propagator.Declination = a.Survey.DeclinationFunc()

	network, err := propagator.Propagate(a.Survey.ShotRecords(), a.Config.AnchorPositions())
	if err != nil {
		return fmt.Errorf("propagating %s: %w", a.Survey.Name, err)
	}
	a.Network = network
	return nil
}

// Adjust runs traverse-quality analysis, the configured adjustment strategy,
// and the result validator
func (a *App) Adjust() error {
	if a.Network == nil {
		if err := a.Propagate(); err != nil {
			return err
		}
	}

	a.Quality = survey.AnalyzeTraverseQuality(a.Network)
	solver := a.Config.NewSolver(a.Quality)

	adjusted, err := survey.AdjustNetwork(a.Network, solver)
	if err != nil {
		return fmt.Errorf("adjusting with %s: %w", solver.Name(), err)
	}
	a.Adjusted = adjusted
	a.Report = survey.ValidateAdjustment(a.Network, adjusted, a.Config.Adjustment.MaxDeviation)
	if a.Report.Violations > 0 {
		log.Printf("Warning: %d of %d shots exceed the allowed length deviation after adjustment",
			a.Report.Violations, a.Report.Checked)
	}
	return nil
}

// RunPropagateOnly propagates positions and prints a station listing
func (a *App) RunPropagateOnly() {
	if err := a.Load(); err != nil {
		log.Fatalf("Error loading project: %v", err)
	}
	if err := a.Propagate(); err != nil {
		log.Fatalf("Error propagating: %v", err)
	}

	fmt.Printf("=== %s ===\n", a.Survey.Name)
	fmt.Printf("Stations: %d  Shots: %d  Anchors: %s\n",
		len(a.Network.Stations), len(a.Network.Shots), strings.Join(a.Network.AnchorNames(), ", "))
	for _, name := range a.Network.StationNames() {
		pos := a.Network.Stations[name]
		marker := " "
		if a.Network.IsAnchor(name) {
			marker = "*"
		}
		fmt.Printf("%s %-12s %12.3f %12.3f %10.3f\n", marker, name, pos.X, pos.Y, pos.Z)
	}
}

// RunAdjust runs the full pipeline and prints an adjustment summary
func (a *App) RunAdjust() {
	if err := a.Load(); err != nil {
		log.Fatalf("Error loading project: %v", err)
	}
	if err := a.Adjust(); err != nil {
		log.Fatalf("Error adjusting: %v", err)
	}

	fmt.Printf("=== %s (%s adjustment) ===\n", a.Survey.Name, a.Config.NewSolver(nil).Name())
	var maxCorrection float64
	var maxStation string
	for name, pos := range a.Adjusted {
		c := pos.Sub(a.Network.Stations[name]).Length()
		if c > maxCorrection {
			maxCorrection, maxStation = c, name
		}
	}
	fmt.Printf("Stations adjusted: %d\n", len(a.Adjusted))
	fmt.Printf("Largest correction: %.3f m at %s\n", maxCorrection, maxStation)
	fmt.Printf("Validator: %d of %d shots beyond tolerance\n", a.Report.Violations, a.Report.Checked)
	for _, d := range a.Report.Deviations {
		fmt.Printf("  %s-%s measured %.3f effective %.3f (%.1f%%)\n",
			d.From, d.To, d.Measured, d.Effective, 100*d.Deviation)
	}
}

// RunGeoJSON runs the pipeline and writes the adjusted network as GeoJSON
func (a *App) RunGeoJSON() {
	if err := a.Load(); err != nil {
		log.Fatalf("Error loading project: %v", err)
	}
	if err := a.Adjust(); err != nil {
		log.Fatalf("Error adjusting: %v", err)
	}

	fc := survey.BuildFeatureCollection(a.Network, a.Adjusted, a.Quality, &a.Report)
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		log.Fatalf("Error encoding GeoJSON: %v", err)
	}

	out := a.OutputFile
	if out == "" {
		out = "network.geojson"
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		log.Fatalf("Error writing %s: %v", out, err)
	}
	fmt.Printf("Wrote %s (%d features)\n", out, len(fc.Features))
}

// RunRender runs the pipeline and renders the line plot
func (a *App) RunRender() {
	if err := a.Load(); err != nil {
		log.Fatalf("Error loading project: %v", err)
	}
	if err := a.Adjust(); err != nil {
		log.Fatalf("Error adjusting: %v", err)
	}

	out := a.OutputFile
	format := a.Format
	if format == "" {
		format = a.Config.Render.Format
	}

	switch format {
	case "", "svg":
		if out == "" {
			out = "lineplot.svg"
		}
		f, err := os.Create(out)
		if err != nil {
			log.Fatalf("Error creating %s: %v", out, err)
		}
		defer f.Close()
		renderer := survey.NewLinePlotRenderer(a.Network, a.Adjusted)
		if a.Config.Render.GridSpacing > 0 {
			renderer.GridSpacing = a.Config.Render.GridSpacing
		}
		if err := renderer.RenderToSVG(f); err != nil {
			log.Fatalf("Error rendering SVG: %v", err)
		}
	case "png":
		if out == "" {
			out = "lineplot.png"
		}
		renderer := survey.NewPlanRenderer(a.Network, a.Adjusted)
		if err := renderer.RenderToFile(out); err != nil {
			log.Fatalf("Error rendering PNG: %v", err)
		}
	default:
		log.Fatalf("Unknown render format %q (want svg or png)", format)
	}
	fmt.Printf("Wrote %s\n", out)
}
