package main

import (
	"flag"
	"fmt"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile    = flag.String("config", "config.yaml", "Path to configuration file")
	surveyFile    = flag.String("survey", "", "Survey JSON file (overrides config)")
	strategy      = flag.String("strategy", "", "Adjustment strategy: none, proportional, l1, quality (overrides config)")
	propagateOnly = flag.Bool("propagate-only", false, "Propagate positions and print a station listing, then exit")
	adjustMode    = flag.Bool("adjust", false, "Run the adjustment pipeline and print a summary, then exit")
	geojsonMode   = flag.Bool("geojson", false, "Run the adjustment pipeline and write a GeoJSON feature collection")
	renderMode    = flag.Bool("render", false, "Run the adjustment pipeline and render the line plot")
	outputFile    = flag.String("output", "", "Output file for -geojson/-render modes")
	renderFormat  = flag.String("format", "", "Render format: svg or png")
	gridSpacing   = flag.Float64("grid-spacing", 0, "Grid line spacing in meters (overrides config)")
	httpMode      = flag.Bool("http", false, "Serve the adjusted network over HTTP")
	httpPort      = flag.Int("http-port", 8080, "HTTP server port (default 8080)")
)

func main() {
	flag.Parse()
	fmt.Printf("cavemesh version: %s\n", Version)

	app := NewApp()
	app.ApplyOptions(AppOptions{
		ConfigFile:  *configFile,
		SurveyFile:  *surveyFile,
		Strategy:    *strategy,
		OutputFile:  *outputFile,
		Format:      *renderFormat,
		GridSpacing: *gridSpacing,
		HttpPort:    *httpPort,
	})

	if *propagateOnly {
		app.RunPropagateOnly()
		return
	}

	if *adjustMode {
		app.RunAdjust()
		return
	}

	if *geojsonMode {
		app.RunGeoJSON()
		return
	}

	if *renderMode {
		app.RunRender()
		return
	}

	if *httpMode {
		app.RunServe()
		return
	}

	fmt.Println("cavemesh: cave survey network propagation and adjustment")
	fmt.Println("Use -propagate-only to print propagated station positions")
	fmt.Println("Use -adjust to run the adjustment pipeline and print a summary")
	fmt.Println("Use -geojson to write the adjusted network as GeoJSON")
	fmt.Println("Use -render to render the line plot (svg or png)")
	fmt.Println("Use -http to serve the adjusted network over HTTP")
	fmt.Println("\nConfiguration:")
	fmt.Println("  config.yaml - survey file, anchors, adjustment strategy and tunables")
}
