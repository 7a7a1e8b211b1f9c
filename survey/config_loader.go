package survey

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AnchorConfig fixes one station to known projected coordinates (meters).
type AnchorConfig struct {
	Station string  `yaml:"station" json:"station"`
	X       float64 `yaml:"x" json:"x"`
	Y       float64 `yaml:"y" json:"y"`
	Z       float64 `yaml:"z" json:"z"`
}

// AdjustmentConfig selects the adjustment strategy and its tunables.
type AdjustmentConfig struct {
	// Strategy is one of "none", "proportional", "l1", "quality".
	Strategy string `yaml:"strategy" json:"strategy"`

	// Clamp limits per-shot corrections in the proportional strategy.
	Clamp            bool    `yaml:"clamp" json:"clamp"`
	MaxLengthChange  float64 `yaml:"maxLengthChange,omitempty" json:"maxLengthChange,omitempty"`
	MaxHeadingChange float64 `yaml:"maxHeadingChange,omitempty" json:"maxHeadingChange,omitempty"`

	// Iterative back-end tunables for the quality strategy.
	MaxIterations int     `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty"`
	Tolerance     float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`

	// MaxDeviation is the validator's allowed relative length deviation.
	MaxDeviation float64 `yaml:"maxDeviation,omitempty" json:"maxDeviation,omitempty"`
}

// RenderConfig holds line-plot rendering options.
type RenderConfig struct {
	GridSpacing float64 `yaml:"gridSpacing,omitempty" json:"gridSpacing,omitempty"` // meters
	Format      string  `yaml:"format,omitempty" json:"format,omitempty"`           // "svg" or "png"
}

// Config is the project configuration: where the survey data lives, the
// fixed anchor coordinates, the grid convergence angle, and the adjustment
// and rendering options.
type Config struct {
	Survey      string           `yaml:"survey" json:"survey"`
	Convergence float64          `yaml:"convergence,omitempty" json:"convergence,omitempty"`
	Anchors     []AnchorConfig   `yaml:"anchors" json:"anchors"`
	Adjustment  AdjustmentConfig `yaml:"adjustment" json:"adjustment"`
	Render      RenderConfig     `yaml:"render,omitempty" json:"render,omitempty"`
}

// LoadConfig loads the project configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	// Validate required fields
	if config.Survey == "" {
		return nil, fmt.Errorf("survey is required")
	}
	seen := make(map[string]bool, len(config.Anchors))
	for i, a := range config.Anchors {
		if a.Station == "" {
			return nil, fmt.Errorf("anchor[%d].station is required", i)
		}
		if seen[a.Station] {
			return nil, fmt.Errorf("anchor station %q listed twice", a.Station)
		}
		seen[a.Station] = true
	}
	switch config.Adjustment.Strategy {
	case "", "none", "proportional", "l1", "quality":
	default:
		return nil, fmt.Errorf("unknown adjustment strategy %q", config.Adjustment.Strategy)
	}
	if config.Adjustment.MaxIterations < 0 {
		return nil, fmt.Errorf("adjustment.maxIterations must not be negative")
	}
	if config.Adjustment.Tolerance < 0 {
		return nil, fmt.Errorf("adjustment.tolerance must not be negative")
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// AnchorPositions returns the configured anchors as a station-to-position
// map.
func (c *Config) AnchorPositions() map[string]Vector3D {
	anchors := make(map[string]Vector3D, len(c.Anchors))
	for _, a := range c.Anchors {
		anchors[a.Station] = Vector3D{X: a.X, Y: a.Y, Z: a.Z}
	}
	return anchors
}

// NewSolver builds the configured adjustment strategy. The quality score map
// is only consulted by the quality strategy and may be nil for the others.
func (c *Config) NewSolver(quality map[string]float64) Solver {
	switch c.Adjustment.Strategy {
	case "proportional":
		s := NewProportionalSolver()
		s.Clamp = c.Adjustment.Clamp
		if c.Adjustment.MaxLengthChange > 0 {
			s.MaxLengthChange = c.Adjustment.MaxLengthChange
		}
		if c.Adjustment.MaxHeadingChange > 0 {
			s.MaxHeadingChange = c.Adjustment.MaxHeadingChange
		}
		return s
	case "l1":
		return SparseL1Solver{}
	case "quality":
		s := NewQualityWeightedSolver(quality)
		if c.Adjustment.MaxIterations > 0 {
			s.MaxIterations = c.Adjustment.MaxIterations
		}
		if c.Adjustment.Tolerance > 0 {
			s.Tolerance = c.Adjustment.Tolerance
		}
		return s
	default:
		return NoopSolver{}
	}
}
