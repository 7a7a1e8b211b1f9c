package survey

import (
	"encoding/json"
	"fmt"
	"os"
)

// feetToMeters converts survey feet to meters.
const feetToMeters = 0.3048

// TripRecord groups the shots of one survey trip together with the trip's
// declination. Date is informational; declination is already resolved for
// the trip's date and location by whatever produced the file.
type TripRecord struct {
	Name        string       `json:"name"`
	Date        string       `json:"date,omitempty"`
	Declination float64      `json:"declination"`
	Shots       []ShotRecord `json:"shots"`
}

// SurveyFile is the JSON interchange representation of a survey project:
// trips of raw shots plus the project's length unit.
type SurveyFile struct {
	Name       string       `json:"name"`
	LengthUnit string       `json:"lengthUnit,omitempty"` // "meters" (default) or "feet"
	Trips      []TripRecord `json:"trips"`
}

// ParseSurveyFile reads and parses a survey JSON file.
func ParseSurveyFile(path string) (*SurveyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return ParseSurveyJSON(data)
}

// ParseSurveyJSON parses survey JSON data and validates it.
func ParseSurveyJSON(data []byte) (*SurveyFile, error) {
	var f SurveyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(f.Trips) == 0 {
		return nil, fmt.Errorf("survey %q has no trips", f.Name)
	}
	switch f.LengthUnit {
	case "", "meters", "feet":
	default:
		return nil, fmt.Errorf("unknown length unit %q", f.LengthUnit)
	}
	for ti, trip := range f.Trips {
		if trip.Name == "" {
			return nil, fmt.Errorf("trip[%d] has no name", ti)
		}
		for si, shot := range trip.Shots {
			if shot.From == "" || shot.To == "" {
				return nil, fmt.Errorf("trip %q shot[%d] is missing a station name", trip.Name, si)
			}
			if shot.Length < 0 {
				return nil, fmt.Errorf("trip %q shot %s-%s has negative length", trip.Name, shot.From, shot.To)
			}
		}
	}
	return &f, nil
}

// LengthFactor returns the multiplier that converts the file's lengths to
// meters.
func (f *SurveyFile) LengthFactor() float64 {
	if f.LengthUnit == "feet" {
		return feetToMeters
	}
	return 1.0
}

// ShotRecords flattens all trips into a single shot sequence, stamping each
// shot with its trip name and dropping shots flagged for exclusion.
func (f *SurveyFile) ShotRecords() []ShotRecord {
	var shots []ShotRecord
	for _, trip := range f.Trips {
		for _, shot := range trip.Shots {
			if shot.ExcludeProcessing || shot.ExcludePlot {
				continue
			}
			shot.Trip = trip.Name
			shots = append(shots, shot)
		}
	}
	return shots
}

// DeclinationFunc returns a lookup over the file's per-trip declinations,
// suitable for the propagator. Unknown trips report zero declination.
func (f *SurveyFile) DeclinationFunc() DeclinationFunc {
	table := make(map[string]float64, len(f.Trips))
	for _, trip := range f.Trips {
		table[trip.Name] = trip.Declination
	}
	return func(trip string, _ Vector3D) float64 {
		return table[trip]
	}
}
