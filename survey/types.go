package survey

// LRUD holds Left/Right/Up/Down passage-wall distances recorded at a station.
// They are carried through for rendering and export but play no part in the
// adjustment math.
type LRUD struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	Up    float64 `json:"up"`
	Down  float64 `json:"down"`
}

// ShotRecord is a single raw directional measurement between two named
// stations, as read from a survey file. Length is in the file's length unit;
// azimuth and inclination are frontsight readings in degrees.
type ShotRecord struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Length      float64 `json:"length"`
	Azimuth     float64 `json:"azimuth"`
	Inclination float64 `json:"inclination"`
	LRUD        *LRUD   `json:"lrud,omitempty"`

	// Trip identifies the survey trip the shot belongs to. Declination is
	// looked up (and cached) per trip during propagation.
	Trip string `json:"trip,omitempty"`

	// ExcludeProcessing removes the shot from all processing;
	// ExcludePlot removes it from plotting and adjustment but keeps it
	// available to raw listings.
	ExcludeProcessing bool `json:"excludeProcessing,omitempty"`
	ExcludePlot       bool `json:"excludePlot,omitempty"`
}

// Reverse returns the same measurement taken from the far station:
// azimuth rotated 180 degrees, inclination sign flipped, LRUD carried as-is.
func (s ShotRecord) Reverse() ShotRecord {
	r := s
	r.From, r.To = s.To, s.From
	r.Azimuth = s.Azimuth + 180.0
	if r.Azimuth >= 360.0 {
		r.Azimuth -= 360.0
	}
	r.Inclination = -s.Inclination
	return r
}

// NetworkShot is a directed measurement edge in a propagated network.
// Delta is the displacement from From to To in meters, already corrected for
// declination and grid convergence. Distance is the original measured shot
// length in the survey's own units and is used purely for weighting.
type NetworkShot struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Delta    Vector3D `json:"delta"`
	Distance float64  `json:"distance"`
}

// Reverse returns the logically equivalent shot taken in the opposite
// direction: endpoints swapped, delta negated, same distance.
func (s NetworkShot) Reverse() NetworkShot {
	return NetworkShot{From: s.To, To: s.From, Delta: s.Delta.Neg(), Distance: s.Distance}
}

// Key returns the canonical unordered key for the shot's station pair.
func (s NetworkShot) Key() string {
	return ShotKey(s.From, s.To)
}

// ShotKey builds a canonical, order-independent key from two station names.
// ShotKey(a, b) == ShotKey(b, a) for all a, b.
func ShotKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// directedKey builds an order-dependent station-pair key for edge lookup
// tables that materialize both directions.
func directedKey(from, to string) string {
	return from + ">" + to
}
