package survey

import "testing"

func TestShotRecordReverse(t *testing.T) {
	tests := []struct {
		name     string
		shot     ShotRecord
		wantAz   float64
		wantIncl float64
	}{
		{
			name:     "northeast uphill",
			shot:     ShotRecord{From: "A", To: "B", Azimuth: 45, Inclination: 10},
			wantAz:   225,
			wantIncl: -10,
		},
		{
			name:     "azimuth wraps past 360",
			shot:     ShotRecord{From: "A", To: "B", Azimuth: 270, Inclination: -5},
			wantAz:   90,
			wantIncl: 5,
		},
		{
			name:     "due north level",
			shot:     ShotRecord{From: "A", To: "B", Azimuth: 0, Inclination: 0},
			wantAz:   180,
			wantIncl: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.shot.Reverse()
			if r.From != tt.shot.To || r.To != tt.shot.From {
				t.Errorf("endpoints not swapped: %s -> %s", r.From, r.To)
			}
			if !almostEqual(r.Azimuth, tt.wantAz) {
				t.Errorf("azimuth = %v, want %v", r.Azimuth, tt.wantAz)
			}
			if !almostEqual(r.Inclination, tt.wantIncl) {
				t.Errorf("inclination = %v, want %v", r.Inclination, tt.wantIncl)
			}
		})
	}
}

func TestNetworkShotReverse(t *testing.T) {
	s := NetworkShot{From: "A", To: "B", Delta: Vector3D{X: 3, Y: -4, Z: 1}, Distance: 5.1}
	r := s.Reverse()
	if r.From != "B" || r.To != "A" {
		t.Errorf("endpoints not swapped: %s -> %s", r.From, r.To)
	}
	if !vectorsEqual(r.Delta, Vector3D{X: -3, Y: 4, Z: -1}) {
		t.Errorf("delta not negated: %v", r.Delta)
	}
	if r.Distance != s.Distance {
		t.Errorf("distance changed: %v", r.Distance)
	}
}

func TestShotKeyCanonical(t *testing.T) {
	if ShotKey("A1", "B2") != ShotKey("B2", "A1") {
		t.Error("ShotKey is not order-independent")
	}
	if ShotKey("A", "B") == ShotKey("A", "C") {
		t.Error("distinct pairs collide")
	}
	s := NetworkShot{From: "Z9", To: "A1"}
	if s.Key() != ShotKey("A1", "Z9") {
		t.Errorf("Key() = %q", s.Key())
	}
}
