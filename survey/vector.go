package survey

import "math"

// Vector3D is a 3-D displacement or position in meters.
// X is grid east, Y is grid north, Z is up. All arithmetic returns a new
// value; a Vector3D is never mutated in place.
type Vector3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vector3D) Add(o Vector3D) Vector3D {
	return Vector3D{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vector3D) Sub(o Vector3D) Vector3D {
	return Vector3D{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vector3D) Scale(s float64) Vector3D {
	return Vector3D{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Neg returns -v.
func (v Vector3D) Neg() Vector3D {
	return Vector3D{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product of v and o.
func (v Vector3D) Dot(o Vector3D) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Length returns the Euclidean length of v.
func (v Vector3D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// HorizontalLength returns the length of v projected onto the XY plane.
func (v Vector3D) HorizontalLength() float64 {
	return math.Hypot(v.X, v.Y)
}
