// pkg/core/position.go
package core

import "math"

// Position3D represents a 3D coordinate in local planar metres
type Position3D struct {
	X float64 `json:"x"` // easting
	Y float64 `json:"y"` // northing
	Z float64 `json:"z"` // altitude
}

// DistanceTo returns the straight-line distance to another position.
func (p Position3D) DistanceTo(other Position3D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// IsFinite reports whether all three coordinates are finite numbers.
func (p Position3D) IsFinite() bool {
	for _, c := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Lerp returns the linear blend between p and other at fraction f,
// applied per axis. f=0 yields p, f=1 yields other.
func (p Position3D) Lerp(other Position3D, f float64) Position3D {
	return Position3D{
		X: p.X + f*(other.X-p.X),
		Y: p.Y + f*(other.Y-p.Y),
		Z: p.Z + f*(other.Z-p.Z),
	}
}
