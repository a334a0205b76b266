package math

import "github.com/chewxy/math32"

// Plane is the half-space ax + by + cz + d >= 0.
type Plane struct {
	Normal Vec3
	D      float32
}

// NewPlane creates a plane from its four coefficients.
func NewPlane(a, b, c, d float32) Plane {
	return Plane{Normal: Vec3{a, b, c}, D: d}
}

// SignedDistance returns the signed distance of p to the plane.
// Only a true distance when the plane is normalized.
func (pl Plane) SignedDistance(p Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

// Normalize scales the plane so its normal has unit length.
// Degenerate planes are returned unchanged.
func (pl Plane) Normalize() Plane {
	l := pl.Normal.Length()
	if l == 0 || math32.IsInf(l, 0) {
		return pl
	}
	inv := 1 / l
	return Plane{Normal: pl.Normal.Scale(inv), D: pl.D * inv}
}
