package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Frustum plane indices.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// Frustum is a set of six inward-facing planes.
type Frustum [6]Plane

// ExtractFrustum derives the six clip planes from a combined view-projection
// matrix (Gribb/Hartmann). The matrix must map to OpenGL clip space, where
// -w <= x, y, z <= w, which is what mgl32.Perspective produces.
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	r0 := viewProj.Row(0)
	r1 := viewProj.Row(1)
	r2 := viewProj.Row(2)
	r3 := viewProj.Row(3)

	rows := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}

	var f Frustum
	for i, r := range rows {
		f[i] = NewPlane(r[0], r[1], r[2], r[3]).Normalize()
	}
	return f
}

// InfiniteFrustum returns a frustum that accepts every finite box.
func InfiniteFrustum() Frustum {
	inf := math32.Inf(1)
	return Frustum{
		{Normal: Vec3{1, 0, 0}, D: inf},
		{Normal: Vec3{-1, 0, 0}, D: inf},
		{Normal: Vec3{0, 1, 0}, D: inf},
		{Normal: Vec3{0, -1, 0}, D: inf},
		{Normal: Vec3{0, 0, 1}, D: inf},
		{Normal: Vec3{0, 0, -1}, D: inf},
	}
}

// IntersectsAABB is the conservative positive-vertex test: a box is rejected
// only when it lies entirely on the negative side of some plane.
func (f *Frustum) IntersectsAABB(b AABB) bool {
	for i := range f {
		p := b.PositiveVertex(f[i].Normal)
		if f[i].SignedDistance(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is on the positive side of every plane.
func (f *Frustum) ContainsPoint(p Vec3) bool {
	for i := range f {
		if f[i].SignedDistance(p) < 0 {
			return false
		}
	}
	return true
}
