// Package picking provides screen rays and ray/terrain intersection.
package picking

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Terrain march parameters.
const (
	MarchStart  = 1.0
	MarchEnd    = 3000.0
	MarchStep   = 1.0
	RefineSteps = 16
)

// HeightSampler returns the terrain elevation at a world position.
type HeightSampler interface {
	GetHeight(x, z float32) float32
}

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	// Normalized device coords, Y flipped
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH

	nearWorld := unproject(invViewProj, mgl32.Vec4{ndcX, ndcY, -1, 1})
	farWorld := unproject(invViewProj, mgl32.Vec4{ndcX, ndcY, 1, 1})

	dir := farWorld.Sub(nearWorld)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return Ray{Origin: nearWorld, Direction: dir}
}

func unproject(inv mgl32.Mat4, ndc mgl32.Vec4) mgl32.Vec3 {
	p := inv.Mul4x1(ndc)
	if p[3] != 0 {
		return p.Vec3().Mul(1 / p[3])
	}
	return p.Vec3()
}

// IntersectTerrain marches the ray from MarchStart to MarchEnd and reports the
// first point that falls at or below the surface inside the terrain square of
// side extent. The crossing is refined by bisection and the returned point
// sits exactly on the surface.
func IntersectTerrain(r Ray, s HeightSampler, extent float32) (mgl32.Vec3, bool) {
	half := extent * 0.5

	lastT := float32(0)
	for t := float32(MarchStart); t < MarchEnd; t += MarchStep {
		p := r.At(t)
		if p[0] >= -half && p[0] <= half && p[2] >= -half && p[2] <= half {
			if p[1] <= s.GetHeight(p[0], p[2]) {
				return refine(r, s, lastT, t), true
			}
		}
		lastT = t
	}
	return mgl32.Vec3{}, false
}

// refine bisects [lo, hi], where lo is above the surface and hi is below.
func refine(r Ray, s HeightSampler, lo, hi float32) mgl32.Vec3 {
	for range RefineSteps {
		mid := (lo + hi) * 0.5
		p := r.At(mid)
		if p[1] <= s.GetHeight(p[0], p[2]) {
			hi = mid
		} else {
			lo = mid
		}
	}

	hit := r.At((lo + hi) * 0.5)
	hit[1] = s.GetHeight(hit[0], hit[2])
	return hit
}
