package terrain

import "github.com/Faultbox/midgard-terrain/pkg/math"

func mathVec(x, y, z float32) math.Vec3 {
	return math.Vec3{X: x, Y: y, Z: z}
}

func mathInfinite() math.Frustum {
	return math.InfiniteFrustum()
}
