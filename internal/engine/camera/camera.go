// Package camera provides the fly camera that drives terrain LOD selection.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Default lens and placement.
const (
	DefaultFovY = 0.25 * math32.Pi
	DefaultNear = 1.0
	DefaultFar  = 3000.0

	// maxPitch keeps the view direction off the up axis.
	maxPitch = math32.Pi/2 - 0.01
)

var worldUp = mgl32.Vec3{0, 1, 0}

// FlyCamera is a free-flying first-person camera.
// Yaw 0 looks down -Z; positive yaw turns towards +X.
type FlyCamera struct {
	position mgl32.Vec3
	yaw      float32 // Radians around +Y
	pitch    float32 // Radians, positive looks up

	fovY   float32
	aspect float32
	near   float32
	far    float32
}

// NewFlyCamera creates a camera at (0, 250, 460) looking at (0, -30, 0).
func NewFlyCamera(aspect float32) *FlyCamera {
	c := &FlyCamera{}
	c.SetLens(DefaultFovY, aspect, DefaultNear, DefaultFar)
	c.SetPosition(0, 250, 460)
	c.LookAt(mgl32.Vec3{0, -30, 0})
	return c
}

// SetLens sets the perspective projection parameters.
func (c *FlyCamera) SetLens(fovY, aspect, near, far float32) {
	c.fovY = fovY
	c.aspect = aspect
	c.near = near
	c.far = far
}

// SetPosition moves the camera without changing its orientation.
func (c *FlyCamera) SetPosition(x, y, z float32) {
	c.position = mgl32.Vec3{x, y, z}
}

// Position returns the eye position.
func (c *FlyCamera) Position() math.Vec3 {
	return math.FromGL(c.position)
}

// Yaw returns the heading in radians.
func (c *FlyCamera) Yaw() float32 { return c.yaw }

// PitchAngle returns the elevation angle in radians.
func (c *FlyCamera) PitchAngle() float32 { return c.pitch }

// Far returns the far clip distance.
func (c *FlyCamera) Far() float32 { return c.far }

// LookAt orients the camera towards target. A target at the eye is ignored.
func (c *FlyCamera) LookAt(target mgl32.Vec3) {
	dir := target.Sub(c.position)
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.yaw = math32.Atan2(dir[0], -dir[2])
	c.setPitch(math32.Asin(dir[1]))
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() mgl32.Vec3 {
	sy, cy := math32.Sincos(c.yaw)
	sp, cp := math32.Sincos(c.pitch)
	return mgl32.Vec3{cp * sy, sp, -cp * cy}
}

// Right returns the unit right vector, always horizontal.
func (c *FlyCamera) Right() mgl32.Vec3 {
	sy, cy := math32.Sincos(c.yaw)
	return mgl32.Vec3{cy, 0, sy}
}

// Walk moves along the view direction.
func (c *FlyCamera) Walk(d float32) {
	c.position = c.position.Add(c.Forward().Mul(d))
}

// Strafe moves along the right vector.
func (c *FlyCamera) Strafe(d float32) {
	c.position = c.position.Add(c.Right().Mul(d))
}

// Rise moves along world up.
func (c *FlyCamera) Rise(d float32) {
	c.position[1] += d
}

// Pitch tilts the view; positive angles look down, matching mouse Y.
func (c *FlyCamera) Pitch(angle float32) {
	c.setPitch(c.pitch - angle)
}

// RotateY turns the view around world up; positive angles turn right.
func (c *FlyCamera) RotateY(angle float32) {
	c.yaw += angle
}

func (c *FlyCamera) setPitch(p float32) {
	c.pitch = max(-maxPitch, min(maxPitch, p))
}

// View returns the world-to-view matrix.
func (c *FlyCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.position.Add(c.Forward()), worldUp)
}

// Proj returns the perspective projection matrix (OpenGL clip space).
func (c *FlyCamera) Proj() mgl32.Mat4 {
	return mgl32.Perspective(c.fovY, c.aspect, c.near, c.far)
}

// ViewProj returns Proj * View.
func (c *FlyCamera) ViewProj() mgl32.Mat4 {
	return c.Proj().Mul4(c.View())
}

// Frustum returns the world-space view frustum.
func (c *FlyCamera) Frustum() math.Frustum {
	return math.ExtractFrustum(c.ViewProj())
}
