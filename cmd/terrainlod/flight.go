package main

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
)

// Scripted flight parameters.
const (
	glidePitch    = -0.15              // Radians below the horizon
	turnRate      = 2 * math32.Pi / 12 // One full circle every 12 seconds
	minClearance  = 20                 // Minimum height above the surface
	paintInterval = 30                 // Frames between paint strokes
)

// flight steers the camera along a descending circle that never dips below
// the terrain surface.
type flight struct {
	cam     *camera.FlyCamera
	terrain picking.HeightSampler
	speed   float32
}

func newFlight(cam *camera.FlyCamera, terrain picking.HeightSampler, speed float32) *flight {
	cam.Pitch(cam.PitchAngle() - glidePitch)
	return &flight{cam: cam, terrain: terrain, speed: speed}
}

// step advances the flight by dt seconds.
func (f *flight) step(dt float32) {
	f.cam.Walk(f.speed * dt)
	f.cam.RotateY(turnRate * dt)

	p := f.cam.Position()
	if floor := f.terrain.GetHeight(p.X, p.Z) + minClearance; p.Y < floor {
		f.cam.Rise(floor - p.Y)
	}
}
