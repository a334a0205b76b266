// Package lighting shades terrain under a directional sun.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Default sun placement and ambient term for previews.
const (
	DefaultLongitude = 45
	DefaultLatitude  = 45
	DefaultAmbient   = 0.25
)

// NormalSampler provides terrain normals in world space.
type NormalSampler interface {
	GetNormal(worldX, worldZ float32) math.Vec3
}

// SunDirection converts angles in degrees to a unit vector pointing at the sun.
// Longitude rotates around +Y starting at +Z; latitude is elevation above the
// horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lon := longitude * math32.Pi / 180
	lat := latitude * math32.Pi / 180

	return math.Vec3{
		X: math32.Cos(lat) * math32.Sin(lon),
		Y: math32.Sin(lat),
		Z: math32.Cos(lat) * math32.Cos(lon),
	}
}

// Hillshade returns width*height brightness values in [ambient, 1] for the
// terrain square of side extent centered on the origin. Texel (x, z) samples
// world ((x/width - 0.5) * extent, (z/height - 0.5) * extent), matching the
// heightfield grid when the sizes agree.
func Hillshade(s NormalSampler, extent float32, width, height int, sun math.Vec3, ambient float32) []float32 {
	if width <= 0 || height <= 0 {
		return nil
	}
	sun = sun.Normalize()

	shade := make([]float32, width*height)
	for z := range height {
		wz := (float32(z)/float32(height) - 0.5) * extent
		for x := range width {
			wx := (float32(x)/float32(width) - 0.5) * extent
			lambert := max(0, s.GetNormal(wx, wz).Dot(sun))
			shade[z*width+x] = ambient + (1-ambient)*lambert
		}
	}
	return shade
}
