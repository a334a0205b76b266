// Package paint implements a CPU-side RGBA paint layer draped over the terrain.
package paint

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// Paint layer defaults.
const (
	DefaultResolution = 512
	DefaultBrushSize  = 30.0
	MinBrushSize      = 5.0
	MaxBrushSize      = 100.0

	// minBrushRadius is the smallest brush radius in texels.
	minBrushRadius = 2
)

// ErrUnknownColor is returned by ParseColor for an unrecognised preset.
var ErrUnknownColor = errors.New("unknown paint colour")

// Color is a linear RGB brush colour with components in [0, 1].
type Color struct {
	R, G, B float32
}

// Colour presets.
var (
	Red   = Color{R: 1}
	Green = Color{G: 1}
	Blue  = Color{B: 1}
)

// ParseColor returns the preset with the given name.
func ParseColor(name string) (Color, error) {
	switch name {
	case "red", "":
		return Red, nil
	case "green":
		return Green, nil
	case "blue":
		return Blue, nil
	default:
		return Color{}, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
}

// Layer is a square RGBA8 texture covering the terrain square of side extent.
// Texels are packed as a<<24 | b<<16 | g<<8 | r.
type Layer struct {
	size   int
	pixels []uint32
	extent float32

	brush float32
	color Color
	dirty bool
}

// NewLayer creates a cleared layer of resolution x resolution texels.
func NewLayer(resolution int, extent float32) *Layer {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &Layer{
		size:   resolution,
		pixels: make([]uint32, resolution*resolution),
		extent: extent,
		brush:  DefaultBrushSize,
		color:  Red,
	}
}

// Size returns the texture resolution along each side.
func (l *Layer) Size() int { return l.size }

// Pixels returns the packed texels, row-major with rows along +Z.
func (l *Layer) Pixels() []uint32 { return l.pixels }

// Pixel returns the packed texel at (x, y).
func (l *Layer) Pixel(x, y int) uint32 {
	return l.pixels[y*l.size+x]
}

// RGBA returns the texels as bytes in R, G, B, A order.
func (l *Layer) RGBA() []byte {
	out := make([]byte, len(l.pixels)*4)
	for i, p := range l.pixels {
		out[i*4+0] = byte(p)
		out[i*4+1] = byte(p >> 8)
		out[i*4+2] = byte(p >> 16)
		out[i*4+3] = byte(p >> 24)
	}
	return out
}

// BrushSize returns the brush size in world units.
func (l *Layer) BrushSize() float32 { return l.brush }

// SetBrushSize sets the brush size, clamped to [MinBrushSize, MaxBrushSize].
func (l *Layer) SetBrushSize(size float32) {
	l.brush = max(MinBrushSize, min(MaxBrushSize, size))
}

// Color returns the current brush colour.
func (l *Layer) Color() Color { return l.color }

// SetColor sets the brush colour.
func (l *Layer) SetColor(c Color) { l.color = c }

// Clear resets every texel to transparent black.
func (l *Layer) Clear() {
	clear(l.pixels)
	l.dirty = true
}

// TakeDirty reports whether the layer changed since the last call and resets the flag.
func (l *Layer) TakeDirty() bool {
	d := l.dirty
	l.dirty = false
	return d
}

// Paint stamps the brush at a world position. Positions outside the terrain
// are clamped to its edge. The stamp falls off quadratically from the center
// and blends towards the brush colour at half the falloff.
func (l *Layer) Paint(worldX, worldZ float32) {
	half := l.extent * 0.5
	u := max(0, min(1, (worldX+half)/l.extent))
	v := max(0, min(1, (worldZ+half)/l.extent))

	cx := int(u * float32(l.size-1))
	cy := int(v * float32(l.size-1))
	radius := max(minBrushRadius, int(l.brush*float32(l.size)/l.extent))
	r := float32(radius)

	for y := max(0, cy-radius); y <= min(l.size-1, cy+radius); y++ {
		for x := max(0, cx-radius); x <= min(l.size-1, cx+radius); x++ {
			dx := float32(x - cx)
			dy := float32(y - cy)
			d := math32.Sqrt(dx*dx + dy*dy)
			if d > r {
				continue
			}

			falloff := 1 - d/r
			falloff *= falloff
			i := y*l.size + x
			l.pixels[i] = blend(l.pixels[i], l.color, falloff*0.5)
		}
	}

	l.dirty = true
}

// blend mixes a packed texel towards c by alpha and accumulates coverage.
func blend(p uint32, c Color, alpha float32) uint32 {
	r := float32(p&0xFF) / 255
	g := float32((p>>8)&0xFF) / 255
	b := float32((p>>16)&0xFF) / 255
	a := float32((p>>24)&0xFF) / 255

	r = r*(1-alpha) + c.R*alpha
	g = g*(1-alpha) + c.G*alpha
	b = b*(1-alpha) + c.B*alpha
	a = min(a+alpha, 1)

	return uint32(a*255)<<24 | uint32(b*255)<<16 | uint32(g*255)<<8 | uint32(r*255)
}
