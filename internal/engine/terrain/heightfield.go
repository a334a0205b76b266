package terrain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Heightfield errors.
var (
	ErrGridSize  = errors.New("heightfield dimensions must be positive")
	ErrBitDepth  = errors.New("unsupported raw bit depth: expected 8 or 16")
	ErrShortRead = errors.New("truncated raw heightfield data")
)

// Heightfield is a row-major grid of normalized [0,1] height samples covering
// a square of side Extent centered on the origin.
type Heightfield struct {
	width   int
	height  int
	samples []float32

	extent float32
	base   float32
	peak   float32
}

// NewHeightfield creates an empty heightfield. Sampling an empty field returns 0.
func NewHeightfield(extent, baseElevation, peakElevation float32) *Heightfield {
	return &Heightfield{
		extent: extent,
		base:   baseElevation,
		peak:   peakElevation,
	}
}

// Width returns the number of samples along X.
func (h *Heightfield) Width() int { return h.width }

// Height returns the number of samples along Z.
func (h *Heightfield) Height() int { return h.height }

// Extent returns the world-space side length.
func (h *Heightfield) Extent() float32 { return h.extent }

// BaseElevation returns the elevation of a 0 sample.
func (h *Heightfield) BaseElevation() float32 { return h.base }

// PeakElevation returns the elevation of a 1 sample.
func (h *Heightfield) PeakElevation() float32 { return h.peak }

// Samples returns the normalized sample grid. Callers must not modify it.
func (h *Heightfield) Samples() []float32 { return h.samples }

// LoadRaw interprets data as width*height unsigned samples of bitDepth bits
// (16-bit samples are little-endian). On error the heightfield is unchanged.
func (h *Heightfield) LoadRaw(data []byte, width, height, bitDepth int) error {
	if width <= 0 || height <= 0 {
		return ErrGridSize
	}

	count := width * height
	var bytesPerSample int
	switch bitDepth {
	case 8:
		bytesPerSample = 1
	case 16:
		bytesPerSample = 2
	default:
		return fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}

	if len(data) < count*bytesPerSample {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortRead, len(data), count*bytesPerSample)
	}

	samples := make([]float32, count)
	if bytesPerSample == 1 {
		for i := range count {
			samples[i] = float32(data[i]) / 255.0
		}
	} else {
		for i := range count {
			samples[i] = float32(binary.LittleEndian.Uint16(data[i*2:])) / 65535.0
		}
	}

	h.width = width
	h.height = height
	h.samples = samples
	return nil
}

// LoadRawFile reads a raw heightmap from disk. See LoadRaw.
func (h *Heightfield) LoadRawFile(path string, width, height, bitDepth int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return h.LoadRaw(data, width, height, bitDepth)
}

// LoadImage takes the samples from the luminance of img, top row at -Z.
func (h *Heightfield) LoadImage(img image.Image) error {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return ErrGridSize
	}

	samples := make([]float32, width*height)
	for z := range height {
		for x := range width {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+z)).(color.Gray16)
			samples[z*width+x] = float32(g.Y) / 65535.0
		}
	}

	h.width = width
	h.height = height
	h.samples = samples
	return nil
}

// LoadImageFile reads a PNG or TGA heightmap from disk.
func (h *Heightfield) LoadImageFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	img, err := texture.Decode(data, path)
	if err != nil {
		return err
	}
	return h.LoadImage(img)
}

// LoadElevations takes samples from an absolute elevation grid, rescaled so
// its lowest value maps to 0 and its highest to 1. A flat grid becomes all 0.
func (h *Heightfield) LoadElevations(elevations []float32, width, height int) error {
	if width <= 0 || height <= 0 || len(elevations) != width*height {
		return ErrGridSize
	}

	lo, hi := elevations[0], elevations[0]
	for _, e := range elevations {
		lo = min(lo, e)
		hi = max(hi, e)
	}

	samples := make([]float32, len(elevations))
	if span := hi - lo; span > 0 {
		for i, e := range elevations {
			samples[i] = (e - lo) / span
		}
	}

	h.width = width
	h.height = height
	h.samples = samples
	return nil
}

// GenerateProcedural fills the grid with layered noise. Each octave halves the
// amplitude and doubles the frequency; the summed field is rescaled so its
// minimum maps to 0 and its maximum to 1.
func (h *Heightfield) GenerateProcedural(width, height int, baseFrequency float32, octaves int, basis Basis) error {
	if width <= 0 || height <= 0 {
		return ErrGridSize
	}

	samples := make([]float32, width*height)
	lowest := math32.Inf(1)
	highest := math32.Inf(-1)

	for z := range height {
		for x := range width {
			nx := float32(x) / float32(width)
			nz := float32(z) / float32(height)

			var sum, ampSum float32
			amplitude := float32(1)
			frequency := baseFrequency
			for range octaves {
				sum += basis.Noise2(nx*frequency, nz*frequency) * amplitude
				ampSum += amplitude
				amplitude *= 0.5
				frequency *= 2
			}

			var value float32
			if ampSum > 0 {
				value = (sum/ampSum + 1) * 0.5
			}
			samples[z*width+x] = value

			lowest = min(lowest, value)
			highest = max(highest, value)
		}
	}

	if span := highest - lowest; span > 0.001 {
		for i, s := range samples {
			samples[i] = (s - lowest) / span
		}
	}

	h.width = width
	h.height = height
	h.samples = samples
	return nil
}

// GetHeight returns the bilinearly interpolated elevation at a world position,
// remapped into [BaseElevation, PeakElevation]. Positions outside the grid are
// clamped to the edge samples.
func (h *Heightfield) GetHeight(worldX, worldZ float32) float32 {
	if len(h.samples) == 0 {
		return 0
	}

	u := h.gridX(worldX)
	v := h.gridZ(worldZ)

	fx := math32.Floor(u)
	fz := math32.Floor(v)
	x0 := int(fx)
	z0 := int(fz)
	fracX := u - fx
	fracZ := v - fz

	h00 := h.sample(x0, z0)
	h10 := h.sample(x0+1, z0)
	h01 := h.sample(x0, z0+1)
	h11 := h.sample(x0+1, z0+1)

	hx0 := h00 + (h10-h00)*fracX
	hx1 := h01 + (h11-h01)*fracX
	n := hx0 + (hx1-hx0)*fracZ

	return h.remap(n)
}

// GetNormal estimates the surface normal with central differences one texel apart.
func (h *Heightfield) GetNormal(worldX, worldZ float32) math.Vec3 {
	if h.width == 0 {
		return math.Vec3{Y: 1}
	}
	step := h.extent / float32(h.width)

	left := h.GetHeight(worldX-step, worldZ)
	right := h.GetHeight(worldX+step, worldZ)
	down := h.GetHeight(worldX, worldZ-step)
	up := h.GetHeight(worldX, worldZ+step)

	return math.Vec3{X: left - right, Y: 2 * step, Z: down - up}.Normalize()
}

// RegionRange returns the elevation range of the samples covering the world
// rectangle [minX,maxX]x[minZ,maxZ]. An empty field yields the full range.
func (h *Heightfield) RegionRange(minX, minZ, maxX, maxZ float32) (lo, hi float32) {
	if len(h.samples) == 0 {
		return h.base, h.peak
	}

	x0 := int(math32.Floor(h.gridX(minX)))
	x1 := int(math32.Ceil(h.gridX(maxX)))
	z0 := int(math32.Floor(h.gridZ(minZ)))
	z1 := int(math32.Ceil(h.gridZ(maxZ)))

	nlo := math32.Inf(1)
	nhi := math32.Inf(-1)
	for z := z0; z <= z1; z++ {
		row := h.samples[z*h.width : (z+1)*h.width]
		for _, s := range row[x0 : x1+1] {
			nlo = min(nlo, s)
			nhi = max(nhi, s)
		}
	}
	return h.remap(nlo), h.remap(nhi)
}

func (h *Heightfield) remap(n float32) float32 {
	return h.base + n*(h.peak-h.base)
}

// gridX maps a world X to a fractional sample column in [0, width-1]. The
// clamp happens before any int conversion so huge or infinite inputs land on
// the edge.
func (h *Heightfield) gridX(worldX float32) float32 {
	return clampf((worldX/h.extent+0.5)*float32(h.width), 0, float32(h.width-1))
}

// gridZ is gridX for rows.
func (h *Heightfield) gridZ(worldZ float32) float32 {
	return clampf((worldZ/h.extent+0.5)*float32(h.height), 0, float32(h.height-1))
}

// sample returns the edge-clamped sample at grid coordinates.
func (h *Heightfield) sample(x, z int) float32 {
	return h.samples[h.clampZ(z)*h.width+h.clampX(x)]
}

func (h *Heightfield) clampX(x int) int {
	return clampi(x, 0, h.width-1)
}

func (h *Heightfield) clampZ(z int) int {
	return clampi(z, 0, h.height-1)
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampf clamps v to [lo, hi]. NaN maps to lo.
func clampf(v, lo, hi float32) float32 {
	if !(v > lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
