package terrain

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
	"github.com/ojrac/opensimplex-go"
)

// ErrUnknownBasis is returned by NewBasis for an unrecognised basis name.
var ErrUnknownBasis = errors.New("unknown noise basis")

// Basis names accepted by NewBasis.
const (
	BasisGradient    = "gradient"
	BasisOpenSimplex = "opensimplex"
	BasisPerlin      = "perlin"
)

// Basis is a single-octave 2D noise function returning values roughly in [-1, 1].
type Basis interface {
	Noise2(x, z float32) float32
}

// NewBasis creates the named noise basis. An empty name selects gradient noise.
func NewBasis(name string, seed int64) (Basis, error) {
	switch name {
	case "", BasisGradient:
		return NewGradientNoise(seed), nil
	case BasisOpenSimplex:
		return OpenSimplexNoise{noise: opensimplex.New32(seed)}, nil
	case BasisPerlin:
		return PerlinNoise{noise: perlin.NewPerlin(2, 2, 1, seed)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBasis, name)
	}
}

// GradientNoise is 2D gradient noise over a shuffled 512-entry permutation table.
type GradientNoise struct {
	perm [512]int
}

// NewGradientNoise builds the permutation table from a seeded shuffle of 0..255.
func NewGradientNoise(seed int64) *GradientNoise {
	var base [256]int
	for i := range base {
		base[i] = i
	}

	rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
	rng.Shuffle(len(base), func(i, j int) {
		base[i], base[j] = base[j], base[i]
	})

	g := &GradientNoise{}
	for i, v := range base {
		g.perm[i] = v
		g.perm[i+256] = v
	}
	return g
}

// Noise2 evaluates the noise at (x, z).
func (g *GradientNoise) Noise2(x, z float32) float32 {
	fx := math32.Floor(x)
	fz := math32.Floor(z)
	gx := int(fx) & 255
	gz := int(fz) & 255

	x -= fx
	z -= fz

	u := fade(x)
	v := fade(z)

	a := g.perm[gx] + gz
	b := g.perm[gx+1] + gz

	g00 := grad(g.perm[a], x, z)
	g10 := grad(g.perm[b], x-1, z)
	g01 := grad(g.perm[a+1], x, z-1)
	g11 := grad(g.perm[b+1], x-1, z-1)

	return lerp(lerp(g00, g10, u), lerp(g01, g11, u), v)
}

// fade is the quintic 6t^5 - 15t^4 + 10t^3.
func fade(t float32) float32 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// grad picks one of four diagonal gradients from the low two hash bits and
// returns its dot product with the offset (x, z).
func grad(hash int, x, z float32) float32 {
	h := hash & 3
	u, v := x, z
	if h >= 2 {
		u, v = z, x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

// OpenSimplexNoise adapts opensimplex-go to Basis.
type OpenSimplexNoise struct {
	noise opensimplex.Noise32
}

// Noise2 evaluates the noise at (x, z).
func (n OpenSimplexNoise) Noise2(x, z float32) float32 {
	return n.noise.Eval2(x, z)
}

// PerlinNoise adapts go-perlin to Basis.
type PerlinNoise struct {
	noise *perlin.Perlin
}

// Noise2 evaluates the noise at (x, z).
func (n PerlinNoise) Noise2(x, z float32) float32 {
	return float32(n.noise.Noise2D(float64(x), float64(z)))
}
