package terrain

import (
	"errors"
	"testing"
)

func TestGradientNoiseZeroAtLattice(t *testing.T) {
	g := NewGradientNoise(42)
	for _, p := range [][2]float32{{0, 0}, {3, 7}, {-5, 12}, {255, 256}} {
		if got := g.Noise2(p[0], p[1]); got != 0 {
			t.Errorf("Noise2(%v) = %v, want 0", p, got)
		}
	}
}

func TestGradientNoiseDeterministic(t *testing.T) {
	a := NewGradientNoise(99)
	b := NewGradientNoise(99)
	for i := range 100 {
		x := float32(i) * 0.137
		z := float32(i) * 0.291
		if a.Noise2(x, z) != b.Noise2(x, z) {
			t.Fatalf("noise differs at (%v, %v)", x, z)
		}
	}
}

func TestGradientNoisePermutation(t *testing.T) {
	g := NewGradientNoise(3)
	seen := make(map[int]bool)
	for i := range 256 {
		seen[g.perm[i]] = true
		if g.perm[i] != g.perm[i+256] {
			t.Fatalf("perm[%d] != perm[%d]", i, i+256)
		}
	}
	if len(seen) != 256 {
		t.Errorf("permutation has %d distinct values, want 256", len(seen))
	}
}

func TestGradientNoiseBounded(t *testing.T) {
	g := NewGradientNoise(11)
	for i := range 500 {
		x := float32(i)*0.173 - 40
		z := float32(i)*0.311 + 3
		if v := g.Noise2(x, z); v < -2 || v > 2 {
			t.Fatalf("Noise2(%v, %v) = %v out of range", x, z, v)
		}
	}
}

func TestFade(t *testing.T) {
	tests := []struct{ in, want float32 }{
		{0, 0},
		{1, 1},
		{0.5, 0.5},
	}
	for _, tt := range tests {
		if got := fade(tt.in); got != tt.want {
			t.Errorf("fade(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewBasis(t *testing.T) {
	for _, name := range []string{"", BasisGradient, BasisOpenSimplex, BasisPerlin} {
		b, err := NewBasis(name, 5)
		if err != nil {
			t.Fatalf("NewBasis(%q) error: %v", name, err)
		}
		h := NewHeightfield(256, 0, 100)
		if err := h.GenerateProcedural(16, 16, 2, 3, b); err != nil {
			t.Fatalf("GenerateProcedural with %q failed: %v", name, err)
		}
	}

	if _, err := NewBasis("value", 5); !errors.Is(err, ErrUnknownBasis) {
		t.Errorf("NewBasis(value) error = %v, want ErrUnknownBasis", err)
	}
}
