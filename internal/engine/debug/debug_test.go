package debug

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/midgard-terrain/internal/engine/quadtree"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

func fixedSnapshotter(dir string) *Snapshotter {
	s := NewSnapshotter(dir, "terrain")
	s.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) }
	return s
}

func decode(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func TestFilename(t *testing.T) {
	s := fixedSnapshotter("out")
	want := filepath.Join("out", "terrain_paint_2024-03-09_14-05-06.png")
	if got := s.Filename("paint"); got != want {
		t.Errorf("Filename() = %s, want %s", got, want)
	}
}

func TestCaptureRGBA(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snaps")
	s := fixedSnapshotter(dir)

	pixels := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 0, 0, 0, 0,
	}
	path, err := s.CaptureRGBA("paint", pixels, 2, 2)
	if err != nil {
		t.Fatalf("CaptureRGBA failed: %v", err)
	}
	if !strings.HasPrefix(path, dir) {
		t.Errorf("path %s not under %s", path, dir)
	}

	img := decode(t, path)
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 2x2", b)
	}
	if got := color.NRGBAModel.Convert(img.At(1, 0)).(color.NRGBA); got != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("pixel (1,0) = %v, want green", got)
	}
}

func TestCaptureHeightfield(t *testing.T) {
	s := fixedSnapshotter(t.TempDir())

	path, err := s.CaptureHeightfield("height", []float32{0, 0.5, 1, 2}, 2, 2)
	if err != nil {
		t.Fatalf("CaptureHeightfield failed: %v", err)
	}

	img := decode(t, path)
	tests := []struct {
		x, y int
		want uint16
	}{
		{0, 0, 0},
		{1, 0, 32767},
		{0, 1, 65535},
		{1, 1, 65535}, // Clamped
	}
	for _, tt := range tests {
		got := color.Gray16Model.Convert(img.At(tt.x, tt.y)).(color.Gray16).Y
		if got != tt.want {
			t.Errorf("pixel (%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestCaptureSizeMismatch(t *testing.T) {
	s := fixedSnapshotter(t.TempDir())

	if _, err := s.CaptureRGBA("paint", make([]byte, 15), 2, 2); !errors.Is(err, ErrPixelCount) {
		t.Errorf("CaptureRGBA() error = %v, want ErrPixelCount", err)
	}
	if _, err := s.CaptureHeightfield("height", make([]float32, 3), 2, 2); !errors.Is(err, ErrPixelCount) {
		t.Errorf("CaptureHeightfield() error = %v, want ErrPixelCount", err)
	}
}

func TestBoundsWireframe(t *testing.T) {
	b := math.AABB{Center: math.Vec3{X: 1, Y: 2, Z: 3}, Half: math.Vec3{X: 1, Y: 1, Z: 1}}
	v := BoundsWireframe(b)
	if len(v) != BBoxWireframeVertexCount*3 {
		t.Fatalf("len = %d, want %d", len(v), BBoxWireframeVertexCount*3)
	}
	for i := 0; i < len(v); i += 3 {
		if v[i] != 0 && v[i] != 2 || v[i+1] != 1 && v[i+1] != 3 || v[i+2] != 2 && v[i+2] != 4 {
			t.Fatalf("vertex %d = %v not a box corner", i/3, v[i:i+3])
		}
	}
}

func TestPatchBoundsWireframe(t *testing.T) {
	tree := quadtree.New()
	tree.Initialize(512, 64, 5)
	if err := tree.Update(math.Vec3{Y: 50}, math.InfiniteFrustum()); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	patches := tree.GetVisibleNodes(nil)

	v := PatchBoundsWireframe(nil, tree, patches)
	if len(v) != len(patches)*BBoxWireframeVertexCount*3 {
		t.Errorf("len = %d, want %d", len(v), len(patches)*BBoxWireframeVertexCount*3)
	}
}
