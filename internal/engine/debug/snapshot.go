// Package debug provides debug visualization and export utilities.
package debug

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// ErrPixelCount is returned when pixel data does not match the image size.
var ErrPixelCount = errors.New("pixel data size mismatch")

// Snapshotter writes terrain layers to timestamped PNG files.
type Snapshotter struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewSnapshotter creates a snapshot writer. An empty outputDir writes to the
// working directory.
func NewSnapshotter(outputDir, prefix string) *Snapshotter {
	return &Snapshotter{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Filename generates a snapshot filename for layer name without saving.
func (s *Snapshotter) Filename(name string) string {
	timestamp := s.now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%s.png", s.prefix, name, timestamp)
	if s.outputDir != "" {
		filename = filepath.Join(s.outputDir, filename)
	}
	return filename
}

// CaptureRGBA writes RGBA pixel data (width*height*4 bytes, top row first).
func (s *Snapshotter) CaptureRGBA(name string, pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("%w: expected %d, got %d", ErrPixelCount, width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)
	return s.capture(name, img)
}

// CaptureHeightfield writes normalized [0,1] samples as a 16-bit grayscale image.
func (s *Snapshotter) CaptureHeightfield(name string, samples []float32, width, height int) (string, error) {
	if len(samples) != width*height {
		return "", fmt.Errorf("%w: expected %d, got %d", ErrPixelCount, width*height, len(samples))
	}

	img := image.NewGray16(image.Rect(0, 0, width, height))
	for z := range height {
		for x := range width {
			v := max(0, min(1, samples[z*width+x]))
			img.SetGray16(x, z, color.Gray16{Y: uint16(v * 65535)})
		}
	}
	return s.capture(name, img)
}

func (s *Snapshotter) capture(name string, img image.Image) (string, error) {
	if s.outputDir != "" {
		if err := os.MkdirAll(s.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := s.Filename(name)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}
