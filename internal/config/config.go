// Package config handles terrain viewer configuration loading and management.
package config

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
)

// Config holds all viewer settings.
type Config struct {
	Terrain     TerrainConfig     `yaml:"terrain"`
	Heightfield HeightfieldConfig `yaml:"heightfield"`
	LOD         LODConfig         `yaml:"lod"`
	Camera      CameraConfig      `yaml:"camera"`
	Paint       PaintConfig       `yaml:"paint"`
	Run         RunConfig         `yaml:"run"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// TerrainConfig holds the world-space terrain square.
type TerrainConfig struct {
	Extent        float32 `yaml:"extent"`         // Side length, centered on the origin
	BaseElevation float32 `yaml:"base_elevation"` // Elevation of a 0 sample
	PeakElevation float32 `yaml:"peak_elevation"` // Elevation of a 1 sample
}

// HeightfieldConfig holds the height data source.
// A heightmap file is tried first; procedural generation is the fallback.
// The Path extension selects the format (see Format). With Archive set, Path
// names a file inside that GRF archive.
type HeightfieldConfig struct {
	Path      string `yaml:"path"`
	Archive   string `yaml:"archive"`
	RawWidth  int    `yaml:"raw_width"`
	RawHeight int    `yaml:"raw_height"`
	BitDepth  int    `yaml:"bit_depth"` // 8 or 16

	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	BaseFrequency float32 `yaml:"base_frequency"`
	Octaves       int     `yaml:"octaves"`
	Seed          int64   `yaml:"seed"`
	Noise         string  `yaml:"noise"` // gradient, opensimplex or perlin
}

// LODConfig holds quadtree and mesh bank settings.
type LODConfig struct {
	MinPatchSize  float32   `yaml:"min_patch_size"`
	MaxDepth      int       `yaml:"max_depth"`
	Distances     []float32 `yaml:"distances"`   // Empty selects the built-in table
	Resolutions   []int     `yaml:"resolutions"` // Quads per side, finest first
	FitNodeBounds bool      `yaml:"fit_node_bounds"`
	Parallel      bool      `yaml:"parallel"`
}

// CameraConfig holds the fly camera placement and lens.
type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
	FovY     float32    `yaml:"fov_y"` // Radians
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Aspect   float32    `yaml:"aspect"`
	Speed    float32    `yaml:"speed"` // World units per second
}

// PaintConfig holds paint layer settings.
type PaintConfig struct {
	Resolution int     `yaml:"resolution"`
	BrushSize  float32 `yaml:"brush_size"`
	Color      string  `yaml:"color"` // red, green or blue
}

// RunConfig holds the scripted fly-through settings.
type RunConfig struct {
	Frames      int     `yaml:"frames"`
	FPS         float64 `yaml:"fps"` // 0 runs unpaced
	SnapshotDir string  `yaml:"snapshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Extent:        512,
			BaseElevation: 0,
			PeakElevation: 150,
		},
		Heightfield: HeightfieldConfig{
			BitDepth:      16,
			Width:         256,
			Height:        256,
			BaseFrequency: 4,
			Octaves:       6,
			Seed:          1,
			Noise:         "gradient",
		},
		LOD: LODConfig{
			MinPatchSize: 64,
			MaxDepth:     5,
			Distances:    []float32{100, 200, 400, 600, 1000},
			Resolutions:  []int{256, 128, 64, 32, 16},
		},
		Camera: CameraConfig{
			Position: [3]float32{0, 250, 460},
			Target:   [3]float32{0, -30, 0},
			FovY:     math.Pi / 4,
			Near:     1,
			Far:      3000,
			Aspect:   16.0 / 9.0,
			Speed:    100,
		},
		Paint: PaintConfig{
			Resolution: 512,
			BrushSize:  30,
			Color:      "red",
		},
		Run: RunConfig{
			Frames: 600,
			FPS:    60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Heightmap file formats.
const (
	FormatRaw      = "raw"      // RawWidth x RawHeight samples of BitDepth bits
	FormatImage    = "image"    // .png or .tga luminance
	FormatAltitude = "altitude" // .gat altitude table
)

// Format returns the heightmap format implied by Path.
func (h HeightfieldConfig) Format() string {
	switch {
	case texture.IsImage(h.Path):
		return FormatImage
	case strings.EqualFold(filepath.Ext(h.Path), ".gat"):
		return FormatAltitude
	default:
		return FormatRaw
	}
}
