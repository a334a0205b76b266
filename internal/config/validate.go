package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Validate rejects settings the viewer cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Terrain.Extent <= 0:
		return fmt.Errorf("%w: terrain.extent must be positive, got %v", ErrInvalid, c.Terrain.Extent)
	case c.Terrain.PeakElevation < c.Terrain.BaseElevation:
		return fmt.Errorf("%w: terrain.peak_elevation %v below base_elevation %v",
			ErrInvalid, c.Terrain.PeakElevation, c.Terrain.BaseElevation)
	case c.Heightfield.Path != "" && c.Heightfield.Format() == FormatRaw &&
		(c.Heightfield.RawWidth <= 0 || c.Heightfield.RawHeight <= 0):
		return fmt.Errorf("%w: heightfield.raw_width and raw_height are required for raw heightmaps", ErrInvalid)
	case c.Heightfield.Archive != "" && c.Heightfield.Path == "":
		return fmt.Errorf("%w: heightfield.archive requires heightfield.path", ErrInvalid)
	case c.Heightfield.BitDepth != 8 && c.Heightfield.BitDepth != 16:
		return fmt.Errorf("%w: heightfield.bit_depth must be 8 or 16, got %d", ErrInvalid, c.Heightfield.BitDepth)
	case c.Heightfield.Width <= 0 || c.Heightfield.Height <= 0:
		return fmt.Errorf("%w: heightfield.width and height must be positive", ErrInvalid)
	case c.Heightfield.Octaves <= 0:
		return fmt.Errorf("%w: heightfield.octaves must be positive, got %d", ErrInvalid, c.Heightfield.Octaves)
	case c.LOD.MaxDepth <= 0:
		return fmt.Errorf("%w: lod.max_depth must be positive, got %d", ErrInvalid, c.LOD.MaxDepth)
	case c.LOD.MinPatchSize <= 0 || c.LOD.MinPatchSize > c.Terrain.Extent:
		return fmt.Errorf("%w: lod.min_patch_size must be in (0, extent], got %v", ErrInvalid, c.LOD.MinPatchSize)
	case len(c.LOD.Resolutions) == 0:
		return fmt.Errorf("%w: lod.resolutions must not be empty", ErrInvalid)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera near/far must satisfy 0 < near < far", ErrInvalid)
	case c.Camera.Aspect <= 0 || c.Camera.FovY <= 0:
		return fmt.Errorf("%w: camera aspect and fov_y must be positive", ErrInvalid)
	case c.Run.Frames < 0 || c.Run.FPS < 0:
		return fmt.Errorf("%w: run.frames and run.fps must not be negative", ErrInvalid)
	}

	for i, d := range c.LOD.Distances {
		if i > 0 && d <= c.LOD.Distances[i-1] {
			return fmt.Errorf("%w: lod.distances must ascend, got %v", ErrInvalid, c.LOD.Distances)
		}
	}
	for _, r := range c.LOD.Resolutions {
		if r <= 0 {
			return fmt.Errorf("%w: lod.resolutions must be positive, got %v", ErrInvalid, c.LOD.Resolutions)
		}
	}
	return nil
}
