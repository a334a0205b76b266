// Package viewer runs the per-frame terrain pipeline: camera, frustum,
// quadtree LOD selection and draw binding.
package viewer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/assets"
	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/engine/lighting"
	"github.com/Faultbox/midgard-terrain/internal/engine/paint"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/quadtree"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/formats"
)

// Stats summarises the most recent frame.
type Stats struct {
	Visible      int
	Total        int
	LODHistogram []int // Visible patches per mesh bank LOD
}

// Viewer owns the terrain data and produces one draw list per frame.
type Viewer struct {
	log *zap.Logger

	extent     float32
	parallel   bool
	procedural bool

	field  *terrain.Heightfield
	bank   *terrain.MeshBank
	tree   *quadtree.Tree
	camera *camera.FlyCamera
	paint  *paint.Layer

	patches []quadtree.Patch
	draws   []terrain.PatchDraw
}

// New builds the heightfield, mesh bank, quadtree, camera and paint layer.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		log:      logger.Named("viewer"),
		extent:   cfg.Terrain.Extent,
		parallel: cfg.LOD.Parallel,
	}

	var err error
	v.field, v.procedural, err = buildHeightfield(cfg, v.log)
	if err != nil {
		return nil, err
	}

	v.bank = terrain.BuildMeshBank(cfg.LOD.Resolutions)

	v.tree = quadtree.New()
	if len(cfg.LOD.Distances) > 0 {
		v.tree.SetLODDistances(cfg.LOD.Distances)
	}
	v.tree.Initialize(cfg.Terrain.Extent, cfg.LOD.MinPatchSize, cfg.LOD.MaxDepth)
	v.tree.SetHeightRange(cfg.Terrain.BaseElevation, cfg.Terrain.PeakElevation)
	if cfg.LOD.FitNodeBounds {
		v.tree.FitBounds(v.field)
	}

	v.camera = camera.NewFlyCamera(cfg.Camera.Aspect)
	v.camera.SetLens(cfg.Camera.FovY, cfg.Camera.Aspect, cfg.Camera.Near, cfg.Camera.Far)
	v.camera.SetPosition(cfg.Camera.Position[0], cfg.Camera.Position[1], cfg.Camera.Position[2])
	v.camera.LookAt(mgl32.Vec3(cfg.Camera.Target))

	color, err := paint.ParseColor(cfg.Paint.Color)
	if err != nil {
		return nil, err
	}
	v.paint = paint.NewLayer(cfg.Paint.Resolution, cfg.Terrain.Extent)
	v.paint.SetBrushSize(cfg.Paint.BrushSize)
	v.paint.SetColor(color)

	v.log.Info("terrain ready",
		zap.Bool("procedural", v.procedural),
		zap.Int("samplesX", v.field.Width()),
		zap.Int("samplesZ", v.field.Height()),
		zap.Int("nodes", v.tree.TotalNodeCount()),
		zap.Int("lods", v.bank.LODCount()),
		zap.Int("vertices", len(v.bank.Vertices)),
		zap.Int("indices", len(v.bank.Indices)))

	return v, nil
}

// buildHeightfield loads the configured heightmap, falling back to
// procedural generation when none is set or loading fails.
func buildHeightfield(cfg *config.Config, log *zap.Logger) (*terrain.Heightfield, bool, error) {
	hc := cfg.Heightfield
	field := terrain.NewHeightfield(cfg.Terrain.Extent, cfg.Terrain.BaseElevation, cfg.Terrain.PeakElevation)

	if hc.Path != "" {
		err := LoadHeightmap(field, hc)
		if err == nil {
			return field, false, nil
		}
		log.Warn("heightmap load failed, using procedural terrain",
			zap.String("path", hc.Path),
			zap.String("archive", hc.Archive),
			zap.Error(err))
	}

	basis, err := terrain.NewBasis(hc.Noise, hc.Seed)
	if err != nil {
		return nil, false, fmt.Errorf("creating noise basis: %w", err)
	}
	if err := field.GenerateProcedural(hc.Width, hc.Height, hc.BaseFrequency, hc.Octaves, basis); err != nil {
		return nil, false, fmt.Errorf("generating terrain: %w", err)
	}
	return field, true, nil
}

// LoadHeightmap reads hc.Path into field according to its format. On error
// field is unchanged.
func LoadHeightmap(field *terrain.Heightfield, hc config.HeightfieldConfig) error {
	data, err := readHeightmap(hc)
	if err != nil {
		return err
	}

	switch hc.Format() {
	case config.FormatImage:
		img, err := texture.Decode(data, hc.Path)
		if err != nil {
			return err
		}
		return field.LoadImage(img)
	case config.FormatAltitude:
		table, err := formats.ParseAltitudeTable(data)
		if err != nil {
			return err
		}
		return field.LoadElevations(table.Elevations())
	default:
		return field.LoadRaw(data, hc.RawWidth, hc.RawHeight, hc.BitDepth)
	}
}

// readHeightmap returns the heightmap bytes, looking inside hc.Archive first
// when one is set.
func readHeightmap(hc config.HeightfieldConfig) ([]byte, error) {
	m := assets.NewManager()
	defer m.Close()

	if hc.Archive != "" {
		if err := m.AddArchive(hc.Archive); err != nil {
			return nil, err
		}
	}
	return m.Load(hc.Path)
}

// Camera returns the fly camera.
func (v *Viewer) Camera() *camera.FlyCamera { return v.camera }

// Heightfield returns the terrain height data.
func (v *Viewer) Heightfield() *terrain.Heightfield { return v.field }

// MeshBank returns the shared LOD meshes.
func (v *Viewer) MeshBank() *terrain.MeshBank { return v.bank }

// Tree returns the LOD quadtree.
func (v *Viewer) Tree() *quadtree.Tree { return v.tree }

// Paint returns the paint layer.
func (v *Viewer) Paint() *paint.Layer { return v.paint }

// Procedural reports whether the heightfield was generated rather than loaded.
func (v *Viewer) Procedural() bool { return v.procedural }

// Frame selects the visible patches for the current camera and returns their
// draw parameters in buffer-slot order. The slice is reused by the next call.
func (v *Viewer) Frame() ([]terrain.PatchDraw, error) {
	eye := v.camera.Position()
	frustum := v.camera.Frustum()

	update := v.tree.Update
	if v.parallel {
		update = v.tree.UpdateParallel
	}
	if err := update(eye, frustum); err != nil {
		v.patches = v.patches[:0]
		v.draws = v.draws[:0]
		return nil, fmt.Errorf("updating quadtree: %w", err)
	}

	v.patches = v.tree.GetVisibleNodes(v.patches[:0])
	v.draws = terrain.BindPatches(v.draws[:0], v.patches, v.extent, v.bank)

	v.log.Debug("frame",
		zap.Int("visible", len(v.draws)),
		zap.Float32("eyeX", eye.X),
		zap.Float32("eyeY", eye.Y),
		zap.Float32("eyeZ", eye.Z))

	return v.draws, nil
}

// Patches returns the visible patches of the last frame.
func (v *Viewer) Patches() []quadtree.Patch { return v.patches }

// Stats returns the counts of the last frame.
func (v *Viewer) Stats() Stats {
	hist := make([]int, v.bank.LODCount())
	for _, d := range v.draws {
		if d.LOD < len(hist) {
			hist[d.LOD]++
		}
	}
	return Stats{
		Visible:      v.tree.VisibleNodeCount(),
		Total:        v.tree.TotalNodeCount(),
		LODHistogram: hist,
	}
}

// PaintAt casts a ray through a screen pixel and paints where it meets the
// terrain. It returns the hit point and whether the terrain was hit.
func (v *Viewer) PaintAt(screenX, screenY, viewportW, viewportH float32) (mgl32.Vec3, bool) {
	ray := picking.ScreenToRay(screenX, screenY, viewportW, viewportH, v.camera.ViewProj().Inv())
	hit, ok := picking.IntersectTerrain(ray, v.field, v.extent)
	if !ok {
		return mgl32.Vec3{}, false
	}

	v.paint.Paint(hit[0], hit[2])
	v.log.Debug("painted",
		zap.Float32("x", hit[0]),
		zap.Float32("y", hit[1]),
		zap.Float32("z", hit[2]))
	return hit, true
}

// DebugBounds appends line vertices for the bounds of every visible patch.
func (v *Viewer) DebugBounds(dst []float32) []float32 {
	return debug.PatchBoundsWireframe(dst, v.tree, v.patches)
}

// Snapshot writes the heightfield, its hillshade and the paint layer as PNG
// files.
func (v *Viewer) Snapshot(s *debug.Snapshotter) ([]string, error) {
	w, h := v.field.Width(), v.field.Height()
	heightPath, err := s.CaptureHeightfield("height", v.field.Samples(), w, h)
	if err != nil {
		return nil, fmt.Errorf("height snapshot: %w", err)
	}

	sun := lighting.SunDirection(lighting.DefaultLongitude, lighting.DefaultLatitude)
	shade := lighting.Hillshade(v.field, v.extent, w, h, sun, lighting.DefaultAmbient)
	shadePath, err := s.CaptureHeightfield("shade", shade, w, h)
	if err != nil {
		return nil, fmt.Errorf("shade snapshot: %w", err)
	}

	size := v.paint.Size()
	paintPath, err := s.CaptureRGBA("paint", v.paint.RGBA(), size, size)
	if err != nil {
		return nil, fmt.Errorf("paint snapshot: %w", err)
	}
	return []string{heightPath, shadePath, paintPath}, nil
}
