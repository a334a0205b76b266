// Package terrain provides the heightfield data source, the static LOD mesh
// bank and the mapping from visible quadtree patches to draw parameters.
package terrain

import "github.com/go-gl/mathgl/mgl32"

// Vertex is a terrain grid vertex in patch-local space.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// DrawRange addresses one LOD mesh inside the shared index buffer.
type DrawRange struct {
	IndexCount int32
	StartIndex int32
	BaseVertex int32
}

// MeshBank holds the shared vertex/index buffers for every LOD grid.
// LOD 0 is the finest resolution.
type MeshBank struct {
	Vertices    []Vertex
	Indices     []uint32
	Ranges      []DrawRange
	Resolutions []int // Quads per side, per LOD
}

// PatchDraw carries everything a renderer needs to draw one visible patch.
type PatchDraw struct {
	Slot         int        // Per-frame buffer slot
	LOD          int        // Clamped to the mesh bank
	World        mgl32.Mat4 // Local unit square to world
	TexTransform mgl32.Mat4 // Local UV to terrain-wide UV
	Draw         DrawRange
}
