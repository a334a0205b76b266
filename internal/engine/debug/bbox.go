package debug

import (
	"github.com/Faultbox/midgard-terrain/internal/engine/quadtree"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// GenerateBBoxWireframeVertices creates line vertices for a wireframe bounding box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func GenerateBBoxWireframeVertices(minX, minY, minZ, maxX, maxY, maxZ float32) []float32 {
	return appendBBoxWireframe(nil, minX, minY, minZ, maxX, maxY, maxZ)
}

// BoundsWireframe creates wireframe vertices for an AABB.
func BoundsWireframe(b math.AABB) []float32 {
	lo, hi := b.Min(), b.Max()
	return GenerateBBoxWireframeVertices(lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
}

// PatchBoundsWireframe appends the bounding box wireframe of every visible
// patch to dst.
func PatchBoundsWireframe(dst []float32, tree *quadtree.Tree, patches []quadtree.Patch) []float32 {
	for _, p := range patches {
		n := tree.Node(p.ID)
		lo, hi := n.Bounds.Min(), n.Bounds.Max()
		dst = appendBBoxWireframe(dst, lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
	}
	return dst
}

func appendBBoxWireframe(dst []float32, minX, minY, minZ, maxX, maxY, maxZ float32) []float32 {
	return append(dst,
		// Bottom face (4 edges)
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face (4 edges)
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges (4 edges)
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	)
}
