package quadtree

import (
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// HeightRanger reports the elevation range of a world-space rectangle.
type HeightRanger interface {
	RegionRange(minX, minZ, maxX, maxZ float32) (lo, hi float32)
}

// Tree is the terrain quadtree. Static topology lives in nodes; per-frame
// results are kept in parallel slices indexed by NodeID.
type Tree struct {
	nodes []Node

	states []State
	lods   []int
	slots  []int

	visible []NodeID

	worldExtent  float32
	minPatchSize float32
	maxDepth     int

	lodThresholds []float32
}

// New creates an empty tree. Call Initialize before Update.
func New() *Tree {
	return &Tree{}
}

// SetLODDistances replaces the LOD threshold table. Entries should be
// non-decreasing; the first threshold larger than a node's distance selects
// its level. A table set before Initialize is kept.
func (t *Tree) SetLODDistances(thresholds []float32) {
	t.lodThresholds = append([]float32(nil), thresholds...)
}

// LODDistances returns a copy of the threshold table.
func (t *Tree) LODDistances() []float32 {
	return append([]float32(nil), t.lodThresholds...)
}

// Initialize builds the tree over a square of side worldExtent centered at the
// origin. A node is a leaf once its size is at most minPatchSize or its depth
// reaches maxDepth-1. maxDepth must be at least 1 and minPatchSize positive;
// other values give a degenerate single-leaf tree rather than an error.
//
// If no LOD table has been set, a default one is derived:
// threshold[i] = minPatchSize * 2^(maxDepth-i-1) * 2.
func (t *Tree) Initialize(worldExtent, minPatchSize float32, maxDepth int) {
	t.worldExtent = worldExtent
	t.minPatchSize = minPatchSize
	t.maxDepth = maxDepth

	if len(t.lodThresholds) == 0 {
		t.lodThresholds = defaultThresholds(minPatchSize, maxDepth)
	}

	t.nodes = t.nodes[:0]
	t.construct(0, 0, worldExtent, 0)

	n := len(t.nodes)
	t.states = make([]State, n)
	t.lods = make([]int, n)
	t.slots = make([]int, n)
	t.visible = make([]NodeID, 0, n)
}

func defaultThresholds(minPatchSize float32, maxDepth int) []float32 {
	if maxDepth <= 0 {
		return nil
	}
	thresholds := make([]float32, maxDepth)
	for i := range thresholds {
		base := minPatchSize * float32(int(1)<<(maxDepth-i-1))
		thresholds[i] = base * 2
	}
	return thresholds
}

// construct appends the node and, unless it is a leaf, its four children.
func (t *Tree) construct(x, z, size float32, depth int) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		CenterX:  x,
		CenterZ:  z,
		Size:     size,
		Depth:    depth,
		Children: [4]NodeID{NoChild, NoChild, NoChild, NoChild},
	})
	t.nodes[id].setElevation(defaultMinElevation, defaultMaxElevation)

	if size <= t.minPatchSize || depth >= t.maxDepth-1 {
		t.nodes[id].Leaf = true
		return id
	}

	half := size * 0.5
	quarter := size * 0.25
	var children [4]NodeID
	children[0] = t.construct(x-quarter, z+quarter, half, depth+1)
	children[1] = t.construct(x+quarter, z+quarter, half, depth+1)
	children[2] = t.construct(x-quarter, z-quarter, half, depth+1)
	children[3] = t.construct(x+quarter, z-quarter, half, depth+1)

	t.nodes[id].Children = children
	return id
}

// SetHeightRange sets the root's elevation range and recomputes its bounds.
// Descendants keep their own ranges; use FitBounds to refit every node.
func (t *Tree) SetHeightRange(minY, maxY float32) {
	if len(t.nodes) == 0 {
		return
	}
	t.nodes[0].setElevation(minY, maxY)
}

// FitBounds sets every node's elevation range from the terrain it covers.
func (t *Tree) FitBounds(r HeightRanger) {
	for i := range t.nodes {
		n := &t.nodes[i]
		h := n.Size * 0.5
		lo, hi := r.RegionRange(n.CenterX-h, n.CenterZ-h, n.CenterX+h, n.CenterZ+h)
		n.setElevation(lo, hi)
	}
}

// Root returns the root node ID, or NoChild before Initialize.
func (t *Tree) Root() NodeID {
	if len(t.nodes) == 0 {
		return NoChild
	}
	return 0
}

// Node returns the static data of a node.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// State returns the node's state from the last Update.
func (t *Tree) State(id NodeID) State {
	return t.states[id]
}

// LOD returns the detail level assigned during the last Update.
// Only meaningful for visible nodes.
func (t *Tree) LOD(id NodeID) int {
	return t.lods[id]
}

// Slot returns the buffer slot assigned during the last Update.
// Only meaningful for VisibleLeaf nodes.
func (t *Tree) Slot(id NodeID) int {
	return t.slots[id]
}

// TotalNodeCount returns the number of nodes built by Initialize.
func (t *Tree) TotalNodeCount() int {
	return len(t.nodes)
}

// VisibleNodeCount returns the number of patches selected by the last Update.
func (t *Tree) VisibleNodeCount() int {
	return len(t.visible)
}

// WorldExtent returns the side length of the root.
func (t *Tree) WorldExtent() float32 {
	return t.worldExtent
}

// MaxDepth returns the configured maximum depth.
func (t *Tree) MaxDepth() int {
	return t.maxDepth
}

// GetVisibleNodes appends the patches selected by the last Update to dst, in
// pre-order (children in construction order). The i-th patch has Slot i.
func (t *Tree) GetVisibleNodes(dst []Patch) []Patch {
	for _, id := range t.visible {
		dst = append(dst, t.patch(id))
	}
	return dst
}

func (t *Tree) patch(id NodeID) Patch {
	n := &t.nodes[id]
	return Patch{
		ID:      id,
		CenterX: n.CenterX,
		CenterZ: n.CenterZ,
		Size:    n.Size,
		Depth:   n.Depth,
		LOD:     t.lods[id],
		Slot:    t.slots[id],
	}
}

// determineLOD returns the first level whose threshold exceeds the distance
// from the viewer to the node center at mid elevation.
func (t *Tree) determineLOD(n *Node, viewer math.Vec3) int {
	center := math.Vec3{X: n.CenterX, Y: n.MidElevation(), Z: n.CenterZ}
	d := viewer.Distance(center)
	for i, threshold := range t.lodThresholds {
		if d < threshold {
			return i
		}
	}
	return t.maxDepth - 1
}

// shouldSubdivide reports whether the viewer is horizontally within 1.5 patch
// sizes of the node center.
func (t *Tree) shouldSubdivide(n *Node, viewer math.Vec3) bool {
	if n.Leaf {
		return false
	}
	center := math.Vec3{X: n.CenterX, Z: n.CenterZ}
	return viewer.DistanceXZ(center) < n.Size*1.5
}
