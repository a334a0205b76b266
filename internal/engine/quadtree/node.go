// Package quadtree implements the view-dependent terrain LOD index: a static
// quadtree over a square world region that, each frame, culls patches against
// the view frustum and picks which ones to draw and at what detail level.
package quadtree

import "github.com/Faultbox/midgard-terrain/pkg/math"

// NodeID indexes a node in the tree's arena.
type NodeID int32

// NoChild marks an absent child slot.
const NoChild NodeID = -1

// Flat elevation range given to every node at construction, and the vertical
// padding added to each bounding box.
const (
	defaultMinElevation = 0
	defaultMaxElevation = 100
	boundsPadding       = 10
)

// State is the per-frame traversal outcome for a node.
type State uint8

// Node states. Every node starts each frame as Unvisited.
const (
	Unvisited       State = iota
	VisibleLeaf           // Drawn this frame
	VisibleInternal       // Inside the frustum, children drawn instead
	Culled                // Outside the frustum
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Unvisited:
		return "Unvisited"
	case VisibleLeaf:
		return "VisibleLeaf"
	case VisibleInternal:
		return "VisibleInternal"
	case Culled:
		return "Culled"
	default:
		return "Unknown"
	}
}

// Node is the static geometry of one square patch. It is fixed once the tree
// is built; only the elevation range and bounds may be refitted.
type Node struct {
	CenterX float32
	CenterZ float32
	Size    float32 // Side length
	Depth   int

	MinElevation float32
	MaxElevation float32
	Bounds       math.AABB

	Leaf     bool
	Children [4]NodeID // -x+z, +x+z, -x-z, +x-z
}

// MidElevation returns the middle of the node's elevation range.
func (n *Node) MidElevation() float32 {
	return (n.MinElevation + n.MaxElevation) * 0.5
}

// setElevation stores a new elevation range and recomputes the bounds.
func (n *Node) setElevation(minY, maxY float32) {
	n.MinElevation = minY
	n.MaxElevation = maxY
	n.Bounds = math.AABB{
		Center: math.Vec3{X: n.CenterX, Y: (minY + maxY) * 0.5, Z: n.CenterZ},
		Half: math.Vec3{
			X: n.Size * 0.5,
			Y: (maxY-minY)*0.5 + boundsPadding,
			Z: n.Size * 0.5,
		},
	}
}

// Patch is a node selected for drawing in the current frame.
type Patch struct {
	ID      NodeID
	CenterX float32
	CenterZ float32
	Size    float32
	Depth   int
	LOD     int // Detail level, 0 = finest
	Slot    int // Per-frame buffer slot, 0-based and contiguous
}
