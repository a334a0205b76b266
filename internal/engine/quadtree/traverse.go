package quadtree

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// ErrBrokenLink is returned when an internal node's child link does not point
// at a later node of the tree.
var ErrBrokenLink = errors.New("quadtree: broken child link")

// traversal carries the inputs and the output list of one pass over a subtree.
type traversal struct {
	viewer  math.Vec3
	frustum *math.Frustum
	visible []NodeID
}

// Update recomputes visibility, detail levels and buffer slots for the given
// viewer position and frustum. Per-frame state from earlier calls is discarded.
// On error the frame is left empty.
func (t *Tree) Update(viewer math.Vec3, frustum math.Frustum) error {
	t.resetFrame()
	if len(t.nodes) == 0 {
		return nil
	}

	tr := traversal{viewer: viewer, frustum: &frustum, visible: t.visible}
	if err := t.process(0, &tr); err != nil {
		t.resetFrame()
		return err
	}
	t.visible = tr.visible
	return nil
}

// UpdateParallel produces the same result as Update, traversing the root's
// four subtrees concurrently. Subtrees are disjoint so each goroutine owns
// the per-frame state of its nodes; slots are renumbered afterwards.
func (t *Tree) UpdateParallel(viewer math.Vec3, frustum math.Frustum) error {
	t.resetFrame()
	if len(t.nodes) == 0 {
		return nil
	}

	root := &t.nodes[0]
	if !t.visit(0, viewer, &frustum) || !t.shouldSubdivide(root, viewer) {
		return t.Update(viewer, frustum)
	}
	for _, child := range root.Children {
		if err := t.checkLink(0, child); err != nil {
			t.resetFrame()
			return err
		}
	}
	t.states[0] = VisibleInternal

	var branches [4]traversal
	var g errgroup.Group
	for i, child := range root.Children {
		branches[i] = traversal{viewer: viewer, frustum: &frustum}
		g.Go(func() error {
			return t.process(child, &branches[i])
		})
	}
	if err := g.Wait(); err != nil {
		t.resetFrame()
		return err
	}

	for i := range branches {
		t.visible = append(t.visible, branches[i].visible...)
	}
	for slot, id := range t.visible {
		t.slots[id] = slot
	}
	return nil
}

func (t *Tree) resetFrame() {
	clear(t.states)
	clear(t.lods)
	clear(t.slots)
	t.visible = t.visible[:0]
}

// visit runs the cull test and, if the node survives, assigns its LOD.
func (t *Tree) visit(id NodeID, viewer math.Vec3, frustum *math.Frustum) bool {
	n := &t.nodes[id]
	if !frustum.IntersectsAABB(n.Bounds) {
		t.states[id] = Culled
		return false
	}
	t.lods[id] = t.determineLOD(n, viewer)
	return true
}

func (t *Tree) process(id NodeID, tr *traversal) error {
	if !t.visit(id, tr.viewer, tr.frustum) {
		return nil
	}

	n := &t.nodes[id]
	if t.shouldSubdivide(n, tr.viewer) {
		t.states[id] = VisibleInternal
		for _, child := range n.Children {
			if err := t.checkLink(id, child); err != nil {
				return err
			}
			if err := t.process(child, tr); err != nil {
				return err
			}
		}
		return nil
	}

	t.states[id] = VisibleLeaf
	t.slots[id] = len(tr.visible)
	tr.visible = append(tr.visible, id)
	return nil
}

// checkLink rejects child links that are missing, out of range or point
// backwards. Construction numbers children after their parent, so a valid
// link always moves forward and traversal cannot loop.
func (t *Tree) checkLink(parent, child NodeID) error {
	if child <= parent || int(child) >= len(t.nodes) {
		return fmt.Errorf("%w: node %d child %d", ErrBrokenLink, parent, child)
	}
	return nil
}
