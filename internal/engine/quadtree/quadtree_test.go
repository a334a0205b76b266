package quadtree

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

func newTestTree() *Tree {
	tree := New()
	tree.Initialize(512, 64, 5)
	return tree
}

func TestInitializeNodeCount(t *testing.T) {
	tests := []struct {
		name     string
		extent   float32
		minPatch float32
		maxDepth int
		want     int
	}{
		// 512 -> 256 -> 128 -> 64 stops on size.
		{"size limited", 512, 64, 5, 1 + 4 + 16 + 64},
		// Depth limit: leaves at depth maxDepth-1 = 2.
		{"depth limited", 512, 1, 3, 1 + 4 + 16},
		{"single level", 512, 1, 1, 1},
		{"root already small", 512, 512, 8, 1},
		{"deep", 1024, 16, 8, 1 + 4 + 16 + 64 + 256 + 1024 + 4096},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := New()
			tree.Initialize(tt.extent, tt.minPatch, tt.maxDepth)
			if got := tree.TotalNodeCount(); got != tt.want {
				t.Errorf("TotalNodeCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInitializeDeterministic(t *testing.T) {
	a := newTestTree()

	b := New()
	b.Initialize(2048, 16, 7)
	b.Initialize(512, 64, 5)

	if a.TotalNodeCount() != b.TotalNodeCount() {
		t.Fatalf("node counts differ: %d vs %d", a.TotalNodeCount(), b.TotalNodeCount())
	}
	for i := range a.TotalNodeCount() {
		na, nb := a.Node(NodeID(i)), b.Node(NodeID(i))
		if na.CenterX != nb.CenterX || na.CenterZ != nb.CenterZ || na.Size != nb.Size || na.Depth != nb.Depth {
			t.Errorf("node %d differs: %+v vs %+v", i, *na, *nb)
		}
	}
}

func TestLeafCriterionAndChildren(t *testing.T) {
	tree := New()
	const minPatch, maxDepth = 32, 5
	tree.Initialize(1000, minPatch, maxDepth)

	for i := range tree.TotalNodeCount() {
		n := tree.Node(NodeID(i))
		wantLeaf := n.Size <= minPatch || n.Depth >= maxDepth-1
		if n.Leaf != wantLeaf {
			t.Errorf("node %d: Leaf = %v, want %v (size %v depth %d)", i, n.Leaf, wantLeaf, n.Size, n.Depth)
		}
		if n.Leaf {
			for _, c := range n.Children {
				if c != NoChild {
					t.Errorf("leaf %d has child %d", i, c)
				}
			}
			continue
		}

		q := n.Size / 4
		offsets := [4][2]float32{{-q, q}, {q, q}, {-q, -q}, {q, -q}}
		for k, c := range n.Children {
			if c == NoChild {
				t.Fatalf("internal node %d missing child %d", i, k)
			}
			child := tree.Node(c)
			if child.Size != n.Size/2 {
				t.Errorf("child size = %v, want %v", child.Size, n.Size/2)
			}
			if child.Depth != n.Depth+1 {
				t.Errorf("child depth = %d, want %d", child.Depth, n.Depth+1)
			}
			if child.CenterX != n.CenterX+offsets[k][0] || child.CenterZ != n.CenterZ+offsets[k][1] {
				t.Errorf("child %d center = (%v,%v), want (%v,%v)", k,
					child.CenterX, child.CenterZ, n.CenterX+offsets[k][0], n.CenterZ+offsets[k][1])
			}
		}
	}
}

func TestDefaultLODTable(t *testing.T) {
	tree := New()
	tree.Initialize(512, 64, 5)

	want := []float32{2048, 1024, 512, 256, 128}
	got := tree.LODDistances()
	if len(got) != len(want) {
		t.Fatalf("LODDistances() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("threshold[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLODTablePersistsAcrossInitialize(t *testing.T) {
	tree := New()
	custom := []float32{100, 200, 400, 600, 1000}
	tree.SetLODDistances(custom)
	tree.Initialize(512, 64, 5)
	tree.Initialize(1024, 32, 6)

	got := tree.LODDistances()
	for i := range custom {
		if got[i] != custom[i] {
			t.Errorf("threshold[%d] = %v, want %v", i, got[i], custom[i])
		}
	}

	// Default table is also built only once.
	d := New()
	d.Initialize(512, 64, 5)
	d.Initialize(512, 32, 3)
	if got := d.LODDistances(); len(got) != 5 || got[0] != 2048 {
		t.Errorf("default table rebuilt on re-Initialize: %v", got)
	}
}

func TestUpdateInfiniteFrustumViewerFarAway(t *testing.T) {
	tree := newTestTree()
	tree.Update(math.Vec3{X: 10000, Y: 0, Z: 0}, math.InfiniteFrustum())

	if got := tree.VisibleNodeCount(); got != 1 {
		t.Fatalf("VisibleNodeCount() = %d, want 1 (root only)", got)
	}
	if s := tree.State(tree.Root()); s != VisibleLeaf {
		t.Errorf("root state = %v, want VisibleLeaf", s)
	}
	// Children never visited.
	for _, c := range tree.Node(tree.Root()).Children {
		if s := tree.State(c); s != Unvisited {
			t.Errorf("child %d state = %v, want Unvisited", c, s)
		}
	}
}

func TestUpdateInfiniteFrustumCoversTerrain(t *testing.T) {
	viewers := []math.Vec3{
		{X: 0, Y: 50, Z: 0},
		{X: 200, Y: 300, Z: -180},
		{X: -255, Y: 0, Z: 255},
	}
	for _, v := range viewers {
		tree := newTestTree()
		tree.Update(v, math.InfiniteFrustum())

		count := tree.VisibleNodeCount()
		if count == 0 {
			t.Fatalf("viewer %v: no visible nodes", v)
		}

		// With nothing culled the selected patches tile the root exactly.
		var area float32
		for _, p := range tree.GetVisibleNodes(nil) {
			area += p.Size * p.Size
		}
		if area != 512*512 {
			t.Errorf("viewer %v: covered area = %v, want %v", v, area, 512*512)
		}
	}
}

func TestUpdateSubdividesNearViewer(t *testing.T) {
	tree := newTestTree()
	tree.Update(math.Vec3{X: 0, Y: 50, Z: 0}, math.InfiniteFrustum())

	// Viewer at the center: root and all depth-1 nodes subdivide,
	// so nothing coarser than 128 is drawn.
	for _, p := range tree.GetVisibleNodes(nil) {
		if p.Size > 128 {
			t.Errorf("patch %d of size %v drawn next to the viewer", p.ID, p.Size)
		}
	}
	if s := tree.State(tree.Root()); s != VisibleInternal {
		t.Errorf("root state = %v, want VisibleInternal", s)
	}
}

func TestSlotsContiguous(t *testing.T) {
	tree := newTestTree()
	tree.Update(math.Vec3{X: 37, Y: 80, Z: -120}, math.InfiniteFrustum())

	patches := tree.GetVisibleNodes(nil)
	if len(patches) != tree.VisibleNodeCount() {
		t.Fatalf("len(GetVisibleNodes) = %d, VisibleNodeCount = %d", len(patches), tree.VisibleNodeCount())
	}
	seen := make(map[int]bool)
	for i, p := range patches {
		if p.Slot != i {
			t.Errorf("patch %d has slot %d", i, p.Slot)
		}
		if seen[p.Slot] {
			t.Errorf("duplicate slot %d", p.Slot)
		}
		seen[p.Slot] = true
		if tree.State(p.ID) != VisibleLeaf {
			t.Errorf("patch %d state = %v", p.ID, tree.State(p.ID))
		}
	}
}

// preorder walks the tree the way a separate collection pass would.
func preorder(tree *Tree, id NodeID, out []NodeID) []NodeID {
	switch tree.State(id) {
	case VisibleLeaf:
		return append(out, id)
	case VisibleInternal:
		for _, c := range tree.Node(id).Children {
			if c != NoChild {
				out = preorder(tree, c, out)
			}
		}
	}
	return out
}

func TestVisibleOrderIsPreorder(t *testing.T) {
	tree := newTestTree()
	tree.Update(math.Vec3{X: -90, Y: 40, Z: 60}, math.InfiniteFrustum())

	want := preorder(tree, tree.Root(), nil)
	got := tree.GetVisibleNodes(nil)
	if len(got) != len(want) {
		t.Fatalf("got %d patches, walk found %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("patch %d = node %d, want node %d", i, got[i].ID, want[i])
		}
	}
}

func TestCulledSubtreeNotVisited(t *testing.T) {
	tree := newTestTree()

	// Keep only x >= 1: the two -x children of the root are culled.
	f := math.InfiniteFrustum()
	f[math.PlaneLeft] = math.NewPlane(1, 0, 0, -1)
	tree.Update(math.Vec3{X: 0, Y: 50, Z: 0}, f)

	root := tree.Node(tree.Root())
	for _, k := range []int{0, 2} {
		c := root.Children[k]
		if s := tree.State(c); s != Culled {
			t.Errorf("child %d state = %v, want Culled", k, s)
		}
		for _, gc := range tree.Node(c).Children {
			if s := tree.State(gc); s != Unvisited {
				t.Errorf("descendant %d of culled node state = %v, want Unvisited", gc, s)
			}
		}
	}
	for _, p := range tree.GetVisibleNodes(nil) {
		if p.CenterX < 0 {
			t.Errorf("patch %d at x=%v should have been culled", p.ID, p.CenterX)
		}
	}
}

func TestRootCulledByPlane(t *testing.T) {
	tree := newTestTree()

	// Only y >= 1000 survives; terrain bounds top out at 110.
	f := math.InfiniteFrustum()
	f[math.PlaneNear] = math.NewPlane(0, 1, 0, -1000)
	tree.Update(math.Vec3{X: 0, Y: 1000, Z: 0}, f)

	if got := tree.VisibleNodeCount(); got != 0 {
		t.Errorf("VisibleNodeCount() = %d, want 0", got)
	}
	if s := tree.State(tree.Root()); s != Culled {
		t.Errorf("root state = %v, want Culled", s)
	}
}

func TestRootCulledByNarrowCameraLookingAway(t *testing.T) {
	tree := newTestTree()

	// Above the root bounds so the frustum apex lies outside the box.
	eye := mgl32.Vec3{0, 1000, 0}
	proj := mgl32.Perspective(mgl32.DegToRad(1), 1, 1, 3000)
	view := mgl32.LookAtV(eye, eye.Add(mgl32.Vec3{0, 1, 0}), mgl32.Vec3{0, 0, 1})
	f := math.ExtractFrustum(proj.Mul4(view))

	tree.Update(math.FromGL(eye), f)
	if got := tree.VisibleNodeCount(); got != 0 {
		t.Errorf("VisibleNodeCount() = %d, want 0", got)
	}
}

func TestNarrowCameraAtRootCenterKeepsRoot(t *testing.T) {
	tree := newTestTree()
	root := tree.Node(tree.Root())

	// The apex sits inside the root box, which straddles every side plane,
	// so the positive-vertex test cannot reject it.
	eye := mgl32.Vec3{root.CenterX, root.MidElevation(), root.CenterZ}
	proj := mgl32.Perspective(mgl32.DegToRad(1), 1, 1, 3000)
	view := mgl32.LookAtV(eye, eye.Add(mgl32.Vec3{0, 1, 0}), mgl32.Vec3{0, 0, 1})
	f := math.ExtractFrustum(proj.Mul4(view))

	tree.Update(math.FromGL(eye), f)
	if s := tree.State(tree.Root()); s == Culled {
		t.Errorf("root state = %v, want visible", s)
	}
	if got := tree.VisibleNodeCount(); got == 0 {
		t.Errorf("VisibleNodeCount() = 0, want patches around the eye")
	}
}

func TestUpdateResetsPreviousFrame(t *testing.T) {
	tree := newTestTree()
	tree.Update(math.Vec3{X: 0, Y: 50, Z: 0}, math.InfiniteFrustum())
	if tree.VisibleNodeCount() <= 1 {
		t.Fatalf("expected subdivision near the center")
	}

	tree.Update(math.Vec3{X: 10000, Y: 0, Z: 0}, math.InfiniteFrustum())
	if got := tree.VisibleNodeCount(); got != 1 {
		t.Errorf("VisibleNodeCount() = %d, want 1", got)
	}
	for i := 1; i < tree.TotalNodeCount(); i++ {
		if s := tree.State(NodeID(i)); s != Unvisited {
			t.Fatalf("node %d kept state %v from the previous frame", i, s)
		}
	}
}

func TestLODMonotonicWithDistance(t *testing.T) {
	tree := New()
	tree.SetLODDistances([]float32{100, 200, 400, 600, 1000})
	tree.Initialize(512, 64, 5)

	n := tree.Node(tree.Root())
	prev := -1
	for d := float32(0); d < 3000; d += 25 {
		viewer := math.Vec3{X: n.CenterX + d, Y: n.MidElevation(), Z: n.CenterZ}
		lod := tree.determineLOD(n, viewer)
		if lod < prev {
			t.Fatalf("LOD decreased from %d to %d at distance %v", prev, lod, d)
		}
		prev = lod
	}
	if prev != 4 {
		t.Errorf("LOD beyond the table = %d, want maxDepth-1 = 4", prev)
	}
}

func TestLODAssignment(t *testing.T) {
	tree := New()
	tree.SetLODDistances([]float32{100, 200, 400, 600, 1000})
	tree.Initialize(512, 64, 5)
	n := tree.Node(tree.Root())

	tests := []struct {
		distance float32
		want     int
	}{
		{0, 0},
		{99, 0},
		{100, 1},
		{350, 2},
		{599, 3},
		{999, 4},
		{5000, 4},
	}
	for _, tt := range tests {
		viewer := math.Vec3{X: tt.distance, Y: n.MidElevation(), Z: 0}
		if got := tree.determineLOD(n, viewer); got != tt.want {
			t.Errorf("determineLOD at %v = %d, want %d", tt.distance, got, tt.want)
		}
	}
}

func TestSetHeightRangeRootOnly(t *testing.T) {
	tree := newTestTree()
	tree.SetHeightRange(0, 150)

	root := tree.Node(tree.Root())
	if root.Bounds.Center.Y != 75 || root.Bounds.Half.Y != 85 {
		t.Errorf("root bounds = %+v, want center.y 75 half.y 85", root.Bounds)
	}
	child := tree.Node(root.Children[0])
	if child.Bounds.Center.Y != 50 || child.Bounds.Half.Y != 60 {
		t.Errorf("child bounds changed: %+v", child.Bounds)
	}
}

type stepRanger struct{}

// RegionRange reports a higher range east of x=0.
func (stepRanger) RegionRange(minX, minZ, maxX, maxZ float32) (float32, float32) {
	if minX >= 0 {
		return 200, 300
	}
	return 0, 300
}

func TestFitBounds(t *testing.T) {
	tree := newTestTree()
	tree.FitBounds(stepRanger{})

	for i := range tree.TotalNodeCount() {
		n := tree.Node(NodeID(i))
		wantMin := float32(0)
		if n.CenterX-n.Size/2 >= 0 {
			wantMin = 200
		}
		if n.MinElevation != wantMin || n.MaxElevation != 300 {
			t.Errorf("node %d range = [%v,%v], want [%v,300]", i, n.MinElevation, n.MaxElevation, wantMin)
		}
		if n.Bounds.Half.Y != (300-wantMin)/2+boundsPadding {
			t.Errorf("node %d half height = %v", i, n.Bounds.Half.Y)
		}
	}
}

func TestUpdateParallelMatchesUpdate(t *testing.T) {
	viewers := []math.Vec3{
		{X: 0, Y: 50, Z: 0},
		{X: 120, Y: 10, Z: -240},
		{X: 10000, Y: 0, Z: 0},
	}
	frusta := []math.Frustum{math.InfiniteFrustum()}
	half := math.InfiniteFrustum()
	half[math.PlaneLeft] = math.NewPlane(1, 0, 0, -30)
	frusta = append(frusta, half)

	for _, v := range viewers {
		for fi, f := range frusta {
			serial := newTestTree()
			if err := serial.Update(v, f); err != nil {
				t.Fatalf("Update() error: %v", err)
			}
			parallel := newTestTree()
			if err := parallel.UpdateParallel(v, f); err != nil {
				t.Fatalf("UpdateParallel() error: %v", err)
			}

			a := serial.GetVisibleNodes(nil)
			b := parallel.GetVisibleNodes(nil)
			if len(a) != len(b) {
				t.Fatalf("viewer %v frustum %d: %d vs %d patches", v, fi, len(a), len(b))
			}
			for i := range a {
				if a[i] != b[i] {
					t.Errorf("viewer %v frustum %d patch %d: %+v vs %+v", v, fi, i, a[i], b[i])
				}
			}
			for i := range serial.TotalNodeCount() {
				if serial.State(NodeID(i)) != parallel.State(NodeID(i)) {
					t.Errorf("node %d state %v vs %v", i, serial.State(NodeID(i)), parallel.State(NodeID(i)))
				}
			}
		}
	}
}

func TestUpdateBeforeInitialize(t *testing.T) {
	tree := New()
	if err := tree.Update(math.Vec3{}, math.InfiniteFrustum()); err != nil {
		t.Errorf("Update() error: %v", err)
	}
	if err := tree.UpdateParallel(math.Vec3{}, math.InfiniteFrustum()); err != nil {
		t.Errorf("UpdateParallel() error: %v", err)
	}
	if got := tree.VisibleNodeCount(); got != 0 {
		t.Errorf("VisibleNodeCount() = %d, want 0", got)
	}
	if tree.Root() != NoChild {
		t.Errorf("Root() = %d, want NoChild", tree.Root())
	}
}

func TestUpdateBrokenLink(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(tree *Tree)
	}{
		{"missing root child", func(tree *Tree) {
			tree.Node(tree.Root()).Children[1] = NoChild
		}},
		{"child out of range", func(tree *Tree) {
			tree.Node(tree.Root()).Children[3] = NodeID(tree.TotalNodeCount())
		}},
		{"grandchild loops to root", func(tree *Tree) {
			first := tree.Node(tree.Root()).Children[0]
			tree.Node(first).Children[0] = tree.Root()
		}},
	}

	viewer := math.Vec3{X: 0, Y: 50, Z: 0}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, parallel := range []bool{false, true} {
				tree := newTestTree()
				tt.corrupt(tree)

				update := tree.Update
				if parallel {
					update = tree.UpdateParallel
				}
				if err := update(viewer, math.InfiniteFrustum()); !errors.Is(err, ErrBrokenLink) {
					t.Errorf("parallel=%v: error = %v, want ErrBrokenLink", parallel, err)
				}
				if got := tree.VisibleNodeCount(); got != 0 {
					t.Errorf("parallel=%v: VisibleNodeCount() = %d after failure, want 0", parallel, got)
				}
				if got := tree.GetVisibleNodes(nil); len(got) != 0 {
					t.Errorf("parallel=%v: GetVisibleNodes() = %d patches after failure", parallel, len(got))
				}
			}
		})
	}
}
