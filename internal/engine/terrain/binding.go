package terrain

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-terrain/internal/engine/quadtree"
)

// BindPatch maps a visible patch to its draw parameters. The world transform
// scales the unit grid by the patch size in X/Z and moves it to the patch
// center; the texture transform maps patch UVs into the terrain-wide UV space.
func BindPatch(p quadtree.Patch, worldExtent float32, bank *MeshBank) PatchDraw {
	uvRange := p.Size / worldExtent
	offsetU := p.CenterX/worldExtent + 0.5 - uvRange*0.5
	offsetV := p.CenterZ/worldExtent + 0.5 - uvRange*0.5

	world := mgl32.Translate3D(p.CenterX, 0, p.CenterZ).Mul4(mgl32.Scale3D(p.Size, 1, p.Size))
	uv := mgl32.Translate3D(offsetU, offsetV, 0).Mul4(mgl32.Scale3D(uvRange, uvRange, 1))

	lod := bank.ClampLOD(p.LOD)
	return PatchDraw{
		Slot:         p.Slot,
		LOD:          lod,
		World:        world,
		TexTransform: uv,
		Draw:         bank.Range(lod),
	}
}

// BindPatches appends the draw parameters of every patch to dst.
func BindPatches(dst []PatchDraw, patches []quadtree.Patch, worldExtent float32, bank *MeshBank) []PatchDraw {
	for _, p := range patches {
		dst = append(dst, BindPatch(p, worldExtent, bank))
	}
	return dst
}
