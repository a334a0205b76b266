package terrain

// DefaultResolutions are the quads per side of each LOD grid, finest first.
var DefaultResolutions = []int{256, 128, 64, 32, 16}

// BuildMeshBank builds one unit-square grid per resolution into a shared
// vertex/index buffer pair. Every grid spans [-0.5, 0.5] in local X/Z with
// UVs over [0, 1], and every cell is split along the same diagonal.
func BuildMeshBank(resolutions []int) *MeshBank {
	bank := &MeshBank{
		Resolutions: append([]int(nil), resolutions...),
		Ranges:      make([]DrawRange, 0, len(resolutions)),
	}

	var vertexTotal, indexTotal int
	for _, res := range resolutions {
		vertexTotal += (res + 1) * (res + 1)
		indexTotal += res * res * 6
	}
	bank.Vertices = make([]Vertex, 0, vertexTotal)
	bank.Indices = make([]uint32, 0, indexTotal)

	for _, res := range resolutions {
		vertexStart := uint32(len(bank.Vertices))
		indexStart := int32(len(bank.Indices))
		inv := 1 / float32(res)

		for z := 0; z <= res; z++ {
			v := float32(z) * inv
			for x := 0; x <= res; x++ {
				u := float32(x) * inv
				bank.Vertices = append(bank.Vertices, Vertex{
					Position: [3]float32{u - 0.5, 0, v - 0.5},
					Normal:   [3]float32{0, 1, 0},
					TexCoord: [2]float32{u, v},
				})
			}
		}

		row := uint32(res + 1)
		for z := range uint32(res) {
			for x := range uint32(res) {
				i0 := vertexStart + z*row + x
				i1 := i0 + 1
				i2 := vertexStart + (z+1)*row + x
				i3 := i2 + 1

				bank.Indices = append(bank.Indices,
					i0, i2, i1,
					i1, i2, i3,
				)
			}
		}

		bank.Ranges = append(bank.Ranges, DrawRange{
			IndexCount: int32(res * res * 6),
			StartIndex: indexStart,
			BaseVertex: 0, // indices are absolute
		})
	}

	return bank
}

// LODCount returns the number of LOD meshes.
func (b *MeshBank) LODCount() int {
	return len(b.Ranges)
}

// MaxLOD returns the coarsest LOD index.
func (b *MeshBank) MaxLOD() int {
	return len(b.Ranges) - 1
}

// ClampLOD limits lod to the available meshes.
func (b *MeshBank) ClampLOD(lod int) int {
	if lod < 0 {
		return 0
	}
	return min(lod, b.MaxLOD())
}

// Range returns the draw range for lod, clamped to the available meshes.
func (b *MeshBank) Range(lod int) DrawRange {
	if len(b.Ranges) == 0 {
		return DrawRange{}
	}
	return b.Ranges[b.ClampLOD(lod)]
}
