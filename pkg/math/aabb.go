package math

// AABB is an axis-aligned bounding box stored as center and half-extents.
type AABB struct {
	Center Vec3
	Half   Vec3
}

// Min returns the minimum corner.
func (b AABB) Min() Vec3 {
	return b.Center.Sub(b.Half)
}

// Max returns the maximum corner.
func (b AABB) Max() Vec3 {
	return b.Center.Add(b.Half)
}

// PositiveVertex returns the corner furthest along the plane normal.
func (b AABB) PositiveVertex(n Vec3) Vec3 {
	v := b.Center
	if n.X >= 0 {
		v.X += b.Half.X
	} else {
		v.X -= b.Half.X
	}
	if n.Y >= 0 {
		v.Y += b.Half.Y
	} else {
		v.Y -= b.Half.Y
	}
	if n.Z >= 0 {
		v.Z += b.Half.Z
	} else {
		v.Z -= b.Half.Z
	}
	return v
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p Vec3) bool {
	lo, hi := b.Min(), b.Max()
	return p.X >= lo.X && p.X <= hi.X &&
		p.Y >= lo.Y && p.Y <= hi.Y &&
		p.Z >= lo.Z && p.Z <= hi.Z
}
