package mesh

// Box is an axis-aligned bounding box. Min <= Max component-wise; a
// zero-extent box is valid and signals a flat or empty dimension.
type Box struct {
	Min, Max Vec3
}

// Size returns the extent of the box along each axis.
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the box.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Contains reports whether p lies inside the box, boundaries included.
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Bounds returns the bounding box of all vertices. A mesh with no
// vertices has no bounds and yields a GeometryError.
func (m *Mesh) Bounds() (Box, error) {
	if len(m.Vertices) == 0 {
		return Box{}, &GeometryError{Op: "bounds", Msg: "mesh has no vertices"}
	}
	b := Box{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b, nil
}

// FlipX rotates the mesh 180 degrees about the X axis in place,
// negating the Y and Z component of every vertex. Face winding is
// unchanged by the rotation (a proper rotation preserves orientation),
// so a watertight mesh stays watertight. Applying FlipX twice restores
// the original geometry.
func (m *Mesh) FlipX() {
	for i := range m.Vertices {
		m.Vertices[i].Y = -m.Vertices[i].Y
		m.Vertices[i].Z = -m.Vertices[i].Z
	}
}
