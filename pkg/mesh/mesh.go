// Package mesh defines the triangle mesh model used throughout Bandsaw.
// A mesh is a flat vertex array plus index triples; faces reference
// vertices by position, so there are no linked structures to chase and
// sub-meshes can be carved out by copying slices.
package mesh

import (
	"fmt"
	"math"
)

// Vec3 is a point or direction in model space.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product of v and w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the euclidean length of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Min returns the component-wise minimum of v and w.
func (v Vec3) Min(w Vec3) Vec3 {
	return Vec3{math.Min(v.X, w.X), math.Min(v.Y, w.Y), math.Min(v.Z, w.Z)}
}

// Max returns the component-wise maximum of v and w.
func (v Vec3) Max(w Vec3) Vec3 {
	return Vec3{math.Max(v.X, w.X), math.Max(v.Y, w.Y), math.Max(v.Z, w.Z)}
}

// Mesh is an indexed triangle mesh. Every face index must be strictly
// less than the vertex count.
type Mesh struct {
	Vertices []Vec3
	Faces    [][3]uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Triangle returns the three corner positions of face i.
func (m *Mesh) Triangle(i int) [3]Vec3 {
	f := m.Faces[i]
	return [3]Vec3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// FaceCentroid returns the centroid of face i. Degenerate faces yield
// the (possibly repeated) average of their corners like any other face.
func (m *Mesh) FaceCentroid(i int) Vec3 {
	t := m.Triangle(i)
	return t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3.0)
}

// Validate checks that every face index references an existing vertex.
func (m *Mesh) Validate() error {
	n := uint32(len(m.Vertices))
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx >= n {
				return &GeometryError{
					Op:  "validate",
					Msg: fmt.Sprintf("face %d references vertex %d, mesh has %d vertices", i, idx, n),
				}
			}
		}
	}
	return nil
}

// Volume returns the enclosed volume computed as the sum of signed
// tetrahedron volumes against the origin. The result is only meaningful
// for a closed, consistently oriented mesh; outward orientation gives a
// positive volume.
func (m *Mesh) Volume() float64 {
	var v float64
	for i := range m.Faces {
		t := m.Triangle(i)
		v += t[0].Dot(t[1].Cross(t[2]))
	}
	return v / 6.0
}

// SurfaceArea returns the total area of all faces.
func (m *Mesh) SurfaceArea() float64 {
	var a float64
	for i := range m.Faces {
		t := m.Triangle(i)
		a += t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Length()
	}
	return a / 2.0
}

// GeometryError reports a degenerate or inconsistent model, such as a
// mesh with no vertices. It is fatal for the request that raised it.
type GeometryError struct {
	Op  string
	Msg string
}

func (e *GeometryError) Error() string {
	return "mesh: " + e.Op + ": " + e.Msg
}
