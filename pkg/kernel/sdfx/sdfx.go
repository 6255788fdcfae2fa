// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Booleans are computed
// in the signed-distance domain and converted back to triangles with
// marching cubes, so boolean output is a re-meshed surface whose
// fidelity is controlled by the tessellation resolution.
package sdfx

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/bandsaw3d/bandsaw/pkg/kernel"
	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 128

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// Bounds returns the axis-aligned bounding box.
func (s *sdfxSolid) Bounds() mesh.Box {
	bb := s.s.BoundingBox()
	return mesh.Box{
		Min: mesh.Vec3{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		Max: mesh.Vec3{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
}

// Kernel implements kernel.Kernel using sdfx.
type Kernel struct {
	cells int
}

// New returns a Kernel with the default tessellation resolution.
func New() *Kernel {
	return &Kernel{cells: DefaultMeshCells}
}

// NewWithResolution returns a Kernel that tessellates with the given
// marching cubes cell count. Lower is faster and coarser.
func NewWithResolution(cells int) *Kernel {
	if cells < 1 {
		cells = 1
	}
	return &Kernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box spanning b. sdf.Box3D centers the box at the
// origin and rejects non-positive sizes, so degenerate axes are given
// an infinitesimal thickness and the result is translated to the
// requested center.
func (k *Kernel) Box(b mesh.Box) kernel.Solid {
	size := b.Size()
	const tiny = 1e-9
	if size.X <= 0 {
		size.X = tiny
	}
	if size.Y <= 0 {
		size.Y = tiny
	}
	if size.Z <= 0 {
		size.Z = tiny
	}
	s, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	c := b.Center()
	m := sdf.Translate3d(v3.Vec{X: c.X, Y: c.Y, Z: c.Z})
	return wrap(sdf.Transform3D(s, m))
}

// Solidify wraps a triangle mesh as a signed distance field. The mesh
// must be watertight: without a closed, consistently oriented surface
// there is no inside to assign a negative distance to.
func (k *Kernel) Solidify(m *mesh.Mesh) (kernel.Solid, error) {
	if !m.Watertight() {
		return nil, kernel.ErrNotAVolume
	}
	s, err := newMeshSDF(m)
	if err != nil {
		return nil, err
	}
	return wrap(s), nil
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
// Coincident corner positions are welded back into an indexed mesh.
// A solid with no surface inside its bounding box (an empty boolean
// result) yields an empty mesh, not an error.
func (k *Kernel) ToMesh(s kernel.Solid) (*mesh.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	w := mesh.NewWelder(len(triangles))
	for _, tri := range triangles {
		w.Triangle(fromV3(tri[0]), fromV3(tri[1]), fromV3(tri[2]))
	}
	return w.Mesh(), nil
}

func fromV3(v v3.Vec) mesh.Vec3 {
	return mesh.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}
