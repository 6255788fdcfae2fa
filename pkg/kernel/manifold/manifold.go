//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Unlike the
// sdfx backend, Manifold computes exact mesh booleans with guaranteed
// manifold output, so sliced parts keep the source triangulation
// instead of being re-meshed.
//
// This package requires the Manifold C library (manifoldc) to be
// installed. Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/bandsaw3d/bandsaw/pkg/kernel"
	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*Kernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer and implements
// kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// Bounds returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) Bounds() mesh.Box {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	return mesh.Box{
		Min: mesh.Vec3{
			X: float64(C.manifold_box_min_x(bbox)),
			Y: float64(C.manifold_box_min_y(bbox)),
			Z: float64(C.manifold_box_min_z(bbox)),
		},
		Max: mesh.Vec3{
			X: float64(C.manifold_box_max_x(bbox)),
			Y: float64(C.manifold_box_max_y(bbox)),
			Z: float64(C.manifold_box_max_z(bbox)),
		},
	}
}

// newSolid wraps a C ManifoldManifold pointer with a Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// Kernel implements kernel.Kernel using the Manifold C library.
type Kernel struct{}

// New creates a Manifold-backed kernel.
func New() (kernel.Kernel, error) {
	return &Kernel{}, nil
}

// Box creates an axis-aligned box spanning b.
func (k *Kernel) Box(b mesh.Box) kernel.Solid {
	size := b.Size()
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(size.X), C.double(size.Y), C.double(size.Z),
		C.int(0), // center=false: min corner at origin
	)
	c := b.Min
	moved := C.manifold_translate(C.manifold_alloc_manifold(), ptr,
		C.double(c.X), C.double(c.Y), C.double(c.Z),
	)
	C.manifold_delete_manifold(ptr)
	return newSolid(moved)
}

// Solidify builds a Manifold solid from the triangle mesh. Manifold
// rejects meshes that do not enclose a volume; that rejection maps to
// kernel.ErrNotAVolume so the caller can fall back.
func (k *Kernel) Solidify(m *mesh.Mesh) (kernel.Solid, error) {
	if m.IsEmpty() || m.TriangleCount() == 0 {
		return nil, kernel.ErrNotAVolume
	}

	verts := make([]C.float, len(m.Vertices)*3)
	for i, v := range m.Vertices {
		verts[i*3+0] = C.float(v.X)
		verts[i*3+1] = C.float(v.Y)
		verts[i*3+2] = C.float(v.Z)
	}
	tris := make([]C.uint32_t, len(m.Faces)*3)
	for i, f := range m.Faces {
		tris[i*3+0] = C.uint32_t(f[0])
		tris[i*3+1] = C.uint32_t(f[1])
		tris[i*3+2] = C.uint32_t(f[2])
	}

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_meshgl(meshAlloc,
		(*C.float)(unsafe.Pointer(&verts[0])), C.size_t(len(m.Vertices)), 3,
		(*C.uint32_t)(unsafe.Pointer(&tris[0])), C.size_t(len(m.Faces)),
	)
	defer C.manifold_delete_meshgl(meshGL)

	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_of_meshgl(alloc, meshGL)
	if C.manifold_status(ptr) != C.MANIFOLD_NO_ERROR {
		C.manifold_delete_manifold(ptr)
		return nil, kernel.ErrNotAVolume
	}
	return newSolid(ptr), nil
}

// Intersection returns the boolean intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	sa := a.(*manifoldSolid)
	sb := b.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_intersection(alloc, sa.ptr, sb.ptr)
	return newSolid(ptr)
}

// ToMesh extracts the solid's triangle mesh from Manifold's MeshGL
// format. MeshGL interleaves per-vertex properties; the first three
// are always position.
func (k *Kernel) ToMesh(s kernel.Solid) (*mesh.Mesh, error) {
	ms := s.(*manifoldSolid)

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return &mesh.Mesh{}, nil
	}

	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	out := &mesh.Mesh{
		Vertices: make([]mesh.Vec3, numVert),
		Faces:    make([][3]uint32, numTri),
	}
	for i := 0; i < numVert; i++ {
		base := i * numProp
		out.Vertices[i] = mesh.Vec3{
			X: float64(propData[base+0]),
			Y: float64(propData[base+1]),
			Z: float64(propData[base+2]),
		}
	}
	for t := 0; t < numTri; t++ {
		out.Faces[t] = [3]uint32{indices[t*3], indices[t*3+1], indices[t*3+2]}
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("manifold: inconsistent MeshGL output: %w", err)
	}
	return out, nil
}
