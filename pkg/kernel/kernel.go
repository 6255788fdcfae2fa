// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid modeling and boolean
// operations behind this interface. Robust mesh booleans are a hard
// problem in their own right; the kernel abstraction keeps them an
// external dependency boundary and allows swapping backends without
// changing the rest of the system.
package kernel

import (
	"errors"

	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// ErrNotAVolume is returned by Solidify when the kernel cannot treat
// the mesh as a closed volume (open surfaces, inconsistent winding,
// non-manifold edges). Callers recover from it by switching to a
// surface-level strategy; every other kernel error is fatal.
var ErrNotAVolume = errors.New("kernel: mesh is not a closed volume")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// Bounds returns the axis-aligned bounding box.
	Bounds() mesh.Box
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box creates a solid axis-aligned box spanning b.
	Box(b mesh.Box) Solid

	// Solidify wraps a closed triangle mesh as a solid volume.
	// Returns ErrNotAVolume if the mesh does not enclose space.
	Solidify(m *mesh.Mesh) (Solid, error)

	// Intersection returns the boolean intersection of two solids.
	Intersection(a, b Solid) Solid

	// ToMesh converts a solid back to an indexed triangle mesh.
	ToMesh(s Solid) (*mesh.Mesh, error)
}
