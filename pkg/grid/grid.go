// Package grid plans the partition of a model's bounding box into
// axis-aligned cells sized to fit a printer build volume. The cells
// tile the box exactly: per axis the cell size is the model extent
// divided by the cell count, never the build extent itself, so there is
// no leftover sliver on the far side.
package grid

import (
	"fmt"
	"math"

	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// BuildVolume is the usable rectangular envelope each output part must
// fit within, plus the caller's request to flip the model 180 degrees
// before measuring it.
type BuildVolume struct {
	X, Y, Z float64
	Flip    bool
}

// Validate rejects non-positive extents.
func (v BuildVolume) Validate() error {
	if v.X <= 0 || v.Y <= 0 || v.Z <= 0 {
		return fmt.Errorf("build volume extents must be positive, got %g x %g x %g", v.X, v.Y, v.Z)
	}
	return nil
}

// Cell is one axis-aligned grid cell: its integer coordinates and its
// bounds in model space.
type Cell struct {
	I, J, K int
	Bounds  mesh.Box
}

// Grid is the planned partition. Cells are enumerated in row-major
// order, x varying fastest, then y, then z, which fixes part labeling.
type Grid struct {
	NX, NY, NZ int
	CellSize   mesh.Vec3
	Origin     mesh.Vec3 // model-space min corner
	Limit      mesh.Vec3 // model-space max corner
	Cells      []Cell
}

// axisCount returns ceil(dim/extent) clamped to a minimum of one cell.
// A zero (flat) dimension always fits and needs a single cell.
func axisCount(dim, extent float64) int {
	n := int(math.Ceil(dim / extent))
	if n < 1 {
		return 1
	}
	return n
}

// Plan derives the grid covering bounds with cells that fit vol.
func Plan(bounds mesh.Box, vol BuildVolume) (*Grid, error) {
	if err := vol.Validate(); err != nil {
		return nil, err
	}
	size := bounds.Size()
	g := &Grid{
		NX:     axisCount(size.X, vol.X),
		NY:     axisCount(size.Y, vol.Y),
		NZ:     axisCount(size.Z, vol.Z),
		Origin: bounds.Min,
		Limit:  bounds.Max,
	}
	g.CellSize = mesh.Vec3{
		X: size.X / float64(g.NX),
		Y: size.Y / float64(g.NY),
		Z: size.Z / float64(g.NZ),
	}

	g.Cells = make([]Cell, 0, g.NX*g.NY*g.NZ)
	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				g.Cells = append(g.Cells, Cell{
					I: i, J: j, K: k,
					Bounds: g.cellBounds(i, j, k),
				})
			}
		}
	}
	return g, nil
}

// cellBounds computes the box of cell (i,j,k). The last cell along each
// axis snaps to the model bound to keep the tiling exact in the face of
// accumulated rounding.
func (g *Grid) cellBounds(i, j, k int) mesh.Box {
	min := mesh.Vec3{
		X: g.Origin.X + float64(i)*g.CellSize.X,
		Y: g.Origin.Y + float64(j)*g.CellSize.Y,
		Z: g.Origin.Z + float64(k)*g.CellSize.Z,
	}
	max := mesh.Vec3{
		X: g.Origin.X + float64(i+1)*g.CellSize.X,
		Y: g.Origin.Y + float64(j+1)*g.CellSize.Y,
		Z: g.Origin.Z + float64(k+1)*g.CellSize.Z,
	}
	if i == g.NX-1 {
		max.X = g.Limit.X
	}
	if j == g.NY-1 {
		max.Y = g.Limit.Y
	}
	if k == g.NZ-1 {
		max.Z = g.Limit.Z
	}
	return mesh.Box{Min: min, Max: max}
}

// Trivial reports whether the whole model already fits the build
// volume, in which case splitting is a no-op.
func (g *Grid) Trivial() bool {
	return g.NX == 1 && g.NY == 1 && g.NZ == 1
}

// Contains reports whether point p belongs to cell c under the
// partition rule: intervals are half-open [min, max) on every axis
// except the final cell along that axis, which closes the upper bound.
// Every point inside the model bounds belongs to exactly one cell.
func (g *Grid) Contains(c Cell, p mesh.Vec3) bool {
	return inAxis(p.X, c.Bounds.Min.X, c.Bounds.Max.X, c.I == g.NX-1) &&
		inAxis(p.Y, c.Bounds.Min.Y, c.Bounds.Max.Y, c.J == g.NY-1) &&
		inAxis(p.Z, c.Bounds.Min.Z, c.Bounds.Max.Z, c.K == g.NZ-1)
}

func inAxis(v, lo, hi float64, last bool) bool {
	if v < lo {
		return false
	}
	if last {
		return v <= hi
	}
	return v < hi
}
