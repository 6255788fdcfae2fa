// Package slicer produces the sub-mesh of a model belonging to one
// grid cell. Two interchangeable strategies exist: Boolean computes a
// true geometric intersection through a geometry kernel and requires
// the model to be a closed volume; Filter assigns whole triangles by
// centroid and works on any surface. A split request uses exactly one
// strategy for all of its cells so parts of the same object never mix
// provenance.
package slicer

import (
	"errors"
	"fmt"

	"github.com/bandsaw3d/bandsaw/pkg/grid"
	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// Strategy carves the sub-mesh of m that belongs to cell c of g.
// An empty result mesh is valid and means the cell holds no geometry.
type Strategy interface {
	// Name identifies the strategy in errors and logs.
	Name() string

	Slice(m *mesh.Mesh, g *grid.Grid, c grid.Cell) (*mesh.Mesh, error)
}

// ErrBudget marks a boolean operation abandoned because it exceeded
// its time budget.
var ErrBudget = errors.New("slicer: time budget exhausted")

// SliceError is an unexpected, fatal failure while slicing one cell.
type SliceError struct {
	Strategy string
	Cell     grid.Cell
	Err      error
}

func (e *SliceError) Error() string {
	return fmt.Sprintf("slicer: %s strategy failed at cell (%d,%d,%d): %v",
		e.Strategy, e.Cell.I, e.Cell.J, e.Cell.K, e.Err)
}

func (e *SliceError) Unwrap() error {
	return e.Err
}
