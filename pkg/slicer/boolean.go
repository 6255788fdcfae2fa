package slicer

import (
	"time"

	"github.com/bandsaw3d/bandsaw/pkg/grid"
	"github.com/bandsaw3d/bandsaw/pkg/kernel"
	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// DefaultBudget bounds a single cell's boolean intersection. Booleans
// are not preemptible mid-operation, so the budget is the only defense
// against a pathological mesh hanging a request.
const DefaultBudget = 30 * time.Second

// Compile-time interface check.
var _ Strategy = (*Boolean)(nil)

// Boolean slices by intersecting the solidified model with each cell
// box. The solid is prepared once per source mesh and reused across
// cells; the per-cell cost is one intersection plus re-meshing.
type Boolean struct {
	Kernel kernel.Kernel
	Budget time.Duration // per-cell bound, DefaultBudget when zero

	src   *mesh.Mesh
	solid kernel.Solid
}

// NewBoolean returns a Boolean strategy backed by k.
func NewBoolean(k kernel.Kernel) *Boolean {
	return &Boolean{Kernel: k}
}

func (b *Boolean) Name() string { return "boolean" }

// Slice intersects the model with the cell box. kernel.ErrNotAVolume
// is returned as-is so the caller can switch the whole request to the
// fallback strategy; every other failure is wrapped as a SliceError.
func (b *Boolean) Slice(m *mesh.Mesh, g *grid.Grid, c grid.Cell) (*mesh.Mesh, error) {
	if b.src != m {
		solid, err := b.Kernel.Solidify(m)
		if err != nil {
			return nil, err
		}
		b.src, b.solid = m, solid
	}

	box := b.Kernel.Box(c.Bounds)
	part := b.Kernel.Intersection(box, b.solid)
	return b.meshWithinBudget(part, c)
}

type meshResult struct {
	m   *mesh.Mesh
	err error
}

// meshWithinBudget runs ToMesh but abandons it when the budget timer
// fires. The worker goroutine runs to completion either way; an
// abandoned result is simply discarded.
func (b *Boolean) meshWithinBudget(s kernel.Solid, c grid.Cell) (*mesh.Mesh, error) {
	budget := b.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	ch := make(chan meshResult, 1)
	go func() {
		m, err := b.Kernel.ToMesh(s)
		ch <- meshResult{m: m, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, &SliceError{Strategy: b.Name(), Cell: c, Err: res.err}
		}
		return res.m, nil
	case <-timer.C:
		return nil, &SliceError{Strategy: b.Name(), Cell: c, Err: ErrBudget}
	}
}
