// Package splitter orchestrates the split pipeline: measure the model,
// plan the grid, slice every cell with one strategy, and collect the
// labeled parts. The pipeline is a pure function of its inputs — it
// holds no shared state, so independent requests may run concurrently
// as long as each operates on its own mesh.
package splitter

import (
	"context"
	"errors"
	"fmt"

	"github.com/bandsaw3d/bandsaw/pkg/grid"
	"github.com/bandsaw3d/bandsaw/pkg/kernel"
	"github.com/bandsaw3d/bandsaw/pkg/kernel/sdfx"
	"github.com/bandsaw3d/bandsaw/pkg/mesh"
	"github.com/bandsaw3d/bandsaw/pkg/slicer"
)

// ProgressFunc is invoked synchronously after each completed part with
// the part's label and triangle count, plus the number of grid cells
// processed so far out of the total. Callers must not assume which
// goroutine invokes it.
type ProgressFunc func(label string, triangles, completed, total int)

// Options configures a split. The zero value slices with the boolean
// strategy over the sdfx kernel and falls back to centroid filtering.
type Options struct {
	Primary  slicer.Strategy
	Fallback slicer.Strategy
	Progress ProgressFunc
}

// Part is one output fragment: a self-contained mesh restricted to a
// single grid cell, its label in cell enumeration order, and derived
// metadata sufficient for previews and archive listings.
type Part struct {
	Label     string
	Mesh      *mesh.Mesh
	Bounds    mesh.Box
	Triangles int
}

// Result is the outcome of one split invocation.
type Result struct {
	Parts  []Part
	Grid   *grid.Grid
	Bounds mesh.Box
	// Fallback records that the filter strategy produced the parts
	// because the mesh could not be treated as a closed volume.
	Fallback bool
}

// Split partitions m into parts that each fit vol. The caller hands
// over ownership of m: the flip is applied in place and the trivial
// single-cell result references m directly. Either the full set of
// non-empty parts is returned or an error; never partial output.
func Split(ctx context.Context, m *mesh.Mesh, vol grid.BuildVolume, opts Options) (*Result, error) {
	if err := vol.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if vol.Flip {
		m.FlipX()
	}

	bounds, err := m.Bounds()
	if err != nil {
		return nil, err
	}
	g, err := grid.Plan(bounds, vol)
	if err != nil {
		return nil, err
	}
	res := &Result{Grid: g, Bounds: bounds}

	// The whole model fits: the split is a no-op and the single part is
	// the input mesh untouched in position and topology.
	if g.Trivial() {
		res.Parts = []Part{{
			Label:     "P1",
			Mesh:      m,
			Bounds:    bounds,
			Triangles: m.TriangleCount(),
		}}
		if opts.Progress != nil {
			opts.Progress("P1", m.TriangleCount(), 1, 1)
		}
		return res, nil
	}

	primary := opts.Primary
	if primary == nil {
		primary = slicer.NewBoolean(sdfx.New())
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = slicer.Filter{}
	}

	parts, err := runStrategy(ctx, primary, m, g, opts.Progress)
	if errors.Is(err, kernel.ErrNotAVolume) {
		// The mesh does not enclose a volume. Discard whatever the
		// boolean strategy produced and re-slice every cell with the
		// fallback so no object mixes strategies across its parts.
		res.Fallback = true
		parts, err = runStrategy(ctx, fallback, m, g, opts.Progress)
		if err != nil {
			return nil, fmt.Errorf("split: %s rejected the mesh (%w) and %s failed: %w",
				primary.Name(), kernel.ErrNotAVolume, fallback.Name(), err)
		}
	} else if err != nil {
		return nil, err
	}

	res.Parts = parts
	return res, nil
}

// runStrategy slices every cell with one strategy, skipping empty
// cells and labeling non-empty parts P1, P2, ... in cell enumeration
// order. Cancellation is checked between cells only; a cancelled
// context aborts the run with the context's error and no parts.
func runStrategy(ctx context.Context, s slicer.Strategy, m *mesh.Mesh, g *grid.Grid, progress ProgressFunc) ([]Part, error) {
	var parts []Part
	total := len(g.Cells)

	for done, c := range g.Cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sub, err := s.Slice(m, g, c)
		if err != nil {
			return nil, err
		}
		if sub.TriangleCount() == 0 {
			continue
		}

		pb, err := sub.Bounds()
		if err != nil {
			return nil, &slicer.SliceError{Strategy: s.Name(), Cell: c, Err: err}
		}
		p := Part{
			Label:     fmt.Sprintf("P%d", len(parts)+1),
			Mesh:      sub,
			Bounds:    pb,
			Triangles: sub.TriangleCount(),
		}
		parts = append(parts, p)

		if progress != nil {
			progress(p.Label, p.Triangles, done+1, total)
		}
	}
	return parts, nil
}
