package sdfx

import (
	"math"

	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// triGrid is a uniform spatial index over triangles. Each triangle is
// bucketed into every cell its bounding box overlaps; nearest-surface
// queries scan buckets in expanding shells around the query point and
// stop once no unvisited shell can beat the best hit so far.
type triGrid struct {
	origin mesh.Vec3
	cell   mesh.Vec3
	n      [3]int
	bucket [][]int32
	tris   []triangle
}

// maxGridDim bounds index memory; past this the buckets get dense
// enough that finer subdivision stops paying for itself.
const maxGridDim = 48

func newTriGrid(tris []triangle, bounds mesh.Box) *triGrid {
	dim := int(math.Cbrt(float64(len(tris))))
	if dim < 1 {
		dim = 1
	}
	if dim > maxGridDim {
		dim = maxGridDim
	}

	size := bounds.Size()
	g := &triGrid{
		origin: bounds.Min,
		n:      [3]int{dim, dim, dim},
		tris:   tris,
	}
	g.cell = mesh.Vec3{
		X: nonZero(size.X / float64(dim)),
		Y: nonZero(size.Y / float64(dim)),
		Z: nonZero(size.Z / float64(dim)),
	}
	g.bucket = make([][]int32, dim*dim*dim)

	for i := range tris {
		t := &tris[i]
		lo := t.a.Min(t.b).Min(t.c)
		hi := t.a.Max(t.b).Max(t.c)
		i0, j0, k0 := g.locate(lo)
		i1, j1, k1 := g.locate(hi)
		for k := k0; k <= k1; k++ {
			for j := j0; j <= j1; j++ {
				for ii := i0; ii <= i1; ii++ {
					b := g.index(ii, j, k)
					g.bucket[b] = append(g.bucket[b], int32(i))
				}
			}
		}
	}
	return g
}

func nonZero(v float64) float64 {
	if v <= 0 {
		return 1e-9
	}
	return v
}

func (g *triGrid) index(i, j, k int) int {
	return i + g.n[0]*(j+g.n[1]*k)
}

// locate returns the cell coordinates containing p, clamped into the
// grid so that points outside the bounds map to the border cells.
func (g *triGrid) locate(p mesh.Vec3) (int, int, int) {
	d := p.Sub(g.origin)
	return clamp(int(math.Floor(d.X/g.cell.X)), g.n[0]),
		clamp(int(math.Floor(d.Y/g.cell.Y)), g.n[1]),
		clamp(int(math.Floor(d.Z/g.cell.Z)), g.n[2])
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// nearest returns the squared distance from q to the closest triangle.
func (g *triGrid) nearest(q mesh.Vec3) float64 {
	ci, cj, ck := g.locate(q)
	best := math.Inf(1)

	// The closest point of any cell in shell r is at least (r-1) cell
	// extents away from q (q sits somewhere inside its own cell, and
	// clamping only increases real distances for outside points).
	minExtent := math.Min(g.cell.X, math.Min(g.cell.Y, g.cell.Z))

	maxShell := g.n[0] + g.n[1] + g.n[2]
	for r := 0; r <= maxShell; r++ {
		if !math.IsInf(best, 1) {
			lb := float64(r-1) * minExtent
			if lb > 0 && lb*lb > best {
				break
			}
		}
		g.scanShell(ci, cj, ck, r, q, &best)
	}
	return best
}

// scanShell tests every triangle bucketed in the cells at Chebyshev
// distance exactly r from (ci,cj,ck).
func (g *triGrid) scanShell(ci, cj, ck, r int, q mesh.Vec3, best *float64) {
	for k := ck - r; k <= ck+r; k++ {
		if k < 0 || k >= g.n[2] {
			continue
		}
		for j := cj - r; j <= cj+r; j++ {
			if j < 0 || j >= g.n[1] {
				continue
			}
			for i := ci - r; i <= ci+r; i++ {
				if i < 0 || i >= g.n[0] {
					continue
				}
				if chebyshev(i-ci, j-cj, k-ck) != r {
					continue
				}
				for _, ti := range g.bucket[g.index(i, j, k)] {
					if d := pointTriDist2(q, &g.tris[ti]); d < *best {
						*best = d
					}
				}
			}
		}
	}
}

func chebyshev(i, j, k int) int {
	if i < 0 {
		i = -i
	}
	if j < 0 {
		j = -j
	}
	if k < 0 {
		k = -k
	}
	m := i
	if j > m {
		m = j
	}
	if k > m {
		m = k
	}
	return m
}
