package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// meshSDF adapts an indexed triangle mesh to the sdf.SDF3 interface:
// the unsigned distance to the nearest triangle, negated when the
// sample point is enclosed. Enclosure is decided by ray-crossing
// parity, which is only sound for watertight input; Solidify enforces
// that before this type is constructed.
type meshSDF struct {
	tris []triangle
	bb   sdf.Box3
	grid *triGrid
}

// Compile-time interface check.
var _ sdf.SDF3 = (*meshSDF)(nil)

type triangle struct {
	a, b, c mesh.Vec3
}

// bbPad is the relative margin added around the mesh bounds so that
// marching cubes always samples positive distance outside the surface.
const bbPad = 0.05

func newMeshSDF(m *mesh.Mesh) (*meshSDF, error) {
	bounds, err := m.Bounds()
	if err != nil {
		return nil, err
	}

	tris := make([]triangle, m.TriangleCount())
	for i := range tris {
		t := m.Triangle(i)
		tris[i] = triangle{a: t[0], b: t[1], c: t[2]}
	}

	size := bounds.Size()
	pad := math.Max(size.X, math.Max(size.Y, size.Z)) * bbPad
	if pad == 0 {
		pad = 1e-6
	}
	margin := mesh.Vec3{X: pad, Y: pad, Z: pad}
	lo := bounds.Min.Sub(margin)
	hi := bounds.Max.Add(margin)

	return &meshSDF{
		tris: tris,
		bb: sdf.Box3{
			Min: v3.Vec{X: lo.X, Y: lo.Y, Z: lo.Z},
			Max: v3.Vec{X: hi.X, Y: hi.Y, Z: hi.Z},
		},
		grid: newTriGrid(tris, bounds),
	}, nil
}

// BoundingBox returns the padded mesh bounds.
func (s *meshSDF) BoundingBox() sdf.Box3 {
	return s.bb
}

// Evaluate returns the signed distance from p to the mesh surface.
func (s *meshSDF) Evaluate(p v3.Vec) float64 {
	q := mesh.Vec3{X: p.X, Y: p.Y, Z: p.Z}
	d := math.Sqrt(s.grid.nearest(q))
	if s.enclosed(q) {
		return -d
	}
	return d
}

// rayDir is a fixed, slightly askew direction for the parity ray so
// that rays through axis-aligned geometry rarely graze an edge or
// vertex exactly.
var rayDir = mesh.Vec3{X: 0.8230, Y: 0.4177, Z: 0.3851}

// enclosed counts surface crossings of a ray cast from q; an odd count
// means q is inside the volume.
//
// TODO: trace the ray through triGrid's buckets instead of testing
// every triangle; parity is the dominant cost on large meshes.
func (s *meshSDF) enclosed(q mesh.Vec3) bool {
	hits := 0
	for i := range s.tris {
		if rayHits(q, rayDir, &s.tris[i]) {
			hits++
		}
	}
	return hits%2 == 1
}

// rayHits is the Moller-Trumbore ray/triangle intersection test,
// counting only strictly forward hits.
func rayHits(orig, dir mesh.Vec3, t *triangle) bool {
	const eps = 1e-12
	e1 := t.b.Sub(t.a)
	e2 := t.c.Sub(t.a)
	pv := dir.Cross(e2)
	det := e1.Dot(pv)
	if det > -eps && det < eps {
		return false
	}
	inv := 1 / det
	sv := orig.Sub(t.a)
	u := sv.Dot(pv) * inv
	if u < 0 || u > 1 {
		return false
	}
	qv := sv.Cross(e1)
	v := dir.Dot(qv) * inv
	if v < 0 || u+v > 1 {
		return false
	}
	return e2.Dot(qv)*inv > eps
}

func dist2(p, q mesh.Vec3) float64 {
	d := p.Sub(q)
	return d.Dot(d)
}

// pointTriDist2 returns the squared distance from p to triangle t
// (closest-point classification over the triangle's Voronoi regions).
func pointTriDist2(p mesh.Vec3, t *triangle) float64 {
	ab := t.b.Sub(t.a)
	ac := t.c.Sub(t.a)
	ap := p.Sub(t.a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return dist2(p, t.a)
	}

	bp := p.Sub(t.b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return dist2(p, t.b)
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return dist2(p, t.a.Add(ab.Scale(v)))
	}

	cp := p.Sub(t.c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return dist2(p, t.c)
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return dist2(p, t.a.Add(ac.Scale(w)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return dist2(p, t.b.Add(t.c.Sub(t.b).Scale(w)))
	}

	sum := va + vb + vc
	if sum <= 0 {
		// Degenerate (zero-area) triangle: fall back to the corners.
		return math.Min(dist2(p, t.a), math.Min(dist2(p, t.b), dist2(p, t.c)))
	}
	v := vb / sum
	w := vc / sum
	return dist2(p, t.a.Add(ab.Scale(v)).Add(ac.Scale(w)))
}
