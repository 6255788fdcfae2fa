package sdfx

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/bandsaw3d/bandsaw/pkg/kernel"
	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// cube returns a closed cube mesh spanning [0,s]^3 with outward winding.
func cube(s float64) *mesh.Mesh {
	v := []mesh.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: s, Y: 0, Z: 0}, {X: s, Y: s, Z: 0}, {X: 0, Y: s, Z: 0},
		{X: 0, Y: 0, Z: s}, {X: s, Y: 0, Z: s}, {X: s, Y: s, Z: s}, {X: 0, Y: s, Z: s},
	}
	quads := [][4]uint32{
		{0, 3, 2, 1}, {4, 5, 6, 7}, {0, 1, 5, 4},
		{2, 3, 7, 6}, {0, 4, 7, 3}, {1, 2, 6, 5},
	}
	m := &mesh.Mesh{Vertices: v}
	for _, q := range quads {
		m.Faces = append(m.Faces,
			[3]uint32{q[0], q[1], q[2]},
			[3]uint32{q[0], q[2], q[3]})
	}
	return m
}

func TestBoxBounds(t *testing.T) {
	k := New()
	want := mesh.Box{
		Min: mesh.Vec3{X: -5, Y: 2, Z: 0},
		Max: mesh.Vec3{X: 15, Y: 12, Z: 30},
	}
	got := k.Box(want).Bounds()
	const tol = 1e-9
	if got.Min.Sub(want.Min).Length() > tol || got.Max.Sub(want.Max).Length() > tol {
		t.Errorf("Box bounds = %+v, want %+v", got, want)
	}
}

func TestBoxFlatAxis(t *testing.T) {
	k := New()
	b := mesh.Box{
		Min: mesh.Vec3{X: 0, Y: 0, Z: 5},
		Max: mesh.Vec3{X: 10, Y: 10, Z: 5},
	}
	got := k.Box(b).Bounds()
	if got.Size().Z > 1e-6 {
		t.Errorf("flat box thickness = %g, want near zero", got.Size().Z)
	}
}

func TestSolidifyOpenSurface(t *testing.T) {
	m := cube(10)
	m.Faces = m.Faces[:len(m.Faces)-1]
	if _, err := New().Solidify(m); !errors.Is(err, kernel.ErrNotAVolume) {
		t.Fatalf("Solidify(open surface) error = %v, want ErrNotAVolume", err)
	}
}

func TestMeshSDFSign(t *testing.T) {
	s, err := newMeshSDF(cube(10))
	if err != nil {
		t.Fatalf("newMeshSDF: %v", err)
	}

	tests := []struct {
		name string
		p    mesh.Vec3
		want float64
	}{
		{"center", mesh.Vec3{X: 5, Y: 5, Z: 5}, -5},
		{"inside near face", mesh.Vec3{X: 9, Y: 5, Z: 5}, -1},
		{"outside on x", mesh.Vec3{X: 15, Y: 5, Z: 5}, 5},
		{"outside corner", mesh.Vec3{X: 13, Y: 14, Z: 22}, math.Sqrt(9 + 16 + 144)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Evaluate(v3.Vec{X: tt.p.X, Y: tt.p.Y, Z: tt.p.Z})
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%+v) = %g, want %g", tt.p, got, tt.want)
			}
		})
	}
}

func TestMeshSDFBoundingBoxPadded(t *testing.T) {
	s, err := newMeshSDF(cube(10))
	if err != nil {
		t.Fatalf("newMeshSDF: %v", err)
	}
	bb := s.BoundingBox()
	if bb.Min.X >= 0 || bb.Max.X <= 10 {
		t.Errorf("bounding box [%g, %g] does not pad the mesh bounds", bb.Min.X, bb.Max.X)
	}
}

func TestTriGridNearestMatchesBruteForce(t *testing.T) {
	m := cube(10)
	tris := make([]triangle, m.TriangleCount())
	for i := range tris {
		tr := m.Triangle(i)
		tris[i] = triangle{a: tr[0], b: tr[1], c: tr[2]}
	}
	bounds, _ := m.Bounds()
	g := newTriGrid(tris, bounds)

	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 200; n++ {
		q := mesh.Vec3{
			X: rng.Float64()*30 - 10,
			Y: rng.Float64()*30 - 10,
			Z: rng.Float64()*30 - 10,
		}
		brute := math.Inf(1)
		for i := range tris {
			if d := pointTriDist2(q, &tris[i]); d < brute {
				brute = d
			}
		}
		if got := g.nearest(q); math.Abs(got-brute) > 1e-12 {
			t.Fatalf("nearest(%+v) = %g, brute force = %g", q, got, brute)
		}
	}
}

func TestSolidifyToMeshRoundTrip(t *testing.T) {
	k := NewWithResolution(32)
	s, err := k.Solidify(cube(10))
	if err != nil {
		t.Fatalf("Solidify: %v", err)
	}

	out, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	if out.TriangleCount() == 0 {
		t.Fatal("re-meshed cube is empty")
	}
	if v := out.Volume(); math.Abs(v-1000) > 150 {
		t.Errorf("re-meshed cube volume = %g, want ~1000", v)
	}
	b, err := out.Bounds()
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	const slack = 1.0 // one-ish marching cubes cell
	if b.Min.X < -slack || b.Max.X > 10+slack {
		t.Errorf("re-meshed bounds %+v stray past the cube", b)
	}
}

func TestIntersection(t *testing.T) {
	k := NewWithResolution(32)
	s, err := k.Solidify(cube(10))
	if err != nil {
		t.Fatalf("Solidify: %v", err)
	}
	half := k.Box(mesh.Box{
		Min: mesh.Vec3{X: 0, Y: 0, Z: 0},
		Max: mesh.Vec3{X: 5, Y: 10, Z: 10},
	})

	out, err := k.ToMesh(k.Intersection(half, s))
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	if out.TriangleCount() == 0 {
		t.Fatal("intersection is empty")
	}
	if v := out.Volume(); math.Abs(v-500) > 100 {
		t.Errorf("half-cube volume = %g, want ~500", v)
	}
	b, err := out.Bounds()
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	const slack = 1.0
	if b.Max.X > 5+slack {
		t.Errorf("intersection leaks past the cutting plane: max x = %g", b.Max.X)
	}
}
