//go:build manifold

package manifold

import (
	"errors"
	"math"
	"testing"

	"github.com/bandsaw3d/bandsaw/pkg/kernel"
	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

// cube returns a closed unit-ish cube mesh spanning [0,s]^3.
func cube(s float64) *mesh.Mesh {
	v := []mesh.Vec3{
		{0, 0, 0}, {s, 0, 0}, {s, s, 0}, {0, s, 0},
		{0, 0, s}, {s, 0, s}, {s, s, s}, {0, s, s},
	}
	quads := [][4]uint32{
		{0, 3, 2, 1}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {2, 3, 7, 6},
		{0, 4, 7, 3}, {1, 2, 6, 5},
	}
	m := &mesh.Mesh{Vertices: v}
	for _, q := range quads {
		m.Faces = append(m.Faces, [3]uint32{q[0], q[1], q[2]}, [3]uint32{q[0], q[2], q[3]})
	}
	return m
}

func TestBoxBounds(t *testing.T) {
	k := mustNew(t)
	b := mesh.Box{Min: mesh.Vec3{X: 1, Y: 2, Z: 3}, Max: mesh.Vec3{X: 11, Y: 22, Z: 33}}
	s := k.Box(b)
	got := s.Bounds()
	if math.Abs(got.Min.X-1) > 1e-6 || math.Abs(got.Max.Z-33) > 1e-6 {
		t.Errorf("Box bounds = %+v, want %+v", got, b)
	}
}

func TestSolidifyOpenSurface(t *testing.T) {
	k := mustNew(t)
	open := &mesh.Mesh{
		Vertices: []mesh.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:    [][3]uint32{{0, 1, 2}},
	}
	if _, err := k.Solidify(open); !errors.Is(err, kernel.ErrNotAVolume) {
		t.Fatalf("Solidify(open) error = %v, want ErrNotAVolume", err)
	}
}

func TestIntersectCube(t *testing.T) {
	k := mustNew(t)
	solid, err := k.Solidify(cube(10))
	if err != nil {
		t.Fatalf("Solidify() error = %v", err)
	}
	half := k.Box(mesh.Box{Max: mesh.Vec3{X: 5, Y: 10, Z: 10}})
	out, err := k.ToMesh(k.Intersection(solid, half))
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if out.TriangleCount() == 0 {
		t.Fatal("intersection mesh is empty")
	}
	vol := out.Volume()
	if math.Abs(vol-500) > 1 {
		t.Errorf("intersection volume = %f, want ~500", vol)
	}
}
