package stl

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// cubeMesh returns a closed unit-ish cube for round-trip tests.
func cubeMesh(s float64) *mesh.Mesh {
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

func TestRoundTrip(t *testing.T) {
	src := cubeMesh(10)

	var buf bytes.Buffer
	if err := Encode(&buf, src, "cube"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := headerLen + 4 + 12*recordLen; buf.Len() != want {
		t.Fatalf("encoded length = %d, want %d", buf.Len(), want)
	}

	got, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.TriangleCount() != 12 {
		t.Errorf("triangle count = %d, want 12", got.TriangleCount())
	}
	// Welding must reconstruct the shared corners from the triangle soup.
	if got.VertexCount() != 8 {
		t.Errorf("vertex count = %d, want 8 after welding", got.VertexCount())
	}
	if !got.Watertight() {
		t.Error("round-tripped cube is not watertight")
	}

	gb, _ := got.Bounds()
	sb, _ := src.Bounds()
	if gb != sb {
		t.Errorf("bounds changed in round trip: %+v vs %+v", gb, sb)
	}
}

func TestEncodeEmptyMesh(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, &mesh.Mesh{}, "empty"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != headerLen+4 {
		t.Fatalf("encoded length = %d, want %d", buf.Len(), headerLen+4)
	}
	m, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !m.IsEmpty() {
		t.Error("decoded empty file is not empty")
	}
}

func TestDecodeASCII(t *testing.T) {
	data := []byte(`solid square
 facet normal 0 0 1
  outer loop
   vertex 0 0 0
   vertex 1 0 0
   vertex 1 1 0
  endloop
 endfacet
 facet normal 0 0 1
  outer loop
   vertex 0 0 0
   vertex 1 1 0
   vertex 0 1 0
  endloop
 endfacet
endsolid square
`)
	m, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("triangle count = %d, want 2", m.TriangleCount())
	}
	if m.VertexCount() != 4 {
		t.Errorf("vertex count = %d, want 4 after welding", m.VertexCount())
	}
}

func TestDecodeASCIIMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated vertex", "solid s\nfacet\nvertex 1 2"},
		{"bad coordinate", "solid s\nvertex 1 2 banana\nvertex 0 0 0\nvertex 1 0 0"},
		{"dangling corners", "solid s\nvertex 0 0 0\nvertex 1 0 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Decode error = %v, want *LoadError", err)
			}
		})
	}
}

func TestDecodeTruncatedBinary(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, cubeMesh(1), "cube"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()[:buf.Len()-recordLen/2] // cut mid-record

	_, err := Decode(data)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Decode error = %v, want *LoadError", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("not a mesh at all"))
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Decode error = %v, want *LoadError", err)
	}
}

// Binary files whose header happens to begin with "solid" must still be
// parsed as binary when the layout is self-consistent.
func TestDecodeBinaryWithSolidHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, cubeMesh(5), "cube"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	copy(data, "solid cube exported by some tool")

	m, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("triangle count = %d, want 12 (binary path)", m.TriangleCount())
	}
}

func TestStoredNormals(t *testing.T) {
	m := &mesh.Mesh{
		Vertices: []mesh.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		Faces:    [][3]uint32{{0, 1, 2}},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, m, "tri"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	rec := buf.Bytes()[headerLen+4:]
	n := [3]float32{f32(rec, 0), f32(rec, 4), f32(rec, 8)}
	if n != ([3]float32{0, 0, 1}) {
		t.Errorf("stored normal = %v, want (0,0,1)", n)
	}
}

func TestDegenerateNormalIsZero(t *testing.T) {
	m := &mesh.Mesh{
		Vertices: []mesh.Vec3{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2}},
		Faces:    [][3]uint32{{0, 1, 2}},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, m, "degenerate"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	rec := buf.Bytes()[headerLen+4:]
	if got := [3]float32{f32(rec, 0), f32(rec, 4), f32(rec, 8)}; got != ([3]float32{}) {
		t.Errorf("degenerate normal = %v, want zero", got)
	}
}

func f32(b []byte, off int) float32 {
	return math.Float32frombits(le.Uint32(b[off:]))
}
