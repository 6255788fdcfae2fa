package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"

	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// Encode writes the mesh as a binary STL file: an 80-byte free-form
// header, a little-endian uint32 triangle count, then one 50-byte record
// per triangle. A mesh with zero triangles produces a structurally valid
// file with count zero.
func Encode(w io.Writer, m *mesh.Mesh, name string) error {
	bw := bufio.NewWriter(w)

	var header [headerLen]byte
	copy(header[:], fmt.Sprintf("bandsaw %s %d triangles", name, m.TriangleCount()))
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}

	var u32 [4]byte
	le.PutUint32(u32[:], uint32(m.TriangleCount()))
	if _, err := bw.Write(u32[:]); err != nil {
		return err
	}

	var rec [recordLen]byte
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		var v [3][3]float32
		for c := 0; c < 3; c++ {
			v[c] = [3]float32{float32(t[c].X), float32(t[c].Y), float32(t[c].Z)}
		}
		// The stored normal is derived from the float32 positions that
		// actually end up in the file, not the float64 originals.
		n := faceNormal(v)
		putVec(rec[0:], n)
		putVec(rec[12:], v[0])
		putVec(rec[24:], v[1])
		putVec(rec[36:], v[2])
		rec[48], rec[49] = 0, 0 // attribute byte count
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// faceNormal computes the unit normal of a triangle from its winding.
// Degenerate triangles get a zero normal.
func faceNormal(v [3][3]float32) [3]float32 {
	var e1, e2 [3]float32
	for c := 0; c < 3; c++ {
		e1[c] = v[1][c] - v[0][c]
		e2[c] = v[2][c] - v[0][c]
	}
	n := [3]float32{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l == 0 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return [3]float32{}
	}
	return [3]float32{n[0] / l, n[1] / l, n[2] / l}
}

func putVec(dst []byte, v [3]float32) {
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(dst[8:], math.Float32bits(v[2]))
}
