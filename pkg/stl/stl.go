// Package stl reads and writes STL files, the triangle-soup mesh format
// used by nearly every slicer and 3D printing toolchain. Both standard
// encodings are read (binary and ASCII, detected automatically); output
// is always binary. Decoding welds positionally identical vertices into
// an indexed mesh so that downstream topology checks can see shared
// edges.
package stl

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// headerLen is the fixed size of the binary STL free-form header.
const headerLen = 80

// recordLen is the size of one binary triangle record: a float32 normal,
// three float32 vertices, and a uint16 attribute field.
const recordLen = 50

var le = binary.LittleEndian

// LoadError reports malformed or truncated input. It aborts a request
// before any geometry work happens.
type LoadError struct {
	Msg string
}

func (e *LoadError) Error() string {
	return "stl: " + e.Msg
}

func loadErrf(format string, args ...any) *LoadError {
	return &LoadError{Msg: fmt.Sprintf(format, args...)}
}

// weldTriangle feeds one float32 corner triple into the welder.
func weldTriangle(w *mesh.Welder, tri [3][3]float32) {
	var v [3]mesh.Vec3
	for i := 0; i < 3; i++ {
		v[i] = mesh.Vec3{
			X: float64(tri[i][0]),
			Y: float64(tri[i][1]),
			Z: float64(tri[i][2]),
		}
	}
	w.Triangle(v[0], v[1], v[2])
}

// Decode parses STL data in either encoding. Binary is recognized by
// its self-consistent layout: the declared triangle count must account
// for the total byte length exactly. Anything that is not valid binary
// must carry the ASCII "solid" signature.
func Decode(data []byte) (*mesh.Mesh, error) {
	if isBinary(data) {
		return decodeBinary(data)
	}
	if hasASCIISignature(data) {
		return decodeASCII(data)
	}
	if len(data) < headerLen+4 {
		return nil, loadErrf("file too short (%d bytes) for a binary header and not ASCII", len(data))
	}
	count := le.Uint32(data[headerLen:])
	return nil, loadErrf("truncated binary file: header declares %d triangles, want %d bytes, have %d",
		count, headerLen+4+int64(count)*recordLen, len(data))
}

// isBinary reports whether the byte length is consistent with the
// triangle count declared in a binary header.
func isBinary(data []byte) bool {
	if len(data) < headerLen+4 {
		return false
	}
	count := le.Uint32(data[headerLen:])
	return int64(len(data)) == headerLen+4+int64(count)*recordLen
}

func decodeBinary(data []byte) (*mesh.Mesh, error) {
	count := int(le.Uint32(data[headerLen:]))
	w := mesh.NewWelder(count)
	off := headerLen + 4
	for i := 0; i < count; i++ {
		rec := data[off : off+recordLen]
		// Skip the 12-byte normal; it is redundant with the winding
		// and frequently wrong in the wild.
		var tri [3][3]float32
		for v := 0; v < 3; v++ {
			base := 12 + v*12
			for c := 0; c < 3; c++ {
				tri[v][c] = math.Float32frombits(le.Uint32(rec[base+c*4:]))
			}
		}
		weldTriangle(w, tri)
		off += recordLen
	}
	return w.Mesh(), nil
}
