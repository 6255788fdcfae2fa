package stl

import (
	"bufio"
	"bytes"
	"strconv"

	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// hasASCIISignature reports whether the data starts with the "solid"
// keyword that opens an ASCII STL file.
func hasASCIISignature(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

// decodeASCII parses the ASCII encoding. The parser is deliberately
// word-oriented: it collects every "vertex x y z" triple and groups
// them three at a time into facets, which accepts the slightly
// malformed files other tools emit (missing endsolid, repeated solid
// blocks). Stored normals are ignored, as in the binary path.
func decodeASCII(data []byte) (*mesh.Mesh, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Split(bufio.ScanWords)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	w := mesh.NewWelder(0)
	var tri [3][3]float32
	corner := 0

	for sc.Scan() {
		if sc.Text() != "vertex" {
			continue
		}
		for c := 0; c < 3; c++ {
			if !sc.Scan() {
				return nil, loadErrf("ascii: unexpected end of file inside vertex")
			}
			f, err := strconv.ParseFloat(sc.Text(), 32)
			if err != nil {
				return nil, loadErrf("ascii: bad vertex coordinate %q", sc.Text())
			}
			tri[corner][c] = float32(f)
		}
		corner++
		if corner == 3 {
			weldTriangle(w, tri)
			corner = 0
		}
	}
	if err := sc.Err(); err != nil {
		return nil, loadErrf("ascii: %v", err)
	}
	if corner != 0 {
		return nil, loadErrf("ascii: facet with %d of 3 vertices at end of file", corner)
	}
	return w.Mesh(), nil
}
