package mesh

// edge is a directed edge between two vertex indices.
type edge struct {
	from, to uint32
}

// Watertight reports whether the mesh is a closed, consistently
// oriented 2-manifold: every directed edge appears exactly once and is
// matched by exactly one edge in the opposite direction. A mesh with no
// faces, degenerate faces (repeated indices), boundary edges, or
// inconsistent winding is not watertight.
func (m *Mesh) Watertight() bool {
	if len(m.Faces) == 0 {
		return false
	}
	seen := make(map[edge]int, len(m.Faces)*3)
	for _, f := range m.Faces {
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			return false
		}
		for i := 0; i < 3; i++ {
			e := edge{f[i], f[(i+1)%3]}
			seen[e]++
			if seen[e] > 1 {
				// Duplicated directed edge: non-manifold or flipped face.
				return false
			}
		}
	}
	for e := range seen {
		if seen[edge{e.to, e.from}] != 1 {
			return false
		}
	}
	return true
}
