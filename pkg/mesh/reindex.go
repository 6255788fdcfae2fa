package mesh

// Compact builds a self-contained mesh from a subset of faces over a
// shared vertex array. The returned mesh owns fresh vertex and face
// slices: vertices appear in order of first reference, face indices are
// remapped accordingly, and no unreferenced vertex is carried over.
func Compact(vertices []Vec3, faces [][3]uint32) *Mesh {
	remap := make(map[uint32]uint32, len(faces)*3)
	out := &Mesh{
		Vertices: make([]Vec3, 0, len(faces)*3),
		Faces:    make([][3]uint32, 0, len(faces)),
	}
	for _, f := range faces {
		var nf [3]uint32
		for i, old := range f {
			idx, ok := remap[old]
			if !ok {
				idx = uint32(len(out.Vertices))
				out.Vertices = append(out.Vertices, vertices[old])
				remap[old] = idx
			}
			nf[i] = idx
		}
		out.Faces = append(out.Faces, nf)
	}
	return out
}
