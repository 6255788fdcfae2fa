package mesh

// weldKey identifies a vertex position at float32 resolution. STL
// stores float32, and marching-cubes output repeats bitwise identical
// corner positions across adjacent triangles, so exact float32 equality
// is the right weld criterion for both producers.
type weldKey struct {
	x, y, z float32
}

// Welder accumulates loose triangles into an indexed mesh, merging
// vertices with identical positions so that downstream topology checks
// can see shared edges.
type Welder struct {
	mesh  Mesh
	index map[weldKey]uint32
}

// NewWelder returns an empty welder. The hint is the expected triangle
// count; zero is fine.
func NewWelder(hint int) *Welder {
	return &Welder{index: make(map[weldKey]uint32, hint*2)}
}

// add returns the index for position v, inserting it if new.
func (w *Welder) add(v Vec3) uint32 {
	k := weldKey{float32(v.X), float32(v.Y), float32(v.Z)}
	if idx, ok := w.index[k]; ok {
		return idx
	}
	idx := uint32(len(w.mesh.Vertices))
	w.mesh.Vertices = append(w.mesh.Vertices, v)
	w.index[k] = idx
	return idx
}

// Triangle appends one triangle with corners a, b, c.
func (w *Welder) Triangle(a, b, c Vec3) {
	w.mesh.Faces = append(w.mesh.Faces, [3]uint32{w.add(a), w.add(b), w.add(c)})
}

// Mesh returns the welded mesh. The welder must not be used afterwards.
func (w *Welder) Mesh() *Mesh {
	return &w.mesh
}
