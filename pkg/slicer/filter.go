package slicer

import (
	"github.com/bandsaw3d/bandsaw/pkg/grid"
	"github.com/bandsaw3d/bandsaw/pkg/mesh"
)

// Compile-time interface check.
var _ Strategy = Filter{}

// Filter assigns each face to the single cell containing its centroid,
// under the grid's half-open partition rule. Faces are kept whole, so a
// triangle straddling a cell boundary stays in its centroid's cell and
// that part may slightly exceed the nominal cell bounds. In exchange
// the strategy works on any surface, closed or not, and conserves the
// triangle set exactly: summed over all cells, every input face
// appears exactly once.
type Filter struct{}

func (Filter) Name() string { return "filter" }

// Slice selects the faces whose centroid lies in c and compacts them
// into a self-contained mesh. Zero-area faces follow the same rule as
// any other face.
func (Filter) Slice(m *mesh.Mesh, g *grid.Grid, c grid.Cell) (*mesh.Mesh, error) {
	var faces [][3]uint32
	for i := range m.Faces {
		if g.Contains(c, m.FaceCentroid(i)) {
			faces = append(faces, m.Faces[i])
		}
	}
	return mesh.Compact(m.Vertices, faces), nil
}
