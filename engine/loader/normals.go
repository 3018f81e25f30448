package loader

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
)

// generateNormals overwrites every vertex normal in d with the area-weighted average of the
// face normals of the triangles that use it. Vertices referenced by no non-degenerate triangle get +Y.
//
// Parameters:
//   - d: the mesh data to write normals into
func generateNormals(d *mesh.MeshData) {
	n := d.VertexCount()
	accum := make([]common.Vec3, n)

	for i := 0; i+2 < len(d.Indices); i += 3 {
		i0, i1, i2 := int(d.Indices[i]), int(d.Indices[i+1]), int(d.Indices[i+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		p0 := d.Position(i0)
		// unnormalized cross product, so larger triangles weigh more
		face := d.Position(i1).Sub(p0).Cross(d.Position(i2).Sub(p0))
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	for i, a := range accum {
		nrm := a.Normalize()
		if nrm.IsZero() {
			nrm = common.Vec3{0, 1, 0}
		}
		copy(d.Vertices[i*mesh.VertexStride+3:i*mesh.VertexStride+6], nrm[:])
	}
}

// flatNormal returns the unit face normal of a counter-clockwise triangle, or +Y when degenerate.
func flatNormal(a, b, c common.Vec3) common.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	if n.IsZero() {
		return common.Vec3{0, 1, 0}
	}
	return n
}
