package mesh

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/chewxy/math32"
)

// VertexStride is the number of float32 values per vertex: position (3), normal (3), uv (2).
const VertexStride = 8

// VertexStrideBytes is the byte size of one interleaved vertex.
const VertexStrideBytes = VertexStride * 4

// MeshData is CPU-side triangle mesh data in the engine's interleaved vertex layout.
// Every index must address a vertex and the index count must be a multiple of 3.
type MeshData struct {
	Name     string
	Vertices []float32
	Indices  []uint32
}

// AppendVertex appends one interleaved vertex and returns its index.
func (d *MeshData) AppendVertex(pos, normal common.Vec3, uv common.Vec2) uint32 {
	idx := uint32(d.VertexCount())
	d.Vertices = append(d.Vertices,
		pos[0], pos[1], pos[2],
		normal[0], normal[1], normal[2],
		uv[0], uv[1],
	)
	return idx
}

// VertexCount returns the number of vertices.
func (d MeshData) VertexCount() int { return len(d.Vertices) / VertexStride }

// TriangleCount returns the number of triangles.
func (d MeshData) TriangleCount() int { return len(d.Indices) / 3 }

// Position returns the position of vertex i.
func (d MeshData) Position(i int) common.Vec3 {
	o := i * VertexStride
	return common.Vec3{d.Vertices[o], d.Vertices[o+1], d.Vertices[o+2]}
}

// Normal returns the normal of vertex i.
func (d MeshData) Normal(i int) common.Vec3 {
	o := i*VertexStride + 3
	return common.Vec3{d.Vertices[o], d.Vertices[o+1], d.Vertices[o+2]}
}

// UV returns the texture coordinate of vertex i.
func (d MeshData) UV(i int) common.Vec2 {
	o := i*VertexStride + 6
	return common.Vec2{d.Vertices[o], d.Vertices[o+1]}
}

// Positions returns a tightly packed copy of the vertex positions.
func (d MeshData) Positions() []float32 {
	n := d.VertexCount()
	out := make([]float32, 0, n*3)
	for i := 0; i < n; i++ {
		o := i * VertexStride
		out = append(out, d.Vertices[o:o+3]...)
	}
	return out
}

// Validate checks the mesh invariants.
//
// Returns:
//   - error: a contract violation describing the first broken invariant, or nil
func (d MeshData) Validate() error {
	if len(d.Vertices)%VertexStride != 0 {
		return common.ContractError("mesh.Validate", "%s: vertex data length %d is not a multiple of %d", d.Name, len(d.Vertices), VertexStride)
	}
	if len(d.Indices)%3 != 0 {
		return common.ContractError("mesh.Validate", "%s: index count %d is not a multiple of 3", d.Name, len(d.Indices))
	}
	n := uint32(d.VertexCount())
	for i, idx := range d.Indices {
		if idx >= n {
			return common.ContractError("mesh.Validate", "%s: index %d at position %d out of range (%d vertices)", d.Name, idx, i, n)
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounds of the vertex positions. An empty mesh has zero bounds.
func (d MeshData) Bounds() (common.Vec3, common.Vec3) {
	n := d.VertexCount()
	if n == 0 {
		return common.Vec3{}, common.Vec3{}
	}
	lo := common.Vec3Splat(math32.MaxFloat32)
	hi := common.Vec3Splat(-math32.MaxFloat32)
	for i := 0; i < n; i++ {
		p := d.Position(i)
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}

// Transformed returns a copy with positions transformed as points and normals as directions by m.
func (d MeshData) Transformed(m common.Mat4) MeshData {
	normalM := m
	if inv, ok := m.Inverse(); ok {
		normalM = inv.Transpose()
	}
	out := MeshData{
		Name:     d.Name,
		Vertices: make([]float32, len(d.Vertices)),
		Indices:  append([]uint32(nil), d.Indices...),
	}
	copy(out.Vertices, d.Vertices)
	for i := 0; i < d.VertexCount(); i++ {
		o := i * VertexStride
		p := m.TransformPoint(d.Position(i))
		n := normalM.TransformVector(d.Normal(i)).Normalize()
		copy(out.Vertices[o:o+3], p[:])
		copy(out.Vertices[o+3:o+6], n[:])
	}
	return out
}

// Append merges o into d, offsetting o's indices.
func (d *MeshData) Append(o MeshData) {
	base := uint32(d.VertexCount())
	d.Vertices = append(d.Vertices, o.Vertices...)
	for _, idx := range o.Indices {
		d.Indices = append(d.Indices, base+idx)
	}
}
