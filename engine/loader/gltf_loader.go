package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/chewxy/math32"
)

// maxNodeDepth bounds the node walk so a cyclic hierarchy in a malformed file cannot recurse forever.
const maxNodeDepth = 64

// gltfLoader is the FormatLoader for glTF 2.0 JSON (.gltf) and binary (.glb) files.
type gltfLoader struct {
	extensionMatcher
}

var _ FormatLoader = &gltfLoader{}

// NewGLTFLoader creates the glTF/GLB FormatLoader. Node transforms are baked into the returned vertices.
//
// Returns:
//   - FormatLoader: the glTF loader
func NewGLTFLoader() FormatLoader {
	return &gltfLoader{extensionMatcher: extensionMatcher{".gltf", ".glb"}}
}

func (l *gltfLoader) Name() string { return "glTF" }

func (l *gltfLoader) Load(path string) (mesh.MeshData, error) {
	all, err := l.LoadAll(path)
	if err != nil {
		return mesh.MeshData{}, err
	}
	return Merge(stem(path), all), nil
}

func (l *gltfLoader) LoadAll(path string) ([]mesh.MeshData, error) {
	p := newGLTFParser()
	if err := p.Parse(path); err != nil {
		return nil, err
	}
	doc := p.document

	// decode each mesh once; several nodes may instance it
	decoded := make([]*mesh.MeshData, len(doc.Meshes))
	meshAt := func(i int) (*mesh.MeshData, error) {
		if i < 0 || i >= len(doc.Meshes) {
			return nil, fmt.Errorf("mesh index %d out of range", i)
		}
		if decoded[i] == nil {
			d, err := extractMesh(p, i)
			if err != nil {
				return nil, err
			}
			decoded[i] = &d
		}
		return decoded[i], nil
	}

	roots := sceneRoots(doc)
	if len(roots) == 0 {
		// a document without nodes still carries meshes worth importing
		out := make([]mesh.MeshData, 0, len(doc.Meshes))
		for i := range doc.Meshes {
			d, err := meshAt(i)
			if err != nil {
				return nil, err
			}
			out = append(out, *d)
		}
		return out, nil
	}

	var out []mesh.MeshData
	var walk func(node int, parent common.Mat4, depth int) error
	walk = func(node int, parent common.Mat4, depth int) error {
		if node < 0 || node >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", node)
		}
		if depth > maxNodeDepth {
			return fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
		}
		n := &doc.Nodes[node]
		world := parent.Mul(nodeMatrix(n))

		if n.Mesh != nil {
			d, err := meshAt(*n.Mesh)
			if err != nil {
				return fmt.Errorf("node %d: %w", node, err)
			}
			baked := d.Transformed(world)
			if n.Name != "" {
				baked.Name = n.Name
			}
			out = append(out, baked)
		}
		for _, c := range n.Children {
			if err := walk(c, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range roots {
		if err := walk(r, common.Ident4(), 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// sceneRoots returns the root nodes of the default scene, or every parentless node when the file has no scenes.
func sceneRoots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeMatrix returns the node's local matrix: the explicit matrix if present, otherwise T * R * S.
func nodeMatrix(n *gltfNode) common.Mat4 {
	if n.Matrix != nil {
		return common.Mat4(*n.Matrix)
	}
	m := common.Ident4()
	if n.Scale != nil {
		m = common.Scaling(common.Vec3(*n.Scale))
	}
	if n.Rotation != nil {
		m = quatMatrix(*n.Rotation).Mul(m)
	}
	if n.Translation != nil {
		m = common.Translation(common.Vec3(*n.Translation)).Mul(m)
	}
	return m
}

// quatMatrix converts a unit quaternion (x, y, z, w) to a rotation matrix.
func quatMatrix(q [4]float32) common.Mat4 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	if l := math32.Sqrt(x*x + y*y + z*z + w*w); l > 0 {
		x, y, z, w = x/l, y/l, z/l, w/l
	}
	return common.Mat4{
		1 - 2*(y*y+z*z), 2 * (x*y + z*w), 2 * (x*z - y*w), 0,
		2 * (x*y - z*w), 1 - 2*(x*x+z*z), 2 * (y*z + x*w), 0,
		2 * (x*z + y*w), 2 * (y*z - x*w), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
}

// extractMesh merges every primitive of mesh index into one MeshData.
func extractMesh(p *gltfParser, index int) (mesh.MeshData, error) {
	gm := &p.document.Meshes[index]
	out := mesh.MeshData{Name: gm.Name}
	if out.Name == "" {
		out.Name = fmt.Sprintf("mesh_%d", index)
	}
	for i := range gm.Primitives {
		prim, err := extractPrimitive(p, &gm.Primitives[i])
		if err != nil {
			return mesh.MeshData{}, fmt.Errorf("mesh %d primitive %d: %w", index, i, err)
		}
		out.Append(prim)
	}
	return out, nil
}

func extractPrimitive(p *gltfParser, prim *gltfPrimitive) (mesh.MeshData, error) {
	mode := gltfModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	if mode != gltfModeTriangles && mode != gltfModeTriangleStrip && mode != gltfModeTriangleFan {
		return mesh.MeshData{}, fmt.Errorf("unsupported primitive mode %d", mode)
	}

	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		return mesh.MeshData{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := p.readFloats(posIndex, gltfAccessorTypeVec3)
	if err != nil {
		return mesh.MeshData{}, fmt.Errorf("failed to read positions: %w", err)
	}
	count := len(positions) / 3

	var normals, uvs []float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = p.readFloats(idx, gltfAccessorTypeVec3); err != nil {
			return mesh.MeshData{}, fmt.Errorf("failed to read normals: %w", err)
		}
		if len(normals) != len(positions) {
			return mesh.MeshData{}, fmt.Errorf("NORMAL count %d does not match POSITION count %d", len(normals)/3, count)
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = p.readFloats(idx, gltfAccessorTypeVec2); err != nil {
			return mesh.MeshData{}, fmt.Errorf("failed to read texcoords: %w", err)
		}
		if len(uvs) != count*2 {
			return mesh.MeshData{}, fmt.Errorf("TEXCOORD_0 count %d does not match POSITION count %d", len(uvs)/2, count)
		}
	}

	d := mesh.MeshData{Vertices: make([]float32, 0, count*mesh.VertexStride)}
	for i := 0; i < count; i++ {
		pos := common.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
		var nrm common.Vec3
		if normals != nil {
			nrm = common.Vec3{normals[i*3], normals[i*3+1], normals[i*3+2]}
		}
		var uv common.Vec2
		if uvs != nil {
			uv = common.Vec2{uvs[i*2], uvs[i*2+1]}
		}
		d.AppendVertex(pos, nrm, uv)
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = p.readIndices(*prim.Indices); err != nil {
			return mesh.MeshData{}, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, count)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	d.Indices = triangulate(mode, indices)

	if normals == nil {
		generateNormals(&d)
	}
	return d, nil
}

// triangulate expands strip and fan index lists into a triangle list, dropping a trailing partial triangle.
func triangulate(mode int, idx []uint32) []uint32 {
	switch mode {
	case gltfModeTriangleStrip:
		var out []uint32
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				out = append(out, idx[i], idx[i+1], idx[i+2])
			} else {
				out = append(out, idx[i+1], idx[i], idx[i+2])
			}
		}
		return out
	case gltfModeTriangleFan:
		var out []uint32
		for i := 1; i+1 < len(idx); i++ {
			out = append(out, idx[0], idx[i], idx[i+1])
		}
		return out
	default:
		return idx[:len(idx)-len(idx)%3]
	}
}

// Merge concatenates meshes into one named MeshData. A single mesh is returned unchanged.
func Merge(name string, all []mesh.MeshData) mesh.MeshData {
	if len(all) == 1 {
		return all[0]
	}
	out := mesh.MeshData{Name: name}
	for _, d := range all {
		out.Append(d)
	}
	return out
}
