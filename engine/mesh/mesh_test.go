package mesh_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh/meshtest"
	"github.com/Carmen-Shannon/oxy-editor/engine/ray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	good := mesh.Triangle(1)
	require.NoError(t, good.Validate())

	badCount := good
	badCount.Indices = []uint32{0, 1}
	assert.ErrorIs(t, badCount.Validate(), common.ErrContractViolation)

	badIndex := good
	badIndex.Indices = []uint32{0, 1, 3}
	assert.ErrorIs(t, badIndex.Validate(), common.ErrContractViolation)

	badStride := good
	badStride.Vertices = good.Vertices[:len(good.Vertices)-1]
	assert.ErrorIs(t, badStride.Validate(), common.ErrContractViolation)
}

func TestNewMeshCreatesAndDestroysBuffers(t *testing.T) {
	dev := meshtest.NewDevice()
	m, err := mesh.NewMesh(dev, mesh.Cube(2), mesh.WithKey("primitive:cube(size=2)"))
	require.NoError(t, err)

	assert.Equal(t, "primitive:cube(size=2)", m.Key())
	assert.Equal(t, uint32(36), m.IndexCount())
	assert.Equal(t, 2, dev.Live())

	va := m.VertexArray()
	require.NotNil(t, va)
	assert.Equal(t, uint64(mesh.VertexStrideBytes), va.StrideBytes)
	assert.Equal(t, 24, va.Vertices.Count())
	assert.Equal(t, uint64(24*mesh.VertexStrideBytes), va.Vertices.Size())
	assert.Len(t, va.Attributes, 3)

	lo, hi := m.Bounds()
	assert.Equal(t, common.Vec3{-1, -1, -1}, lo)
	assert.Equal(t, common.Vec3{1, 1, 1}, hi)

	m.Destroy()
	m.Destroy()
	m.Release()
	assert.True(t, m.Destroyed())
	assert.Nil(t, m.VertexArray())
	assert.Equal(t, 0, dev.Live())
	for _, h := range dev.Handles() {
		assert.Equal(t, 1, h.Releases(), "handle %s released more than once", h.Label)
	}
}

func TestNewMeshReleasesPartialResources(t *testing.T) {
	dev := meshtest.NewDevice()
	dev.FailAfter(1) // vertex buffer succeeds, index buffer fails

	m, err := mesh.NewMesh(dev, mesh.Cube(1))
	assert.Nil(t, m)
	assert.ErrorIs(t, err, common.ErrResourceCreation)
	assert.ErrorIs(t, err, meshtest.ErrInjected)
	require.Len(t, dev.Handles(), 1)
	assert.Equal(t, 0, dev.Live())
}

func TestNewMeshRejectsInvalidData(t *testing.T) {
	dev := meshtest.NewDevice()
	_, err := mesh.NewMesh(dev, mesh.MeshData{Vertices: make([]float32, 8), Indices: []uint32{0, 0, 5}})
	assert.ErrorIs(t, err, common.ErrContractViolation)

	_, err = mesh.NewMesh(dev, mesh.MeshData{})
	assert.ErrorIs(t, err, common.ErrContractViolation)
	assert.Empty(t, dev.Handles())
}

func geometricNormal(d mesh.MeshData, tri int) common.Vec3 {
	a := d.Position(int(d.Indices[tri*3]))
	b := d.Position(int(d.Indices[tri*3+1]))
	c := d.Position(int(d.Indices[tri*3+2]))
	return b.Sub(a).Cross(c.Sub(a))
}

func TestPrimitivesAreValidAndWoundOutward(t *testing.T) {
	kinds := []mesh.PrimitiveKind{
		mesh.PrimitiveCube, mesh.PrimitiveSphere, mesh.PrimitivePlane, mesh.PrimitiveCylinder, mesh.PrimitiveTriangle,
	}
	for _, k := range kinds {
		t.Run(k.String(), func(t *testing.T) {
			d, err := mesh.Generate(k, mesh.PrimitiveParams{})
			require.NoError(t, err)
			require.NoError(t, d.Validate())
			assert.Equal(t, k.String(), d.Name)
			assert.NotZero(t, d.TriangleCount())

			for tri := 0; tri < d.TriangleCount(); tri++ {
				g := geometricNormal(d, tri)
				if g.LengthSq() < 1e-12 {
					continue
				}
				n := d.Normal(int(d.Indices[tri*3]))
				assert.Greater(t, g.Dot(n), float32(0), "triangle %d faces against its vertex normal", tri)
			}
		})
	}
}

func TestCubeLayout(t *testing.T) {
	d := mesh.Cube(1)
	assert.Equal(t, 24, d.VertexCount())
	assert.Equal(t, 12, d.TriangleCount())
	lo, hi := d.Bounds()
	assert.Equal(t, common.Vec3{-0.5, -0.5, -0.5}, lo)
	assert.Equal(t, common.Vec3{0.5, 0.5, 0.5}, hi)
}

func TestSphereSkipsPoleTriangles(t *testing.T) {
	d := mesh.Sphere(1, 8, 4)
	assert.Equal(t, 9*5, d.VertexCount())
	// each ring contributes 2 triangles per segment, minus one at each pole ring
	assert.Equal(t, 8*(2*4-2), d.TriangleCount())

	hit, dist := ray.MustNew(common.Vec3{0, 0, 5}, common.Vec3{0, 0, -1}).IntersectMesh(d.Vertices, mesh.VertexStride, d.Indices)
	require.True(t, hit)
	assert.InDelta(t, 4, dist, 0.1)
}

func TestGenerateRejectsBadParams(t *testing.T) {
	_, err := mesh.Generate(mesh.PrimitiveSphere, mesh.PrimitiveParams{Segments: 2})
	assert.ErrorIs(t, err, common.ErrContractViolation)
	_, err = mesh.Generate(mesh.PrimitiveKind(99), mesh.PrimitiveParams{})
	assert.ErrorIs(t, err, common.ErrContractViolation)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, mesh.Signature(mesh.PrimitiveCube, mesh.PrimitiveParams{}),
		mesh.Signature(mesh.PrimitiveCube, mesh.PrimitiveParams{Size: 1}))
	assert.NotEqual(t, mesh.Signature(mesh.PrimitiveCube, mesh.PrimitiveParams{Size: 2}),
		mesh.Signature(mesh.PrimitiveCube, mesh.PrimitiveParams{Size: 1}))

	k, ok := mesh.ParsePrimitiveKind("cylinder")
	assert.True(t, ok)
	assert.Equal(t, mesh.PrimitiveCylinder, k)
	_, ok = mesh.ParsePrimitiveKind("teapot")
	assert.False(t, ok)
}

func TestTransformedAndAppend(t *testing.T) {
	d := mesh.Triangle(2)
	moved := d.Transformed(common.Translation(common.Vec3{0, 0, 3}))
	assert.Equal(t, common.Vec3{0, 1, 3}, moved.Position(0))
	assert.Equal(t, common.Vec3{0, 0, 1}, moved.Normal(0))
	assert.Equal(t, common.Vec3{0, 1, 0}, d.Position(0), "source must be untouched")

	d.Append(moved)
	assert.Equal(t, 6, d.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, d.Indices)
	assert.Len(t, d.Positions(), 18)
}

const testShader = `
// @vertex fn commented_out() {}
struct Out { @builtin(position) pos: vec4<f32> };

/* @fragment fn also_commented() {} */
@vertex
fn vs_main(@location(0) p: vec3<f32>) -> Out {
	var o: Out;
	o.pos = vec4<f32>(p, 1.0);
	return o;
}

@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`

func TestShaderEntryPoints(t *testing.T) {
	dev := meshtest.NewDevice()
	s, err := mesh.NewShader(dev, "unlit", testShader)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", s.VertexEntry())
	assert.Equal(t, "fs_main", s.FragmentEntry())
	assert.Equal(t, "unlit", s.Key())

	s.Release()
	s.Release()
	assert.Equal(t, 0, dev.Live())

	_, err = mesh.NewShader(dev, "broken", "fn nothing() {}")
	assert.ErrorIs(t, err, common.ErrContractViolation)
	assert.ErrorIs(t, err, mesh.ErrNoVertexEntry)
}

func TestLoadShader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unlit.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(testShader), 0o644))

	s, err := mesh.LoadShader(meshtest.NewDevice(), path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	_, err = mesh.LoadShader(meshtest.NewDevice(), filepath.Join(dir, "missing.wgsl"))
	assert.ErrorIs(t, err, common.ErrImportFailure)
}
