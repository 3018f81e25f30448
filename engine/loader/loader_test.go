package loader_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/loader"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func assertVec3(t *testing.T, want, got common.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqual(got, 1e-5), "want %v, got %v", want, got)
}

const objScene = `# two objects
o First
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1

o Second
v 0 0 1
v 1 0 1
v 0 1 1
f -3 -2 -1
`

func TestOBJLoadAll(t *testing.T) {
	path := writeFile(t, "scene.obj", []byte(objScene))
	all, err := loader.NewMeshLoader().LoadAll(path)
	require.NoError(t, err)
	require.Len(t, all, 2)

	first := all[0]
	assert.Equal(t, "First", first.Name)
	assert.Equal(t, 4, first.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, first.Indices)
	assert.Equal(t, common.Vec2{1, 1}, first.UV(2))
	assert.Equal(t, common.Vec3{0, 0, 1}, first.Normal(0))

	second := all[1]
	assert.Equal(t, "Second", second.Name)
	assert.Equal(t, []uint32{0, 1, 2}, second.Indices)
	assert.Equal(t, common.Vec3{0, 1, 0}, second.Normal(1), "missing normals default to +Y")
	assert.Equal(t, common.Vec2{}, second.UV(1))
	assert.Equal(t, common.Vec3{1, 0, 1}, second.Position(1))
}

func TestOBJLoadMerges(t *testing.T) {
	path := writeFile(t, "scene.obj", []byte(objScene))
	d, err := loader.NewMeshLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scene", d.Name)
	assert.Equal(t, 7, d.VertexCount())
	assert.Equal(t, 3, d.TriangleCount())
	assert.Equal(t, []uint32{4, 5, 6}, d.Indices[6:])
}

func TestOBJRejectsBadIndex(t *testing.T) {
	path := writeFile(t, "bad.obj", []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"))
	_, err := loader.NewMeshLoader().Load(path)
	assert.ErrorIs(t, err, common.ErrImportFailure)
	assert.Contains(t, err.Error(), "line 4")
}

const stlASCII = `solid tri
  facet normal 0 0 0
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`

func TestSTLASCII(t *testing.T) {
	path := writeFile(t, "tri.stl", []byte(stlASCII))
	d, err := loader.NewMeshLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tri", d.Name)
	assert.Equal(t, 3, d.VertexCount())
	assertVec3(t, common.Vec3{0, 0, 1}, d.Normal(0))
}

func TestSTLBinaryWithSolidHeader(t *testing.T) {
	var buf bytes.Buffer
	header := make([]byte, 80)
	copy(header, "solid but actually binary")
	buf.Write(header)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(1)))
	facet := []float32{
		0, 0, 0, // stored normal, ignored
		0, 0, 0,
		0, 0, -1,
		0, 1, 0,
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, facet))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(0)))

	path := writeFile(t, "part.STL", buf.Bytes())
	d, err := loader.NewMeshLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "part", d.Name)
	assert.Equal(t, 1, d.TriangleCount())
	assertVec3(t, common.Vec3{0, 0, -1}, d.Position(1))
	// (0,0,-1) x (0,1,0) = (1,0,0)
	assertVec3(t, common.Vec3{1, 0, 0}, d.Normal(2))
}

// triangleBuffer holds three XY-plane positions followed by uint16 indices padded to four bytes.
func triangleBuffer(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2, 0}))
	return buf.Bytes()
}

// triangleDocument is a glTF document with a translated parent node and a rotated child that instances one triangle.
func triangleDocument(bufferURI string) map[string]any {
	half := float32(math.Sqrt(0.5))
	buffer := map[string]any{"byteLength": 44}
	if bufferURI != "" {
		buffer["uri"] = bufferURI
	}
	return map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"nodes": []int{0}}},
		"nodes": []any{
			map[string]any{"name": "Root", "translation": []float32{0, 0, 2}, "children": []int{1}},
			map[string]any{"name": "Tri", "rotation": []float32{0, half, 0, half}, "mesh": 0},
		},
		"meshes": []any{map[string]any{
			"name":       "triangle",
			"primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0}, "indices": 1}},
		}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 6},
		},
		"buffers": []any{buffer},
	}
}

func assertBakedTriangle(t *testing.T, d mesh.MeshData) {
	t.Helper()
	assert.Equal(t, "Tri", d.Name)
	assert.Equal(t, []uint32{0, 1, 2}, d.Indices)
	// rotate +90 degrees about Y, then translate +2 on Z
	assertVec3(t, common.Vec3{0, 0, 2}, d.Position(0))
	assertVec3(t, common.Vec3{0, 0, 1}, d.Position(1))
	assertVec3(t, common.Vec3{0, 1, 2}, d.Position(2))
	// generated +Z normal rotated onto +X
	assertVec3(t, common.Vec3{1, 0, 0}, d.Normal(0))
}

func TestGLTFEmbeddedBuffer(t *testing.T) {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer(t))
	doc, err := json.Marshal(triangleDocument(uri))
	require.NoError(t, err)

	path := writeFile(t, "tri.gltf", doc)
	d, err := loader.NewMeshLoader().Load(path)
	require.NoError(t, err)
	assertBakedTriangle(t, d)
}

func TestGLTFExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), triangleBuffer(t), 0o644))
	doc, err := json.Marshal(triangleDocument("tri.bin"))
	require.NoError(t, err)
	path := filepath.Join(dir, "tri.gltf")
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	all, err := loader.NewMeshLoader().LoadAll(path)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assertBakedTriangle(t, all[0])
}

func pad4(b []byte, fill byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, fill)
	}
	return b
}

func TestGLB(t *testing.T) {
	doc, err := json.Marshal(triangleDocument(""))
	require.NoError(t, err)
	jsonChunk := pad4(doc, ' ')
	binChunk := pad4(triangleBuffer(t), 0)

	var buf bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []uint32{0x46546C67, 2, uint32(total)}))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(jsonChunk)), 0x4E4F534A}))
	buf.Write(jsonChunk)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(binChunk)), 0x004E4942}))
	buf.Write(binChunk)

	path := writeFile(t, "tri.glb", buf.Bytes())
	d, err := loader.NewMeshLoader().Load(path)
	require.NoError(t, err)
	assertBakedTriangle(t, d)
}

func TestGLTFAccessorOutOfRange(t *testing.T) {
	doc := triangleDocument("data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer(t)))
	doc["accessors"].([]any)[0].(map[string]any)["count"] = 30
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = loader.NewMeshLoader().Load(writeFile(t, "broken.gltf", raw))
	assert.ErrorIs(t, err, common.ErrImportFailure)
}

func TestGLTFCorruptAccessorsFailWithoutAllocating(t *testing.T) {
	position := func(doc map[string]any) map[string]any { return doc["accessors"].([]any)[0].(map[string]any) }
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
	}{
		{"huge count without bufferView", func(doc map[string]any) {
			delete(position(doc), "bufferView")
			position(doc)["count"] = int64(11000000000000)
		}},
		{"count overflowing the stride product", func(doc map[string]any) {
			position(doc)["count"] = int64(1) << 62
		}},
		{"byteOffset far past the buffer", func(doc map[string]any) {
			position(doc)["byteOffset"] = int64(1) << 62
		}},
		{"negative bufferView length", func(doc map[string]any) {
			doc["bufferViews"].([]any)[0].(map[string]any)["byteLength"] = -8
		}},
		{"negative count", func(doc map[string]any) {
			position(doc)["count"] = -1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := triangleDocument("data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer(t)))
			tt.mutate(doc)
			raw, err := json.Marshal(doc)
			require.NoError(t, err)

			_, err = loader.NewMeshLoader().LoadAll(writeFile(t, "corrupt.gltf", raw))
			assert.ErrorIs(t, err, common.ErrImportFailure)
		})
	}
}

func TestMeshLoaderFailures(t *testing.T) {
	l := loader.NewMeshLoader()

	t.Run("unknown extension", func(t *testing.T) {
		_, err := l.Load(writeFile(t, "model.fbx", []byte("binary")))
		assert.ErrorIs(t, err, common.ErrImportFailure)
		assert.ErrorIs(t, err, common.ErrLookup)
		assert.ErrorIs(t, err, loader.ErrNoLoader)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := l.Load(filepath.Join(t.TempDir(), "gone.obj"))
		assert.ErrorIs(t, err, common.ErrImportFailure)
	})

	t.Run("decode error", func(t *testing.T) {
		_, err := l.LoadAll(writeFile(t, "junk.gltf", []byte("{not json")))
		assert.ErrorIs(t, err, common.ErrImportFailure)
		assert.NotErrorIs(t, err, common.ErrLookup)
	})

	t.Run("empty obj", func(t *testing.T) {
		_, err := l.Load(writeFile(t, "empty.obj", []byte("# nothing\n")))
		assert.ErrorIs(t, err, common.ErrImportFailure)
	})
}

func TestMeshLoaderFormats(t *testing.T) {
	l := loader.NewMeshLoader()
	assert.Equal(t, []string{".glb", ".gltf", ".obj", ".stl"}, l.SupportedFormats())
	assert.True(t, l.CanLoad("Assets/Ship.GLB"))
	assert.False(t, l.CanLoad("notes.txt"))

	info := l.LoaderInfo()
	require.Len(t, info, 3)
	assert.Equal(t, "glTF", info[0].Name)

	custom := loader.NewMeshLoader(loader.WithFormatLoaders(loader.NewOBJLoader()))
	assert.Equal(t, []string{".obj"}, custom.SupportedFormats())
	custom.Register(loader.NewSTLLoader())
	assert.True(t, custom.CanLoad("x.stl"))
}

// gatedLoader counts loads and holds each one until the gate is closed.
type gatedLoader struct {
	calls atomic.Int32
	gate  chan struct{}
}

func (g *gatedLoader) Name() string         { return "gated" }
func (g *gatedLoader) Extensions() []string { return []string{".fake"} }
func (g *gatedLoader) CanLoad(path string) bool {
	return loader.Ext(path) == ".fake"
}

func (g *gatedLoader) Load(path string) (mesh.MeshData, error) {
	all, err := g.LoadAll(path)
	if err != nil {
		return mesh.MeshData{}, err
	}
	return all[0], nil
}

func (g *gatedLoader) LoadAll(string) ([]mesh.MeshData, error) {
	g.calls.Add(1)
	<-g.gate
	return []mesh.MeshData{mesh.Triangle(1)}, nil
}

func TestImporterSharesInFlightLoads(t *testing.T) {
	g := &gatedLoader{gate: make(chan struct{})}
	im := loader.NewImporter(loader.NewMeshLoader(loader.WithFormatLoaders(g)), loader.WithWorkers(2))
	defer im.Close()

	path := writeFile(t, "thing.fake", nil)
	first := im.Submit(path)
	second := im.Submit(path)
	assert.Equal(t, 1, im.Pending())
	close(g.gate)

	for _, ch := range []<-chan loader.ImportResult{first, second} {
		select {
		case res := <-ch:
			require.NoError(t, res.Err)
			require.Len(t, res.Meshes, 1)
			assert.Equal(t, 3, res.Meshes[0].VertexCount())
		case <-time.After(5 * time.Second):
			t.Fatal("import did not complete")
		}
	}
	assert.Equal(t, int32(1), g.calls.Load())
	assert.Equal(t, 0, im.Pending())

	// a finished path is loaded again on the next request
	_, err := im.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int32(2), g.calls.Load())
}

func TestImporterReportsFailures(t *testing.T) {
	im := loader.NewImporter(loader.NewMeshLoader())

	_, err := im.Import(context.Background(), filepath.Join(t.TempDir(), "missing.obj"))
	assert.ErrorIs(t, err, common.ErrImportFailure)

	im.Close()
	im.Close()
	res := <-im.Submit("late.obj")
	assert.ErrorIs(t, res.Err, common.ErrContractViolation)
}

func TestImporterHonorsContext(t *testing.T) {
	g := &gatedLoader{gate: make(chan struct{})}
	im := loader.NewImporter(loader.NewMeshLoader(loader.WithFormatLoaders(g)))
	defer im.Close()
	defer close(g.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := im.Import(ctx, writeFile(t, "slow.fake", nil))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
