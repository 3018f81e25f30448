package mesh

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	mu          *sync.Mutex
	key         string
	label       string
	data        MeshData
	boundsMin   common.Vec3
	boundsMax   common.Vec3
	vertexArray *VertexArray
	destroyed   bool
}

// Mesh is a GPU-resident triangle mesh. It owns one VertexArray referencing one VertexBuffer and one
// IndexBuffer, and keeps the CPU-side MeshData for picking and bounds queries.
// A Mesh is owned by the resource manager and destroyed on eviction or shutdown.
type Mesh interface {
	// Key returns the resource key the mesh is cached under.
	//
	// Returns:
	//   - string: the key
	Key() string

	// Data returns the CPU-side mesh data. The returned value shares its slices with the mesh and
	// must not be modified.
	//
	// Returns:
	//   - MeshData: the source data
	Data() MeshData

	// Bounds returns the local-space axis-aligned bounds computed at creation.
	//
	// Returns:
	//   - common.Vec3: minimum corner
	//   - common.Vec3: maximum corner
	Bounds() (common.Vec3, common.Vec3)

	// VertexArray returns the GPU binding, or nil after Destroy.
	//
	// Returns:
	//   - *VertexArray: the vertex array
	VertexArray() *VertexArray

	// IndexCount returns the number of indices to draw.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// Destroyed reports whether the GPU handles have been released.
	//
	// Returns:
	//   - bool: true after Destroy
	Destroyed() bool

	// Destroy releases the GPU buffers. Calling it more than once is a no-op.
	Destroy()

	// Release is Destroy under the name the resource manager expects.
	Release()
}

var _ Mesh = &mesh{}

// NewMesh validates data and uploads it to the device.
// If the index buffer cannot be created the vertex buffer is released, so no partial mesh survives.
//
// Parameters:
//   - device: the device to allocate on
//   - data: the mesh data, validated before any allocation
//   - options: functional options (WithKey, WithLabel)
//
// Returns:
//   - Mesh: the GPU mesh
//   - error: a contract violation for invalid or empty data, or a resource creation failure
func NewMesh(device Device, data MeshData, options ...MeshBuilderOption) (Mesh, error) {
	m := &mesh{
		mu:   &sync.Mutex{},
		data: data,
	}
	for _, opt := range options {
		opt(m)
	}
	m.label = common.Coalesce(m.label, m.key, data.Name, "mesh")

	if err := data.Validate(); err != nil {
		return nil, err
	}
	if data.VertexCount() == 0 || len(data.Indices) == 0 {
		return nil, common.ContractError("mesh.NewMesh", "%s: mesh has no triangles", m.label)
	}

	vb, err := NewVertexBuffer(device, m.label, data.Vertices)
	if err != nil {
		return nil, err
	}
	ib, err := NewIndexBuffer(device, m.label, data.Indices)
	if err != nil {
		vb.Release()
		return nil, err
	}

	m.vertexArray = NewVertexArray(vb, ib)
	m.boundsMin, m.boundsMax = data.Bounds()
	return m, nil
}

func (m *mesh) Key() string {
	return m.key
}

func (m *mesh) Data() MeshData {
	return m.data
}

func (m *mesh) Bounds() (common.Vec3, common.Vec3) {
	return m.boundsMin, m.boundsMax
}

func (m *mesh) VertexArray() *VertexArray {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vertexArray
}

func (m *mesh) IndexCount() uint32 {
	return uint32(len(m.data.Indices))
}

func (m *mesh) Destroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

func (m *mesh) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.destroyed = true
	if m.vertexArray != nil {
		m.vertexArray.Vertices.Release()
		m.vertexArray.Indices.Release()
		m.vertexArray = nil
	}
}

func (m *mesh) Release() {
	m.Destroy()
}
