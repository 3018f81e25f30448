package mesh

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
)

// VertexFormat names a vertex attribute layout.
type VertexFormat int

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x3
)

// VertexAttribute is one attribute of the interleaved vertex layout.
type VertexAttribute struct {
	Location uint32
	Format   VertexFormat
	Offset   uint64
}

// VertexBuffer is a GPU buffer holding interleaved vertex data.
type VertexBuffer struct {
	once   sync.Once
	handle Handle
	size   uint64
	count  int
}

// NewVertexBuffer uploads vertices to a new GPU vertex buffer.
//
// Parameters:
//   - device: the device to allocate on
//   - label: debug label
//   - vertices: interleaved vertex data in the engine layout
//
// Returns:
//   - *VertexBuffer: the buffer
//   - error: a resource creation failure if the device rejected the buffer
func NewVertexBuffer(device Device, label string, vertices []float32) (*VertexBuffer, error) {
	data := common.SliceToBytes(vertices)
	h, err := device.CreateBuffer(label+" Vertex Buffer", BufferUsageVertex, data)
	if err != nil {
		return nil, common.ResourceError("mesh.NewVertexBuffer", label, err)
	}
	return &VertexBuffer{handle: h, size: uint64(len(data)), count: len(vertices) / VertexStride}, nil
}

// Handle returns the underlying GPU handle.
func (b *VertexBuffer) Handle() Handle { return b.handle }

// Size returns the buffer size in bytes.
func (b *VertexBuffer) Size() uint64 { return b.size }

// Count returns the number of vertices in the buffer.
func (b *VertexBuffer) Count() int { return b.count }

// Release frees the GPU buffer. Subsequent calls are no-ops.
func (b *VertexBuffer) Release() {
	b.once.Do(func() {
		if b.handle != nil {
			b.handle.Release()
		}
	})
}

// IndexBuffer is a GPU buffer of uint32 triangle indices.
type IndexBuffer struct {
	once   sync.Once
	handle Handle
	count  uint32
}

// NewIndexBuffer uploads indices to a new GPU index buffer.
//
// Parameters:
//   - device: the device to allocate on
//   - label: debug label
//   - indices: uint32 triangle list
//
// Returns:
//   - *IndexBuffer: the buffer
//   - error: a resource creation failure if the device rejected the buffer
func NewIndexBuffer(device Device, label string, indices []uint32) (*IndexBuffer, error) {
	h, err := device.CreateBuffer(label+" Index Buffer", BufferUsageIndex, common.SliceToBytes(indices))
	if err != nil {
		return nil, common.ResourceError("mesh.NewIndexBuffer", label, err)
	}
	return &IndexBuffer{handle: h, count: uint32(len(indices))}, nil
}

// Handle returns the underlying GPU handle.
func (b *IndexBuffer) Handle() Handle { return b.handle }

// Count returns the number of indices.
func (b *IndexBuffer) Count() uint32 { return b.count }

// Release frees the GPU buffer. Subsequent calls are no-ops.
func (b *IndexBuffer) Release() {
	b.once.Do(func() {
		if b.handle != nil {
			b.handle.Release()
		}
	})
}

// VertexArray describes how one vertex buffer and one index buffer are bound for drawing.
// It owns neither buffer; the Mesh that created it does.
type VertexArray struct {
	Vertices    *VertexBuffer
	Indices     *IndexBuffer
	StrideBytes uint64
	Attributes  []VertexAttribute
}

// DefaultAttributes is the position/normal/uv layout shared by every mesh in the engine.
var DefaultAttributes = []VertexAttribute{
	{Location: 0, Format: VertexFormatFloat32x3, Offset: 0},
	{Location: 1, Format: VertexFormatFloat32x3, Offset: 12},
	{Location: 2, Format: VertexFormatFloat32x2, Offset: 24},
}

// NewVertexArray binds a vertex and index buffer with the default layout.
func NewVertexArray(vb *VertexBuffer, ib *IndexBuffer) *VertexArray {
	return &VertexArray{
		Vertices:    vb,
		Indices:     ib,
		StrideBytes: VertexStrideBytes,
		Attributes:  DefaultAttributes,
	}
}
