package renderer

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// MSAASampleCount is the number of samples used for multisample anti-aliasing.
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the GPU side of the Renderer. It embeds the interface of the selected GPU API.
type RendererBackend interface {
	gpuBackend
}

// gpuBackend is implemented by the wgpu backend. It speaks only engine types so the Renderer can be
// driven without a GPU.
type gpuBackend interface {
	mesh.Device

	// ConfigureSurface (re)creates the swapchain, MSAA and depth targets for a new surface size.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the background color of the main pass.
	SetClearColor(c common.Vec4)

	// CreatePipeline builds the mesh pipeline from a compiled shader, replacing the previous one.
	//
	// Parameters:
	//   - s: a shader with vertex and fragment entry points taking the DrawUniform at group 0
	//
	// Returns:
	//   - error: error if the shader lacks an entry point or pipeline creation fails
	CreatePipeline(s *mesh.Shader) error

	// BeginFrame acquires the next swapchain texture and begins the main render pass.
	//
	// Returns:
	//   - error: error if the swapchain texture could not be acquired
	BeginFrame() error

	// WriteUniforms uploads the frame's packed DrawUniform block, growing the uniform buffer as needed.
	//
	// Parameters:
	//   - data: len(draws) * UniformStride bytes
	//
	// Returns:
	//   - error: error if the uniform buffer could not be grown
	WriteUniforms(data []byte) error

	// DrawMesh encodes one indexed draw using the uniform at the given byte offset.
	//
	// Parameters:
	//   - va: the mesh's vertex array
	//   - uniformOffset: offset into the uniform block, a multiple of UniformStride
	DrawMesh(va *mesh.VertexArray, uniformOffset uint32)

	// EndFrame ends the render pass and submits the command buffer.
	EndFrame()

	// Present presents the surface and releases the swapchain texture.
	Present()

	// Release frees every GPU object owned by the backend.
	Release()
}
