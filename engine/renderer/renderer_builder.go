package renderer

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/resource"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff or MSAA4x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the viewport background color.
//
// Parameters:
//   - c: rgba color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color to a renderer
func WithClearColor(c common.Vec4) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingClearColor = &c
	}
}

// WithSelectionTint sets the tint mixed into the selected object. Defaults to DefaultSelectionTint.
//
// Parameters:
//   - tint: rgba tint, alpha is the mix factor
//
// Returns:
//   - RendererBuilderOption: a function that applies the selection tint to a renderer
func WithSelectionTint(tint common.Vec4) RendererBuilderOption {
	return func(r *renderer) {
		r.selectionTint = tint
	}
}

// WithResourceManager caches the mesh shader in m. Combined with WithShaderFile and a manager created
// with resource.WithFileWatcher, edits to the shader file evict it so ReloadShader picks them up.
//
// Parameters:
//   - m: the session resource manager
//
// Returns:
//   - RendererBuilderOption: a function that applies the resource manager to a renderer
func WithResourceManager(m resource.Manager) RendererBuilderOption {
	return func(r *renderer) {
		r.resources = m
	}
}

// WithShaderFile replaces the embedded unlit shader with a WGSL file. The shader must declare the
// DrawUniform at group 0, binding 0 and read the position/normal/uv vertex layout.
//
// Parameters:
//   - path: path to a .wgsl file
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader file to a renderer
func WithShaderFile(path string) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderPath = path
	}
}
