package renderer

import (
	_ "embed"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/camera"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/Carmen-Shannon/oxy-editor/engine/resource"
	"github.com/Carmen-Shannon/oxy-editor/engine/scene"
	"github.com/Carmen-Shannon/oxy-editor/engine/window"
)

//go:embed assets/unlit.wgsl
var unlitShaderSource string

// BuiltinShaderKey is the resource key of the embedded unlit shader.
const BuiltinShaderKey = "builtin:unlit.wgsl"

// DefaultSelectionTint is mixed into the color of the selected object. Its alpha is the mix factor.
var DefaultSelectionTint = common.Vec4{1, 0.6, 0.1, 0.5}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	resources  resource.Manager
	shaderPath string
	shaderKey  string
	shader     *mesh.Shader
	ownsShader bool

	selectionTint common.Vec4
	inFrame       bool
	draws         []drawItem
	uniforms      []byte
	stats         FrameStats

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *common.Vec4
}

// Renderer draws a scene through a camera into the window surface.
// A frame is BeginFrame, any number of Draw calls, then EndFrame.
type Renderer interface {
	// Device returns the GPU device meshes and shaders are created on.
	//
	// Returns:
	//   - mesh.Device: the device
	Device() mesh.Device

	// Resize reconfigures the surface. Zero sizes (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode. It takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the viewport background color.
	//
	// Parameters:
	//   - c: rgba color
	SetClearColor(c common.Vec4)

	// SetSelectionTint sets the color mixed into the selected object. The tint's alpha is the mix factor.
	//
	// Parameters:
	//   - tint: rgba tint
	SetSelectionTint(tint common.Vec4)

	// BeginFrame starts a frame.
	//
	// Returns:
	//   - error: ContractViolation if a frame is already open, or the backend's acquire error
	BeginFrame() error

	// Draw renders every visible mesh in the scene that intersects the camera's frustum.
	// Selected objects are drawn with the selection tint.
	//
	// Parameters:
	//   - sc: the scene to draw
	//   - cam: the viewing camera
	//
	// Returns:
	//   - FrameStats: how many objects were drawn, culled and hidden
	//   - error: ContractViolation when called outside BeginFrame/EndFrame, or a uniform upload error
	Draw(sc scene.Scene, cam camera.Camera) (FrameStats, error)

	// EndFrame submits the frame and presents it. It is a no-op without an open frame.
	EndFrame()

	// Stats returns the counts of the last Draw.
	//
	// Returns:
	//   - FrameStats: the last frame's counts
	Stats() FrameStats

	// ShaderKey returns the resource key of the mesh shader, for matching hot-reload evictions.
	//
	// Returns:
	//   - string: the shader key
	ShaderKey() string

	// ReloadShader rebuilds the mesh shader and pipeline. On failure the previous pipeline stays in use.
	//
	// Returns:
	//   - error: the shader load or pipeline error
	ReloadShader() error

	// Release frees the shader (when not owned by a resource manager) and every GPU object of the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into the window's surface.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - win: the window providing the surface
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: error if the mesh shader could not be built
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(options...)
	r.backendType = backendType

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if err := r.init(win.Width(), win.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	return r, nil
}

func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		shaderKey:     BuiltinShaderKey,
		selectionTint: DefaultSelectionTint,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// init applies pending surface settings and builds the mesh pipeline on r.backend.
func (r *renderer) init(width, height int) error {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}
	r.backend.ConfigureSurface(width, height)

	if r.shaderPath != "" {
		key, err := resource.NormalizeKey(r.shaderPath)
		if err != nil {
			return err
		}
		r.shaderKey = key
		if r.resources != nil {
			// a failed watch only disables hot reload
			if err := r.resources.Watch(key, r.shaderPath); err != nil {
				log.Printf("[Renderer] shader hot reload disabled for %s: %v", r.shaderPath, err)
			}
		}
	}
	return r.ReloadShader()
}

func (r *renderer) Device() mesh.Device {
	return r.backend
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c common.Vec4) {
	r.backend.SetClearColor(c)
}

func (r *renderer) SetSelectionTint(tint common.Vec4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selectionTint = tint
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFrame {
		return common.ContractError("renderer.BeginFrame", "frame already open")
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.inFrame = true
	return nil
}

func (r *renderer) Draw(sc scene.Scene, cam camera.Camera) (FrameStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFrame {
		return FrameStats{}, common.ContractError("renderer.Draw", "no open frame")
	}

	var stats FrameStats
	r.draws, stats = buildDrawList(sc, cam.ViewProjection(), r.selectionTint, r.draws[:0])
	r.stats = stats
	if len(r.draws) == 0 {
		return stats, nil
	}

	r.uniforms = packUniforms(r.uniforms, r.draws)
	if err := r.backend.WriteUniforms(r.uniforms); err != nil {
		return stats, fmt.Errorf("renderer: upload draw uniforms: %w", err)
	}
	for i, d := range r.draws {
		r.backend.DrawMesh(d.mesh.VertexArray(), uint32(i*UniformStride))
	}
	// drop mesh references so released meshes are not pinned until the next frame
	clear(r.draws)
	return stats, nil
}

func (r *renderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFrame {
		return
	}
	r.inFrame = false
	r.backend.EndFrame()
	r.backend.Present()
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) ShaderKey() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shaderKey
}

func (r *renderer) ReloadShader() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.loadShader()
	if err != nil {
		log.Printf("[Renderer] shader %s failed to load: %v", r.shaderKey, err)
		return err
	}
	if err := r.backend.CreatePipeline(s); err != nil {
		if r.resources == nil {
			s.Release()
		}
		log.Printf("[Renderer] pipeline for %s failed: %v", r.shaderKey, err)
		return err
	}

	if r.ownsShader && r.shader != nil && r.shader != s {
		r.shader.Release()
	}
	r.shader = s
	r.ownsShader = r.resources == nil
	return nil
}

// loadShader compiles the mesh shader, through the resource manager when one is configured.
func (r *renderer) loadShader() (*mesh.Shader, error) {
	create := func() (*mesh.Shader, error) {
		if r.shaderPath != "" {
			return mesh.LoadShader(r.backend, r.shaderPath)
		}
		return mesh.NewShader(r.backend, BuiltinShaderKey, unlitShaderSource)
	}
	if r.resources == nil {
		return create()
	}
	return resource.GetOrCreateAs(r.resources, r.shaderKey, create)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ownsShader && r.shader != nil {
		r.shader.Release()
	}
	r.shader = nil
	r.backend.Release()
}
