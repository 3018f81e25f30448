package engine

import (
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/camera"
	"github.com/Carmen-Shannon/oxy-editor/engine/profiler"
	"github.com/Carmen-Shannon/oxy-editor/engine/renderer"
	"github.com/Carmen-Shannon/oxy-editor/engine/resource"
	"github.com/Carmen-Shannon/oxy-editor/engine/viewport"
	"github.com/Carmen-Shannon/oxy-editor/engine/window"
)

// engine implements the Engine interface.
// Every frame runs on the window's thread: input callbacks, then the update phase, then the render phase.
type engine struct {
	mu *sync.Mutex

	window    window.Window
	renderer  renderer.Renderer
	viewport  viewport.Viewport
	resources resource.Manager

	profiler         *profiler.Profiler
	profilingEnabled bool

	updateCallback func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame        time.Time
	lastRenderErr    string

	quitOnce     sync.Once
	shutdownOnce sync.Once
}

// Engine drives the editor: it feeds window input to the viewport and runs the update-then-render
// frame loop on the window's thread.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Viewport returns the editor viewport input is routed to.
	//
	// Returns:
	//   - viewport.Viewport: the viewport
	Viewport() viewport.Viewport

	// Stats returns the last profiler report.
	//
	// Returns:
	//   - profiler.Stats: frame timing, draw counts and memory
	Stats() profiler.Stats

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetUpdateCallback registers a function called every frame after the viewport update and before rendering.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetUpdateCallback(callback func(deltaTime float32))

	// SetRenderCallback registers a function called every frame after the scene has been presented.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Step runs one frame: viewport update, update callback, scene draw, render callback and
	// profiler tick.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	Step(deltaTime float32)

	// Run processes window messages and runs a frame after each batch until the window closes,
	// then closes the viewport, shuts down the resource manager while the GPU device is still alive,
	// and releases the renderer and window.
	//
	// Returns:
	//   - error: ContractViolation if the window, renderer or viewport is missing
	Run() error

	// Quit asks the window to close, which ends Run after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options and wires the window's
// callbacks to the viewport and renderer.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, viewport, profiling)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:       &sync.Mutex{},
		profiler: profiler.NewProfiler(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.viewport != nil && e.renderer != nil {
		e.viewport.SetReloadHook(e.reloadShader)
	}
	if e.window != nil {
		e.bindWindow()
	}

	return e
}

// bindWindow routes the window's input and lifecycle callbacks.
func (e *engine) bindWindow() {
	e.window.SetUpdateCallback(e.tick)
	e.window.SetResizeCallback(e.resize)
	if e.viewport == nil {
		return
	}
	e.window.SetMouseDownCallback(e.viewport.MouseDown)
	e.window.SetMouseUpCallback(e.viewport.MouseUp)
	e.window.SetMouseMoveCallback(e.viewport.MouseMove)
	e.window.SetScrollCallback(e.viewport.Scroll)
	e.window.SetKeyDownCallback(e.viewport.KeyDown)
	e.window.SetKeyUpCallback(e.viewport.KeyUp)
	e.window.SetDropCallback(e.drop)
	if w, h := e.window.Width(), e.window.Height(); w > 0 && h > 0 {
		e.viewport.SetBounds(camera.Viewport{Width: float32(w), Height: float32(h)})
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Viewport() viewport.Viewport {
	return e.viewport
}

func (e *engine) Stats() profiler.Stats {
	return e.profiler.Stats()
}

func (e *engine) Run() error {
	if e.window == nil || e.renderer == nil || e.viewport == nil {
		return common.ContractError("engine.Run", "window, renderer and viewport are required")
	}
	defer e.shutdown()

	e.lastFrame = time.Now()
	e.window.ProcessMessages()
	return nil
}

// Quit asks the window to close.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// shutdown releases the viewport, cached resources, renderer and window in that order.
// Cached meshes own GPU buffers, so they go before the renderer frees the device.
func (e *engine) shutdown() {
	e.shutdownOnce.Do(func() {
		e.viewport.Close()
		if e.resources != nil {
			e.resources.Shutdown()
		}
		e.renderer.Release()
		if err := e.window.Close(); err != nil {
			log.Printf("[Engine] closing window: %v", err)
		}
	})
}

// tick is the window's update callback. It measures the frame time, runs a frame and sleeps
// off the remainder of the frame limit.
func (e *engine) tick() {
	now := time.Now()
	if e.lastFrame.IsZero() {
		e.lastFrame = now
	}
	dt := float32(now.Sub(e.lastFrame).Seconds())
	e.lastFrame = now

	e.Step(dt)

	e.mu.Lock()
	limit := e.renderFrameLimit
	e.mu.Unlock()
	if limit > 0 {
		if remaining := limit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) Step(dt float32) {
	e.mu.Lock()
	onUpdate, onRender, profiling := e.updateCallback, e.renderCallback, e.profilingEnabled
	e.mu.Unlock()

	done := e.profiler.Begin(profiler.PhaseUpdate)
	if e.viewport != nil {
		e.viewport.Update(dt)
	}
	if onUpdate != nil {
		onUpdate(dt)
	}
	done()

	done = e.profiler.Begin(profiler.PhaseRender)
	e.render()
	done()

	if onRender != nil {
		onRender(dt)
	}
	if profiling {
		e.profiler.Tick()
	}
}

// render draws the viewport scene. Repeated identical errors are logged once.
func (e *engine) render() {
	if e.renderer == nil || e.viewport == nil {
		return
	}
	if err := e.renderer.BeginFrame(); err != nil {
		e.logRenderError(err)
		return
	}
	stats, err := e.renderer.Draw(e.viewport.Scene(), e.viewport.Camera())
	e.renderer.EndFrame()
	if err != nil {
		e.logRenderError(err)
		return
	}
	e.lastRenderErr = ""
	e.profiler.RecordDraw(stats.Drawn, stats.Culled)
}

func (e *engine) logRenderError(err error) {
	if msg := err.Error(); msg != e.lastRenderErr {
		log.Printf("[Engine] frame skipped: %v", err)
		e.lastRenderErr = msg
	}
}

// resize reconfigures the surface and the viewport bounds. Minimized windows report zero sizes,
// which are ignored.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
	if e.viewport != nil {
		e.viewport.SetBounds(camera.Viewport{Width: float32(width), Height: float32(height)})
	}
}

// drop queues an import for every file dropped onto the window.
func (e *engine) drop(paths []string) {
	for _, path := range paths {
		if err := e.viewport.Import(path); err != nil {
			log.Printf("[Engine] cannot import %s: %v", path, err)
		}
	}
}

// reloadShader claims hot-reload evictions of the renderer's shader file.
func (e *engine) reloadShader(key string) bool {
	if key != e.renderer.ShaderKey() {
		return false
	}
	if err := e.renderer.ReloadShader(); err != nil {
		log.Printf("[Engine] keeping previous shader: %v", err)
	}
	return true
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetUpdateCallback registers the function called each frame before rendering.
func (e *engine) SetUpdateCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updateCallback = callback
}

// SetRenderCallback registers the function called each frame after rendering.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = frameDuration(fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
