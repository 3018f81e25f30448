package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
)

// zoomStep is the fraction of the orbit distance covered by one wheel step at zoom speed 1.
const zoomStep = 0.1

// dollyFactor scales Ctrl+drag pixels into wheel steps.
const dollyFactor = 0.05

type cameraControllerImpl struct {
	mu *sync.Mutex

	camera   Camera
	viewport Viewport

	orbitSpeed float32 // radians per pixel
	panSpeed   float32 // world units per pixel per unit of orbit distance
	zoomSpeed  float32
	clampDelta float32

	navigating   bool
	lastX, lastY float32
	cursorX      float32
	cursorY      float32
	shift, ctrl  bool

	onFrameSelected func()
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller for cam. The defaults orbit 0.3 degrees per pixel, pan
// 0.002 distance units per pixel and clamp mouse deltas to 22 pixels per event.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(cam Camera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:         &sync.Mutex{},
		camera:     cam,
		orbitSpeed: common.Radians(0.3),
		panSpeed:   0.002,
		zoomSpeed:  1,
		clampDelta: 22,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

func (cc *cameraControllerImpl) Viewport() Viewport {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.viewport
}

func (cc *cameraControllerImpl) SetViewport(vp Viewport) {
	cc.mu.Lock()
	cc.viewport = vp
	cc.mu.Unlock()
	if vp.Width > 0 && vp.Height > 0 {
		cc.camera.SetAspect(vp.Aspect())
	}
}

func (cc *cameraControllerImpl) Cursor() (x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.cursorX, cc.cursorY
}

func (cc *cameraControllerImpl) IsNavigating() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.navigating
}

func (cc *cameraControllerImpl) MouseDown(button int, x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cursorX, cc.cursorY = x, y
	if button != common.MouseButtonMiddle || !cc.accepts(x, y) {
		return
	}
	cc.navigating = true
	cc.lastX, cc.lastY = x, y
}

func (cc *cameraControllerImpl) MouseUp(button int, x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cursorX, cc.cursorY = x, y
	if button == common.MouseButtonMiddle {
		cc.navigating = false
	}
}

func (cc *cameraControllerImpl) MouseMove(x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cursorX, cc.cursorY = x, y
	if !cc.navigating {
		return
	}
	dx := common.Clamp(x-cc.lastX, -cc.clampDelta, cc.clampDelta)
	dy := common.Clamp(y-cc.lastY, -cc.clampDelta, cc.clampDelta)
	cc.lastX, cc.lastY = x, y
	if !cc.camera.IsInputEnabled() || (dx == 0 && dy == 0) {
		return
	}

	switch {
	case cc.shift:
		scale := cc.panSpeed * cc.camera.Distance()
		cc.camera.Pan(-dx*scale, dy*scale)
	case cc.ctrl:
		cc.zoom(-dy * dollyFactor)
	default:
		cc.camera.Orbit(-dx*cc.orbitSpeed, dy*cc.orbitSpeed)
	}
}

func (cc *cameraControllerImpl) Scroll(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if delta == 0 || (!cc.navigating && !cc.accepts(cc.cursorX, cc.cursorY)) {
		return
	}
	if !cc.camera.IsInputEnabled() {
		return
	}
	cc.zoom(delta)
}

func (cc *cameraControllerImpl) KeyDown(key uint32) {
	cc.mu.Lock()
	switch key {
	case common.KeyLeftShift, common.KeyRightShift:
		cc.shift = true
	case common.KeyLeftControl, common.KeyRightControl:
		cc.ctrl = true
	}
	var frame func()
	if key == common.KeyF && cc.accepts(cc.cursorX, cc.cursorY) {
		frame = cc.onFrameSelected
	}
	cc.mu.Unlock()

	if frame != nil {
		frame()
	}
}

func (cc *cameraControllerImpl) KeyUp(key uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	switch key {
	case common.KeyLeftShift, common.KeyRightShift:
		cc.shift = false
	case common.KeyLeftControl, common.KeyRightControl:
		cc.ctrl = false
	}
}

// accepts reports whether input at (x, y) may reach the camera. Caller must hold the mutex.
func (cc *cameraControllerImpl) accepts(x, y float32) bool {
	return cc.camera.IsInputEnabled() && cc.camera.IsMouseInViewport(x, y, cc.viewport)
}

// zoom converts wheel steps into a distance change proportional to the current distance.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) zoom(steps float32) {
	cc.camera.Zoom(steps * cc.zoomSpeed * zoomStep * cc.camera.Distance())
}
