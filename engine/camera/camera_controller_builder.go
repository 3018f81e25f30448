package camera

import "github.com/Carmen-Shannon/oxy-editor/common"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithViewport sets the initial input rectangle.
//
// Parameters:
//   - vp: viewport in window pixels
//
// Returns:
//   - CameraControllerOption: functional option to set the viewport
func WithViewport(vp Viewport) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.viewport = vp
		if vp.Width > 0 && vp.Height > 0 {
			cc.camera.SetAspect(vp.Aspect())
		}
	}
}

// WithOrbitSpeed sets the orbit rate for middle-drag.
//
// Parameters:
//   - degreesPerPixel: rotation per pixel of mouse travel
//
// Returns:
//   - CameraControllerOption: functional option to set the orbit speed
func WithOrbitSpeed(degreesPerPixel float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSpeed = common.Radians(degreesPerPixel)
	}
}

// WithPanSpeed sets the pan rate for Shift+middle-drag, scaled by the orbit distance.
//
// Parameters:
//   - speed: world units per pixel per unit of distance
//
// Returns:
//   - CameraControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}

// WithZoomSpeed sets the multiplier applied to wheel and dolly input.
//
// Parameters:
//   - speed: zoom multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithMouseClampDelta limits how far a single mouse event may move the camera.
//
// Parameters:
//   - pixels: maximum per-event delta on each axis
//
// Returns:
//   - CameraControllerOption: functional option to set the clamp
func WithMouseClampDelta(pixels float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if pixels > 0 {
			cc.clampDelta = pixels
		}
	}
}

// WithFrameSelected sets the callback run when F is pressed over the viewport.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - CameraControllerOption: functional option to set the callback
func WithFrameSelected(fn func()) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.onFrameSelected = fn
	}
}
