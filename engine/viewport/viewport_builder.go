package viewport

import (
	"github.com/Carmen-Shannon/oxy-editor/engine/camera"
	"github.com/Carmen-Shannon/oxy-editor/engine/loader"
	"github.com/Carmen-Shannon/oxy-editor/engine/ray"
)

// ViewportBuilderOption is a functional option for configuring a Viewport via NewViewport.
type ViewportBuilderOption func(v *viewport)

// WithBounds sets the initial viewport rectangle in window pixels.
//
// Parameters:
//   - vp: the rectangle
//
// Returns:
//   - ViewportBuilderOption: option function to apply
func WithBounds(vp camera.Viewport) ViewportBuilderOption {
	return func(v *viewport) {
		v.bounds = vp
	}
}

// WithImporter sets the background importer. Defaults to an importer over loader.NewMeshLoader().
// The viewport closes it on Close.
//
// Parameters:
//   - im: the importer
//
// Returns:
//   - ViewportBuilderOption: option function to apply
func WithImporter(im loader.Importer) ViewportBuilderOption {
	return func(v *viewport) {
		v.importer = im
	}
}

// WithPickCull sets the face culling used by picking rays. Defaults to ray.CullNone.
//
// Parameters:
//   - cull: the cull mode
//
// Returns:
//   - ViewportBuilderOption: option function to apply
func WithPickCull(cull ray.CullMode) ViewportBuilderOption {
	return func(v *viewport) {
		v.cull = cull
	}
}

// WithFrameDuration sets the length in seconds of frame-selected transitions. Defaults to 0.5.
// Zero makes them instant.
//
// Parameters:
//   - seconds: the transition length
//
// Returns:
//   - ViewportBuilderOption: option function to apply
func WithFrameDuration(seconds float32) ViewportBuilderOption {
	return func(v *viewport) {
		if seconds >= 0 {
			v.frameDuration = seconds
		}
	}
}

// WithControllerOptions passes navigation options to the camera controller.
//
// Parameters:
//   - options: the controller options
//
// Returns:
//   - ViewportBuilderOption: option function to apply
func WithControllerOptions(options ...camera.CameraControllerOption) ViewportBuilderOption {
	return func(v *viewport) {
		v.controllerOptions = append(v.controllerOptions, options...)
	}
}

// WithScenePath sets the file Ctrl+S saves to.
//
// Parameters:
//   - path: the scene file
//
// Returns:
//   - ViewportBuilderOption: option function to apply
func WithScenePath(path string) ViewportBuilderOption {
	return func(v *viewport) {
		v.scenePath = path
	}
}

// WithReloadHook registers a function offered every resource key evicted by a file change before
// the scene rebinds its meshes. Returning true marks the key as handled.
//
// Parameters:
//   - fn: the hook
//
// Returns:
//   - ViewportBuilderOption: option function to apply
func WithReloadHook(fn func(key string) bool) ViewportBuilderOption {
	return func(v *viewport) {
		v.reloadHook = fn
	}
}
