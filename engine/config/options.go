package config

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/camera"
	"github.com/Carmen-Shannon/oxy-editor/engine/ray"
	"github.com/Carmen-Shannon/oxy-editor/engine/renderer"
	"github.com/Carmen-Shannon/oxy-editor/engine/viewport"
	"github.com/Carmen-Shannon/oxy-editor/engine/window"
)

// Easing returns the configured camera easing, EaseInOut for unknown names.
func (s EngineSettings) Easing() camera.Easing {
	if e, ok := camera.EasingByName(s.Camera.Easing); ok {
		return e
	}
	return camera.EaseInOut
}

// Projection returns the configured projection backend.
func (s EngineSettings) Projection() camera.Projection {
	if s.Camera.Projection == ProjectionOrthographic {
		return camera.NewOrthographic()
	}
	p := camera.NewPerspective()
	if s.Camera.FieldOfView > 0 {
		p.FovY = common.Radians(s.Camera.FieldOfView)
	}
	return p
}

// PickCull returns the face culling mode used for picking rays.
func (s EngineSettings) PickCull() ray.CullMode {
	return ray.ParseCullMode(s.Picking.Cull)
}

// CameraOptions translates the camera settings into camera builder options.
func (s EngineSettings) CameraOptions() []camera.CameraBuilderOption {
	return []camera.CameraBuilderOption{
		camera.WithProjection(s.Projection()),
		camera.WithDistanceLimits(s.Camera.MinDistance, s.Camera.MaxDistance),
		camera.WithEasing(s.Easing()),
		camera.WithAspect(float32(s.Window.Width) / float32(max(s.Window.Height, 1))),
	}
}

// ControllerOptions translates the navigation settings into camera controller options.
func (s EngineSettings) ControllerOptions() []camera.CameraControllerOption {
	return []camera.CameraControllerOption{
		camera.WithOrbitSpeed(s.Camera.OrbitSpeed),
		camera.WithPanSpeed(s.Camera.PanSpeed),
		camera.WithZoomSpeed(s.Camera.ZoomSpeed),
		camera.WithMouseClampDelta(s.Camera.MouseClampDelta),
	}
}

// RendererOptions translates the renderer settings into renderer builder options. The shader file,
// when set, is resolved against the workspace.
func (s EngineSettings) RendererOptions() ([]renderer.RendererBuilderOption, error) {
	mode := renderer.PresentModeUncapped
	if s.Renderer.VSync {
		mode = renderer.PresentModeVSync
	}
	opts := []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(renderer.MSAASampleCount(s.Renderer.MSAA)),
		renderer.WithClearColor(s.Renderer.ClearColor),
		renderer.WithSelectionTint(s.Renderer.SelectionTint),
	}
	if s.Renderer.ShaderFile != "" {
		path, err := s.ResolvePath(s.Renderer.ShaderFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, renderer.WithShaderFile(path))
	}
	return opts, nil
}

// ViewportOptions translates the picking and animation settings, plus ControllerOptions, into
// viewport builder options.
func (s EngineSettings) ViewportOptions() []viewport.ViewportBuilderOption {
	return []viewport.ViewportBuilderOption{
		viewport.WithPickCull(s.PickCull()),
		viewport.WithFrameDuration(s.Camera.AnimationDuration),
		viewport.WithControllerOptions(s.ControllerOptions()...),
	}
}

// WindowOptions translates the window settings into window builder options.
func (s EngineSettings) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(s.Window.Title),
		window.WithSize(s.Window.Width, s.Window.Height),
	}
}
