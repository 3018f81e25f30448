package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/camera"
	"github.com/Carmen-Shannon/oxy-editor/engine/ray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, float32(0.3), s.Camera.OrbitSpeed)
	assert.Equal(t, float32(0.002), s.Camera.PanSpeed)
	assert.Equal(t, float32(22), s.Camera.MouseClampDelta)
	assert.Equal(t, common.Vec4{0.1, 0.1, 0.1, 1}, s.Renderer.ClearColor)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")
	want := Default()
	want.Camera.OrbitSpeed = 0.75
	want.Camera.Projection = ProjectionOrthographic
	want.Renderer.ClearColor = common.Vec4{0.2, 0.3, 0.4, 1}
	want.Renderer.VSync = false
	want.Workspace = "/srv/assets"

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeSettings(t, `
[camera]
orbit_speed = 0.5
easing = "out-cubic"

[renderer]
clear_color = [0.0, 0.0, 0.0, 1.0]
`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), s.Camera.OrbitSpeed)
	assert.Equal(t, "out-cubic", s.Camera.Easing)
	assert.Equal(t, common.Vec4{0, 0, 0, 1}, s.Renderer.ClearColor)
	assert.Equal(t, Default().Camera.PanSpeed, s.Camera.PanSpeed)
	assert.Equal(t, Default().Window, s.Window)
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := writeSettings(t, `
theme = "dark"

[camera]
zoom_speed = 2.0
`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(2), s.Camera.ZoomSpeed)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeSettings(t, "[camera\norbit_speed = ")
	s, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := writeSettings(t, `
[renderer]
msaa = 8
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, common.ErrContractViolation)
}

func TestSanitize(t *testing.T) {
	s := Default()
	s.Camera.MinDistance = 10
	s.Camera.MaxDistance = 5
	s.Camera.Easing = ""
	s.Window.Title = ""
	s.Sanitize()
	assert.Equal(t, float32(10), s.Camera.MaxDistance)
	assert.Equal(t, "ease-in-out", s.Camera.Easing)
	assert.Equal(t, "Oxy Editor", s.Window.Title)
	assert.NoError(t, s.Validate())
}

func TestValidateReportsEveryField(t *testing.T) {
	s := Default()
	s.Window.Width = 0
	s.Camera.Easing = "wobble"
	s.Picking.Cull = "sideways"

	err := s.Validate()
	require.ErrorIs(t, err, common.ErrContractViolation)
	assert.ErrorContains(t, err, "window size")
	assert.ErrorContains(t, err, `"wobble"`)
	assert.ErrorContains(t, err, `"sideways"`)
}

func TestResolvePath(t *testing.T) {
	s := Default()
	s.Workspace = "/srv/assets"

	got, err := s.ResolvePath("models/cube.obj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/assets", "models", "cube.obj"), got)

	got, err = s.ResolvePath("/tmp/../tmp/a.stl")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.stl", got)
}

func TestWorkspaceDirDefaultsToWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir, err := Default().WorkspaceDir()
	require.NoError(t, err)
	assert.Equal(t, wd, dir)
}

func TestProjectionAndEasing(t *testing.T) {
	s := Default()
	s.Camera.FieldOfView = 60
	p, ok := s.Projection().(camera.Perspective)
	require.True(t, ok)
	assert.InDelta(t, common.Radians(60), p.FovY, 1e-6)

	s.Camera.Projection = ProjectionOrthographic
	_, ok = s.Projection().(camera.Orthographic)
	assert.True(t, ok)

	s.Camera.Easing = "linear"
	assert.Equal(t, float32(0.25), s.Easing()(0.25))
	s.Camera.Easing = "nope"
	assert.Equal(t, camera.EaseInOut(0.25), s.Easing()(0.25))
}

func TestPickCull(t *testing.T) {
	s := Default()
	assert.Equal(t, ray.CullNone, s.PickCull())
	s.Picking.Cull = "back"
	assert.Equal(t, ray.CullBack, s.PickCull())
}

func TestOptionsApply(t *testing.T) {
	s := Default()
	s.Camera.MinDistance = 2
	s.Camera.MaxDistance = 4

	cam := camera.NewCamera(s.CameraOptions()...)
	cam.Zoom(100)
	assert.Equal(t, float32(2), cam.Distance())
	assert.InDelta(t, 1280.0/720.0, cam.Aspect(), 1e-6)

	opts, err := s.RendererOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	s.Renderer.ShaderFile = "/tmp/flat.wgsl"
	opts, err = s.RendererOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 5)

	assert.Len(t, s.ControllerOptions(), 4)
	assert.Len(t, s.ViewportOptions(), 3)
	assert.Len(t, s.WindowOptions(), 2)
}
