package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, options ...CameraControllerOption) (Camera, CameraController) {
	t.Helper()
	cam := NewCamera()
	options = append([]CameraControllerOption{WithViewport(screen)}, options...)
	return cam, NewCameraController(cam, options...)
}

func TestControllerSetsAspect(t *testing.T) {
	cam, cc := newController(t)
	assert.InDelta(t, 800.0/600.0, cam.Aspect(), 1e-6)

	cc.SetViewport(Viewport{Width: 200, Height: 400})
	assert.InDelta(t, 0.5, cam.Aspect(), 1e-6)
}

func TestControllerOrbitDrag(t *testing.T) {
	cam, cc := newController(t)
	cc.MouseDown(common.MouseButtonMiddle, 400, 300)
	require.True(t, cc.IsNavigating())

	cc.MouseMove(410, 300)
	assert.InDelta(t, -10*common.Radians(0.3), cam.State().Azimuth, 1e-5)
	assert.InDelta(t, 0, cam.State().Elevation, 1e-6)

	cc.MouseUp(common.MouseButtonMiddle, 410, 300)
	assert.False(t, cc.IsNavigating())
	before := cam.State()
	cc.MouseMove(500, 500)
	assert.Equal(t, before, cam.State())
}

func TestControllerPanClampsDelta(t *testing.T) {
	cam, cc := newController(t)
	cc.KeyDown(common.KeyLeftShift)
	cc.MouseDown(common.MouseButtonMiddle, 100, 100)

	cc.MouseMove(110, 100)
	assert.InDelta(t, -0.06, cam.Target()[0], 1e-5)

	cc.MouseMove(200, 100)
	assert.InDelta(t, -0.06-0.132, cam.Target()[0], 1e-5, "a 90 pixel jump moves like 22 pixels")
	assert.InDelta(t, 0, cam.State().Azimuth, 1e-6, "shift drag does not orbit")

	cc.KeyUp(common.KeyLeftShift)
	cc.MouseMove(210, 100)
	assert.NotEqual(t, float32(0), cam.State().Azimuth)
}

func TestControllerDolly(t *testing.T) {
	cam, cc := newController(t)
	cc.KeyDown(common.KeyRightControl)
	cc.MouseDown(common.MouseButtonMiddle, 100, 100)
	cc.MouseMove(100, 90)
	// -dy * 0.05 steps * 0.1 * distance
	assert.InDelta(t, 3-10*0.05*0.1*3, cam.Distance(), 1e-5)
}

func TestControllerScrollNeedsViewport(t *testing.T) {
	cam, cc := newController(t)
	cc.MouseMove(400, 300)
	cc.Scroll(1)
	assert.InDelta(t, 2.7, cam.Distance(), 1e-5)

	cc.MouseMove(900, 300)
	cc.Scroll(1)
	assert.InDelta(t, 2.7, cam.Distance(), 1e-5, "scrolling outside the viewport is ignored")
}

func TestControllerIgnoresDragOutsideViewport(t *testing.T) {
	cam, cc := newController(t)
	cc.MouseDown(common.MouseButtonMiddle, 900, 100)
	assert.False(t, cc.IsNavigating())
	cc.MouseMove(920, 100)
	assert.Equal(t, DefaultState, cam.State())

	cc.MouseDown(common.MouseButtonLeft, 400, 300)
	assert.False(t, cc.IsNavigating(), "only the middle button navigates")
}

func TestControllerRespectsInputEnabled(t *testing.T) {
	cam, cc := newController(t)
	cam.SetInputEnabled(false)
	cc.MouseDown(common.MouseButtonMiddle, 400, 300)
	assert.False(t, cc.IsNavigating())
	cc.Scroll(1)
	assert.Equal(t, DefaultState, cam.State())

	cam.SetInputEnabled(true)
	cc.MouseDown(common.MouseButtonMiddle, 400, 300)
	cam.SetInputEnabled(false)
	cc.MouseMove(420, 320)
	assert.Equal(t, DefaultState, cam.State(), "disabling input mid-drag freezes the camera")
}

func TestControllerDragCancelsAnimation(t *testing.T) {
	cam, cc := newController(t)
	cam.AnimateTo(stateB, 1, nil, nil)
	cam.Update(0.2)
	require.True(t, cam.IsAnimating())

	cc.MouseDown(common.MouseButtonMiddle, 400, 300)
	cc.MouseMove(401, 300)
	assert.False(t, cam.IsAnimating())
}

func TestControllerFrameSelected(t *testing.T) {
	framed := 0
	_, cc := newController(t, WithFrameSelected(func() { framed++ }))

	cc.MouseMove(400, 300)
	cc.KeyDown(common.KeyF)
	assert.Equal(t, 1, framed)

	cc.MouseMove(-5, 300)
	cc.KeyDown(common.KeyF)
	assert.Equal(t, 1, framed, "F outside the viewport does nothing")

	x, y := cc.Cursor()
	assert.Equal(t, float32(-5), x)
	assert.Equal(t, float32(300), y)
}
