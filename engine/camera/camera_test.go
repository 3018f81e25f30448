package camera

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var screen = Viewport{Width: 800, Height: 600}

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.True(t, c.Position().ApproxEqual(common.Vec3{0, 0, 3}, 1e-6))
	assert.True(t, c.Forward().ApproxEqual(common.Vec3{0, 0, -1}, 1e-6))
	assert.True(t, c.Right().ApproxEqual(common.Vec3{1, 0, 0}, 1e-6))
	assert.Equal(t, common.Vec3{0, 1, 0}, c.Up())
	assert.True(t, c.IsInputEnabled())
	assert.False(t, c.IsAnimating())
	assert.IsType(t, Perspective{}, c.ProjectionMode())

	eye := c.View().TransformPoint(c.Position())
	assert.True(t, eye.ApproxEqual(common.Vec3{}, 1e-5), "the eye sits at the view-space origin")
	assert.True(t, c.ViewProjection().ApproxEqual(c.Projection().Mul(c.View()), 1e-6))
}

func TestCameraAnimationEndpoints(t *testing.T) {
	c := NewCamera(WithState(stateA))
	completed := 0
	c.AnimateTo(stateB, 2, Linear, func() { completed++ })

	require.True(t, c.IsAnimating())
	assert.Equal(t, stateA, c.State())

	c.Update(1)
	assertStrictlyBetween(t, stateA, stateB, c.State())
	assert.Equal(t, 0, completed)

	c.Update(1)
	assert.Equal(t, stateB, c.State())
	assert.False(t, c.IsAnimating())
	assert.Equal(t, 1, completed)
	assert.True(t, c.Position().ApproxEqual(stateB.Position(), 1e-6))

	c.Update(1)
	assert.Equal(t, 1, completed, "completion fires once")
}

func TestCameraZeroDurationSnaps(t *testing.T) {
	c := NewCamera(WithState(stateA))
	completed := false
	c.AnimateTo(stateB, 0, nil, func() { completed = true })
	assert.False(t, c.IsAnimating())
	assert.True(t, completed)
	assert.Equal(t, stateB, c.State())
}

func TestNavigationCancelsAnimation(t *testing.T) {
	nav := map[string]func(Camera){
		"pan":   func(c Camera) { c.Pan(0, 0) },
		"orbit": func(c Camera) { c.Orbit(0, 0) },
		"zoom":  func(c Camera) { c.Zoom(0) },
	}
	for name, move := range nav {
		t.Run(name, func(t *testing.T) {
			c := NewCamera(WithState(stateA))
			called := false
			c.AnimateTo(stateB, 1, Linear, func() { called = true })
			c.Update(0.5)
			mid := c.State()

			move(c)
			assert.False(t, c.IsAnimating())
			assert.Equal(t, mid, c.State(), "input keeps the interpolated pose")

			c.Update(1)
			assert.Equal(t, mid, c.State())
			assert.False(t, called, "a cancelled animation never completes")
		})
	}
}

func TestCancelAnimation(t *testing.T) {
	c := NewCamera(WithState(stateA))
	c.AnimateTo(stateB, 1, nil, nil)
	c.Update(0.25)
	mid := c.State()
	c.CancelAnimation()
	c.Update(1)
	assert.Equal(t, mid, c.State())
}

func TestAnimateToClampsGoal(t *testing.T) {
	c := NewCamera(WithDistanceLimits(10, 1))
	c.AnimateTo(State{Distance: 50, Elevation: 3}, 0, nil, nil)
	s := c.State()
	assert.Equal(t, float32(10), s.Distance)
	assert.Equal(t, maxElevation, s.Elevation)
}

func TestOrbitClampsElevation(t *testing.T) {
	c := NewCamera()
	c.Orbit(0.25, 10)
	assert.Equal(t, maxElevation, c.State().Elevation)
	assert.InDelta(t, 0.25, c.State().Azimuth, 1e-6)

	c.Orbit(0, -20)
	assert.Equal(t, -maxElevation, c.State().Elevation)
}

func TestZoomClampsDistance(t *testing.T) {
	c := NewCamera()
	c.Zoom(1)
	assert.InDelta(t, 2, c.Distance(), 1e-6)
	c.Zoom(1000)
	assert.Equal(t, float32(0.5), c.Distance())
	c.Zoom(-1000)
	assert.Equal(t, float32(100), c.Distance())
}

func TestPanMovesTargetAndEye(t *testing.T) {
	c := NewCamera()
	c.Pan(1, 2)
	assert.True(t, c.Target().ApproxEqual(common.Vec3{1, 2, 0}, 1e-6))
	assert.True(t, c.Position().ApproxEqual(common.Vec3{1, 2, 3}, 1e-6))
	assert.InDelta(t, 3, c.Distance(), 1e-6)
}

func TestFocusAndFrame(t *testing.T) {
	c := NewCamera()
	c.FocusOn(common.Vec3{1, 2, 3}, 0, 0)
	assert.Equal(t, common.Vec3{1, 2, 3}, c.Target())
	assert.Equal(t, float32(3), c.Distance())

	c.FrameBounds(common.Vec3{-1, -1, -1}, common.Vec3{1, 1, 1}, 0)
	assert.True(t, c.Target().ApproxEqual(common.Vec3{}, 1e-6))
	// sqrt(3) / sin(22.5deg) * 1.2
	assert.InDelta(t, 5.4311, c.Distance(), 1e-3)

	c.FrameBounds(common.Vec3{4, 4, 4}, common.Vec3{4, 4, 4}, 1)
	require.True(t, c.IsAnimating())
	c.Update(1)
	assert.Equal(t, common.Vec3{4, 4, 4}, c.Target())
	assert.InDelta(t, 5.4311, c.Distance(), 1e-3, "a point keeps the current distance")
}

func TestIsMouseInViewport(t *testing.T) {
	c := NewCamera()
	vp := Viewport{X: 10, Y: 20, Width: 100, Height: 50}
	assert.True(t, c.IsMouseInViewport(10, 20, vp))
	assert.True(t, c.IsMouseInViewport(60, 40, vp))
	assert.True(t, c.IsMouseInViewport(110, 70, vp))
	assert.False(t, c.IsMouseInViewport(9, 20, vp))
	assert.False(t, c.IsMouseInViewport(50, 71, vp))
}

func TestScreenToWorldRayPerspective(t *testing.T) {
	c := NewCamera(WithAspect(screen.Aspect()))

	center, err := c.ScreenToWorldRay(400, 300, screen)
	require.NoError(t, err)
	assert.True(t, center.Direction.ApproxEqual(common.Vec3{0, 0, -1}, 1e-4), "%v", center.Direction)
	assert.True(t, center.Origin.ApproxEqual(common.Vec3{0, 0, 2.9}, 1e-3), "%v", center.Origin)

	hit, dist := center.IntersectSphere(common.Vec3{}, 0.5)
	require.True(t, hit)
	assert.InDelta(t, 2.4, dist, 1e-2)

	// the right edge is tan(22.5deg) * 4/3 off axis
	edge, err := c.ScreenToWorldRay(800, 300, screen)
	require.NoError(t, err)
	assert.InDelta(t, 0.4834, edge.Direction[0], 1e-3)
	assert.InDelta(t, 0, edge.Direction[1], 1e-4)
}

func TestScreenToWorldRayOrthographic(t *testing.T) {
	c := NewCamera(WithAspect(screen.Aspect()), WithProjection(NewOrthographic()))

	center, err := c.ScreenToWorldRay(400, 300, screen)
	require.NoError(t, err)
	assert.True(t, center.Direction.ApproxEqual(common.Vec3{0, 0, -1}, 1e-4))

	// half height 5 * 3 / 10, half width scaled by 4/3
	edge, err := c.ScreenToWorldRay(800, 300, screen)
	require.NoError(t, err)
	assert.True(t, edge.Direction.ApproxEqual(common.Vec3{0, 0, -1}, 1e-4), "orthographic rays are parallel")
	assert.InDelta(t, 2, edge.Origin[0], 1e-3)
	assert.InDelta(t, 2.99, edge.Origin[2], 1e-3)

	top, err := c.ScreenToWorldRay(400, 0, screen)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, top.Origin[1], 1e-3)
}

func TestScreenToWorldRayOffsetViewport(t *testing.T) {
	c := NewCamera()
	vp := Viewport{X: 200, Y: 100, Width: 300, Height: 300}
	r, err := c.ScreenToWorldRay(350, 250, vp)
	require.NoError(t, err)
	assert.True(t, r.Direction.ApproxEqual(common.Vec3{0, 0, -1}, 1e-4))
}

func TestScreenToWorldRayEmptyViewport(t *testing.T) {
	c := NewCamera()
	_, err := c.ScreenToWorldRay(0, 0, Viewport{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrContractViolation))
}

func TestSetProjectionModeKeepsPose(t *testing.T) {
	c := NewCamera(WithState(stateB))
	c.SetProjectionMode(NewOrthographic())
	assert.IsType(t, Orthographic{}, c.ProjectionMode())
	assert.Equal(t, stateB, c.State())

	c.SetProjectionMode(nil)
	assert.IsType(t, Orthographic{}, c.ProjectionMode())
}

func TestSetAspectIgnoresInvalid(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.SetAspect(0)
	c.SetAspect(-1)
	assert.Equal(t, float32(2), c.Aspect())
}
