package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	stateA = State{Target: common.Vec3{0, 0, 0}, Distance: 3, Azimuth: 0, Elevation: 0}
	stateB = State{Target: common.Vec3{2, 4, -6}, Distance: 9, Azimuth: 1, Elevation: 0.5}
)

func assertStrictlyBetween(t *testing.T, a, b, got State) {
	t.Helper()
	between := func(lo, hi, v float32) bool {
		if lo > hi {
			lo, hi = hi, lo
		}
		return v > lo && v < hi
	}
	for i := 0; i < 3; i++ {
		assert.True(t, between(a.Target[i], b.Target[i], got.Target[i]), "target[%d] = %v", i, got.Target[i])
	}
	assert.True(t, between(a.Distance, b.Distance, got.Distance), "distance = %v", got.Distance)
	assert.True(t, between(a.Azimuth, b.Azimuth, got.Azimuth), "azimuth = %v", got.Azimuth)
	assert.True(t, between(a.Elevation, b.Elevation, got.Elevation), "elevation = %v", got.Elevation)
}

func TestAnimatorEndpoints(t *testing.T) {
	var a Animator
	require.False(t, a.Active())

	require.True(t, a.Start(stateA, stateB, 1, EaseInOut))
	assert.Equal(t, stateA, a.Sample(), "progress 0 yields the start state")

	mid, done := a.Advance(0.5)
	assert.False(t, done)
	assertStrictlyBetween(t, stateA, stateB, mid)

	end, done := a.Advance(0.5)
	assert.True(t, done)
	assert.Equal(t, stateB, end, "the end state is applied exactly")
	assert.False(t, a.Active())

	again, done := a.Advance(1)
	assert.False(t, done)
	assert.Equal(t, stateB, again)
}

func TestAnimatorOvershootLandsOnEnd(t *testing.T) {
	var a Animator
	a.Start(stateA, stateB, 0.3, OutElastic)
	s, done := a.Advance(5)
	assert.True(t, done)
	assert.Equal(t, stateB, s)
}

func TestAnimatorDurations(t *testing.T) {
	var a Animator
	assert.False(t, a.Start(stateA, stateB, 0, nil), "zero duration completes immediately")
	assert.False(t, a.Active())
	assert.Equal(t, stateB, a.Goal())

	require.True(t, a.Start(stateA, stateB, 0.01, Linear))
	_, done := a.Advance(0.06)
	assert.False(t, done, "short durations are raised to the minimum")
	_, done = a.Advance(0.06)
	assert.True(t, done)

	require.True(t, a.Start(stateA, stateB, -1, Linear))
	_, done = a.Advance(0.06)
	assert.False(t, done)
}

func TestAnimatorCancel(t *testing.T) {
	var a Animator
	a.Start(stateA, stateB, 1, Linear)
	a.Advance(0.25)
	a.Cancel()
	assert.False(t, a.Active())
	_, done := a.Advance(1)
	assert.False(t, done)
}

func TestStateLerp(t *testing.T) {
	assert.Equal(t, stateA, stateA.Lerp(stateB, 0))
	assert.Equal(t, stateB, stateA.Lerp(stateB, 1))

	half := stateA.Lerp(stateB, 0.5)
	assert.Equal(t, State{Target: common.Vec3{1, 2, -3}, Distance: 6, Azimuth: 0.5, Elevation: 0.25}, half)
}

func TestStatePosition(t *testing.T) {
	assert.True(t, DefaultState.Position().ApproxEqual(common.Vec3{0, 0, 3}, 1e-6))

	side := State{Target: common.Vec3{1, 0, 0}, Distance: 2, Azimuth: common.Radians(90)}
	assert.True(t, side.Position().ApproxEqual(common.Vec3{3, 0, 0}, 1e-5))

	above := State{Distance: 2, Elevation: common.Radians(90)}
	assert.True(t, above.Position().ApproxEqual(common.Vec3{0, 2, 0}, 1e-5))
}
