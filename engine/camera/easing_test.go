package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasingEndpoints(t *testing.T) {
	names := EasingNames()
	require.Len(t, names, len(easingsByName))
	for _, name := range names {
		e, ok := EasingByName(name)
		require.True(t, ok, name)
		assert.InDelta(t, 0, e(0), 1e-5, "%s(0)", name)
		assert.InDelta(t, 1, e(1), 1e-5, "%s(1)", name)
	}
}

func TestEasingMidpoints(t *testing.T) {
	tests := []struct {
		name string
		e    Easing
		want float32
	}{
		{"linear", Linear, 0.5},
		{"ease-in", EaseIn, 0.25},
		{"ease-out", EaseOut, 0.75},
		{"ease-in-out", EaseInOut, 0.5},
		{"in-out-cubic", InOutCubic, 0.5},
		{"in-out-sine", InOutSine, 0.5},
		{"in-cubic", InCubic, 0.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.e(0.5), 1e-5)
		})
	}
}

func TestEasingOvershoot(t *testing.T) {
	assert.Less(t, InBack(0.2), float32(0), "back easing pulls back before moving")
	assert.Greater(t, OutBack(0.8), float32(1), "back easing overshoots the end")
}

func TestEasingByName(t *testing.T) {
	e, ok := EasingByName(" In-Out-Cubic ")
	require.True(t, ok)
	assert.InDelta(t, InOutCubic(0.3), e(0.3), 1e-7)

	_, ok = EasingByName("wobble")
	assert.False(t, ok)
}
