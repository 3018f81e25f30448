package camera

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/chewxy/math32"
)

// State is the orbit pose of a camera: a target point and the spherical offset of the eye from it.
// Azimuth rotates around world Y and Elevation tilts above the horizontal plane, both in radians.
// The zero angles place the eye on +Z looking down -Z.
type State struct {
	Target    common.Vec3 `toml:"target" yaml:"target"`
	Distance  float32     `toml:"distance" yaml:"distance"`
	Azimuth   float32     `toml:"azimuth" yaml:"azimuth"`
	Elevation float32     `toml:"elevation" yaml:"elevation"`
}

// DefaultState looks at the origin from three units down +Z.
var DefaultState = State{Distance: 3}

// Position returns the eye position derived from the spherical coordinates.
func (s State) Position() common.Vec3 {
	sinA, cosA := math32.Sincos(s.Azimuth)
	sinE, cosE := math32.Sincos(s.Elevation)
	return s.Target.Add(common.Vec3{cosE * sinA, sinE, cosE * cosA}.Scale(s.Distance))
}

// Lerp interpolates every field of s toward o. t <= 0 returns s and t >= 1 returns o unchanged.
func (s State) Lerp(o State, t float32) State {
	if t <= 0 {
		return s
	}
	if t >= 1 {
		return o
	}
	return State{
		Target:    s.Target.Lerp(o.Target, t),
		Distance:  lerp(s.Distance, o.Distance, t),
		Azimuth:   lerp(s.Azimuth, o.Azimuth, t),
		Elevation: lerp(s.Elevation, o.Elevation, t),
	}
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
