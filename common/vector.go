package common

import "github.com/chewxy/math32"

// Epsilon is the default tolerance used for approximate float comparisons.
const Epsilon float32 = 1e-6

// Vec2 is a two component float32 vector (texture coordinates, viewport positions).
type Vec2 [2]float32

// Vec3 is a three component float32 vector used for positions, directions and scales.
type Vec3 [3]float32

// Vec4 is a four component float32 vector used for homogeneous points and RGBA colors.
type Vec4 [4]float32

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v[0] + o[0], v[1] + o[1]} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v[0] - o[0], v[1] - o[1]} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v[0] * s, v[1] * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float32 { return v[0]*o[0] + v[1]*o[1] }

// Length returns the euclidean length of v.
func (v Vec2) Length() float32 { return math32.Sqrt(v.Dot(v)) }

// Vec3Splat returns a Vec3 with every component set to s.
func Vec3Splat(s float32) Vec3 { return Vec3{s, s, s} }

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

// Mul returns the componentwise product of v and o.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]} }

// Negate returns -v.
func (v Vec3) Negate() Vec3 { return Vec3{-v[0], -v[1], -v[2]} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }

// Cross returns the right-handed cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// LengthSq returns the squared length of v.
func (v Vec3) LengthSq() float32 { return v.Dot(v) }

// Length returns the euclidean length of v.
func (v Vec3) Length() float32 { return math32.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length.
// A zero-length vector normalizes to the zero vector; callers that need a direction must check for it.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// IsZero reports whether every component of v is exactly zero.
func (v Vec3) IsZero() bool { return v == Vec3{} }

// Lerp linearly interpolates between v and o by t. At t == 1 the result is exactly o.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	if t >= 1 {
		return o
	}
	if t <= 0 {
		return v
	}
	return Vec3{
		v[0] + (o[0]-v[0])*t,
		v[1] + (o[1]-v[1])*t,
		v[2] + (o[2]-v[2])*t,
	}
}

// Min returns the componentwise minimum of v and o.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{math32.Min(v[0], o[0]), math32.Min(v[1], o[1]), math32.Min(v[2], o[2])}
}

// Max returns the componentwise maximum of v and o.
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{math32.Max(v[0], o[0]), math32.Max(v[1], o[1]), math32.Max(v[2], o[2])}
}

// ApproxEqual reports whether every component of v is within eps of o.
func (v Vec3) ApproxEqual(o Vec3, eps float32) bool {
	for i := range v {
		if math32.Abs(v[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// Vec4 returns v extended with the given w component.
func (v Vec3) Vec4(w float32) Vec4 { return Vec4{v[0], v[1], v[2], w} }

// Add returns v + o.
func (v Vec4) Add(o Vec4) Vec4 { return Vec4{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]} }

// Scale returns v * s.
func (v Vec4) Scale(s float32) Vec4 { return Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s} }

// Dot returns the dot product of v and o.
func (v Vec4) Dot(o Vec4) float32 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] + v[3]*o[3] }

// Vec3 drops the w component of v.
func (v Vec4) Vec3() Vec3 { return Vec3{v[0], v[1], v[2]} }
