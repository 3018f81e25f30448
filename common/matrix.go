package common

import "github.com/chewxy/math32"

// Mat4 is a 4x4 float32 matrix stored in column-major order, element (row, col) at index col*4+row.
// The layout matches WGSL mat4x4<f32> so a Mat4 can be uploaded to a uniform buffer as-is.
type Mat4 [16]float32

// Ident4 returns the identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a matrix translating by t.
func Translation(t Vec3) Mat4 {
	m := Ident4()
	m[12], m[13], m[14] = t[0], t[1], t[2]
	return m
}

// Scaling returns a matrix scaling by s.
func Scaling(s Vec3) Mat4 {
	m := Ident4()
	m[0], m[5], m[10] = s[0], s[1], s[2]
	return m
}

// At returns the element at the given row and column.
func (m Mat4) At(row, col int) float32 { return m[col*4+row] }

// Col returns column i of m.
func (m Mat4) Col(i int) Vec4 { return Vec4{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]} }

// Mul returns m * o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	Mul4(out[:], m[:], o[:])
	return out
}

// Transpose returns the transpose of m.
func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[r*4+c] = m[c*4+r]
		}
	}
	return out
}

// Determinant returns the determinant of m.
func (m Mat4) Determinant() float32 {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	return s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
}

// Inverse returns the inverse of m and true. A singular matrix yields the identity and false,
// so callers that ignore the flag still get a well-defined transform.
func (m Mat4) Inverse() (Mat4, bool) {
	var out Mat4
	if !Invert4(out[:], m[:]) {
		return Ident4(), false
	}
	return out, true
}

// TransformPoint transforms p as a point (w = 1). When the resulting w is neither 0 nor 1 the result
// is divided by w, which makes the method usable for projection matrices.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12]
	y := m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13]
	z := m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
	w := m[3]*p[0] + m[7]*p[1] + m[11]*p[2] + m[15]
	if w != 0 && w != 1 {
		inv := 1 / w
		return Vec3{x * inv, y * inv, z * inv}
	}
	return Vec3{x, y, z}
}

// TransformVector transforms v as a direction (w = 0); translation is ignored.
func (m Mat4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2],
	}
}

// TransformVec4 multiplies m by the homogeneous vector v.
func (m Mat4) TransformVec4(v Vec4) Vec4 {
	var out Vec4
	for r := 0; r < 4; r++ {
		out[r] = m[r]*v[0] + m[4+r]*v[1] + m[8+r]*v[2] + m[12+r]*v[3]
	}
	return out
}

// ApproxEqual reports whether every element of m is within eps of o.
func (m Mat4) ApproxEqual(o Mat4, eps float32) bool {
	for i := range m {
		if math32.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// TransformAABB returns the axis-aligned bounds of the box (min, max) after transformation by m.
func (m Mat4) TransformAABB(minV, maxV Vec3) (Vec3, Vec3) {
	lo := Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	hi := lo.Negate()
	for i := 0; i < 8; i++ {
		c := Vec3{minV[0], minV[1], minV[2]}
		if i&1 != 0 {
			c[0] = maxV[0]
		}
		if i&2 != 0 {
			c[1] = maxV[1]
		}
		if i&4 != 0 {
			c[2] = maxV[2]
		}
		p := m.TransformPoint(c)
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}
