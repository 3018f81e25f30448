package common

import "github.com/chewxy/math32"

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a combined projection * view matrix using the
// Gribb/Hartmann method. The near plane assumes WebGPU clip depth [0, 1].
//
// Parameters:
//   - viewProj: the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj Mat4) Frustum {
	row := func(i int) Vec4 {
		return Vec4{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	neg := func(v Vec4) Vec4 { return v.Scale(-1) }

	planes := [6]Vec4{
		r3.Add(r0),
		r3.Add(neg(r0)),
		r3.Add(r1),
		r3.Add(neg(r1)),
		r2,
		r3.Add(neg(r2)),
	}

	var f Frustum
	for i, p := range planes {
		f.Planes[i] = Plane{Normal: p.Vec3(), Distance: p[3]}
		f.normalizePlane(i)
	}
	return f
}

func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := p.Normal.Length()
	if length > 0 {
		inv := 1 / length
		p.Normal = p.Normal.Scale(inv)
		p.Distance *= inv
	}
}

// IntersectsAABB reports whether the axis-aligned box (min, max) is at least partially inside the frustum.
// The test is conservative: boxes near frustum corners may be reported as visible.
func (f Frustum) IntersectsAABB(minV, maxV Vec3) bool {
	for _, p := range f.Planes {
		// positive vertex: the box corner furthest along the plane normal
		var pv Vec3
		for i := 0; i < 3; i++ {
			if p.Normal[i] >= 0 {
				pv[i] = maxV[i]
			} else {
				pv[i] = minV[i]
			}
		}
		if p.Normal.Dot(pv)+p.Distance < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p lies inside all six planes.
func (f Frustum) ContainsPoint(p Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Normal.Dot(p)+pl.Distance < -math32.SmallestNonzeroFloat32 {
			return false
		}
	}
	return true
}
