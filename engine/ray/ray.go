// Package ray implements the analytic intersection tests used for viewport picking.
package ray

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/chewxy/math32"
)

// Epsilon is the tolerance of the triangle test: the determinant threshold relative to the product of
// the edge lengths, the barycentric edge slack, and the minimum accepted distance.
const Epsilon float32 = 1e-6

// CullMode selects which triangle faces IntersectTriangle accepts.
type CullMode int

const (
	// CullNone accepts hits on both faces of a triangle.
	CullNone CullMode = iota
	// CullBack rejects hits on the back face of counter-clockwise triangles.
	CullBack
	// CullFront rejects hits on the front face of counter-clockwise triangles.
	CullFront
)

// ParseCullMode maps "none", "back" and "front" to a CullMode. Unknown names map to CullNone.
func ParseCullMode(s string) CullMode {
	switch s {
	case "back":
		return CullBack
	case "front":
		return CullFront
	default:
		return CullNone
	}
}

func (c CullMode) String() string {
	switch c {
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	default:
		return "none"
	}
}

// Ray is an origin and a unit direction. Cull controls triangle face acceptance and defaults to CullNone.
type Ray struct {
	Origin    common.Vec3
	Direction common.Vec3
	Cull      CullMode
}

// New returns a Ray with a normalized direction.
//
// Parameters:
//   - origin: the ray origin
//   - direction: the ray direction, any non-zero length
//
// Returns:
//   - Ray: the ray
//   - error: a contract violation when direction has zero length
func New(origin, direction common.Vec3) (Ray, error) {
	d := direction.Normalize()
	if d.IsZero() || math32.IsNaN(d[0]) {
		return Ray{}, common.ContractError("ray.New", "direction %v has zero length", direction)
	}
	return Ray{Origin: origin, Direction: d}, nil
}

// MustNew is like New but panics on a zero-length direction.
func MustNew(origin, direction common.Vec3) Ray {
	r, err := New(origin, direction)
	if err != nil {
		panic(err)
	}
	return r
}

// WithCull returns a copy of r using the given cull mode.
func (r Ray) WithCull(c CullMode) Ray {
	r.Cull = c
	return r
}

// Point returns the position at distance t along the ray.
func (r Ray) Point(t float32) common.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Transform returns the ray mapped through m. The direction is renormalized, so distances along the
// returned ray are measured in the target space.
func (r Ray) Transform(m common.Mat4) Ray {
	return Ray{
		Origin:    m.TransformPoint(r.Origin),
		Direction: m.TransformVector(r.Direction).Normalize(),
		Cull:      r.Cull,
	}
}

// IntersectAABB tests the ray against the axis-aligned box [minV, maxV] with the slab method.
// An axis parallel to the ray never divides: the ray misses if its origin lies outside that slab and
// is unconstrained by it otherwise. A ray starting inside the box reports the exit distance.
//
// Returns:
//   - bool: true on a hit at t >= 0
//   - float32: distance to the first intersection
func (r Ray) IntersectAABB(minV, maxV common.Vec3) (bool, float32) {
	tMin := math32.Inf(-1)
	tMax := math32.Inf(1)

	for i := 0; i < 3; i++ {
		if r.Direction[i] == 0 {
			if r.Origin[i] < minV[i] || r.Origin[i] > maxV[i] {
				return false, 0
			}
			continue
		}
		inv := 1 / r.Direction[i]
		t1 := (minV[i] - r.Origin[i]) * inv
		t2 := (maxV[i] - r.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)
		if tMin > tMax {
			return false, 0
		}
	}

	if tMax < 0 {
		return false, 0
	}
	if tMin >= 0 {
		return true, tMin
	}
	return true, tMax
}

// IntersectSphere returns the smallest non-negative root of |o + t*d - c|^2 = r^2.
// A ray whose origin is inside the sphere reports the exit root. A tangent ray reports a hit.
//
// Returns:
//   - bool: true on a hit at t >= 0
//   - float32: distance to the hit
func (r Ray) IntersectSphere(center common.Vec3, radius float32) (bool, float32) {
	oc := r.Origin.Sub(center)
	// direction is unit length, so a == 1
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return false, 0
	}
	sq := math32.Sqrt(disc)
	t1 := -b - sq
	t2 := -b + sq
	if t1 >= 0 {
		return true, t1
	}
	if t2 >= 0 {
		return true, t2
	}
	return false, 0
}

// IntersectTriangle runs the Möller–Trumbore test against the triangle (v0, v1, v2).
// Counter-clockwise winding viewed from the front is the front face; r.Cull decides which faces count.
//
// Returns:
//   - bool: true on a hit at t > Epsilon
//   - float32: distance to the hit
func (r Ray) IntersectTriangle(v0, v1, v2 common.Vec3) (bool, float32) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	h := r.Direction.Cross(e2)
	det := e1.Dot(h)

	// |det| <= |e1||e2| for a unit direction; the threshold is relative to that bound.
	tol := Epsilon * e1.Length() * e2.Length()
	if tol == 0 {
		return false, 0
	}
	switch r.Cull {
	case CullBack:
		if det < tol {
			return false, 0
		}
	case CullFront:
		if det > -tol {
			return false, 0
		}
	default:
		if math32.Abs(det) < tol {
			return false, 0
		}
	}

	f := 1 / det
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < -Epsilon || u > 1+Epsilon {
		return false, 0
	}
	q := s.Cross(e1)
	v := f * r.Direction.Dot(q)
	if v < -Epsilon || u+v > 1+Epsilon {
		return false, 0
	}
	t := f * e2.Dot(q)
	if t <= Epsilon {
		return false, 0
	}
	return true, t
}

func vertexAt(vertices []float32, stride int, idx uint32) common.Vec3 {
	o := int(idx) * stride
	return common.Vec3{vertices[o], vertices[o+1], vertices[o+2]}
}

// IntersectMesh tests every triangle of an indexed mesh and returns the nearest hit regardless of
// index order. Indices are not validated; out-of-range indices are a caller error.
//
// Parameters:
//   - vertices: interleaved vertex data with the position in the first three floats of each vertex
//   - stride: floats per vertex (8 for position/normal/uv, 3 for bare positions)
//   - indices: triangle list indices
//
// Returns:
//   - bool: true if any triangle was hit
//   - float32: distance to the nearest hit
func (r Ray) IntersectMesh(vertices []float32, stride int, indices []uint32) (bool, float32) {
	hit := false
	nearest := float32(math32.MaxFloat32)
	for i := 0; i+2 < len(indices); i += 3 {
		ok, t := r.IntersectTriangle(
			vertexAt(vertices, stride, indices[i]),
			vertexAt(vertices, stride, indices[i+1]),
			vertexAt(vertices, stride, indices[i+2]),
		)
		if ok && t < nearest {
			nearest = t
			hit = true
		}
	}
	if !hit {
		return false, 0
	}
	return true, nearest
}

// IntersectMeshTransform intersects a mesh placed in the world by model. The ray is moved into mesh
// space with the inverse model matrix and the reported distance is measured in world space.
// A singular model matrix falls back to transforming each triangle into world space.
//
// Returns:
//   - bool: true if any triangle was hit
//   - float32: world-space distance to the nearest hit
func (r Ray) IntersectMeshTransform(vertices []float32, stride int, indices []uint32, model common.Mat4) (bool, float32) {
	inv, ok := model.Inverse()
	if !ok {
		return r.intersectMeshWorld(vertices, stride, indices, model)
	}

	local := r.Transform(inv)
	if local.Direction.IsZero() {
		return false, 0
	}
	hit, tLocal := local.IntersectMesh(vertices, stride, indices)
	if !hit {
		return false, 0
	}
	world := model.TransformPoint(local.Point(tLocal))
	return true, world.Sub(r.Origin).Length()
}

func (r Ray) intersectMeshWorld(vertices []float32, stride int, indices []uint32, model common.Mat4) (bool, float32) {
	hit := false
	nearest := float32(math32.MaxFloat32)
	for i := 0; i+2 < len(indices); i += 3 {
		ok, t := r.IntersectTriangle(
			model.TransformPoint(vertexAt(vertices, stride, indices[i])),
			model.TransformPoint(vertexAt(vertices, stride, indices[i+1])),
			model.TransformPoint(vertexAt(vertices, stride, indices[i+2])),
		)
		if ok && t < nearest {
			nearest = t
			hit = true
		}
	}
	if !hit {
		return false, 0
	}
	return true, nearest
}
