package scene

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/Carmen-Shannon/oxy-editor/engine/ray"
	"github.com/chewxy/math32"
)

// Hit is the result of a successful FindByRay.
type Hit struct {
	ID       ID
	Object   SceneObject
	Distance float32
	Point    common.Vec3
}

func (s *scene) FindByRay(r ray.Ray) (Hit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := Hit{Distance: float32(math32.MaxFloat32)}
	found := false
	s.walk(func(o *sceneObject, world common.Mat4) bool {
		if !o.Visible() {
			return false
		}
		m := o.Mesh()
		if m == nil || m.Destroyed() {
			return true
		}

		lo, hi := m.Bounds()
		wlo, whi := world.TransformAABB(lo, hi)
		hit, t := r.IntersectAABB(wlo, whi)
		if !hit {
			return true
		}
		// the box entry distance bounds every triangle hit unless the ray starts inside the box
		if t > best.Distance && !contains(wlo, whi, r.Origin) {
			return true
		}

		d := m.Data()
		hit, t = r.IntersectMeshTransform(d.Vertices, mesh.VertexStride, d.Indices, world)
		if hit && t < best.Distance {
			best = Hit{ID: o.ID(), Object: o, Distance: t, Point: r.Point(t)}
			found = true
		}
		return true
	})
	if !found {
		return Hit{}, false
	}
	return best, true
}

func contains(lo, hi, p common.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < lo[i] || p[i] > hi[i] {
			return false
		}
	}
	return true
}
