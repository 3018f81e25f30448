package renderer

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/Carmen-Shannon/oxy-editor/engine/scene"
)

// drawItem is one mesh queued for the current frame.
type drawItem struct {
	id      scene.ID
	mesh    mesh.Mesh
	uniform DrawUniform
}

// FrameStats counts what the last Draw call did with the scene.
type FrameStats struct {
	Drawn  int
	Culled int
	Hidden int
}

// buildDrawList walks the scene and appends a drawItem for every visible mesh whose world bounds
// intersect the view frustum. Hidden objects hide their whole subtree.
func buildDrawList(sc scene.Scene, viewProj common.Mat4, tint common.Vec4, out []drawItem) ([]drawItem, FrameStats) {
	var stats FrameStats
	frustum := common.ExtractFrustum(viewProj)

	sc.Walk(func(obj scene.SceneObject, world common.Mat4) bool {
		if !obj.Visible() {
			stats.Hidden++
			return false
		}
		m := obj.Mesh()
		if m == nil || m.Destroyed() || m.VertexArray() == nil {
			return true
		}
		lo, hi := world.TransformAABB(m.Bounds())
		if !frustum.IntersectsAABB(lo, hi) {
			stats.Culled++
			return true
		}

		color := obj.Color()
		if obj.Selected() {
			color = tintColor(color, tint)
		}
		out = append(out, drawItem{
			id:   obj.ID(),
			mesh: m,
			uniform: DrawUniform{
				ViewProj: viewProj,
				Model:    world,
				Color:    color,
			},
		})
		stats.Drawn++
		return true
	})
	return out, stats
}

// tintColor mixes the rgb of c toward the rgb of tint by tint's alpha. c's alpha is kept.
func tintColor(c, tint common.Vec4) common.Vec4 {
	t := common.Clamp(tint[3], 0, 1)
	return common.Vec4{
		c[0] + (tint[0]-c[0])*t,
		c[1] + (tint[1]-c[1])*t,
		c[2] + (tint[2]-c[2])*t,
		c[3],
	}
}
