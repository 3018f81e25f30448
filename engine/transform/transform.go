// Package transform holds the local position/rotation/scale of a scene node and derives its
// world matrix on demand.
package transform

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/chewxy/math32"
)

// gimbalEpsilon is the cos(pitch) threshold below which Decompose treats the rotation as gimbal locked.
const gimbalEpsilon float32 = 1e-6

// Transform is a node's local TRS state. Rotation is stored as Euler angles in radians and
// applied as R = Ry * Rx * Rz. The world matrix is never cached; it is always derived from the
// local fields and the parent's world matrix.
type Transform struct {
	Position common.Vec3 `yaml:"position"`
	Rotation common.Vec3 `yaml:"rotation"`
	Scale    common.Vec3 `yaml:"scale"`
}

// Identity returns a Transform at the origin with no rotation and unit scale.
func Identity() Transform {
	return Transform{Scale: common.Vec3Splat(1)}
}

// New returns a Transform with the given components.
func New(position, rotation, scale common.Vec3) Transform {
	return Transform{Position: position, Rotation: rotation, Scale: scale}
}

// SetPosition sets the local position.
func (t *Transform) SetPosition(p common.Vec3) { t.Position = p }

// SetRotation sets the local Euler rotation in radians.
func (t *Transform) SetRotation(r common.Vec3) { t.Rotation = r }

// SetScale sets the local scale.
func (t *Transform) SetScale(s common.Vec3) { t.Scale = s }

// GetPosition returns the local position.
func (t Transform) GetPosition() common.Vec3 { return t.Position }

// GetRotation returns the local Euler rotation in radians.
func (t Transform) GetRotation() common.Vec3 { return t.Rotation }

// GetScale returns the local scale.
func (t Transform) GetScale() common.Vec3 { return t.Scale }

// Translate moves the transform by d in parent space.
func (t *Transform) Translate(d common.Vec3) { t.Position = t.Position.Add(d) }

// LocalMatrix returns T * R * S.
func (t Transform) LocalMatrix() common.Mat4 {
	return common.BuildModelMatrix(t.Position, t.Rotation, t.Scale)
}

// WorldMatrix composes the local matrix with the parent's world matrix.
//
// Parameters:
//   - parent: the parent's world matrix, or nil for a root node
//
// Returns:
//   - common.Mat4: parent * local
func (t Transform) WorldMatrix(parent *common.Mat4) common.Mat4 {
	local := t.LocalMatrix()
	if parent == nil {
		return local
	}
	return parent.Mul(local)
}

// Decompose recovers a Transform from an affine TRS matrix. Shear is discarded.
// A negative determinant is folded into the X scale. Under gimbal lock (pitch of ±90°)
// the Z rotation is reported as zero and the full yaw is assigned to Y.
//
// Parameters:
//   - m: an affine matrix produced by BuildModelMatrix or a product of such matrices
//
// Returns:
//   - Transform: components that rebuild m through LocalMatrix
func Decompose(m common.Mat4) Transform {
	c0 := common.Vec3{m[0], m[1], m[2]}
	c1 := common.Vec3{m[4], m[5], m[6]}
	c2 := common.Vec3{m[8], m[9], m[10]}

	scale := common.Vec3{c0.Length(), c1.Length(), c2.Length()}
	if c0.Cross(c1).Dot(c2) < 0 {
		scale[0] = -scale[0]
	}

	div := func(c common.Vec3, s float32) common.Vec3 {
		if s == 0 {
			return common.Vec3{}
		}
		return c.Scale(1 / s)
	}
	r0, r1, r2 := div(c0, scale[0]), div(c1, scale[1]), div(c2, scale[2])

	// r2 = (sy*cx, -sx, cy*cx); r0[1] = cx*sz, r1[1] = cx*cz
	var rot common.Vec3
	rot[0] = math32.Asin(common.Clamp(-r2[1], -1, 1))
	if math32.Abs(math32.Cos(rot[0])) > gimbalEpsilon {
		rot[1] = math32.Atan2(r2[0], r2[2])
		rot[2] = math32.Atan2(r0[1], r1[1])
	} else {
		rot[1] = math32.Atan2(-r0[2], r0[0])
		rot[2] = 0
	}

	return Transform{
		Position: common.Vec3{m[12], m[13], m[14]},
		Rotation: rot,
		Scale:    scale,
	}
}

// Reparent returns the local transform that keeps a node at the same world matrix after moving it
// under a parent whose world matrix is newParentWorld (nil for the scene root).
//
// Parameters:
//   - world: the node's current world matrix
//   - newParentWorld: the new parent's world matrix, or nil
//
// Returns:
//   - Transform: local components relative to the new parent
//   - bool: false when the new parent matrix is singular and the world transform cannot be preserved
func Reparent(world common.Mat4, newParentWorld *common.Mat4) (Transform, bool) {
	if newParentWorld == nil {
		return Decompose(world), true
	}
	inv, ok := newParentWorld.Inverse()
	if !ok {
		return Decompose(world), false
	}
	return Decompose(inv.Mul(world)), true
}

// Chain composes the world matrix for a root-first chain of transforms.
func Chain(chain ...Transform) common.Mat4 {
	world := common.Ident4()
	for _, t := range chain {
		world = world.Mul(t.LocalMatrix())
	}
	return world
}
