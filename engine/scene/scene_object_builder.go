package scene

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/Carmen-Shannon/oxy-editor/engine/transform"
)

// SceneObjectBuilderOption is a functional option for configuring a SceneObject.
type SceneObjectBuilderOption func(o *sceneObject)

// WithName sets the requested name. The Scene appends a numeric suffix if the name is taken.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - SceneObjectBuilderOption: option function to apply
func WithName(name string) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.props.Name = name
	}
}

// WithKind sets the object's role.
//
// Parameters:
//   - kind: the object kind
//
// Returns:
//   - SceneObjectBuilderOption: option function to apply
func WithKind(kind Kind) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.props.Kind = kind
	}
}

// WithTransform sets the initial local transform.
//
// Parameters:
//   - t: the local transform
//
// Returns:
//   - SceneObjectBuilderOption: option function to apply
func WithTransform(t transform.Transform) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.props.Transform = t
	}
}

// WithPosition sets the initial local position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - SceneObjectBuilderOption: option function to apply
func WithPosition(p common.Vec3) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.props.Transform.Position = p
	}
}

// WithColor sets the material color.
//
// Parameters:
//   - c: RGBA color
//
// Returns:
//   - SceneObjectBuilderOption: option function to apply
func WithColor(c common.Vec4) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.props.Color = c
	}
}

// WithVisible sets the initial visibility flag.
//
// Parameters:
//   - visible: the flag
//
// Returns:
//   - SceneObjectBuilderOption: option function to apply
func WithVisible(visible bool) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.props.Visible = visible
	}
}

// WithMesh binds a mesh and its resource key.
//
// Parameters:
//   - key: the resource key
//   - m: the mesh
//
// Returns:
//   - SceneObjectBuilderOption: option function to apply
func WithMesh(key string, m mesh.Mesh) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.props.MeshKey = key
		o.mesh = m
	}
}

// WithPrimitive records the generator settings of a primitive object.
//
// Parameters:
//   - kind: the primitive shape
//   - params: the generator parameters
//
// Returns:
//   - SceneObjectBuilderOption: option function to apply
func WithPrimitive(kind mesh.PrimitiveKind, params mesh.PrimitiveParams) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.props.Primitive = &PrimitiveSpec{Kind: kind, Params: params}
	}
}

// WithProperties replaces all serializable state at once, as when restoring a snapshot.
//
// Parameters:
//   - p: the properties, deep-copied
//
// Returns:
//   - SceneObjectBuilderOption: option function to apply
func WithProperties(p Properties) SceneObjectBuilderOption {
	return func(o *sceneObject) {
		o.props = copyProperties(p)
	}
}
