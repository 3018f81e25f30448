package scene

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/Carmen-Shannon/oxy-editor/engine/transform"
	"github.com/jinzhu/copier"
)

// ID identifies an object within one Scene. NoID is never assigned and stands for the scene root.
type ID uint64

// NoID is the parent of top-level objects.
const NoID ID = 0

// Kind is the role of a scene object.
type Kind int

const (
	KindEmpty Kind = iota
	KindPrimitive
	KindMesh
	KindCamera
	KindLight
)

var kindNames = [...]string{
	KindEmpty:     "Empty",
	KindPrimitive: "Primitive",
	KindMesh:      "Mesh",
	KindCamera:    "Camera",
	KindLight:     "Light",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a case-insensitive kind name to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, n := range kindNames {
		if strings.EqualFold(n, s) {
			return Kind(k), true
		}
	}
	return KindEmpty, false
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown object kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown object kind %q", text)
	}
	*k = parsed
	return nil
}

// PrimitiveSpec records how a primitive object's mesh was generated so it can be rebuilt.
type PrimitiveSpec struct {
	Kind   mesh.PrimitiveKind   `yaml:"kind"`
	Params mesh.PrimitiveParams `yaml:"params,omitempty"`
}

// Properties is the serializable state of a scene object. Hierarchy and selection live in the Scene.
type Properties struct {
	Name      string              `yaml:"name"`
	Kind      Kind                `yaml:"kind"`
	Transform transform.Transform `yaml:"transform"`
	Visible   bool                `yaml:"visible"`
	Color     common.Vec4         `yaml:"color"`
	MeshKey   string              `yaml:"mesh,omitempty"`
	Primitive *PrimitiveSpec      `yaml:"primitive,omitempty"`
}

// DefaultColor is the material color given to new objects.
var DefaultColor = common.Vec4{0.8, 0.8, 0.8, 1}

type sceneObject struct {
	mu    *sync.RWMutex
	props Properties
	mesh  mesh.Mesh

	// owned by the Scene, written under its lock
	id       ID
	parent   ID
	children []ID
	selected bool
	attached bool
}

// SceneObject is a named, transformable node of a Scene. Structural state (ID, Parent, Children,
// Selected) is managed by the Scene the object belongs to; everything else may be edited directly.
type SceneObject interface {
	// ID returns the object's identifier, NoID until the object is added to a Scene.
	//
	// Returns:
	//   - ID: the object ID
	ID() ID

	// Name returns the object's name. Names are unique within a Scene; use Scene.Rename to change it.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Kind returns the object's role.
	//
	// Returns:
	//   - Kind: the kind
	Kind() Kind

	// Transform returns the local transform.
	//
	// Returns:
	//   - transform.Transform: the local position, rotation and scale
	Transform() transform.Transform

	// SetTransform replaces the local transform.
	//
	// Parameters:
	//   - t: the new local transform
	SetTransform(t transform.Transform)

	// SetPosition sets the local position.
	//
	// Parameters:
	//   - p: the position in parent space
	SetPosition(p common.Vec3)

	// SetRotation sets the local Euler rotation in radians.
	//
	// Parameters:
	//   - r: the rotation angles
	SetRotation(r common.Vec3)

	// SetScale sets the local scale.
	//
	// Parameters:
	//   - s: the scale factors
	SetScale(s common.Vec3)

	// LocalMatrix returns the matrix of the local transform.
	//
	// Returns:
	//   - common.Mat4: T * R * S
	LocalMatrix() common.Mat4

	// Visible returns the object's own visibility flag. A visible object under a hidden ancestor is
	// still not drawn or picked.
	//
	// Returns:
	//   - bool: true if visible
	Visible() bool

	// SetVisible sets the visibility flag.
	//
	// Parameters:
	//   - visible: the new flag
	SetVisible(visible bool)

	// Selected reports whether the object is the Scene's selection.
	//
	// Returns:
	//   - bool: true if selected
	Selected() bool

	// Color returns the material color.
	//
	// Returns:
	//   - common.Vec4: RGBA color
	Color() common.Vec4

	// SetColor sets the material color.
	//
	// Parameters:
	//   - c: RGBA color
	SetColor(c common.Vec4)

	// MeshKey returns the resource key of the object's mesh, empty when it has none.
	//
	// Returns:
	//   - string: the resource key
	MeshKey() string

	// Mesh returns the bound GPU mesh, or nil.
	//
	// Returns:
	//   - mesh.Mesh: the mesh
	Mesh() mesh.Mesh

	// SetMesh binds a mesh under key. The mesh stays owned by the resource manager.
	//
	// Parameters:
	//   - key: the resource key
	//   - m: the mesh, nil to unbind while keeping the key
	SetMesh(key string, m mesh.Mesh)

	// Primitive returns a copy of the generator settings for primitive objects, or nil.
	//
	// Returns:
	//   - *PrimitiveSpec: the generator settings
	Primitive() *PrimitiveSpec

	// Parent returns the parent's ID, NoID for top-level objects.
	//
	// Returns:
	//   - ID: the parent ID
	Parent() ID

	// Children returns the IDs of the direct children in order.
	//
	// Returns:
	//   - []ID: a copy of the child list
	Children() []ID

	// Properties returns a deep copy of the object's serializable state.
	//
	// Returns:
	//   - Properties: the state
	Properties() Properties

	node() *sceneObject
}

var _ SceneObject = &sceneObject{}

// NewSceneObject creates a detached object. Add it to a Scene with Scene.AddObject.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - SceneObject: the new object
func NewSceneObject(options ...SceneObjectBuilderOption) SceneObject {
	obj := &sceneObject{
		mu: &sync.RWMutex{},
		props: Properties{
			Transform: transform.Identity(),
			Visible:   true,
			Color:     DefaultColor,
		},
	}
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (o *sceneObject) node() *sceneObject { return o }

func (o *sceneObject) ID() ID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.id
}

func (o *sceneObject) Name() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.props.Name
}

func (o *sceneObject) Kind() Kind {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.props.Kind
}

func (o *sceneObject) Transform() transform.Transform {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.props.Transform
}

func (o *sceneObject) SetTransform(t transform.Transform) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props.Transform = t
}

func (o *sceneObject) SetPosition(p common.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props.Transform.SetPosition(p)
}

func (o *sceneObject) SetRotation(r common.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props.Transform.SetRotation(r)
}

func (o *sceneObject) SetScale(s common.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props.Transform.SetScale(s)
}

func (o *sceneObject) LocalMatrix() common.Mat4 {
	return o.Transform().LocalMatrix()
}

func (o *sceneObject) Visible() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.props.Visible
}

func (o *sceneObject) SetVisible(visible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props.Visible = visible
}

func (o *sceneObject) Selected() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.selected
}

func (o *sceneObject) Color() common.Vec4 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.props.Color
}

func (o *sceneObject) SetColor(c common.Vec4) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props.Color = c
}

func (o *sceneObject) MeshKey() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.props.MeshKey
}

func (o *sceneObject) Mesh() mesh.Mesh {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mesh
}

func (o *sceneObject) SetMesh(key string, m mesh.Mesh) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props.MeshKey = key
	o.mesh = m
}

func (o *sceneObject) Primitive() *PrimitiveSpec {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.props.Primitive == nil {
		return nil
	}
	spec := *o.props.Primitive
	return &spec
}

func (o *sceneObject) Parent() ID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.parent
}

func (o *sceneObject) Children() []ID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.children)
}

func (o *sceneObject) Properties() Properties {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return copyProperties(o.props)
}

// copyProperties deep-copies p so the copy shares no pointers with the source.
func copyProperties(p Properties) Properties {
	var out Properties
	if err := copier.CopyWithOption(&out, &p, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen for identical types
		panic(fmt.Sprintf("scene: copy properties: %v", err))
	}
	return out
}

func (o *sceneObject) setName(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props.Name = name
}

func (o *sceneObject) setParent(parent ID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.parent = parent
}

func (o *sceneObject) setSelected(selected bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selected = selected
}

func (o *sceneObject) addChild(id ID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.children = append(o.children, id)
}

func (o *sceneObject) removeChild(id ID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.children = slices.DeleteFunc(o.children, func(c ID) bool { return c == id })
}

// detach resets the structural state of a removed object so it can be added again.
func (o *sceneObject) detach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.id = NoID
	o.parent = NoID
	o.children = nil
	o.selected = false
	o.attached = false
}
