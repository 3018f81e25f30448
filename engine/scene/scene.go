package scene

import (
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/Carmen-Shannon/oxy-editor/engine/ray"
	"github.com/Carmen-Shannon/oxy-editor/engine/transform"
)

// Scene owns a tree of SceneObjects stored in an arena keyed by ID. Children are owned by their
// parent's ordered child list and point back at it by ID only.
// At most one object is selected at a time.
// Thread-safe for concurrent access; Walk callbacks must not mutate the Scene.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// AddObject inserts a detached object under parent and assigns it an ID and a unique name.
	//
	// Parameters:
	//   - parent: the parent ID, NoID for a top-level object
	//   - obj: an object created by NewSceneObject that is not in any scene
	//
	// Returns:
	//   - ID: the assigned ID
	//   - error: LookupFailure if parent does not exist, ContractViolation for nil or already added objects
	AddObject(parent ID, obj SceneObject) (ID, error)

	// RemoveObject removes the object and all of its descendants. If the selection is among them
	// it is cleared in the same step.
	//
	// Parameters:
	//   - id: the object to remove
	//
	// Returns:
	//   - []ID: the removed IDs, the object first
	//   - error: LookupFailure if id does not exist
	RemoveObject(id ID) ([]ID, error)

	// Get returns the object with the given ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - SceneObject: the object, nil when absent
	//   - bool: true if found
	Get(id ID) (SceneObject, bool)

	// FindByName returns the object with the given name.
	//
	// Parameters:
	//   - name: the unique object name
	//
	// Returns:
	//   - SceneObject: the object, nil when absent
	//   - bool: true if found
	FindByName(name string) (SceneObject, bool)

	// FindByRay returns the nearest object hit by the world-space ray r. Hidden objects, objects
	// under hidden ancestors and objects without a live mesh are skipped. Each candidate is tested
	// against its world-space bounds first, then triangle by triangle with its world matrix.
	//
	// Parameters:
	//   - r: the picking ray, its cull mode applies to every triangle
	//
	// Returns:
	//   - Hit: the nearest hit across the whole tree
	//   - bool: true if anything was hit
	FindByRay(r ray.Ray) (Hit, bool)

	// SetSelected selects or deselects an object. Selecting clears any previous selection.
	//
	// Parameters:
	//   - id: the object ID
	//   - selected: the new flag
	//
	// Returns:
	//   - error: LookupFailure if id does not exist
	SetSelected(id ID, selected bool) error

	// Selected returns the selected object.
	//
	// Returns:
	//   - SceneObject: the selection, nil when nothing is selected
	//   - bool: true if an object is selected
	Selected() (SceneObject, bool)

	// IsSelected reports whether id is the selection.
	IsSelected(id ID) bool

	// ClearSelection deselects the current selection, if any.
	ClearSelection()

	// IsVisible reports the visibility flag of id. Missing objects are not visible.
	IsVisible(id ID) bool

	// SetVisible sets the visibility flag of id.
	//
	// Parameters:
	//   - id: the object ID
	//   - visible: the new flag
	//
	// Returns:
	//   - error: LookupFailure if id does not exist
	SetVisible(id ID, visible bool) error

	// WorldMatrix composes the local matrices from the root down to id.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - common.Mat4: the world matrix
	//   - error: LookupFailure if id does not exist
	WorldMatrix(id ID) (common.Mat4, error)

	// Reparent moves id under parent, rewriting its local transform so its world transform is kept.
	//
	// Parameters:
	//   - id: the object to move
	//   - parent: the new parent, NoID for top level
	//
	// Returns:
	//   - error: LookupFailure for missing objects, ContractViolation if parent is id or one of its
	//     descendants, or if the new parent's world matrix is singular
	Reparent(id, parent ID) error

	// Rename gives id a new name, suffixed if it is already taken.
	//
	// Parameters:
	//   - id: the object ID
	//   - name: the requested name
	//
	// Returns:
	//   - string: the name applied
	//   - error: LookupFailure if id does not exist
	Rename(id ID, name string) (string, error)

	// Duplicate deep-copies id and its subtree next to the original. Meshes are shared.
	//
	// Parameters:
	//   - id: the object to copy
	//
	// Returns:
	//   - ID: the ID of the copy
	//   - error: LookupFailure if id does not exist
	Duplicate(id ID) (ID, error)

	// Walk visits objects depth first, parents before children, passing each object's world matrix.
	// Returning false from fn skips the object's descendants.
	//
	// Parameters:
	//   - fn: the visitor
	Walk(fn func(obj SceneObject, world common.Mat4) bool)

	// Roots returns the top-level IDs in order.
	Roots() []ID

	// Children returns the child IDs of id in order, the roots for NoID.
	Children(id ID) []ID

	// ReplaceMesh rebinds every object whose mesh key is key to m.
	//
	// Parameters:
	//   - key: the resource key
	//   - m: the replacement mesh, nil to unbind
	//
	// Returns:
	//   - int: the number of objects updated
	ReplaceMesh(key string, m mesh.Mesh) int

	// MeshKeys returns the distinct mesh keys in use, sorted.
	MeshKeys() []string

	// Snapshot captures the tree for persistence.
	Snapshot() Snapshot

	// Clear removes every object.
	Clear()

	// Len returns the number of objects.
	Len() int
}

type scene struct {
	mu       *sync.RWMutex
	name     string
	objects  map[ID]*sceneObject
	roots    []ID
	names    map[string]ID
	nextID   ID
	selected ID
}

var _ Scene = &scene{}

// NewScene creates an empty Scene.
//
// Parameters:
//   - options: a variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:      &sync.RWMutex{},
		name:    "Scene",
		objects: make(map[ID]*sceneObject),
		names:   make(map[string]ID),
		nextID:  1,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) AddObject(parent ID, obj SceneObject) (ID, error) {
	if obj == nil {
		return NoID, common.ContractError("scene.AddObject", "nil object")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(parent, obj.node())
}

// add inserts o under parent. The caller holds the write lock.
func (s *scene) add(parent ID, o *sceneObject) (ID, error) {
	o.mu.RLock()
	attached := o.attached
	o.mu.RUnlock()
	if attached {
		return NoID, common.ContractError("scene.AddObject", "object %d is already in a scene", o.ID())
	}

	var p *sceneObject
	if parent != NoID {
		var ok bool
		if p, ok = s.objects[parent]; !ok {
			return NoID, common.LookupError("scene.AddObject", objectKey(parent))
		}
	}

	id := s.nextID
	s.nextID++
	name := s.uniqueName(o.Name(), o.Kind())

	o.mu.Lock()
	o.id = id
	o.parent = parent
	o.props.Name = name
	o.attached = true
	o.selected = false
	o.mu.Unlock()

	s.objects[id] = o
	s.names[name] = id
	if p != nil {
		p.addChild(id)
	} else {
		s.roots = append(s.roots, id)
	}
	return id, nil
}

func objectKey(id ID) string {
	return "object " + strconv.FormatUint(uint64(id), 10)
}

// uniqueName returns base, or base with the lowest free ".NNN" suffix. The caller holds the lock.
func (s *scene) uniqueName(base string, kind Kind) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = kind.String()
	}
	if _, taken := s.names[base]; !taken {
		return base
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		if _, err := strconv.Atoi(base[i+1:]); err == nil && len(base)-i == 4 {
			base = base[:i]
		}
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.%03d", base, n)
		if _, taken := s.names[candidate]; !taken {
			return candidate
		}
	}
}

func (s *scene) RemoveObject(id ID) ([]ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return nil, common.LookupError("scene.RemoveObject", objectKey(id))
	}

	if parent := o.Parent(); parent != NoID {
		if p, ok := s.objects[parent]; ok {
			p.removeChild(id)
		}
	} else {
		s.roots = slices.DeleteFunc(s.roots, func(r ID) bool { return r == id })
	}

	removed := s.subtree(id)
	for _, rid := range removed {
		ro := s.objects[rid]
		if s.selected == rid {
			s.selected = NoID
		}
		delete(s.names, ro.Name())
		delete(s.objects, rid)
		ro.detach()
	}
	return removed, nil
}

// subtree lists id and its descendants in pre-order. The caller holds the lock.
func (s *scene) subtree(id ID) []ID {
	out := []ID{id}
	for i := 0; i < len(out); i++ {
		if o, ok := s.objects[out[i]]; ok {
			out = append(out, o.Children()...)
		}
	}
	return out
}

func (s *scene) Get(id ID) (SceneObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[id]
	if !ok {
		return nil, false
	}
	return o, true
}

func (s *scene) FindByName(name string) (SceneObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.names[name]
	if !ok {
		return nil, false
	}
	return s.objects[id], true
}

func (s *scene) SetSelected(id ID, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return common.LookupError("scene.SetSelected", objectKey(id))
	}
	if !selected {
		if s.selected == id {
			s.selected = NoID
		}
		o.setSelected(false)
		return nil
	}
	if prev, ok := s.objects[s.selected]; ok && s.selected != id {
		prev.setSelected(false)
	}
	s.selected = id
	o.setSelected(true)
	return nil
}

func (s *scene) Selected() (SceneObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[s.selected]
	if !ok {
		return nil, false
	}
	return o, true
}

func (s *scene) IsSelected(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return id != NoID && s.selected == id
}

func (s *scene) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.objects[s.selected]; ok {
		o.setSelected(false)
	}
	s.selected = NoID
}

func (s *scene) IsVisible(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[id]
	return ok && o.Visible()
}

func (s *scene) SetVisible(id ID, visible bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[id]
	if !ok {
		return common.LookupError("scene.SetVisible", objectKey(id))
	}
	o.SetVisible(visible)
	return nil
}

func (s *scene) WorldMatrix(id ID) (common.Mat4, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[id]; !ok {
		return common.Ident4(), common.LookupError("scene.WorldMatrix", objectKey(id))
	}
	return s.worldMatrix(id), nil
}

// worldMatrix walks up the parent links. The caller holds the lock.
func (s *scene) worldMatrix(id ID) common.Mat4 {
	var chain []transform.Transform
	for cur := id; cur != NoID; {
		o, ok := s.objects[cur]
		if !ok {
			break
		}
		chain = append(chain, o.Transform())
		cur = o.Parent()
	}
	slices.Reverse(chain)
	return transform.Chain(chain...)
}

func (s *scene) Reparent(id, parent ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return common.LookupError("scene.Reparent", objectKey(id))
	}
	var np *sceneObject
	if parent != NoID {
		if np, ok = s.objects[parent]; !ok {
			return common.LookupError("scene.Reparent", objectKey(parent))
		}
		for cur := parent; cur != NoID; cur = s.objects[cur].Parent() {
			if cur == id {
				return common.ContractError("scene.Reparent", "object %d cannot become a child of its descendant %d", id, parent)
			}
		}
	}
	oldParent := o.Parent()
	if oldParent == parent {
		return nil
	}

	world := s.worldMatrix(id)
	var parentWorld *common.Mat4
	if np != nil {
		pw := s.worldMatrix(parent)
		parentWorld = &pw
	}
	local, ok := transform.Reparent(world, parentWorld)
	if !ok {
		return common.ContractError("scene.Reparent", "parent %d has a singular world matrix", parent)
	}

	if oldParent != NoID {
		s.objects[oldParent].removeChild(id)
	} else {
		s.roots = slices.DeleteFunc(s.roots, func(r ID) bool { return r == id })
	}
	if np != nil {
		np.addChild(id)
	} else {
		s.roots = append(s.roots, id)
	}
	o.setParent(parent)
	o.SetTransform(local)
	return nil
}

func (s *scene) Rename(id ID, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return "", common.LookupError("scene.Rename", objectKey(id))
	}
	old := o.Name()
	if strings.TrimSpace(name) == old {
		return old, nil
	}
	delete(s.names, old)
	unique := s.uniqueName(name, o.Kind())
	o.setName(unique)
	s.names[unique] = id
	return unique, nil
}

func (s *scene) Duplicate(id ID) (ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return NoID, common.LookupError("scene.Duplicate", objectKey(id))
	}
	return s.duplicate(o, o.Parent())
}

func (s *scene) duplicate(src *sceneObject, parent ID) (ID, error) {
	cp := NewSceneObject(WithProperties(src.Properties()), WithMesh(src.MeshKey(), src.Mesh())).node()
	newID, err := s.add(parent, cp)
	if err != nil {
		return NoID, err
	}
	for _, child := range src.Children() {
		if c, ok := s.objects[child]; ok {
			if _, err := s.duplicate(c, newID); err != nil {
				return NoID, err
			}
		}
	}
	return newID, nil
}

func (s *scene) Walk(fn func(obj SceneObject, world common.Mat4) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.walk(func(o *sceneObject, world common.Mat4) bool { return fn(o, world) })
}

// walk is the locked traversal shared by Walk, FindByRay and Snapshot.
func (s *scene) walk(fn func(o *sceneObject, world common.Mat4) bool) {
	var visit func(id ID, parent *common.Mat4)
	visit = func(id ID, parent *common.Mat4) {
		o, ok := s.objects[id]
		if !ok {
			return
		}
		world := o.Transform().WorldMatrix(parent)
		if !fn(o, world) {
			return
		}
		for _, child := range o.Children() {
			visit(child, &world)
		}
	}
	for _, root := range s.roots {
		visit(root, nil)
	}
}

func (s *scene) Roots() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roots)
}

func (s *scene) Children(id ID) []ID {
	if id == NoID {
		return s.Roots()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[id]
	if !ok {
		return nil
	}
	return o.Children()
}

func (s *scene) ReplaceMesh(key string, m mesh.Mesh) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.objects {
		if o.MeshKey() == key {
			o.SetMesh(key, m)
			n++
		}
	}
	return n
}

func (s *scene) MeshKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for _, o := range s.objects {
		if k := o.MeshKey(); k != "" && !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.objects)
	for _, o := range s.objects {
		o.detach()
	}
	clear(s.objects)
	clear(s.names)
	s.roots = nil
	s.selected = NoID
	log.Printf("[Scene] cleared %s (%d objects)", s.name, n)
}

func (s *scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
