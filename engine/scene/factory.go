package scene

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/loader"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/Carmen-Shannon/oxy-editor/engine/resource"
)

// subMeshSep separates a file key from a sub-mesh index in the mesh key of ImportAll objects.
const subMeshSep = "#"

// meshSetSuffix marks the resource key holding every mesh of one file.
const meshSetSuffix = subMeshSep + "*"

// meshSet owns all meshes decoded from one file by ImportAll.
type meshSet struct {
	meshes []mesh.Mesh
}

func (s *meshSet) Release() {
	for _, m := range s.meshes {
		m.Release()
	}
}

type factory struct {
	scene     Scene
	device    mesh.Device
	resources resource.Manager
	loader    loader.MeshLoader
	hotReload bool
}

// Factory creates typed scene objects with a default transform and a unique name and adds them
// to its Scene as top-level objects. Mesh objects get their GPU meshes through the resource
// manager, so equal primitives and repeated imports of one file share a single mesh.
type Factory interface {
	// CreatePrimitive generates a primitive shape.
	//
	// Parameters:
	//   - kind: the shape
	//   - params: generator parameters, zero fields take defaults
	//
	// Returns:
	//   - SceneObject: the new object
	//   - error: ContractViolation for bad parameters, or ResourceCreationFailure
	CreatePrimitive(kind mesh.PrimitiveKind, params mesh.PrimitiveParams) (SceneObject, error)

	// CreateCube creates a unit cube.
	CreateCube() (SceneObject, error)

	// CreateSphere creates a UV sphere of radius 0.5.
	CreateSphere() (SceneObject, error)

	// CreatePlane creates a 1x1 plane facing +Y.
	CreatePlane() (SceneObject, error)

	// CreateCylinder creates a cylinder of radius 0.5 and height 1.
	CreateCylinder() (SceneObject, error)

	// CreateTriangle creates a single triangle facing +Z.
	CreateTriangle() (SceneObject, error)

	// ImportMesh loads a file as one merged mesh. It shares the file's cached meshes with ImportAll.
	// On failure nothing is added to the scene.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - SceneObject: the new object
	//   - error: ImportFailure for unreadable or unsupported files, or ResourceCreationFailure
	ImportMesh(path string) (SceneObject, error)

	// ImportAll loads every mesh in a file. A file with several meshes becomes an Empty group named
	// after the file with one child per mesh. On failure nothing is added to the scene.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - SceneObject: the single mesh object or the group
	//   - error: ImportFailure or ResourceCreationFailure
	ImportAll(path string) (SceneObject, error)

	// AdoptImport is ImportAll for meshes already decoded off the update thread by an Importer.
	// If the file's meshes are already cached the decoded data is discarded.
	//
	// Parameters:
	//   - path: the asset path the meshes came from
	//   - meshes: the decoded meshes
	//
	// Returns:
	//   - SceneObject: the single mesh object or the group
	//   - error: ContractViolation for an empty import, or ResourceCreationFailure
	AdoptImport(path string, meshes []mesh.MeshData) (SceneObject, error)

	// IsCached reports whether the meshes of the file at path are already decoded and cached,
	// in which case ImportAll adds it without reading the file.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - bool: true on a cache hit
	IsCached(path string) bool

	// CreateCamera adds a camera placeholder object.
	CreateCamera() (SceneObject, error)

	// CreateLight adds a light placeholder object.
	CreateLight() (SceneObject, error)

	// CreateEmpty adds an empty grouping object.
	CreateEmpty() (SceneObject, error)

	// Reload rebinds the objects using key, or any sub-mesh of it, after the resource was evicted.
	// Objects whose mesh cannot be rebuilt keep their key with no mesh bound.
	//
	// Parameters:
	//   - key: an evicted resource key
	//
	// Returns:
	//   - int: the number of objects rebound
	//   - error: the joined rebuild failures
	Reload(key string) (int, error)

	// Restore clears the scene and rebuilds it from snap, recreating meshes from their keys.
	// Objects whose mesh cannot be rebuilt are kept without one.
	//
	// Parameters:
	//   - snap: the snapshot
	//
	// Returns:
	//   - error: the joined mesh failures
	Restore(snap Snapshot) error
}

var _ Factory = &factory{}

// NewFactory creates a Factory that adds objects to sc and allocates meshes on device through res.
//
// Parameters:
//   - sc: the target scene
//   - device: the GPU device
//   - res: the session resource manager
//   - options: a variadic list of FactoryBuilderOption functions
//
// Returns:
//   - Factory: the factory
func NewFactory(sc Scene, device mesh.Device, res resource.Manager, options ...FactoryBuilderOption) Factory {
	f := &factory{
		scene:     sc,
		device:    device,
		resources: res,
	}
	for _, option := range options {
		option(f)
	}
	if f.loader == nil {
		f.loader = loader.NewMeshLoader()
	}
	return f
}

func (f *factory) CreatePrimitive(kind mesh.PrimitiveKind, params mesh.PrimitiveParams) (SceneObject, error) {
	m, err := f.primitiveMesh(kind, params)
	if err != nil {
		return nil, err
	}
	return f.add(NoID, NewSceneObject(
		WithName(kind.String()),
		WithKind(KindPrimitive),
		WithMesh(m.Key(), m),
		WithPrimitive(kind, params),
	))
}

func (f *factory) primitiveMesh(kind mesh.PrimitiveKind, params mesh.PrimitiveParams) (mesh.Mesh, error) {
	key := mesh.Signature(kind, params)
	return resource.GetOrCreateAs(f.resources, key, func() (mesh.Mesh, error) {
		data, err := mesh.Generate(kind, params)
		if err != nil {
			return nil, err
		}
		return mesh.NewMesh(f.device, data, mesh.WithKey(key))
	})
}

func (f *factory) CreateCube() (SceneObject, error) {
	return f.CreatePrimitive(mesh.PrimitiveCube, mesh.DefaultParams(mesh.PrimitiveCube))
}

func (f *factory) CreateSphere() (SceneObject, error) {
	return f.CreatePrimitive(mesh.PrimitiveSphere, mesh.DefaultParams(mesh.PrimitiveSphere))
}

func (f *factory) CreatePlane() (SceneObject, error) {
	return f.CreatePrimitive(mesh.PrimitivePlane, mesh.DefaultParams(mesh.PrimitivePlane))
}

func (f *factory) CreateCylinder() (SceneObject, error) {
	return f.CreatePrimitive(mesh.PrimitiveCylinder, mesh.DefaultParams(mesh.PrimitiveCylinder))
}

func (f *factory) CreateTriangle() (SceneObject, error) {
	return f.CreatePrimitive(mesh.PrimitiveTriangle, mesh.DefaultParams(mesh.PrimitiveTriangle))
}

func (f *factory) ImportMesh(path string) (SceneObject, error) {
	key, err := resource.NormalizeKey(path)
	if err != nil {
		return nil, common.ImportError("scene.ImportMesh", path, err)
	}
	meshKey, m, err := f.fileMesh(key, path)
	if err != nil {
		log.Printf("[Scene] import of %s failed: %v", path, err)
		return nil, err
	}
	return f.add(NoID, NewSceneObject(
		WithName(common.Coalesce(m.Data().Name, loader.Stem(path))),
		WithKind(KindMesh),
		WithMesh(meshKey, m),
	))
}

// fileMesh returns a file as a single mesh and the key objects should store for it. The file is
// decoded once into its mesh set: a single-mesh file uses that mesh directly, several meshes are
// merged into one mesh cached under the file key.
func (f *factory) fileMesh(key, path string) (string, mesh.Mesh, error) {
	set, err := f.meshSet(key, path, func() ([]mesh.MeshData, error) { return f.loader.LoadAll(path) })
	if err != nil {
		return "", nil, err
	}
	if len(set.meshes) == 1 {
		return subMeshKey(key, 0), set.meshes[0], nil
	}
	m, err := resource.GetOrCreateAs(f.resources, key, func() (mesh.Mesh, error) {
		all := make([]mesh.MeshData, len(set.meshes))
		for i, sm := range set.meshes {
			all[i] = sm.Data()
		}
		data := loader.Merge(loader.Stem(path), all)
		return mesh.NewMesh(f.device, data, mesh.WithKey(key), mesh.WithLabel(data.Name))
	})
	if err != nil {
		return "", nil, err
	}
	if f.hotReload {
		f.watch(key, path)
	}
	return key, m, nil
}

func (f *factory) ImportAll(path string) (SceneObject, error) {
	key, err := resource.NormalizeKey(path)
	if err != nil {
		return nil, common.ImportError("scene.ImportAll", path, err)
	}
	set, err := f.meshSet(key, path, func() ([]mesh.MeshData, error) { return f.loader.LoadAll(path) })
	if err != nil {
		log.Printf("[Scene] import of %s failed: %v", path, err)
		return nil, err
	}
	return f.addSet(key, path, set)
}

func (f *factory) AdoptImport(path string, meshes []mesh.MeshData) (SceneObject, error) {
	if len(meshes) == 0 {
		return nil, common.ContractError("scene.AdoptImport", "no meshes imported from %s", path)
	}
	key, err := resource.NormalizeKey(path)
	if err != nil {
		return nil, common.ImportError("scene.AdoptImport", path, err)
	}
	set, err := f.meshSet(key, path, func() ([]mesh.MeshData, error) { return meshes, nil })
	if err != nil {
		return nil, err
	}
	return f.addSet(key, path, set)
}

// meshSet returns the cached meshes of a file, decoding them with decode on a miss.
// Meshes created before a failure are released so no partial set survives.
func (f *factory) meshSet(key, path string, decode func() ([]mesh.MeshData, error)) (*meshSet, error) {
	set, err := resource.GetOrCreateAs(f.resources, MeshSetKey(key), func() (*meshSet, error) {
		all, err := decode()
		if err != nil {
			return nil, err
		}
		set := &meshSet{meshes: make([]mesh.Mesh, 0, len(all))}
		for i, data := range all {
			m, err := mesh.NewMesh(f.device, data, mesh.WithKey(subMeshKey(key, i)), mesh.WithLabel(data.Name))
			if err != nil {
				set.Release()
				return nil, err
			}
			set.meshes = append(set.meshes, m)
		}
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	if f.hotReload {
		f.watch(MeshSetKey(key), path)
	}
	return set, nil
}

func (f *factory) addSet(key, path string, set *meshSet) (SceneObject, error) {
	if len(set.meshes) == 1 {
		m := set.meshes[0]
		return f.add(NoID, NewSceneObject(
			WithName(common.Coalesce(m.Data().Name, loader.Stem(path))),
			WithKind(KindMesh),
			WithMesh(subMeshKey(key, 0), m),
		))
	}

	group, err := f.add(NoID, NewSceneObject(WithName(loader.Stem(path)), WithKind(KindEmpty)))
	if err != nil {
		return nil, err
	}
	for i, m := range set.meshes {
		child := NewSceneObject(
			WithName(common.Coalesce(m.Data().Name, fmt.Sprintf("%s_%d", loader.Stem(path), i))),
			WithKind(KindMesh),
			WithMesh(subMeshKey(key, i), m),
		)
		if _, err := f.scene.AddObject(group.ID(), child); err != nil {
			return nil, err
		}
	}
	return group, nil
}

// MeshSetKey returns the resource key under which every mesh decoded from the file with key fileKey
// is cached. It is the key to release, watch or query for an imported file.
//
// Parameters:
//   - fileKey: a key from resource.NormalizeKey
//
// Returns:
//   - string: the mesh set key
func MeshSetKey(fileKey string) string {
	return fileKey + meshSetSuffix
}

// IsCached reports whether the meshes of the file at path are already decoded and cached.
func (f *factory) IsCached(path string) bool {
	key, err := resource.NormalizeKey(path)
	if err != nil {
		return false
	}
	_, ok := f.resources.Get(MeshSetKey(key))
	return ok
}

func subMeshKey(key string, i int) string {
	return key + subMeshSep + strconv.Itoa(i)
}

// splitSubMeshKey splits "file#i" into its file key and index.
func splitSubMeshKey(key string) (string, int, bool) {
	i := strings.LastIndex(key, subMeshSep)
	if i < 0 {
		return key, 0, false
	}
	n, err := strconv.Atoi(key[i+len(subMeshSep):])
	if err != nil || n < 0 {
		return key, 0, false
	}
	return key[:i], n, true
}

func (f *factory) watch(key, path string) {
	if err := f.resources.Watch(key, path); err != nil {
		log.Printf("[Scene] cannot watch %s: %v", path, err)
	}
}

func (f *factory) CreateCamera() (SceneObject, error) {
	return f.add(NoID, NewSceneObject(WithKind(KindCamera)))
}

func (f *factory) CreateLight() (SceneObject, error) {
	return f.add(NoID, NewSceneObject(WithKind(KindLight)))
}

func (f *factory) CreateEmpty() (SceneObject, error) {
	return f.add(NoID, NewSceneObject(WithKind(KindEmpty)))
}

func (f *factory) add(parent ID, obj SceneObject) (SceneObject, error) {
	if _, err := f.scene.AddObject(parent, obj); err != nil {
		return nil, err
	}
	log.Printf("[Scene] added %s %q", obj.Kind(), obj.Name())
	return obj, nil
}

// resolve rebuilds the mesh for a stored key: primitives from their generator settings, sub-meshes
// from their file's mesh set, anything else as a merged file import. File keys are the absolute
// paths NormalizeKey produced, so they are loaded from directly.
func (f *factory) resolve(key string, prim *PrimitiveSpec) (mesh.Mesh, error) {
	if prim != nil {
		return f.primitiveMesh(prim.Kind, prim.Params)
	}
	if file, i, ok := splitSubMeshKey(key); ok {
		set, err := f.meshSet(file, file, func() ([]mesh.MeshData, error) { return f.loader.LoadAll(file) })
		if err != nil {
			return nil, err
		}
		if i >= len(set.meshes) {
			return nil, common.LookupError("scene.resolve", key)
		}
		return set.meshes[i], nil
	}
	_, m, err := f.fileMesh(key, key)
	return m, err
}

func (f *factory) Reload(key string) (int, error) {
	file := strings.TrimSuffix(key, meshSetSuffix)
	prims := make(map[string]*PrimitiveSpec)
	f.scene.Walk(func(obj SceneObject, _ common.Mat4) bool {
		if k := obj.MeshKey(); k == file || strings.HasPrefix(k, file+subMeshSep) {
			prims[k] = obj.Primitive()
		}
		return true
	})

	var errs []error
	n := 0
	for k, prim := range prims {
		m, err := f.resolve(k, prim)
		if err != nil {
			f.scene.ReplaceMesh(k, nil)
			errs = append(errs, err)
			continue
		}
		n += f.scene.ReplaceMesh(k, m)
	}
	if n > 0 {
		log.Printf("[Scene] reloaded %s for %d objects", file, n)
	}
	return n, errors.Join(errs...)
}

func (f *factory) Restore(snap Snapshot) error {
	f.scene.Clear()
	f.scene.SetName(common.Coalesce(snap.Name, "Scene"))

	ids := make(map[ID]ID, len(snap.Objects))
	var errs []error
	for _, o := range snap.Objects {
		obj := NewSceneObject(WithProperties(o.Properties))
		if key := o.MeshKey; key != "" {
			m, err := f.resolve(key, o.Primitive)
			if err != nil {
				log.Printf("[Scene] restoring %q without its mesh: %v", o.Name, err)
				errs = append(errs, err)
			}
			obj.SetMesh(key, m)
		}
		parent := NoID
		if o.Parent != NoID {
			parent = ids[o.Parent]
		}
		id, err := f.scene.AddObject(parent, obj)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids[o.ID] = id
	}
	if sel, ok := ids[snap.Selected]; ok && snap.Selected != NoID {
		if err := f.scene.SetSelected(sel, true); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
