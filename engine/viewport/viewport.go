// Package viewport is the editor's 3D viewport: it routes window input to camera navigation and
// picking, runs asset imports in the background and exposes the scene operations a UI shell needs.
package viewport

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/camera"
	"github.com/Carmen-Shannon/oxy-editor/engine/loader"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/Carmen-Shannon/oxy-editor/engine/ray"
	"github.com/Carmen-Shannon/oxy-editor/engine/resource"
	"github.com/Carmen-Shannon/oxy-editor/engine/scene"
)

// ImportState is the progress of an asynchronous import.
type ImportState int

const (
	ImportPending ImportState = iota
	ImportDone
	ImportFailed
)

func (s ImportState) String() string {
	switch s {
	case ImportPending:
		return "pending"
	case ImportDone:
		return "done"
	case ImportFailed:
		return "failed"
	}
	return "unknown"
}

// ImportStatus describes one import request. Object is set once the import is done.
type ImportStatus struct {
	Path   string
	State  ImportState
	Object scene.ID
	Err    error
}

type pendingImport struct {
	path   string
	cached bool
	result <-chan loader.ImportResult
}

// primitiveKeys maps the number row to the shapes it creates.
var primitiveKeys = map[uint32]mesh.PrimitiveKind{
	common.Key1: mesh.PrimitiveCube,
	common.Key2: mesh.PrimitiveSphere,
	common.Key3: mesh.PrimitivePlane,
	common.Key4: mesh.PrimitiveCylinder,
	common.Key5: mesh.PrimitiveTriangle,
}

// unitExtent is the half size of the box framed around objects without a mesh.
const unitExtent = 0.5

// viewport is the implementation of the Viewport interface.
type viewport struct {
	mu         *sync.Mutex
	scene      scene.Scene
	factory    scene.Factory
	resources  resource.Manager
	importer   loader.Importer
	camera     camera.Camera
	controller camera.CameraController

	bounds            camera.Viewport
	cull              ray.CullMode
	frameDuration     float32
	scenePath         string
	perspective       camera.Perspective
	orthographic      camera.Orthographic
	controllerOptions []camera.CameraControllerOption

	onSelection func(obj scene.SceneObject)
	onImport    func(status ImportStatus)
	reloadHook  func(key string) bool

	pending  []pendingImport
	failures []ImportStatus
	ctrl     bool
	closed   bool
}

// Viewport is the editor-facing surface of the engine core. Input methods take window pixels and
// the key codes in common/key_codes.go. All methods are meant to be called from the frame loop.
type Viewport interface {
	// Scene returns the edited scene.
	Scene() scene.Scene

	// Factory returns the factory objects are created with.
	Factory() scene.Factory

	// Camera returns the viewport camera.
	Camera() camera.Camera

	// Controller returns the navigation controller fed by the input methods.
	Controller() camera.CameraController

	// Bounds returns the viewport rectangle in window pixels.
	Bounds() camera.Viewport

	// SetBounds sets the viewport rectangle and updates the camera aspect.
	//
	// Parameters:
	//   - vp: the rectangle in window pixels
	SetBounds(vp camera.Viewport)

	// MouseDown forwards a press to the controller. A left press inside the bounds picks and
	// selects the object under the cursor, or clears the selection when nothing is hit.
	//
	// Parameters:
	//   - button: common.MouseButtonLeft, Right or Middle
	//   - x, y: cursor position
	MouseDown(button int, x, y float32)

	// MouseUp forwards a release to the controller.
	MouseUp(button int, x, y float32)

	// MouseMove forwards cursor movement to the controller.
	MouseMove(x, y float32)

	// Scroll forwards wheel movement to the controller.
	Scroll(delta float32)

	// KeyDown handles editor shortcuts while the cursor is inside the bounds, after the controller
	// has seen the key. Escape clears the selection, Delete and Backspace remove it, Ctrl+D
	// duplicates it, A frames the whole scene, O toggles the projection, 1 to 5 create primitives
	// and Ctrl+S saves the scene when a scene path is set.
	//
	// Parameters:
	//   - key: the key code
	KeyDown(key uint32)

	// KeyUp forwards a key release to the controller.
	KeyUp(key uint32)

	// Pick casts a ray through the cursor position without changing the selection.
	//
	// Parameters:
	//   - x, y: cursor position in window pixels
	//
	// Returns:
	//   - scene.Hit: the nearest hit
	//   - bool: true if an object was hit
	Pick(x, y float32) (scene.Hit, bool)

	// Select makes id the selection.
	//
	// Parameters:
	//   - id: the object to select
	//
	// Returns:
	//   - error: LookupFailure if id does not exist
	Select(id scene.ID) error

	// ClearSelection deselects the current selection.
	ClearSelection()

	// Selected returns the selected object.
	Selected() (scene.SceneObject, bool)

	// CreatePrimitive adds a primitive with default parameters and selects it.
	//
	// Parameters:
	//   - kind: the shape
	//
	// Returns:
	//   - scene.SceneObject: the new object
	//   - error: the factory error
	CreatePrimitive(kind mesh.PrimitiveKind) (scene.SceneObject, error)

	// Import queues an asynchronous import. The object is added by a later Update once the file
	// is decoded; a file already cached is not decoded again. Failures are kept until ClearImportFailures.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - error: ContractViolation for an empty path or a closed viewport
	Import(path string) error

	// Imports returns the pending imports followed by the failed ones.
	Imports() []ImportStatus

	// ClearImportFailures forgets the recorded import failures.
	ClearImportFailures()

	// ResourceStatus reports the load state of a resource key for error display.
	//
	// Parameters:
	//   - key: the resource key, such as an object's mesh key
	//
	// Returns:
	//   - resource.Status: the load state
	//   - error: the failure when the state is StatusFailed
	ResourceStatus(key string) (resource.Status, error)

	// Update adopts finished imports, rebinds resources evicted by file changes and advances the
	// camera animation.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Update(dt float32)

	// FrameSelected animates the camera to fit the selection.
	//
	// Returns:
	//   - bool: false when nothing is selected
	FrameSelected() bool

	// FrameAll animates the camera to fit every visible mesh.
	//
	// Returns:
	//   - bool: false when the scene has no visible mesh
	FrameAll() bool

	// DeleteSelected removes the selection and its descendants.
	//
	// Returns:
	//   - []scene.ID: the removed IDs, nil when nothing was selected
	//   - error: the scene error
	DeleteSelected() ([]scene.ID, error)

	// DuplicateSelected copies the selection and selects the copy.
	//
	// Returns:
	//   - scene.SceneObject: the copy, nil when nothing was selected
	//   - error: the scene error
	DuplicateSelected() (scene.SceneObject, error)

	// ToggleProjection switches the camera between perspective and orthographic.
	ToggleProjection()

	// IsAnimating reports whether a camera transition is running.
	IsAnimating() bool

	// IsMouseInViewport reports whether (x, y) is inside the bounds.
	IsMouseInViewport(x, y float32) bool

	// SetSelectionCallback registers a function called after the selection changes through the
	// viewport. The object is nil when the selection was cleared.
	SetSelectionCallback(fn func(obj scene.SceneObject))

	// SetImportCallback registers a function called when an import finishes or fails.
	SetImportCallback(fn func(status ImportStatus))

	// SetReloadHook registers a function offered every resource key evicted by a file change
	// before the scene rebinds its meshes. Returning true marks the key as handled.
	SetReloadHook(fn func(key string) bool)

	// SaveScene writes the scene to a YAML file.
	//
	// Parameters:
	//   - path: the destination, "~" is expanded
	//
	// Returns:
	//   - error: error if encoding or writing fails
	SaveScene(path string) error

	// LoadScene replaces the scene with the contents of a file. Objects whose meshes cannot be
	// resolved are kept without a mesh and reported in the returned error.
	//
	// Parameters:
	//   - path: the scene file
	//
	// Returns:
	//   - error: error if the file cannot be read, or the joined restore failures
	LoadScene(path string) error

	// Close stops the background importer. Pending imports are dropped.
	Close()
}

var _ Viewport = &viewport{}

// NewViewport creates a Viewport over an existing scene, factory and camera.
//
// Parameters:
//   - sc: the scene
//   - factory: the factory bound to sc
//   - res: the resource manager shared with factory
//   - cam: the viewport camera
//   - options: a variadic list of ViewportBuilderOption functions
//
// Returns:
//   - Viewport: the new viewport
func NewViewport(sc scene.Scene, factory scene.Factory, res resource.Manager, cam camera.Camera, options ...ViewportBuilderOption) Viewport {
	v := &viewport{
		mu:            &sync.Mutex{},
		scene:         sc,
		factory:       factory,
		resources:     res,
		camera:        cam,
		cull:          ray.CullNone,
		frameDuration: 0.5,
		perspective:   camera.NewPerspective(),
		orthographic:  camera.NewOrthographic(),
	}
	switch p := cam.ProjectionMode().(type) {
	case camera.Perspective:
		v.perspective = p
	case camera.Orthographic:
		v.orthographic = p
	}
	for _, option := range options {
		option(v)
	}
	if v.importer == nil {
		v.importer = loader.NewImporter(loader.NewMeshLoader())
	}

	opts := append(v.controllerOptions,
		camera.WithViewport(v.bounds),
		camera.WithFrameSelected(func() { v.FrameSelected() }),
	)
	v.controller = camera.NewCameraController(cam, opts...)
	return v
}

func (v *viewport) Scene() scene.Scene {
	return v.scene
}

func (v *viewport) Factory() scene.Factory {
	return v.factory
}

func (v *viewport) Camera() camera.Camera {
	return v.camera
}

func (v *viewport) Controller() camera.CameraController {
	return v.controller
}

func (v *viewport) Bounds() camera.Viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bounds
}

func (v *viewport) SetBounds(vp camera.Viewport) {
	v.mu.Lock()
	v.bounds = vp
	v.mu.Unlock()
	v.controller.SetViewport(vp)
}

func (v *viewport) MouseDown(button int, x, y float32) {
	v.controller.MouseDown(button, x, y)
	if button != common.MouseButtonLeft || v.controller.IsNavigating() || !v.IsMouseInViewport(x, y) {
		return
	}
	if hit, ok := v.Pick(x, y); ok {
		if err := v.Select(hit.ID); err != nil {
			log.Printf("[Viewport] select %d: %v", hit.ID, err)
		}
		return
	}
	v.ClearSelection()
}

func (v *viewport) MouseUp(button int, x, y float32) {
	v.controller.MouseUp(button, x, y)
}

func (v *viewport) MouseMove(x, y float32) {
	v.controller.MouseMove(x, y)
}

func (v *viewport) Scroll(delta float32) {
	v.controller.Scroll(delta)
}

func (v *viewport) KeyDown(key uint32) {
	v.controller.KeyDown(key)

	v.mu.Lock()
	switch key {
	case common.KeyLeftControl, common.KeyRightControl:
		v.ctrl = true
	}
	ctrl, path := v.ctrl, v.scenePath
	v.mu.Unlock()

	x, y := v.controller.Cursor()
	if !v.IsMouseInViewport(x, y) {
		return
	}

	switch {
	case key == common.KeyEsc:
		v.ClearSelection()
	case key == common.KeyDelete || key == common.KeyBackspace:
		if _, err := v.DeleteSelected(); err != nil {
			log.Printf("[Viewport] delete: %v", err)
		}
	case key == common.KeyD && ctrl:
		if _, err := v.DuplicateSelected(); err != nil {
			log.Printf("[Viewport] duplicate: %v", err)
		}
	case key == common.KeyS && ctrl:
		if path == "" {
			return
		}
		if err := v.SaveScene(path); err != nil {
			log.Printf("[Viewport] save %s: %v", path, err)
		}
	case key == common.KeyA && !ctrl:
		v.FrameAll()
	case key == common.KeyO && !ctrl:
		v.ToggleProjection()
	default:
		if kind, ok := primitiveKeys[key]; ok && !ctrl {
			if _, err := v.CreatePrimitive(kind); err != nil {
				log.Printf("[Viewport] create %s: %v", kind, err)
			}
		}
	}
}

func (v *viewport) KeyUp(key uint32) {
	v.controller.KeyUp(key)
	switch key {
	case common.KeyLeftControl, common.KeyRightControl:
		v.mu.Lock()
		v.ctrl = false
		v.mu.Unlock()
	}
}

func (v *viewport) Pick(x, y float32) (scene.Hit, bool) {
	r, err := v.camera.ScreenToWorldRay(x, y, v.Bounds())
	if err != nil {
		return scene.Hit{}, false
	}
	v.mu.Lock()
	r.Cull = v.cull
	v.mu.Unlock()
	return v.scene.FindByRay(r)
}

func (v *viewport) Select(id scene.ID) error {
	prev := v.selectedID()
	if err := v.scene.SetSelected(id, true); err != nil {
		return err
	}
	v.notifySelection(prev)
	return nil
}

func (v *viewport) ClearSelection() {
	prev := v.selectedID()
	v.scene.ClearSelection()
	v.notifySelection(prev)
}

func (v *viewport) Selected() (scene.SceneObject, bool) {
	return v.scene.Selected()
}

func (v *viewport) CreatePrimitive(kind mesh.PrimitiveKind) (scene.SceneObject, error) {
	obj, err := v.factory.CreatePrimitive(kind, mesh.PrimitiveParams{})
	if err != nil {
		return nil, err
	}
	if err := v.Select(obj.ID()); err != nil {
		return nil, err
	}
	return obj, nil
}

func (v *viewport) Import(path string) error {
	if path == "" {
		return common.ContractError("Import", "empty path")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return common.ContractError("Import", "viewport is closed")
	}
	if v.factory.IsCached(path) {
		ready := make(chan loader.ImportResult, 1)
		ready <- loader.ImportResult{Path: path}
		v.pending = append(v.pending, pendingImport{path: path, cached: true, result: ready})
		return nil
	}
	v.pending = append(v.pending, pendingImport{path: path, result: v.importer.Submit(path)})
	log.Printf("[Viewport] importing %s", path)
	return nil
}

func (v *viewport) Imports() []ImportStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]ImportStatus, 0, len(v.pending)+len(v.failures))
	for _, p := range v.pending {
		out = append(out, ImportStatus{Path: p.path, State: ImportPending})
	}
	return append(out, v.failures...)
}

func (v *viewport) ClearImportFailures() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failures = nil
}

func (v *viewport) ResourceStatus(key string) (resource.Status, error) {
	return v.resources.Status(key), v.resources.Failure(key)
}

func (v *viewport) Update(dt float32) {
	v.adoptImports()
	v.reloadChanged()
	v.camera.Update(dt)
}

// adoptImports adds the objects of every finished import to the scene.
func (v *viewport) adoptImports() {
	v.mu.Lock()
	var done []loader.ImportResult
	var adopted []pendingImport
	remaining := v.pending[:0]
	for _, p := range v.pending {
		select {
		case res := <-p.result:
			done = append(done, res)
			adopted = append(adopted, p)
		default:
			remaining = append(remaining, p)
		}
	}
	clear(v.pending[len(remaining):])
	v.pending = remaining
	onImport := v.onImport
	v.mu.Unlock()

	for i, res := range done {
		p := adopted[i]
		status := ImportStatus{Path: p.path, State: ImportDone}
		if res.Err == nil {
			var obj scene.SceneObject
			var err error
			if p.cached {
				obj, err = v.factory.ImportAll(p.path)
			} else {
				obj, err = v.factory.AdoptImport(res.Path, res.Meshes)
			}
			if err == nil {
				status.Object = obj.ID()
			}
			res.Err = err
		}
		if res.Err != nil {
			log.Printf("[Viewport] import %s failed: %v", p.path, res.Err)
			status.State, status.Err = ImportFailed, res.Err
			v.mu.Lock()
			v.failures = append(v.failures, status)
			v.mu.Unlock()
		}
		if onImport != nil {
			onImport(status)
		}
	}
}

// reloadChanged rebinds scene meshes whose files changed on disk. Keys claimed by the reload hook
// are left to it.
func (v *viewport) reloadChanged() {
	v.mu.Lock()
	hook := v.reloadHook
	v.mu.Unlock()

	for _, key := range v.resources.ProcessChanges() {
		if hook != nil && hook(key) {
			continue
		}
		if _, err := v.factory.Reload(key); err != nil {
			log.Printf("[Viewport] reload %s: %v", key, err)
		}
	}
}

func (v *viewport) FrameSelected() bool {
	obj, ok := v.scene.Selected()
	if !ok {
		return false
	}
	world, err := v.scene.WorldMatrix(obj.ID())
	if err != nil {
		return false
	}
	lo, hi := worldBounds(obj, world)
	v.camera.FrameBounds(lo, hi, v.duration())
	return true
}

func (v *viewport) FrameAll() bool {
	var lo, hi common.Vec3
	found := false
	v.scene.Walk(func(obj scene.SceneObject, world common.Mat4) bool {
		if !obj.Visible() {
			return false
		}
		if m := obj.Mesh(); m == nil || m.Destroyed() {
			return true
		}
		olo, ohi := worldBounds(obj, world)
		if !found {
			lo, hi, found = olo, ohi, true
			return true
		}
		lo, hi = lo.Min(olo), hi.Max(ohi)
		return true
	})
	if !found {
		return false
	}
	v.camera.FrameBounds(lo, hi, v.duration())
	return true
}

// worldBounds returns the world-space box of obj's mesh, or a unit box at its origin.
func worldBounds(obj scene.SceneObject, world common.Mat4) (common.Vec3, common.Vec3) {
	if m := obj.Mesh(); m != nil && !m.Destroyed() {
		return world.TransformAABB(m.Bounds())
	}
	center := world.TransformPoint(common.Vec3{})
	ext := common.Vec3Splat(unitExtent)
	return center.Sub(ext), center.Add(ext)
}

func (v *viewport) DeleteSelected() ([]scene.ID, error) {
	obj, ok := v.scene.Selected()
	if !ok {
		return nil, nil
	}
	id := obj.ID()
	removed, err := v.scene.RemoveObject(id)
	if err != nil {
		return nil, err
	}
	v.notifySelection(id)
	return removed, nil
}

func (v *viewport) DuplicateSelected() (scene.SceneObject, error) {
	obj, ok := v.scene.Selected()
	if !ok {
		return nil, nil
	}
	id, err := v.scene.Duplicate(obj.ID())
	if err != nil {
		return nil, err
	}
	if err := v.Select(id); err != nil {
		return nil, err
	}
	dup, _ := v.scene.Get(id)
	return dup, nil
}

func (v *viewport) ToggleProjection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch p := v.camera.ProjectionMode().(type) {
	case camera.Perspective:
		v.perspective = p
		v.camera.SetProjectionMode(v.orthographic)
	case camera.Orthographic:
		v.orthographic = p
		v.camera.SetProjectionMode(v.perspective)
	}
}

func (v *viewport) IsAnimating() bool {
	return v.camera.IsAnimating()
}

func (v *viewport) IsMouseInViewport(x, y float32) bool {
	return v.camera.IsMouseInViewport(x, y, v.Bounds())
}

func (v *viewport) SetSelectionCallback(fn func(obj scene.SceneObject)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onSelection = fn
}

func (v *viewport) SetImportCallback(fn func(status ImportStatus)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onImport = fn
}

func (v *viewport) SetReloadHook(fn func(key string) bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reloadHook = fn
}

func (v *viewport) SaveScene(path string) error {
	if err := scene.SaveSnapshot(path, v.scene.Snapshot()); err != nil {
		return err
	}
	log.Printf("[Viewport] saved %d objects to %s", v.scene.Len(), path)
	return nil
}

func (v *viewport) LoadScene(path string) error {
	snap, err := scene.LoadSnapshot(path)
	if err != nil {
		return err
	}
	prev := v.selectedID()
	err = v.factory.Restore(snap)
	v.notifySelection(prev)
	log.Printf("[Viewport] loaded %d objects from %s", v.scene.Len(), path)
	return err
}

func (v *viewport) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.pending = nil
	v.mu.Unlock()
	v.importer.Close()
}

func (v *viewport) selectedID() scene.ID {
	if obj, ok := v.scene.Selected(); ok {
		return obj.ID()
	}
	return scene.NoID
}

func (v *viewport) duration() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frameDuration
}

// notifySelection calls the selection callback when the selection differs from prev.
func (v *viewport) notifySelection(prev scene.ID) {
	obj, ok := v.scene.Selected()
	cur := scene.NoID
	if ok {
		cur = obj.ID()
	} else {
		obj = nil
	}
	if cur == prev {
		return
	}
	v.mu.Lock()
	fn := v.onSelection
	v.mu.Unlock()
	if fn != nil {
		fn(obj)
	}
}
