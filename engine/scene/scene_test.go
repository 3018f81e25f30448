package scene_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh/meshtest"
	"github.com/Carmen-Shannon/oxy-editor/engine/ray"
	"github.com/Carmen-Shannon/oxy-editor/engine/resource"
	"github.com/Carmen-Shannon/oxy-editor/engine/scene"
	"github.com/Carmen-Shannon/oxy-editor/engine/transform"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	scene   scene.Scene
	factory scene.Factory
	res     resource.Manager
	device  *meshtest.Device
}

func newFixture(t *testing.T, options ...scene.FactoryBuilderOption) *fixture {
	t.Helper()
	res, err := resource.NewManager()
	require.NoError(t, err)
	t.Cleanup(res.Shutdown)
	sc := scene.NewScene()
	device := meshtest.NewDevice()
	return &fixture{
		scene:   sc,
		factory: scene.NewFactory(sc, device, res, options...),
		res:     res,
		device:  device,
	}
}

func (f *fixture) cube(t *testing.T, pos common.Vec3) scene.SceneObject {
	t.Helper()
	obj, err := f.factory.CreateCube()
	require.NoError(t, err)
	obj.SetPosition(pos)
	return obj
}

func TestFindByRayReturnsGlobalNearest(t *testing.T) {
	f := newFixture(t)
	near := f.cube(t, common.Vec3{})

	group, err := f.factory.CreateEmpty()
	require.NoError(t, err)
	group.SetPosition(common.Vec3{0, 0, 2})
	far := f.cube(t, common.Vec3{})
	require.NoError(t, f.scene.Reparent(far.ID(), group.ID()))
	far.SetPosition(common.Vec3{})

	r := ray.MustNew(common.Vec3{0, 0, 5}, common.Vec3{0, 0, -1})
	hit, ok := f.scene.FindByRay(r)
	require.True(t, ok)
	assert.Equal(t, far.ID(), hit.ID)
	assert.InDelta(t, 2.5, hit.Distance, 1e-4)
	assert.True(t, hit.Point.ApproxEqual(common.Vec3{0, 0, 2.5}, 1e-4))

	// hiding the group hides its child as well
	require.NoError(t, f.scene.SetVisible(group.ID(), false))
	hit, ok = f.scene.FindByRay(r)
	require.True(t, ok)
	assert.Equal(t, near.ID(), hit.ID)
	assert.InDelta(t, 4.5, hit.Distance, 1e-4)

	require.NoError(t, f.scene.SetVisible(near.ID(), false))
	_, ok = f.scene.FindByRay(r)
	assert.False(t, ok)
}

func TestFindByRayUsesWorldTransform(t *testing.T) {
	f := newFixture(t)
	obj := f.cube(t, common.Vec3{3, 0, 0})
	obj.SetScale(common.Vec3{2, 2, 2})

	_, ok := f.scene.FindByRay(ray.MustNew(common.Vec3{0, 0, 5}, common.Vec3{0, 0, -1}))
	assert.False(t, ok)

	hit, ok := f.scene.FindByRay(ray.MustNew(common.Vec3{3.9, 0, 5}, common.Vec3{0, 0, -1}))
	require.True(t, ok)
	assert.Equal(t, obj.ID(), hit.ID)
	assert.InDelta(t, 4, hit.Distance, 1e-4)
}

func TestFindByRayFromInsideObject(t *testing.T) {
	f := newFixture(t)
	big, err := f.factory.CreatePrimitive(mesh.PrimitiveCube, mesh.PrimitiveParams{Size: 10})
	require.NoError(t, err)
	small := f.cube(t, common.Vec3{0, 0, -2})

	hit, ok := f.scene.FindByRay(ray.MustNew(common.Vec3{}, common.Vec3{0, 0, -1}))
	require.True(t, ok)
	assert.Equal(t, small.ID(), hit.ID)
	assert.InDelta(t, 1.5, hit.Distance, 1e-4)
	assert.NotEqual(t, big.ID(), hit.ID)
}

func TestFindByRaySkipsDestroyedMeshes(t *testing.T) {
	f := newFixture(t)
	obj := f.cube(t, common.Vec3{})
	require.NoError(t, f.res.Release(obj.MeshKey()))
	require.True(t, obj.Mesh().Destroyed())

	_, ok := f.scene.FindByRay(ray.MustNew(common.Vec3{0, 0, 5}, common.Vec3{0, 0, -1}))
	assert.False(t, ok)
}

func TestRemoveAncestorClearsSelection(t *testing.T) {
	sc := scene.NewScene()
	root := scene.NewSceneObject(scene.WithName("root"))
	child := scene.NewSceneObject(scene.WithName("child"))
	grandchild := scene.NewSceneObject(scene.WithName("grandchild"))
	other := scene.NewSceneObject(scene.WithName("other"))

	rootID, err := sc.AddObject(scene.NoID, root)
	require.NoError(t, err)
	childID, err := sc.AddObject(rootID, child)
	require.NoError(t, err)
	grandID, err := sc.AddObject(childID, grandchild)
	require.NoError(t, err)
	otherID, err := sc.AddObject(scene.NoID, other)
	require.NoError(t, err)

	require.NoError(t, sc.SetSelected(grandID, true))
	assert.True(t, sc.IsSelected(grandID))
	assert.True(t, grandchild.Selected())

	removed, err := sc.RemoveObject(rootID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []scene.ID{rootID, childID, grandID}, removed)
	assert.Equal(t, rootID, removed[0])

	_, ok := sc.Selected()
	assert.False(t, ok)
	assert.False(t, sc.IsSelected(grandID))
	assert.False(t, grandchild.Selected())
	for _, id := range removed {
		_, ok := sc.Get(id)
		assert.False(t, ok)
	}
	assert.Equal(t, 1, sc.Len())
	assert.Equal(t, []scene.ID{otherID}, sc.Roots())
	_, ok = sc.FindByName("child")
	assert.False(t, ok)

	_, err = sc.RemoveObject(rootID)
	assert.ErrorIs(t, err, common.ErrLookup)

	// removed objects are detached and may be added again
	_, err = sc.AddObject(scene.NoID, child)
	assert.NoError(t, err)
}

func TestSelectionIsSingle(t *testing.T) {
	sc := scene.NewScene()
	a := scene.NewSceneObject()
	b := scene.NewSceneObject()
	aID, err := sc.AddObject(scene.NoID, a)
	require.NoError(t, err)
	bID, err := sc.AddObject(scene.NoID, b)
	require.NoError(t, err)

	require.NoError(t, sc.SetSelected(aID, true))
	require.NoError(t, sc.SetSelected(bID, true))
	assert.False(t, a.Selected())
	assert.True(t, b.Selected())
	sel, ok := sc.Selected()
	require.True(t, ok)
	assert.Equal(t, bID, sel.ID())

	require.NoError(t, sc.SetSelected(aID, false))
	assert.True(t, sc.IsSelected(bID))

	sc.ClearSelection()
	assert.False(t, b.Selected())
	assert.False(t, sc.IsSelected(bID))

	assert.ErrorIs(t, sc.SetSelected(99, true), common.ErrLookup)
}

func TestAddObjectErrors(t *testing.T) {
	sc := scene.NewScene()
	_, err := sc.AddObject(scene.NoID, nil)
	assert.ErrorIs(t, err, common.ErrContractViolation)

	_, err = sc.AddObject(42, scene.NewSceneObject())
	assert.ErrorIs(t, err, common.ErrLookup)

	obj := scene.NewSceneObject()
	_, err = sc.AddObject(scene.NoID, obj)
	require.NoError(t, err)
	_, err = sc.AddObject(scene.NoID, obj)
	assert.ErrorIs(t, err, common.ErrContractViolation)

	other := scene.NewScene()
	_, err = other.AddObject(scene.NoID, obj)
	assert.ErrorIs(t, err, common.ErrContractViolation)
	assert.Zero(t, other.Len())
}

func TestUniqueNames(t *testing.T) {
	f := newFixture(t)
	var names []string
	for i := 0; i < 3; i++ {
		obj, err := f.factory.CreateCube()
		require.NoError(t, err)
		names = append(names, obj.Name())
	}
	assert.Equal(t, []string{"Cube", "Cube.001", "Cube.002"}, names)

	empty, err := f.factory.CreateEmpty()
	require.NoError(t, err)
	assert.Equal(t, "Empty", empty.Name())

	name, err := f.scene.Rename(empty.ID(), "Cube.001")
	require.NoError(t, err)
	assert.Equal(t, "Cube.003", name)

	name, err = f.scene.Rename(empty.ID(), "Pivot")
	require.NoError(t, err)
	assert.Equal(t, "Pivot", name)
	found, ok := f.scene.FindByName("Pivot")
	require.True(t, ok)
	assert.Equal(t, empty.ID(), found.ID())
	_, ok = f.scene.FindByName("Cube.003")
	assert.False(t, ok)
}

func TestWorldMatrixMatchesChain(t *testing.T) {
	sc := scene.NewScene()
	tA := transform.New(common.Vec3{1, 2, 3}, common.Vec3{0.3, 0, 0}, common.Vec3{2, 2, 2})
	tB := transform.New(common.Vec3{0, 1, 0}, common.Vec3{0, 0.5, 0.2}, common.Vec3{1, 1, 1})
	tC := transform.New(common.Vec3{-1, 0, 4}, common.Vec3{}, common.Vec3{1, 3, 1})

	a, err := sc.AddObject(scene.NoID, scene.NewSceneObject(scene.WithTransform(tA)))
	require.NoError(t, err)
	b, err := sc.AddObject(a, scene.NewSceneObject(scene.WithTransform(tB)))
	require.NoError(t, err)
	c, err := sc.AddObject(b, scene.NewSceneObject(scene.WithTransform(tC)))
	require.NoError(t, err)

	world, err := sc.WorldMatrix(c)
	require.NoError(t, err)
	want := tA.LocalMatrix().Mul(tB.LocalMatrix()).Mul(tC.LocalMatrix())
	assert.True(t, world.ApproxEqual(want, 1e-5))

	var visited []scene.ID
	sc.Walk(func(obj scene.SceneObject, w common.Mat4) bool {
		visited = append(visited, obj.ID())
		if obj.ID() == c {
			assert.True(t, w.ApproxEqual(want, 1e-5))
		}
		return true
	})
	assert.Equal(t, []scene.ID{a, b, c}, visited)

	_, err = sc.WorldMatrix(77)
	assert.ErrorIs(t, err, common.ErrLookup)
}

func TestReparentKeepsWorldTransform(t *testing.T) {
	sc := scene.NewScene()
	parentT := transform.New(common.Vec3{1, 2, 3}, common.Vec3{0, math32.Pi / 2, 0}, common.Vec3{2, 2, 2})
	parent, err := sc.AddObject(scene.NoID, scene.NewSceneObject(scene.WithTransform(parentT)))
	require.NoError(t, err)
	childObj := scene.NewSceneObject(scene.WithTransform(transform.New(
		common.Vec3{5, 0, 0}, common.Vec3{0.1, 0.2, 0}, common.Vec3{1, 1, 1},
	)))
	child, err := sc.AddObject(scene.NoID, childObj)
	require.NoError(t, err)

	before, err := sc.WorldMatrix(child)
	require.NoError(t, err)
	require.NoError(t, sc.Reparent(child, parent))

	after, err := sc.WorldMatrix(child)
	require.NoError(t, err)
	assert.True(t, after.ApproxEqual(before, 1e-4), "want %v, got %v", before, after)
	assert.Equal(t, parent, childObj.Parent())
	assert.Equal(t, []scene.ID{child}, sc.Children(parent))
	assert.Equal(t, []scene.ID{parent}, sc.Roots())

	// cycles are rejected and leave the tree untouched
	err = sc.Reparent(parent, child)
	assert.ErrorIs(t, err, common.ErrContractViolation)
	assert.ErrorIs(t, sc.Reparent(parent, parent), common.ErrContractViolation)
	assert.ErrorIs(t, sc.Reparent(child, 99), common.ErrLookup)

	require.NoError(t, sc.Reparent(child, scene.NoID))
	back, err := sc.WorldMatrix(child)
	require.NoError(t, err)
	assert.True(t, back.ApproxEqual(before, 1e-4))
	assert.ElementsMatch(t, []scene.ID{parent, child}, sc.Roots())
}

func TestDuplicateCopiesSubtree(t *testing.T) {
	f := newFixture(t)
	group, err := f.factory.CreateEmpty()
	require.NoError(t, err)
	cube := f.cube(t, common.Vec3{})
	require.NoError(t, f.scene.Reparent(cube.ID(), group.ID()))
	cube.SetColor(common.Vec4{1, 0, 0, 1})

	copyID, err := f.scene.Duplicate(group.ID())
	require.NoError(t, err)
	cp, ok := f.scene.Get(copyID)
	require.True(t, ok)
	assert.Equal(t, "Empty.001", cp.Name())
	require.Len(t, cp.Children(), 1)

	cubeCopy, ok := f.scene.Get(cp.Children()[0])
	require.True(t, ok)
	assert.Equal(t, "Cube.001", cubeCopy.Name())
	assert.Same(t, cube.Mesh(), cubeCopy.Mesh())
	assert.Equal(t, cube.MeshKey(), cubeCopy.MeshKey())
	assert.Equal(t, common.Vec4{1, 0, 0, 1}, cubeCopy.Color())
	require.NotNil(t, cubeCopy.Primitive())
	assert.Equal(t, mesh.PrimitiveCube, cubeCopy.Primitive().Kind)

	cubeCopy.SetColor(common.Vec4{0, 1, 0, 1})
	assert.Equal(t, common.Vec4{1, 0, 0, 1}, cube.Color())
	assert.Equal(t, 4, f.scene.Len())
	assert.Equal(t, 1, f.res.Len())
}

func TestReplaceMeshAndMeshKeys(t *testing.T) {
	f := newFixture(t)
	a := f.cube(t, common.Vec3{})
	f.cube(t, common.Vec3{})
	_, err := f.factory.CreateSphere()
	require.NoError(t, err)

	keys := f.scene.MeshKeys()
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, a.MeshKey())

	assert.Equal(t, 2, f.scene.ReplaceMesh(a.MeshKey(), nil))
	assert.Nil(t, a.Mesh())
	assert.NotEmpty(t, a.MeshKey())
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	obj := f.cube(t, common.Vec3{})
	require.NoError(t, f.scene.SetSelected(obj.ID(), true))

	f.scene.Clear()
	assert.Zero(t, f.scene.Len())
	assert.Empty(t, f.scene.Roots())
	_, ok := f.scene.Selected()
	assert.False(t, ok)
	assert.Equal(t, scene.NoID, obj.ID())
	// meshes stay owned by the resource manager
	assert.Equal(t, 1, f.res.Len())
}

func TestKindText(t *testing.T) {
	for _, k := range []scene.Kind{scene.KindEmpty, scene.KindPrimitive, scene.KindMesh, scene.KindCamera, scene.KindLight} {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var back scene.Kind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}
	var k scene.Kind
	assert.Error(t, k.UnmarshalText([]byte("Teapot")))
	_, err := scene.Kind(42).MarshalText()
	assert.Error(t, err)
}
