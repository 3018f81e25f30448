package resource_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/resource"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResource struct {
	key      string
	released atomic.Int32
	log      *[]string
	logMu    *sync.Mutex
}

func (r *fakeResource) Release() {
	r.released.Add(1)
	if r.log != nil {
		r.logMu.Lock()
		*r.log = append(*r.log, r.key)
		r.logMu.Unlock()
	}
}

func newManager(t *testing.T, options ...resource.ManagerBuilderOption) resource.Manager {
	t.Helper()
	m, err := resource.NewManager(options...)
	require.NoError(t, err)
	t.Cleanup(m.Shutdown)
	return m
}

func TestGetOrCreateReturnsSameInstance(t *testing.T) {
	m := newManager(t)
	calls := 0
	factory := func() (resource.Resource, error) {
		calls++
		return &fakeResource{key: "a"}, nil
	}

	first, err := m.GetOrCreate("a", factory)
	require.NoError(t, err)
	second, err := m.GetOrCreate("a", factory)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, resource.StatusReady, m.Status("a"))
	assert.Equal(t, []string{"a"}, m.Keys())
}

func TestConcurrentRequestsCreateOnce(t *testing.T) {
	m := newManager(t)
	var calls atomic.Int32
	gate := make(chan struct{})
	factory := func() (resource.Resource, error) {
		calls.Add(1)
		<-gate
		return &fakeResource{key: "mesh"}, nil
	}

	const n = 32
	results := make([]resource.Resource, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := m.GetOrCreate("mesh", factory)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}

	assert.Eventually(t, func() bool { return m.Status("mesh") == resource.StatusLoading }, time.Second, time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, 1, m.Len())
}

func TestFactoryFailureIsRecordedAndNotCached(t *testing.T) {
	m := newManager(t)
	boom := errors.New("out of memory")

	_, err := m.GetOrCreate("bad", func() (resource.Resource, error) { return nil, boom })
	assert.ErrorIs(t, err, common.ErrResourceCreation)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, resource.StatusFailed, m.Status("bad"))
	assert.ErrorIs(t, m.Failure("bad"), boom)
	_, ok := m.Get("bad")
	assert.False(t, ok)

	// already classified failures keep their kind
	_, err = m.GetOrCreate("import", func() (resource.Resource, error) {
		return nil, common.ImportError("test", "x.obj", boom)
	})
	assert.ErrorIs(t, err, common.ErrImportFailure)
	assert.NotErrorIs(t, err, common.ErrResourceCreation)

	// a later success clears the failure
	_, err = m.GetOrCreate("bad", func() (resource.Resource, error) { return &fakeResource{}, nil })
	require.NoError(t, err)
	assert.Equal(t, resource.StatusReady, m.Status("bad"))
	assert.NoError(t, m.Failure("bad"))
}

func TestFactoryPanicAndNilResource(t *testing.T) {
	m := newManager(t)
	_, err := m.GetOrCreate("panic", func() (resource.Resource, error) { panic("device lost") })
	assert.ErrorIs(t, err, common.ErrResourceCreation)

	_, err = m.GetOrCreate("nil", func() (resource.Resource, error) { return nil, nil })
	assert.ErrorIs(t, err, common.ErrResourceCreation)

	_, err = m.GetOrCreate("nofactory", nil)
	assert.ErrorIs(t, err, common.ErrContractViolation)
}

func TestRelease(t *testing.T) {
	var evicted []string
	m := newManager(t, resource.WithEvictionHandler(func(k string) { evicted = append(evicted, k) }))
	r := &fakeResource{}
	_, err := m.GetOrCreate("k", func() (resource.Resource, error) { return r, nil })
	require.NoError(t, err)

	require.NoError(t, m.Release("k"))
	assert.Equal(t, int32(1), r.released.Load())
	assert.Equal(t, resource.StatusMissing, m.Status("k"))
	assert.Equal(t, []string{"k"}, evicted)

	err = m.Release("k")
	assert.ErrorIs(t, err, common.ErrLookup)
}

func TestShutdownReleasesInKeyOrder(t *testing.T) {
	m, err := resource.NewManager()
	require.NoError(t, err)

	var order []string
	var mu sync.Mutex
	for _, k := range []string{"zeta", "alpha", "mid"} {
		_, err := m.GetOrCreate(k, func() (resource.Resource, error) {
			return &fakeResource{key: k, log: &order, logMu: &mu}, nil
		})
		require.NoError(t, err)
	}

	m.Shutdown()
	m.Shutdown()
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, order)
	assert.Zero(t, m.Len())

	_, err = m.GetOrCreate("alpha", func() (resource.Resource, error) { return &fakeResource{}, nil })
	assert.ErrorIs(t, err, common.ErrContractViolation)
}

type otherResource struct{}

func (otherResource) Release() {}

func TestGetOrCreateAs(t *testing.T) {
	m := newManager(t)
	r, err := resource.GetOrCreateAs(m, "typed", func() (*fakeResource, error) { return &fakeResource{key: "typed"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "typed", r.key)

	_, err = resource.GetOrCreateAs(m, "typed", func() (otherResource, error) { return otherResource{}, nil })
	assert.ErrorIs(t, err, common.ErrContractViolation)
}

func TestNormalizeKey(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)

	key, err := resource.NormalizeKey("~/models/../models/Ship.GLB")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "models", "Ship.GLB"), key)

	rel, err := resource.NormalizeKey("assets/Cube.OBJ")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rel))
	assert.Equal(t, "Cube.OBJ", filepath.Base(rel))

	lower, err := resource.NormalizeKey("assets/Cube.obj")
	require.NoError(t, err)
	assert.NotEqual(t, rel, lower, "files differing only in extension case stay distinct")

	_, err = resource.NormalizeKey("  ")
	assert.ErrorIs(t, err, common.ErrContractViolation)
}

func TestWatchRequiresWatcher(t *testing.T) {
	m := newManager(t)
	err := m.Watch("k", "whatever.obj")
	assert.ErrorIs(t, err, common.ErrContractViolation)
	assert.Nil(t, m.ProcessChanges())
}

func TestWatchEvictsChangedFiles(t *testing.T) {
	m := newManager(t, resource.WithFileWatcher())
	path := filepath.Join(t.TempDir(), "cube.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\n"), 0o644))

	key, err := resource.NormalizeKey(path)
	require.NoError(t, err)
	r := &fakeResource{}
	_, err = m.GetOrCreate(key, func() (resource.Resource, error) { return r, nil })
	require.NoError(t, err)
	require.NoError(t, m.Watch(key, path))

	assert.Empty(t, m.ProcessChanges())
	require.NoError(t, os.WriteFile(path, []byte("v 1 1 1\n"), 0o644))

	var evicted []string
	assert.Eventually(t, func() bool {
		evicted = append(evicted, m.ProcessChanges()...)
		return len(evicted) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{key}, evicted)
	assert.Equal(t, int32(1), r.released.Load())
	assert.Equal(t, resource.StatusMissing, m.Status(key))
}
