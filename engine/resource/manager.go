package resource

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"golang.org/x/sync/singleflight"
)

// Resource is anything the Manager can own. Release frees the underlying GPU objects and must be idempotent.
type Resource interface {
	Release()
}

// Factory creates the resource for a key on a cache miss.
type Factory func() (Resource, error)

// Status describes a key's state for load-status display.
type Status int

const (
	// StatusMissing means the key was never requested or has been released.
	StatusMissing Status = iota
	// StatusLoading means a factory for the key is running.
	StatusLoading
	// StatusReady means a live resource is cached under the key.
	StatusReady
	// StatusFailed means the last factory for the key failed; Failure returns the cause.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "missing"
	}
}

// manager is the implementation of the Manager interface.
type manager struct {
	mu       *sync.Mutex
	group    singleflight.Group
	cache    map[string]Resource
	loading  map[string]bool
	failures map[string]error
	closed   bool

	watcher *watcher
	onEvict []func(key string)
}

// Manager is the session-scoped cache mapping resource keys to owned GPU resources.
// At most one live resource exists per key; concurrent GetOrCreate calls for the same key share a single factory run.
type Manager interface {
	// GetOrCreate returns the cached resource for key, running factory on a miss.
	// A failed factory leaves nothing cached and records the failure for Failure.
	//
	// Parameters:
	//   - key: the resource key (see NormalizeKey for file assets)
	//   - factory: the constructor invoked at most once per miss
	//
	// Returns:
	//   - Resource: the shared resource
	//   - error: a ResourceCreationFailure (or the factory's already classified error), or ContractViolation after Shutdown
	GetOrCreate(key string, factory Factory) (Resource, error)

	// Get returns the cached resource for key without creating it.
	//
	// Parameters:
	//   - key: the resource key
	//
	// Returns:
	//   - Resource: the resource, nil when absent
	//   - bool: true if the key is cached
	Get(key string) (Resource, bool)

	// Release evicts key and releases its resource. It also clears a recorded failure.
	//
	// Parameters:
	//   - key: the resource key
	//
	// Returns:
	//   - error: LookupFailure when the key holds neither a resource nor a failure
	Release(key string) error

	// Shutdown releases every cached resource in sorted key order and rejects further use.
	// It is safe to call more than once.
	Shutdown()

	// Status reports the key's load state.
	//
	// Parameters:
	//   - key: the resource key
	//
	// Returns:
	//   - Status: the current status
	Status(key string) Status

	// Failure returns the recorded failure for key, or nil.
	//
	// Parameters:
	//   - key: the resource key
	//
	// Returns:
	//   - error: the last creation failure
	Failure(key string) error

	// Keys returns the cached keys in sorted order.
	//
	// Returns:
	//   - []string: the keys
	Keys() []string

	// Len returns the number of cached resources.
	//
	// Returns:
	//   - int: the count
	Len() int

	// Watch evicts key whenever the file at path changes on disk. It requires WithFileWatcher.
	//
	// Parameters:
	//   - key: the resource key to evict
	//   - path: the file backing the resource
	//
	// Returns:
	//   - error: ContractViolation when watching is disabled, or the watcher's error
	Watch(key, path string) error

	// ProcessChanges evicts keys whose files changed since the last call and returns them,
	// sorted, so the caller can reload. It must be called from the thread that owns the cache users.
	//
	// Returns:
	//   - []string: the evicted keys
	ProcessChanges() []string
}

var _ Manager = &manager{}

// NewManager creates an empty resource Manager.
//
// Parameters:
//   - options: a variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the manager
//   - error: error if the file watcher cannot be started
func NewManager(options ...ManagerBuilderOption) (Manager, error) {
	m := &manager{
		mu:       &sync.Mutex{},
		cache:    make(map[string]Resource),
		loading:  make(map[string]bool),
		failures: make(map[string]error),
	}
	cfg := managerConfig{}
	for _, option := range options {
		option(&cfg)
	}
	m.onEvict = cfg.onEvict
	if cfg.watch {
		w, err := newWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to start file watcher: %w", err)
		}
		m.watcher = w
	}
	return m, nil
}

func (m *manager) GetOrCreate(key string, factory Factory) (Resource, error) {
	if factory == nil {
		return nil, common.ContractError("resource.GetOrCreate", "nil factory for %q", key)
	}
	if r, ok, err := m.lookup(key); ok || err != nil {
		return r, err
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		// a flight that finished between lookup and Do has already cached the key
		if r, ok, err := m.lookup(key); ok || err != nil {
			return r, err
		}

		m.mu.Lock()
		m.loading[key] = true
		m.mu.Unlock()

		r, err := runFactory(key, factory)

		m.mu.Lock()
		delete(m.loading, key)
		if err != nil {
			m.failures[key] = err
			m.mu.Unlock()
			log.Printf("[Resources] failed to create %s: %v", key, err)
			return nil, err
		}
		if m.closed {
			m.mu.Unlock()
			r.Release()
			return nil, common.ContractError("resource.GetOrCreate", "manager shut down while creating %q", key)
		}
		m.cache[key] = r
		delete(m.failures, key)
		m.mu.Unlock()
		log.Printf("[Resources] created %s", key)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Resource), nil
}

// lookup returns the cached resource, or a ContractViolation once the manager is shut down.
func (m *manager) lookup(key string) (Resource, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, common.ContractError("resource.GetOrCreate", "manager is shut down")
	}
	r, ok := m.cache[key]
	return r, ok, nil
}

// runFactory calls factory, classifying plain errors and panics as resource creation failures.
func runFactory(key string, factory Factory) (r Resource, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, common.ResourceError("resource.GetOrCreate", key, fmt.Errorf("factory panic: %v", p))
		}
	}()
	r, err = factory()
	if err != nil {
		var classified *common.EngineError
		if !errors.As(err, &classified) {
			err = common.ResourceError("resource.GetOrCreate", key, err)
		}
		return nil, err
	}
	if r == nil {
		return nil, common.ResourceError("resource.GetOrCreate", key, errors.New("factory returned no resource"))
	}
	return r, nil
}

func (m *manager) Get(key string) (Resource, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.cache[key]
	return r, ok
}

func (m *manager) Release(key string) error {
	m.mu.Lock()
	r, ok := m.cache[key]
	_, failed := m.failures[key]
	delete(m.cache, key)
	delete(m.failures, key)
	handlers := m.onEvict
	m.mu.Unlock()

	if !ok {
		if failed {
			return nil
		}
		return common.LookupError("resource.Release", key)
	}
	r.Release()
	log.Printf("[Resources] released %s", key)
	for _, h := range handlers {
		h(key)
	}
	return nil
}

func (m *manager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	keys := m.sortedKeys()
	cache := m.cache
	m.cache = make(map[string]Resource)
	m.failures = make(map[string]error)
	w := m.watcher
	m.mu.Unlock()

	if w != nil {
		w.close()
	}
	for _, k := range keys {
		cache[k].Release()
	}
	log.Printf("[Resources] shutdown released %d resources", len(keys))
}

func (m *manager) Status(key string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.cache[key] != nil:
		return StatusReady
	case m.loading[key]:
		return StatusLoading
	case m.failures[key] != nil:
		return StatusFailed
	default:
		return StatusMissing
	}
}

func (m *manager) Failure(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[key]
}

func (m *manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedKeys()
}

func (m *manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

func (m *manager) Watch(key, path string) error {
	m.mu.Lock()
	w, closed := m.watcher, m.closed
	m.mu.Unlock()
	if closed {
		return common.ContractError("resource.Watch", "manager is shut down")
	}
	if w == nil {
		return common.ContractError("resource.Watch", "file watching is disabled")
	}
	return w.add(key, path)
}

func (m *manager) ProcessChanges() []string {
	m.mu.Lock()
	w := m.watcher
	m.mu.Unlock()
	if w == nil {
		return nil
	}

	var evicted []string
	for _, key := range w.drain() {
		if err := m.Release(key); err == nil {
			evicted = append(evicted, key)
		}
	}
	return evicted
}

func (m *manager) sortedKeys() []string {
	keys := make([]string, 0, len(m.cache))
	for k := range m.cache {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// GetOrCreateAs is GetOrCreate with the resource type asserted to T.
//
// Parameters:
//   - m: the manager
//   - key: the resource key
//   - factory: the typed constructor
//
// Returns:
//   - T: the shared resource
//   - error: the creation failure, or ContractViolation when the key holds a different type
func GetOrCreateAs[T Resource](m Manager, key string, factory func() (T, error)) (T, error) {
	var zero T
	r, err := m.GetOrCreate(key, func() (Resource, error) {
		v, err := factory()
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	t, ok := r.(T)
	if !ok {
		return zero, common.ContractError("resource.GetOrCreateAs", "key %q holds %T", key, r)
	}
	return t, nil
}
