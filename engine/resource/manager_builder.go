package resource

// managerConfig collects options before the manager is built, since some of them start goroutines.
type managerConfig struct {
	watch   bool
	onEvict []func(key string)
}

// ManagerBuilderOption is a functional option for configuring a Manager via NewManager.
type ManagerBuilderOption func(*managerConfig)

// WithFileWatcher is an option builder that enables Watch and ProcessChanges.
//
// Returns:
//   - ManagerBuilderOption: a function that enables the file watcher
func WithFileWatcher() ManagerBuilderOption {
	return func(c *managerConfig) {
		c.watch = true
	}
}

// WithEvictionHandler is an option builder that registers a callback run after a key is released.
// Handlers run on the releasing goroutine after the manager lock is dropped.
//
// Parameters:
//   - fn: the callback, receiving the released key
//
// Returns:
//   - ManagerBuilderOption: a function that applies the eviction handler option
func WithEvictionHandler(fn func(key string)) ManagerBuilderOption {
	return func(c *managerConfig) {
		if fn != nil {
			c.onEvict = append(c.onEvict, fn)
		}
	}
}
