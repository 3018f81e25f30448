package scene

import "github.com/Carmen-Shannon/oxy-editor/engine/loader"

// FactoryBuilderOption is a functional option for configuring a Factory via NewFactory.
type FactoryBuilderOption func(f *factory)

// WithMeshLoader sets the loader used by ImportMesh and ImportAll.
// Defaults to loader.NewMeshLoader().
//
// Parameters:
//   - l: the mesh loader
//
// Returns:
//   - FactoryBuilderOption: option function to apply
func WithMeshLoader(l loader.MeshLoader) FactoryBuilderOption {
	return func(f *factory) {
		f.loader = l
	}
}

// WithHotReload registers imported files with the resource manager's file watcher, so edits on
// disk evict the cached meshes. The manager must be created with resource.WithFileWatcher.
//
// Returns:
//   - FactoryBuilderOption: option function to apply
func WithHotReload() FactoryBuilderOption {
	return func(f *factory) {
		f.hotReload = true
	}
}
