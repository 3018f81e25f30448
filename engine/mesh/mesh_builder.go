package mesh

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithKey is an option builder that sets the resource key of the Mesh.
//
// Parameters:
//   - key: the resource manager key the mesh is cached under
//
// Returns:
//   - MeshBuilderOption: a function that applies the key option to a mesh
func WithKey(key string) MeshBuilderOption {
	return func(m *mesh) {
		m.key = key
	}
}

// WithLabel is an option builder that sets the debug label used for GPU buffers.
// Defaults to the key, then the MeshData name.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - MeshBuilderOption: a function that applies the label option to a mesh
func WithLabel(label string) MeshBuilderOption {
	return func(m *mesh) {
		m.label = label
	}
}
