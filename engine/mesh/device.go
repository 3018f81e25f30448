package mesh

// Handle is a GPU object that must be released explicitly.
type Handle interface {
	Release()
}

// BufferUsage tells the Device how a buffer is bound.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
	BufferUsageUniform
)

// Device creates GPU objects for meshes and shaders. The renderer supplies the real implementation;
// any type with these two methods can stand in for it.
type Device interface {
	// CreateBuffer allocates a GPU buffer and uploads data into it.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - usage: how the buffer will be bound
	//   - data: initial contents, its length is the buffer size
	//
	// Returns:
	//   - Handle: the buffer handle
	//   - error: error if the device failed to create the buffer
	CreateBuffer(label string, usage BufferUsage, data []byte) (Handle, error)

	// CreateShaderModule compiles a WGSL source into a shader module.
	//
	// Parameters:
	//   - label: debug label for the module
	//   - source: WGSL source code
	//
	// Returns:
	//   - Handle: the shader module handle
	//   - error: error if compilation failed
	CreateShaderModule(label, source string) (Handle, error)
}
