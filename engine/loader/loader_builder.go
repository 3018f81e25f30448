package loader

// MeshLoaderBuilderOption is a functional option for configuring a MeshLoader via NewMeshLoader.
type MeshLoaderBuilderOption func(*meshLoader)

// WithFormatLoaders is an option builder that replaces the default loaders with the given ones,
// tried in order.
//
// Parameters:
//   - loaders: the format loaders to register
//
// Returns:
//   - MeshLoaderBuilderOption: a function that applies the loaders option to a mesh loader
func WithFormatLoaders(loaders ...FormatLoader) MeshLoaderBuilderOption {
	return func(l *meshLoader) {
		l.loaders = append([]FormatLoader{}, loaders...)
	}
}

// ImporterBuilderOption is a functional option for configuring an Importer via NewImporter.
type ImporterBuilderOption func(*importer)

// WithWorkers is an option builder that sets the maximum number of concurrent decode workers.
//
// Parameters:
//   - n: the worker count, values below one are raised to one
//
// Returns:
//   - ImporterBuilderOption: a function that applies the workers option to an importer
func WithWorkers(n int) ImporterBuilderOption {
	return func(im *importer) {
		im.workers = max(n, 1)
	}
}

// WithQueueSize is an option builder that sets how many imports may wait for a worker before Submit blocks.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - ImporterBuilderOption: a function that applies the queue size option to an importer
func WithQueueSize(n int) ImporterBuilderOption {
	return func(im *importer) {
		im.queueSize = max(n, 1)
	}
}
