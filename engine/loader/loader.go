package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
)

// ErrNoLoader is the cause attached to import failures for files no registered loader accepts.
var ErrNoLoader = errors.New("no loader available for format")

// FormatLoader decodes one family of 3D file formats into engine mesh data.
// Implementations must be safe for concurrent use; the async importer calls them from worker goroutines.
type FormatLoader interface {
	// Name returns a human readable loader name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Extensions returns the lower-case file extensions (with the leading dot) the loader accepts.
	//
	// Returns:
	//   - []string: the extensions
	Extensions() []string

	// CanLoad reports whether the loader accepts the file at path, judged by its extension.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - bool: true if Load should be attempted
	CanLoad(path string) bool

	// Load decodes the file into a single mesh, merging every mesh it contains.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - mesh.MeshData: the merged mesh
	//   - error: decode or IO error
	Load(path string) (mesh.MeshData, error)

	// LoadAll decodes the file into one MeshData per mesh it contains.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - []mesh.MeshData: the meshes, in file order
	//   - error: decode or IO error
	LoadAll(path string) ([]mesh.MeshData, error)
}

// LoaderInfo describes a registered loader for display in the UI shell.
type LoaderInfo struct {
	Name       string
	Extensions []string
}

// meshLoader is the implementation of the MeshLoader interface.
type meshLoader struct {
	mu      sync.RWMutex
	loaders []FormatLoader
}

// MeshLoader is the façade the engine imports assets through. It picks the first registered
// FormatLoader whose CanLoad accepts a path. Every failure is returned as an import failure;
// the façade never retries.
type MeshLoader interface {
	// Register appends a format loader. Earlier registrations win when several accept a path.
	//
	// Parameters:
	//   - l: the loader to add
	Register(l FormatLoader)

	// Load imports the file at path as a single merged mesh.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - mesh.MeshData: the validated mesh
	//   - error: an import failure (wrapping a lookup failure when no loader matches)
	Load(path string) (mesh.MeshData, error)

	// LoadAll imports every mesh in the file at path.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - []mesh.MeshData: the validated meshes
	//   - error: an import failure (wrapping a lookup failure when no loader matches)
	LoadAll(path string) ([]mesh.MeshData, error)

	// CanLoad reports whether any registered loader accepts path.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - bool: true if a loader matches
	CanLoad(path string) bool

	// SupportedFormats returns the sorted, de-duplicated extensions of all registered loaders.
	//
	// Returns:
	//   - []string: the extensions
	SupportedFormats() []string

	// LoaderInfo returns the name and extensions of every registered loader, in registration order.
	//
	// Returns:
	//   - []LoaderInfo: the loader descriptions
	LoaderInfo() []LoaderInfo
}

var _ MeshLoader = &meshLoader{}

// NewMeshLoader creates a MeshLoader. Without options it registers the glTF, OBJ and STL loaders.
//
// Parameters:
//   - options: a variadic list of MeshLoaderBuilderOption functions
//
// Returns:
//   - MeshLoader: the configured loader façade
func NewMeshLoader(options ...MeshLoaderBuilderOption) MeshLoader {
	l := &meshLoader{}
	for _, option := range options {
		option(l)
	}
	if l.loaders == nil {
		l.loaders = []FormatLoader{NewGLTFLoader(), NewOBJLoader(), NewSTLLoader()}
	}
	return l
}

func (l *meshLoader) Register(fl FormatLoader) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaders = append(l.loaders, fl)
}

func (l *meshLoader) Load(path string) (mesh.MeshData, error) {
	fl, err := l.resolve(path)
	if err != nil {
		return mesh.MeshData{}, err
	}
	data, err := fl.Load(path)
	if err != nil {
		return mesh.MeshData{}, common.ImportError("loader.Load", path, fmt.Errorf("%s: %w", fl.Name(), err))
	}
	if err := data.Validate(); err != nil {
		return mesh.MeshData{}, common.ImportError("loader.Load", path, err)
	}
	if data.Name == "" {
		data.Name = stem(path)
	}
	log.Printf("[Loader] loaded %s with %s: %d vertices, %d triangles", path, fl.Name(), data.VertexCount(), data.TriangleCount())
	return data, nil
}

func (l *meshLoader) LoadAll(path string) ([]mesh.MeshData, error) {
	fl, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	all, err := fl.LoadAll(path)
	if err != nil {
		return nil, common.ImportError("loader.LoadAll", path, fmt.Errorf("%s: %w", fl.Name(), err))
	}
	if len(all) == 0 {
		return nil, common.ImportError("loader.LoadAll", path, errors.New("file contains no meshes"))
	}
	for i := range all {
		if err := all[i].Validate(); err != nil {
			return nil, common.ImportError("loader.LoadAll", path, err)
		}
		if all[i].Name == "" {
			all[i].Name = fmt.Sprintf("%s_%d", stem(path), i)
		}
	}
	log.Printf("[Loader] loaded %s with %s: %d meshes", path, fl.Name(), len(all))
	return all, nil
}

func (l *meshLoader) CanLoad(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.find(path) != nil
}

func (l *meshLoader) SupportedFormats() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []string
	for _, fl := range l.loaders {
		out = append(out, fl.Extensions()...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (l *meshLoader) LoaderInfo() []LoaderInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]LoaderInfo, 0, len(l.loaders))
	for _, fl := range l.loaders {
		out = append(out, LoaderInfo{Name: fl.Name(), Extensions: fl.Extensions()})
	}
	return out
}

func (l *meshLoader) find(path string) FormatLoader {
	for _, fl := range l.loaders {
		if fl.CanLoad(path) {
			return fl
		}
	}
	return nil
}

// resolve checks that path exists and picks its loader.
func (l *meshLoader) resolve(path string) (FormatLoader, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ImportError("loader.resolve", path, common.LookupError("loader.resolve", path))
		}
		return nil, common.ImportError("loader.resolve", path, err)
	}
	if info.IsDir() {
		return nil, common.ImportError("loader.resolve", path, errors.New("path is a directory"))
	}

	l.mu.RLock()
	fl := l.find(path)
	l.mu.RUnlock()
	if fl == nil {
		cause := common.NewError(common.KindLookup, "loader.resolve", Ext(path), ErrNoLoader)
		return nil, common.ImportError("loader.resolve", path, cause)
	}
	return fl, nil
}

// Ext returns the lower-cased extension of path including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Stem returns the file name of path without directory or extension, the default object name for imports.
func Stem(path string) string { return stem(path) }

// extensionMatcher implements Extensions and CanLoad for loaders keyed purely by extension.
type extensionMatcher []string

func (m extensionMatcher) Extensions() []string { return slices.Clone(m) }

func (m extensionMatcher) CanLoad(path string) bool {
	return slices.Contains(m, Ext(path))
}
